package model

import (
	"github.com/deppfellow/budgetbud/internal/validation"
	"github.com/google/uuid"
)

type CreateFamilyPayload struct {
	Name string `json:"name" validate:"required,max=30"`
}

func (p *CreateFamilyPayload) Validate() error {
	return validation.Struct(p)
}

// UpdateFamilyPayload renames a family and, when MemberIDs is present,
// replaces its member set. The owner always stays a member.
type UpdateFamilyPayload struct {
	ID        uuid.UUID    `param:"id" json:"-" validate:"required"`
	Name      *string      `json:"name" validate:"omitempty,min=1,max=30"`
	MemberIDs *[]uuid.UUID `json:"member_ids" validate:"omitempty,max=50"`
}

func (p *UpdateFamilyPayload) Validate() error {
	return validation.Struct(p)
}

type FamilyMemberPayload struct {
	ID     uuid.UUID `param:"id" json:"-" validate:"required"`
	UserID uuid.UUID `param:"user_id" json:"-" validate:"required"`
}

func (p *FamilyMemberPayload) Validate() error {
	return validation.Struct(p)
}

type CreateInvitationPayload struct {
	FamilyID uuid.UUID `param:"id" json:"-" validate:"required"`
	Email    string    `json:"email" validate:"required,email,max=254"`
}

func (p *CreateInvitationPayload) Validate() error {
	return validation.Struct(p)
}

type AcceptInvitationPayload struct {
	Token string `json:"token" validate:"required,max=128"`
}

func (p *AcceptInvitationPayload) Validate() error {
	return validation.Struct(p)
}
