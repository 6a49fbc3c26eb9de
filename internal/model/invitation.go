package model

import (
	"time"

	"github.com/google/uuid"
)

// InvitationTTL is how long an invitation can be accepted.
const InvitationTTL = 7 * 24 * time.Hour

type Invitation struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	FamilyID   uuid.UUID  `json:"family_id" db:"family_id"`
	InviterID  uuid.UUID  `json:"inviter_id" db:"inviter_id"`
	Email      string     `json:"email" db:"email"`
	Token      string     `json:"-" db:"token"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at" db:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at" db:"accepted_at"`
}

func (i *Invitation) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

func (i *Invitation) IsAccepted() bool {
	return i.AcceptedAt != nil
}
