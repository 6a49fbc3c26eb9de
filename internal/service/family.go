package service

import (
	"context"
	"strings"

	"github.com/deppfellow/budgetbud/internal/errs"
	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/deppfellow/budgetbud/internal/repository"
	"github.com/google/uuid"
)

var errNotOwner = errs.NewForbiddenError("Only the family owner can do this", true)

type FamilyService struct {
	families repository.FamilyRepository
}

func NewFamilyService(families repository.FamilyRepository) *FamilyService {
	return &FamilyService{families: families}
}

func (s *FamilyService) List(ctx context.Context, userID uuid.UUID) ([]model.Family, error) {
	return s.families.ListForUser(ctx, userID)
}

func (s *FamilyService) Create(ctx context.Context, userID uuid.UUID, p *model.CreateFamilyPayload) (*model.Family, error) {
	family := &model.Family{Name: strings.TrimSpace(p.Name)}
	if err := s.families.Create(ctx, family, userID); err != nil {
		return nil, err
	}
	return family, nil
}

// Get returns a family the caller belongs to; other families answer 404.
func (s *FamilyService) Get(ctx context.Context, userID, id uuid.UUID) (*model.Family, error) {
	family, err := s.families.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, ok := family.Member(userID); !ok {
		return nil, errs.NotFound("Family")
	}
	return family, nil
}

func (s *FamilyService) owned(ctx context.Context, userID, id uuid.UUID) (*model.Family, error) {
	family, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !family.IsOwner(userID) {
		return nil, errNotOwner
	}
	return family, nil
}

// Update renames the family and optionally replaces its members. Owner only.
func (s *FamilyService) Update(ctx context.Context, userID uuid.UUID, p *model.UpdateFamilyPayload) (*model.Family, error) {
	family, err := s.owned(ctx, userID, p.ID)
	if err != nil {
		return nil, err
	}

	if p.Name != nil {
		family.Name = strings.TrimSpace(*p.Name)
	}

	var memberIDs []uuid.UUID
	if p.MemberIDs != nil {
		memberIDs = make([]uuid.UUID, 0, len(*p.MemberIDs))
		for _, id := range *p.MemberIDs {
			if id != userID {
				memberIDs = append(memberIDs, id)
			}
		}
	}

	if err := s.families.Update(ctx, family, memberIDs); err != nil {
		return nil, err
	}
	return family, nil
}

func (s *FamilyService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.families.Delete(ctx, id)
}

// Leave removes the caller from a family. The owner has to delete it instead.
func (s *FamilyService) Leave(ctx context.Context, userID, id uuid.UUID) error {
	family, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if family.IsOwner(userID) {
		return errs.BadRequest(errs.CodeOwnerCannotLeave, "The owner cannot leave the family; delete it instead")
	}
	return s.families.RemoveMember(ctx, id, userID)
}

func (s *FamilyService) RemoveMember(ctx context.Context, userID uuid.UUID, p *model.FamilyMemberPayload) error {
	family, err := s.owned(ctx, userID, p.ID)
	if err != nil {
		return err
	}
	if p.UserID == userID {
		return errs.BadRequest(errs.CodeOwnerCannotLeave, "The owner cannot be removed from the family")
	}
	if _, ok := family.Member(p.UserID); !ok {
		return errs.NotFound("FamilyMember")
	}
	return s.families.RemoveMember(ctx, p.ID, p.UserID)
}
