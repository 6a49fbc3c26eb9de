package service

import (
	"context"
	"strings"

	"github.com/deppfellow/budgetbud/internal/errs"
	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/deppfellow/budgetbud/internal/repository"
	"github.com/google/uuid"
)

var errNotSelf = errs.NewForbiddenError("You can only change your own account", true)

type UserService struct {
	users  repository.UserRepository
	ledger *ledger
}

func NewUserService(users repository.UserRepository, ledger *ledger) *UserService {
	return &UserService{users: users, ledger: ledger}
}

// List returns the caller and everyone sharing a family with them.
func (s *UserService) List(ctx context.Context, userID uuid.UUID) ([]model.User, error) {
	return s.users.ListVisible(ctx, userID)
}

// Get returns a user visible to the caller; others answer 404.
func (s *UserService) Get(ctx context.Context, userID, id uuid.UUID) (*model.User, error) {
	users, err := s.users.ListVisible(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, errs.NotFound("User")
}

func (s *UserService) Update(ctx context.Context, userID uuid.UUID, p *model.UpdateUserPayload) (*model.User, error) {
	if p.ID != userID {
		if _, err := s.Get(ctx, userID, p.ID); err != nil {
			return nil, err
		}
		return nil, errNotSelf
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if p.Username != nil {
		user.Username = strings.TrimSpace(*p.Username)
	}
	if p.Email != nil {
		user.Email = model.NormalizeEmail(*p.Email)
	}
	if p.FirstName != nil {
		user.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		user.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.Password != nil {
		if p.CurrentPassword == nil || !checkPassword(user.PasswordHash, *p.CurrentPassword) {
			return nil, errs.FieldInvalid("current_password", "is incorrect")
		}
		hash, err := hashPassword(*p.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if id != userID {
		if _, err := s.Get(ctx, userID, id); err != nil {
			return err
		}
		return errNotSelf
	}
	return s.ledger.removeUser(ctx, id)
}
