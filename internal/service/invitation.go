package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/deppfellow/budgetbud/internal/errs"
	"github.com/deppfellow/budgetbud/internal/lib/job"
	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/deppfellow/budgetbud/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const invitationTokenBytes = 32

type InvitationService struct {
	invitations repository.InvitationRepository
	families    *FamilyService
	users       repository.UserRepository
	jobs        TaskEnqueuer
	clock       Clock
	logger      *zerolog.Logger
}

func NewInvitationService(
	invitations repository.InvitationRepository,
	families repository.FamilyRepository,
	users repository.UserRepository,
	jobs TaskEnqueuer,
	clock Clock,
	logger *zerolog.Logger,
) *InvitationService {
	return &InvitationService{
		invitations: invitations,
		families:    NewFamilyService(families),
		users:       users,
		jobs:        jobs,
		clock:       clock,
		logger:      logger,
	}
}

func newInvitationToken() (string, error) {
	b := make([]byte, invitationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate invitation token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Create invites an e-mail address to a family the caller owns and queues
// the invitation e-mail.
func (s *InvitationService) Create(ctx context.Context, userID uuid.UUID, p *model.CreateInvitationPayload) (*model.Invitation, error) {
	family, err := s.families.owned(ctx, userID, p.FamilyID)
	if err != nil {
		return nil, err
	}

	email := model.NormalizeEmail(p.Email)
	for _, m := range family.Members {
		if model.NormalizeEmail(m.Email) == email {
			return nil, errs.BadRequest(errs.CodeAlreadyFamilyMember, "This user is already a member of the family")
		}
	}

	inviter, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	tok, err := newInvitationToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.now()
	inv := &model.Invitation{
		FamilyID:  family.ID,
		InviterID: userID,
		Email:     email,
		Token:     tok,
		ExpiresAt: now.Add(model.InvitationTTL),
	}
	if err := s.invitations.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.enqueueInvitation(ctx, inv, inviter, family)

	return inv, nil
}

func (s *InvitationService) enqueueInvitation(ctx context.Context, inv *model.Invitation, inviter *model.User, family *model.Family) {
	log := loggerFrom(ctx, s.logger)

	existing := true
	if _, err := s.users.GetByEmail(ctx, inv.Email); err != nil {
		existing = false
	}

	task, err := job.NewInvitationEmailTask(job.InvitationEmailPayload{
		To:           inv.Email,
		InviterName:  inviter.DisplayName(),
		FamilyName:   family.Name,
		Token:        inv.Token,
		ExistingUser: existing,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to build invitation email task")
		return
	}
	if _, err := s.jobs.EnqueueContext(ctx, task); err != nil {
		log.Error().Err(err).Str("invitation_id", inv.ID.String()).Msg("failed to enqueue invitation email")
	}
}

// List returns the pending invitations of a family the caller belongs to.
func (s *InvitationService) List(ctx context.Context, userID, familyID uuid.UUID) ([]model.Invitation, error) {
	if _, err := s.families.Get(ctx, userID, familyID); err != nil {
		return nil, err
	}
	return s.invitations.ListPending(ctx, familyID, s.clock.now())
}

// Delete cancels an invitation. The family owner and the inviter may do it.
func (s *InvitationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	inv, err := s.invitations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	family, err := s.families.Get(ctx, userID, inv.FamilyID)
	if err != nil {
		return errs.NotFound("Invitation")
	}
	if inv.InviterID != userID && !family.IsOwner(userID) {
		return errNotOwner
	}
	return s.invitations.Delete(ctx, id)
}

// Accept adds the caller to the invitation's family. The caller's e-mail
// must be the invited one.
func (s *InvitationService) Accept(ctx context.Context, userID uuid.UUID, p *model.AcceptInvitationPayload) (*model.Family, error) {
	inv, err := s.invitations.GetByToken(ctx, p.Token)
	if err != nil {
		return nil, err
	}

	now := s.clock.now()
	switch {
	case inv.IsAccepted():
		return nil, errs.BadRequest(errs.CodeInvitationAccepted, "This invitation has already been accepted")
	case inv.IsExpired(now):
		return nil, errs.BadRequest(errs.CodeInvitationExpired, "This invitation has expired")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if model.NormalizeEmail(user.Email) != inv.Email {
		return nil, errs.BadRequest(errs.CodeInvitationMismatch, "This invitation was sent to a different e-mail address")
	}

	family, err := s.families.families.GetByID(ctx, inv.FamilyID)
	if err != nil {
		return nil, err
	}
	if _, ok := family.Member(userID); ok {
		return nil, errs.BadRequest(errs.CodeAlreadyFamilyMember, "You are already a member of this family")
	}

	if err := s.invitations.Accept(ctx, inv, userID, now); err != nil {
		return nil, err
	}

	return s.families.families.GetByID(ctx, inv.FamilyID)
}

// CleanupExpired deletes invitations that expired without being accepted.
func (s *InvitationService) CleanupExpired(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.invitations.DeleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	loggerFrom(ctx, s.logger).Info().Int64("deleted", n).Msg("expired invitations cleaned up")
	return n, nil
}
