package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InvitationRepository interface {
	Create(ctx context.Context, inv *model.Invitation) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Invitation, error)
	GetByToken(ctx context.Context, token string) (*model.Invitation, error)
	ListPending(ctx context.Context, familyID uuid.UUID, now time.Time) ([]model.Invitation, error)
	// Accept adds userID to the family and marks the invitation accepted atomically.
	Accept(ctx context.Context, inv *model.Invitation, userID uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type invitationRepository struct {
	pool *pgxpool.Pool
}

func NewInvitationRepository(pool *pgxpool.Pool) InvitationRepository {
	return &invitationRepository{pool: pool}
}

const invitationColumns = `id, family_id, inviter_id, email, token, created_at, expires_at, accepted_at`

func (r *invitationRepository) Create(ctx context.Context, inv *model.Invitation) error {
	created, err := getOne[model.Invitation](ctx, r.pool, "Invitation", `
		INSERT INTO invitations (family_id, inviter_id, email, token, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+invitationColumns,
		inv.FamilyID, inv.InviterID, inv.Email, inv.Token, inv.ExpiresAt)
	if err != nil {
		return err
	}
	*inv = *created
	return nil
}

func (r *invitationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Invitation, error) {
	return getOne[model.Invitation](ctx, r.pool, "Invitation",
		`SELECT `+invitationColumns+` FROM invitations WHERE id = $1`, id)
}

func (r *invitationRepository) GetByToken(ctx context.Context, token string) (*model.Invitation, error) {
	return getOne[model.Invitation](ctx, r.pool, "Invitation",
		`SELECT `+invitationColumns+` FROM invitations WHERE token = $1`, token)
}

func (r *invitationRepository) ListPending(ctx context.Context, familyID uuid.UUID, now time.Time) ([]model.Invitation, error) {
	return getMany[model.Invitation](ctx, r.pool, "Invitation", `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE family_id = $1 AND accepted_at IS NULL AND expires_at > $2
		ORDER BY created_at DESC`, familyID, now)
}

func (r *invitationRepository) Accept(ctx context.Context, inv *model.Invitation, userID uuid.UUID, at time.Time) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		// Guard against a concurrent accept of the same token.
		if err := execOne(ctx, tx, "Invitation", `
			UPDATE invitations SET accepted_at = $2
			WHERE id = $1 AND accepted_at IS NULL`, inv.ID, at); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO family_members (family_id, user_id, role, joined_at)
			VALUES ($1, $2, 'member', $3)
			ON CONFLICT (family_id, user_id) DO NOTHING`,
			inv.FamilyID, userID, at); err != nil {
			return fmt.Errorf("add invited member: %w", err)
		}
		inv.AcceptedAt = &at
		return nil
	})
}

func (r *invitationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.pool, "Invitation", `DELETE FROM invitations WHERE id = $1`, id)
}

func (r *invitationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM invitations WHERE accepted_at IS NULL AND expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired invitations: %w", err)
	}
	return tag.RowsAffected(), nil
}
