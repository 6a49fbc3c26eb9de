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

type FamilyRepository interface {
	// Create inserts the family and makes ownerID its owner.
	Create(ctx context.Context, family *model.Family, ownerID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Family, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Family, error)
	// Update renames the family and, when memberIDs is non nil, replaces the
	// non owner members with memberIDs.
	Update(ctx context.Context, family *model.Family, memberIDs []uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddMember(ctx context.Context, familyID, userID uuid.UUID, role model.FamilyRole) error
	RemoveMember(ctx context.Context, familyID, userID uuid.UUID) error
	IsMember(ctx context.Context, familyID, userID uuid.UUID) (bool, error)
}

type familyRepository struct {
	pool *pgxpool.Pool
}

func NewFamilyRepository(pool *pgxpool.Pool) FamilyRepository {
	return &familyRepository{pool: pool}
}

const memberQuery = `
	SELECT fm.family_id, fm.user_id, u.username, u.email, fm.role, fm.joined_at
	FROM family_members fm
	JOIN users u ON u.id = fm.user_id`

func (r *familyRepository) Create(ctx context.Context, family *model.Family, ownerID uuid.UUID) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		created, err := getOne[model.Family](ctx, tx, "Family", `
			INSERT INTO families (name) VALUES ($1)
			RETURNING id, name, created_at, updated_at`, family.Name)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO family_members (family_id, user_id, role) VALUES ($1, $2, $3)`,
			created.ID, ownerID, model.FamilyRoleOwner); err != nil {
			return fmt.Errorf("insert family owner: %w", err)
		}
		members, err := getMany[model.FamilyMember](ctx, tx, "FamilyMember", memberQuery+` WHERE fm.family_id = $1`, created.ID)
		if err != nil {
			return err
		}
		created.Members = members
		*family = *created
		return nil
	})
}

func (r *familyRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Family, error) {
	family, err := getOne[model.Family](ctx, r.pool, "Family", `
		SELECT id, name, created_at, updated_at FROM families WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	family.Members, err = getMany[model.FamilyMember](ctx, r.pool, "FamilyMember",
		memberQuery+` WHERE fm.family_id = $1 ORDER BY fm.joined_at`, id)
	if err != nil {
		return nil, err
	}
	return family, nil
}

func (r *familyRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Family, error) {
	families, err := getMany[model.Family](ctx, r.pool, "Family", `
		SELECT f.id, f.name, f.created_at, f.updated_at
		FROM families f
		JOIN family_members fm ON fm.family_id = f.id
		WHERE fm.user_id = $1
		ORDER BY f.name`, userID)
	if err != nil || len(families) == 0 {
		return families, err
	}

	members, err := getMany[model.FamilyMember](ctx, r.pool, "FamilyMember", memberQuery+`
		WHERE fm.family_id IN (SELECT family_id FROM family_members WHERE user_id = $1)
		ORDER BY fm.joined_at`, userID)
	if err != nil {
		return nil, err
	}

	byFamily := make(map[uuid.UUID][]model.FamilyMember, len(families))
	for _, m := range members {
		byFamily[m.FamilyID] = append(byFamily[m.FamilyID], m)
	}
	for i := range families {
		families[i].Members = byFamily[families[i].ID]
	}
	return families, nil
}

func (r *familyRepository) Update(ctx context.Context, family *model.Family, memberIDs []uuid.UUID) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := execOne(ctx, tx, "Family", `UPDATE families SET name = $2 WHERE id = $1`, family.ID, family.Name); err != nil {
			return err
		}

		if memberIDs != nil {
			if _, err := tx.Exec(ctx, `
				DELETE FROM family_members
				WHERE family_id = $1 AND role <> 'owner' AND NOT (user_id = ANY($2))`,
				family.ID, memberIDs); err != nil {
				return fmt.Errorf("remove family members: %w", err)
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO family_members (family_id, user_id, role)
				SELECT $1, id, 'member' FROM users WHERE id = ANY($2)
				ON CONFLICT (family_id, user_id) DO NOTHING`,
				family.ID, memberIDs); err != nil {
				return fmt.Errorf("add family members: %w", err)
			}
		}

		updated, err := getOne[model.Family](ctx, tx, "Family", `
			SELECT id, name, created_at, updated_at FROM families WHERE id = $1`, family.ID)
		if err != nil {
			return err
		}
		updated.Members, err = getMany[model.FamilyMember](ctx, tx, "FamilyMember",
			memberQuery+` WHERE fm.family_id = $1 ORDER BY fm.joined_at`, family.ID)
		if err != nil {
			return err
		}
		*family = *updated
		return nil
	})
}

func (r *familyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.pool, "Family", `DELETE FROM families WHERE id = $1`, id)
}

func (r *familyRepository) AddMember(ctx context.Context, familyID, userID uuid.UUID, role model.FamilyRole) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO family_members (family_id, user_id, role, joined_at) VALUES ($1, $2, $3, $4)`,
		familyID, userID, role, time.Now())
	if err != nil {
		return fmt.Errorf("add family member: %w", err)
	}
	return nil
}

func (r *familyRepository) RemoveMember(ctx context.Context, familyID, userID uuid.UUID) error {
	return execOne(ctx, r.pool, "FamilyMember",
		`DELETE FROM family_members WHERE family_id = $1 AND user_id = $2`, familyID, userID)
}

func (r *familyRepository) IsMember(ctx context.Context, familyID, userID uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM family_members WHERE family_id = $1 AND user_id = $2)`,
		familyID, userID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check family membership: %w", err)
	}
	return ok, nil
}
