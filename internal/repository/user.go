package repository

import (
	"context"

	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// ListVisible returns the user and everyone sharing a family with them.
	ListVisible(ctx context.Context, userID uuid.UUID) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
}

type userRepository struct {
	db DBTX
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{db: pool}
}

const userColumns = `id, username, email, first_name, last_name, password_hash, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	created, err := getOne[model.User](ctx, r.db, "User", `
		INSERT INTO users (username, email, first_name, last_name, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		user.Username, user.Email, user.FirstName, user.LastName, user.PasswordHash)
	if err != nil {
		return err
	}
	*user = *created
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return getOne[model.User](ctx, r.db, "User", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return getOne[model.User](ctx, r.db, "User", `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return getOne[model.User](ctx, r.db, "User", `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *userRepository) ListVisible(ctx context.Context, userID uuid.UUID) ([]model.User, error) {
	return getMany[model.User](ctx, r.db, "User", `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
		   OR id IN (
				SELECT fm.user_id
				FROM family_members fm
				JOIN family_members me ON me.family_id = fm.family_id
				WHERE me.user_id = $1
		   )
		ORDER BY username`, userID)
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	updated, err := getOne[model.User](ctx, r.db, "User", `
		UPDATE users
		SET username = $2, email = $3, first_name = $4, last_name = $5, password_hash = $6
		WHERE id = $1
		RETURNING `+userColumns,
		user.ID, user.Username, user.Email, user.FirstName, user.LastName, user.PasswordHash)
	if err != nil {
		return err
	}
	*user = *updated
	return nil
}
