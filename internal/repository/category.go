package repository

import (
	"context"

	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CategoryRepository methods are scoped to the owning user; rows of other
// users are reported as not found.
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*model.Category, error)
	List(ctx context.Context, userID uuid.UUID) ([]model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type categoryRepository struct {
	db DBTX
}

func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{db: pool}
}

func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	created, err := getOne[model.Category](ctx, r.db, "Category", `
		INSERT INTO categories (user_id, name) VALUES ($1, $2)
		RETURNING id, user_id, name`, category.UserID, category.Name)
	if err != nil {
		return err
	}
	*category = *created
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*model.Category, error) {
	return getOne[model.Category](ctx, r.db, "Category", `
		SELECT id, user_id, name FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *categoryRepository) List(ctx context.Context, userID uuid.UUID) ([]model.Category, error) {
	return getMany[model.Category](ctx, r.db, "Category", `
		SELECT id, user_id, name FROM categories WHERE user_id = $1 ORDER BY name`, userID)
}

func (r *categoryRepository) Update(ctx context.Context, category *model.Category) error {
	updated, err := getOne[model.Category](ctx, r.db, "Category", `
		UPDATE categories SET name = $3 WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, name`, category.ID, category.UserID, category.Name)
	if err != nil {
		return err
	}
	*category = *updated
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return execOne(ctx, r.db, "Category", `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
}
