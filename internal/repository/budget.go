package repository

import (
	"context"

	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BudgetRepository methods are scoped to the owning user. Balance changes go
// through the LedgerStore.
type BudgetRepository interface {
	Create(ctx context.Context, budget *model.Budget) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*model.Budget, error)
	List(ctx context.Context, userID uuid.UUID) ([]model.Budget, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type budgetRepository struct {
	db DBTX
}

func NewBudgetRepository(pool *pgxpool.Pool) BudgetRepository {
	return &budgetRepository{db: pool}
}

const budgetColumns = `id, user_id, name, total_amount, current_balance, created_at, updated_at`

func (r *budgetRepository) Create(ctx context.Context, budget *model.Budget) error {
	created, err := getOne[model.Budget](ctx, r.db, "Budget", `
		INSERT INTO budgets (user_id, name, total_amount, current_balance)
		VALUES ($1, $2, $3, $4)
		RETURNING `+budgetColumns,
		budget.UserID, budget.Name, budget.TotalAmount, budget.CurrentBalance)
	if err != nil {
		return err
	}
	*budget = *created
	return nil
}

func (r *budgetRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*model.Budget, error) {
	return getOne[model.Budget](ctx, r.db, "Budget",
		`SELECT `+budgetColumns+` FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *budgetRepository) List(ctx context.Context, userID uuid.UUID) ([]model.Budget, error) {
	return getMany[model.Budget](ctx, r.db, "Budget",
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 ORDER BY name`, userID)
}

func (r *budgetRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return execOne(ctx, r.db, "Budget", `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
}
