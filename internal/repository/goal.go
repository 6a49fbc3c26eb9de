package repository

import (
	"context"

	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GoalRepository stores budget and savings goals. Progress updates made by
// the transaction cascade go through the LedgerStore instead.
type GoalRepository interface {
	CreateBudgetGoal(ctx context.Context, goal *model.BudgetGoal) error
	GetBudgetGoal(ctx context.Context, id uuid.UUID) (*model.BudgetGoal, error)
	ListBudgetGoals(ctx context.Context, budgetID uuid.UUID) ([]model.BudgetGoal, error)
	DeleteBudgetGoal(ctx context.Context, id uuid.UUID) error
	// BudgetIDsWithGoalsDue lists budgets having a goal that ends on date.
	BudgetIDsWithGoalsDue(ctx context.Context, date model.Date) ([]uuid.UUID, error)

	CreateSavingsGoal(ctx context.Context, goal *model.SavingsGoal) error
	GetSavingsGoal(ctx context.Context, id uuid.UUID) (*model.SavingsGoal, error)
	ListSavingsGoals(ctx context.Context, accountID uuid.UUID) ([]model.SavingsGoal, error)
	DeleteSavingsGoal(ctx context.Context, id uuid.UUID) error
	AccountIDsWithGoalsDue(ctx context.Context, date model.Date) ([]uuid.UUID, error)
}

type goalRepository struct {
	db DBTX
}

func NewGoalRepository(pool *pgxpool.Pool) GoalRepository {
	return &goalRepository{db: pool}
}

const goalColumns = `target_balance, current_balance, goal_met, alert_sent, date_set, start_date, end_date`

type idRow struct {
	ID uuid.UUID `db:"id"`
}

func ids(rows []idRow) []uuid.UUID {
	out := make([]uuid.UUID, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func (r *goalRepository) CreateBudgetGoal(ctx context.Context, goal *model.BudgetGoal) error {
	created, err := getOne[model.BudgetGoal](ctx, r.db, "BudgetGoal", `
		INSERT INTO budget_goals (budget_id, `+goalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, budget_id, `+goalColumns,
		goal.BudgetID, goal.TargetBalance, goal.CurrentBalance, goal.GoalMet, goal.AlertSent,
		goal.DateSet, goal.StartDate, goal.EndDate)
	if err != nil {
		return err
	}
	*goal = *created
	return nil
}

func (r *goalRepository) GetBudgetGoal(ctx context.Context, id uuid.UUID) (*model.BudgetGoal, error) {
	return getOne[model.BudgetGoal](ctx, r.db, "BudgetGoal",
		`SELECT id, budget_id, `+goalColumns+` FROM budget_goals WHERE id = $1`, id)
}

func (r *goalRepository) ListBudgetGoals(ctx context.Context, budgetID uuid.UUID) ([]model.BudgetGoal, error) {
	return getMany[model.BudgetGoal](ctx, r.db, "BudgetGoal",
		`SELECT id, budget_id, `+goalColumns+` FROM budget_goals WHERE budget_id = $1 ORDER BY date_set, id`, budgetID)
}

func (r *goalRepository) DeleteBudgetGoal(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db, "BudgetGoal", `DELETE FROM budget_goals WHERE id = $1`, id)
}

func (r *goalRepository) BudgetIDsWithGoalsDue(ctx context.Context, date model.Date) ([]uuid.UUID, error) {
	rows, err := getMany[idRow](ctx, r.db, "BudgetGoal",
		`SELECT DISTINCT budget_id AS id FROM budget_goals WHERE end_date = $1`, date)
	if err != nil {
		return nil, err
	}
	return ids(rows), nil
}

func (r *goalRepository) CreateSavingsGoal(ctx context.Context, goal *model.SavingsGoal) error {
	created, err := getOne[model.SavingsGoal](ctx, r.db, "SavingsGoal", `
		INSERT INTO savings_goals (account_id, `+goalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, account_id, `+goalColumns,
		goal.AccountID, goal.TargetBalance, goal.CurrentBalance, goal.GoalMet, goal.AlertSent,
		goal.DateSet, goal.StartDate, goal.EndDate)
	if err != nil {
		return err
	}
	*goal = *created
	return nil
}

func (r *goalRepository) GetSavingsGoal(ctx context.Context, id uuid.UUID) (*model.SavingsGoal, error) {
	return getOne[model.SavingsGoal](ctx, r.db, "SavingsGoal",
		`SELECT id, account_id, `+goalColumns+` FROM savings_goals WHERE id = $1`, id)
}

func (r *goalRepository) ListSavingsGoals(ctx context.Context, accountID uuid.UUID) ([]model.SavingsGoal, error) {
	return getMany[model.SavingsGoal](ctx, r.db, "SavingsGoal",
		`SELECT id, account_id, `+goalColumns+` FROM savings_goals WHERE account_id = $1 ORDER BY date_set, id`, accountID)
}

func (r *goalRepository) DeleteSavingsGoal(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db, "SavingsGoal", `DELETE FROM savings_goals WHERE id = $1`, id)
}

func (r *goalRepository) AccountIDsWithGoalsDue(ctx context.Context, date model.Date) ([]uuid.UUID, error) {
	rows, err := getMany[idRow](ctx, r.db, "SavingsGoal",
		`SELECT DISTINCT account_id AS id FROM savings_goals WHERE end_date = $1`, date)
	if err != nil {
		return nil, err
	}
	return ids(rows), nil
}
