package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionRepository reads transactions. Writes go through the LedgerStore
// so balances stay consistent.
type TransactionRepository interface {
	GetVisible(ctx context.Context, userID, id uuid.UUID) (*model.Transaction, error)
	List(ctx context.Context, userID uuid.UUID, filter model.TransactionFilter) ([]model.Transaction, error)
	Count(ctx context.Context, userID uuid.UUID, filter model.TransactionFilter) (int64, error)
	// ListDueRecurring returns recurring transactions whose next occurrence is on or before date.
	ListDueRecurring(ctx context.Context, date model.Date) ([]model.Transaction, error)
}

type transactionRepository struct {
	db DBTX
}

func NewTransactionRepository(pool *pgxpool.Pool) TransactionRepository {
	return &transactionRepository{db: pool}
}

const transactionColumns = `t.id, t.user_id, t.family_id, t.account_id, t.budget_id, t.category_id, t.date, t.amount,
	t.transaction_type, t.description, t.is_recurring, t.recurring_type, t.next_occurrence,
	t.recurring_parent_id, t.created_at, t.updated_at`

// filterClause builds the WHERE clause shared by listings and reports.
// $1 is always the requesting user.
type filterClause struct {
	conds []string
	args  []any
}

func newFilterClause(userID uuid.UUID, filter model.TransactionFilter) *filterClause {
	f := &filterClause{
		conds: []string{visibleTo("t", 1)},
		args:  []any{userID},
	}
	if filter.Start != nil {
		f.add("t.date >= $%d", *filter.Start)
	}
	if filter.End != nil {
		f.add("t.date <= $%d", *filter.End)
	}
	if filter.Type != nil {
		f.add("t.transaction_type = $%d", string(*filter.Type))
	}
	if filter.AccountID != nil {
		f.add("t.account_id = $%d", *filter.AccountID)
	}
	if filter.BudgetID != nil {
		f.add("t.budget_id = $%d", *filter.BudgetID)
	}
	if filter.CategoryID != nil {
		f.add("t.category_id = $%d", *filter.CategoryID)
	}
	return f
}

func (f *filterClause) add(cond string, arg any) {
	f.args = append(f.args, arg)
	f.conds = append(f.conds, fmt.Sprintf(cond, len(f.args)))
}

func (f *filterClause) where() string {
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// page appends LIMIT/OFFSET placeholders.
func (f *filterClause) page(limit, offset int) string {
	var b strings.Builder
	if limit > 0 {
		f.args = append(f.args, limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(f.args))
	}
	if offset > 0 {
		f.args = append(f.args, offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(f.args))
	}
	return b.String()
}

func (r *transactionRepository) GetVisible(ctx context.Context, userID, id uuid.UUID) (*model.Transaction, error) {
	return getOne[model.Transaction](ctx, r.db, "Transaction", `
		SELECT `+transactionColumns+` FROM transactions t
		WHERE t.id = $2 AND `+visibleTo("t", 1), userID, id)
}

func (r *transactionRepository) List(ctx context.Context, userID uuid.UUID, filter model.TransactionFilter) ([]model.Transaction, error) {
	f := newFilterClause(userID, filter)
	query := `SELECT ` + transactionColumns + ` FROM transactions t` + f.where() +
		` ORDER BY t.date DESC, t.created_at DESC` + f.page(filter.Limit, filter.Offset)
	return getMany[model.Transaction](ctx, r.db, "Transaction", query, f.args...)
}

func (r *transactionRepository) Count(ctx context.Context, userID uuid.UUID, filter model.TransactionFilter) (int64, error) {
	f := newFilterClause(userID, filter)
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions t`+f.where(), f.args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

func (r *transactionRepository) ListDueRecurring(ctx context.Context, date model.Date) ([]model.Transaction, error) {
	return getMany[model.Transaction](ctx, r.db, "Transaction", `
		SELECT `+transactionColumns+` FROM transactions t
		WHERE t.is_recurring
		  AND t.recurring_type IS NOT NULL
		  AND t.recurring_type <> 'one-time'
		  AND t.next_occurrence IS NOT NULL
		  AND t.next_occurrence <= $1
		ORDER BY t.next_occurrence, t.id`, date)
}
