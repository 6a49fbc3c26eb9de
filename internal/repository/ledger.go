package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LedgerStore runs balance changing work inside one database transaction.
type LedgerStore interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}

// LedgerTx is the set of operations available inside a ledger transaction.
// Lock methods take row locks (SELECT ... FOR UPDATE) held until commit.
type LedgerTx interface {
	LockAccount(ctx context.Context, id uuid.UUID) (*model.Account, error)
	LockBudget(ctx context.Context, id uuid.UUID) (*model.Budget, error)
	InsertAccount(ctx context.Context, account *model.Account) error
	SetAccountBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
	UpdateBudget(ctx context.Context, budget *model.Budget) error
	AppendHistory(ctx context.Context, entry *model.BalanceHistory) error

	GetTransactionForUpdate(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	InsertTransaction(ctx context.Context, t *model.Transaction) error
	UpdateTransaction(ctx context.Context, t *model.Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	SetNextOccurrence(ctx context.Context, id uuid.UUID, next *model.Date) error
	LastOccurrence(ctx context.Context, parentID uuid.UUID) (*model.Date, error)
	// LockTransactionsOnAccount locks every transaction booked on an account.
	LockTransactionsOnAccount(ctx context.Context, accountID uuid.UUID) ([]model.Transaction, error)
	// LockTransactionsOfUser locks the transactions a user wrote and those
	// booked on the user's accounts.
	LockTransactionsOfUser(ctx context.Context, userID uuid.UUID) ([]model.Transaction, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
	DeleteUser(ctx context.Context, id uuid.UUID) error

	SavingsGoalsForAccount(ctx context.Context, accountID uuid.UUID) ([]model.SavingsGoal, error)
	SaveSavingsGoal(ctx context.Context, goal *model.SavingsGoal) error
	BudgetGoalsForBudget(ctx context.Context, budgetID uuid.UUID) ([]model.BudgetGoal, error)
	SaveBudgetGoal(ctx context.Context, goal *model.BudgetGoal) error
}

type ledgerStore struct {
	pool *pgxpool.Pool
}

func NewLedgerStore(pool *pgxpool.Pool) LedgerStore {
	return &ledgerStore{pool: pool}
}

func (s *ledgerStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error {
	return inTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, &ledgerTx{db: tx})
	})
}

type ledgerTx struct {
	db DBTX
}

func (l *ledgerTx) LockAccount(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	return getOne[model.Account](ctx, l.db, "Account",
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id)
}

func (l *ledgerTx) LockBudget(ctx context.Context, id uuid.UUID) (*model.Budget, error) {
	return getOne[model.Budget](ctx, l.db, "Budget",
		`SELECT `+budgetColumns+` FROM budgets WHERE id = $1 FOR UPDATE`, id)
}

func (l *ledgerTx) InsertAccount(ctx context.Context, account *model.Account) error {
	created, err := getOne[model.Account](ctx, l.db, "Account", `
		INSERT INTO accounts (user_id, family_id, name, balance)
		VALUES ($1, $2, $3, $4)
		RETURNING `+accountColumns,
		account.UserID, account.FamilyID, account.Name, account.Balance)
	if err != nil {
		return err
	}
	*account = *created
	return nil
}

func (l *ledgerTx) SetAccountBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	return execOne(ctx, l.db, "Account", `UPDATE accounts SET balance = $2 WHERE id = $1`, id, balance)
}

func (l *ledgerTx) UpdateBudget(ctx context.Context, budget *model.Budget) error {
	updated, err := getOne[model.Budget](ctx, l.db, "Budget", `
		UPDATE budgets SET name = $2, total_amount = $3, current_balance = $4
		WHERE id = $1
		RETURNING `+budgetColumns,
		budget.ID, budget.Name, budget.TotalAmount, budget.CurrentBalance)
	if err != nil {
		return err
	}
	*budget = *updated
	return nil
}

func (l *ledgerTx) AppendHistory(ctx context.Context, entry *model.BalanceHistory) error {
	created, err := getOne[model.BalanceHistory](ctx, l.db, "BalanceHistory", `
		INSERT INTO balance_history (account_id, transaction_id, balance, date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, account_id, transaction_id, balance, date, created_at`,
		entry.AccountID, entry.TransactionID, entry.Balance, entry.Date)
	if err != nil {
		return err
	}
	*entry = *created
	return nil
}

func (l *ledgerTx) GetTransactionForUpdate(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	return getOne[model.Transaction](ctx, l.db, "Transaction",
		`SELECT `+transactionColumns+` FROM transactions t WHERE t.id = $1 FOR UPDATE`, id)
}

func (l *ledgerTx) InsertTransaction(ctx context.Context, t *model.Transaction) error {
	created, err := getOne[model.Transaction](ctx, l.db, "Transaction", `
		INSERT INTO transactions AS t (
			user_id, family_id, account_id, budget_id, category_id, date, amount, transaction_type,
			description, is_recurring, recurring_type, next_occurrence, recurring_parent_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+transactionColumns,
		t.UserID, t.FamilyID, t.AccountID, t.BudgetID, t.CategoryID, t.Date, t.Amount, string(t.TransactionType),
		t.Description, t.IsRecurring, recurringArg(t.RecurringType), t.NextOccurrence, t.RecurringParentID)
	if err != nil {
		return err
	}
	*t = *created
	return nil
}

func (l *ledgerTx) UpdateTransaction(ctx context.Context, t *model.Transaction) error {
	updated, err := getOne[model.Transaction](ctx, l.db, "Transaction", `
		UPDATE transactions AS t SET
			family_id = $2, account_id = $3, budget_id = $4, category_id = $5, date = $6, amount = $7,
			transaction_type = $8, description = $9, is_recurring = $10, recurring_type = $11,
			next_occurrence = $12
		WHERE t.id = $1
		RETURNING `+transactionColumns,
		t.ID, t.FamilyID, t.AccountID, t.BudgetID, t.CategoryID, t.Date, t.Amount, string(t.TransactionType),
		t.Description, t.IsRecurring, recurringArg(t.RecurringType), t.NextOccurrence)
	if err != nil {
		return err
	}
	*t = *updated
	return nil
}

func (l *ledgerTx) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, l.db, "Transaction", `DELETE FROM transactions WHERE id = $1`, id)
}

func (l *ledgerTx) SetNextOccurrence(ctx context.Context, id uuid.UUID, next *model.Date) error {
	return execOne(ctx, l.db, "Transaction", `UPDATE transactions SET next_occurrence = $2 WHERE id = $1`, id, next)
}

// LastOccurrence returns the date of the latest occurrence booked for a
// recurring parent, or nil when none exists.
func (l *ledgerTx) LastOccurrence(ctx context.Context, parentID uuid.UUID) (*model.Date, error) {
	var last *model.Date
	err := l.db.QueryRow(ctx,
		`SELECT max(date) FROM transactions WHERE recurring_parent_id = $1`, parentID).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("query last occurrence: %w", err)
	}
	return last, nil
}

func (l *ledgerTx) LockTransactionsOnAccount(ctx context.Context, accountID uuid.UUID) ([]model.Transaction, error) {
	return getMany[model.Transaction](ctx, l.db, "Transaction",
		`SELECT `+transactionColumns+` FROM transactions t WHERE t.account_id = $1 ORDER BY t.id FOR UPDATE`, accountID)
}

func (l *ledgerTx) LockTransactionsOfUser(ctx context.Context, userID uuid.UUID) ([]model.Transaction, error) {
	return getMany[model.Transaction](ctx, l.db, "Transaction", `
		SELECT `+transactionColumns+` FROM transactions t
		WHERE t.user_id = $1
		   OR t.account_id IN (SELECT id FROM accounts WHERE user_id = $1)
		ORDER BY t.id
		FOR UPDATE`, userID)
}

func (l *ledgerTx) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, l.db, "Account", `DELETE FROM accounts WHERE id = $1`, id)
}

func (l *ledgerTx) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, l.db, "User", `DELETE FROM users WHERE id = $1`, id)
}

func (l *ledgerTx) SavingsGoalsForAccount(ctx context.Context, accountID uuid.UUID) ([]model.SavingsGoal, error) {
	return getMany[model.SavingsGoal](ctx, l.db, "SavingsGoal",
		`SELECT id, account_id, `+goalColumns+` FROM savings_goals WHERE account_id = $1 ORDER BY date_set, id FOR UPDATE`, accountID)
}

func (l *ledgerTx) SaveSavingsGoal(ctx context.Context, goal *model.SavingsGoal) error {
	return execOne(ctx, l.db, "SavingsGoal", `
		UPDATE savings_goals
		SET target_balance = $2, current_balance = $3, goal_met = $4, alert_sent = $5, start_date = $6, end_date = $7
		WHERE id = $1`,
		goal.ID, goal.TargetBalance, goal.CurrentBalance, goal.GoalMet, goal.AlertSent, goal.StartDate, goal.EndDate)
}

func (l *ledgerTx) BudgetGoalsForBudget(ctx context.Context, budgetID uuid.UUID) ([]model.BudgetGoal, error) {
	return getMany[model.BudgetGoal](ctx, l.db, "BudgetGoal",
		`SELECT id, budget_id, `+goalColumns+` FROM budget_goals WHERE budget_id = $1 ORDER BY date_set, id FOR UPDATE`, budgetID)
}

func (l *ledgerTx) SaveBudgetGoal(ctx context.Context, goal *model.BudgetGoal) error {
	return execOne(ctx, l.db, "BudgetGoal", `
		UPDATE budget_goals
		SET target_balance = $2, current_balance = $3, goal_met = $4, alert_sent = $5, start_date = $6, end_date = $7
		WHERE id = $1`,
		goal.ID, goal.TargetBalance, goal.CurrentBalance, goal.GoalMet, goal.AlertSent, goal.StartDate, goal.EndDate)
}

func recurringArg(r *model.RecurringType) any {
	if r == nil {
		return nil
	}
	return string(*r)
}
