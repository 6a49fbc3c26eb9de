package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// AccountRepository reads accounts visible to a user: their own and those
// shared with one of their families. Creation and balance changes go
// through the LedgerStore.
type AccountRepository interface {
	GetVisible(ctx context.Context, userID, id uuid.UUID) (*model.Account, error)
	ListVisible(ctx context.Context, userID uuid.UUID) ([]model.Account, error)
	Update(ctx context.Context, account *model.Account) error
	History(ctx context.Context, accountID uuid.UUID, start, end *model.Date) ([]model.BalanceHistory, error)
	// BalanceOn returns the latest history balance dated on or before date,
	// or nil when there is none.
	BalanceOn(ctx context.Context, accountID uuid.UUID, date model.Date) (*decimal.Decimal, error)
	TotalBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}

type accountRepository struct {
	db DBTX
}

func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{db: pool}
}

const accountColumns = `id, user_id, family_id, name, balance, created_at, updated_at`

// visibleTo is the row level visibility predicate of accounts and
// transactions for the user bound to placeholder $n.
func visibleTo(alias string, n int) string {
	return fmt.Sprintf(`(%[1]s.user_id = $%[2]d OR %[1]s.family_id IN (SELECT family_id FROM family_members WHERE user_id = $%[2]d))`, alias, n)
}

func (r *accountRepository) GetVisible(ctx context.Context, userID, id uuid.UUID) (*model.Account, error) {
	return getOne[model.Account](ctx, r.db, "Account", `
		SELECT `+accountColumns+` FROM accounts a
		WHERE a.id = $2 AND `+visibleTo("a", 1), userID, id)
}

func (r *accountRepository) ListVisible(ctx context.Context, userID uuid.UUID) ([]model.Account, error) {
	return getMany[model.Account](ctx, r.db, "Account", `
		SELECT `+accountColumns+` FROM accounts a
		WHERE `+visibleTo("a", 1)+`
		ORDER BY a.name`, userID)
}

func (r *accountRepository) Update(ctx context.Context, account *model.Account) error {
	updated, err := getOne[model.Account](ctx, r.db, "Account", `
		UPDATE accounts SET name = $2, family_id = $3
		WHERE id = $1
		RETURNING `+accountColumns,
		account.ID, account.Name, account.FamilyID)
	if err != nil {
		return err
	}
	*account = *updated
	return nil
}

func (r *accountRepository) History(ctx context.Context, accountID uuid.UUID, start, end *model.Date) ([]model.BalanceHistory, error) {
	return getMany[model.BalanceHistory](ctx, r.db, "BalanceHistory", `
		SELECT id, account_id, transaction_id, balance, date, created_at
		FROM balance_history
		WHERE account_id = $1
		  AND ($2::date IS NULL OR date >= $2)
		  AND ($3::date IS NULL OR date <= $3)
		ORDER BY date, id`, accountID, start, end)
}

func (r *accountRepository) BalanceOn(ctx context.Context, accountID uuid.UUID, date model.Date) (*decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT balance FROM balance_history
		WHERE account_id = $1 AND date <= $2
		ORDER BY date DESC, id DESC
		LIMIT 1`, accountID, date).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query balance on date: %w", err)
	}
	return &balance, nil
}

func (r *accountRepository) TotalBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(a.balance), 0) FROM accounts a WHERE `+visibleTo("a", 1), userID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("query total balance: %w", err)
	}
	return total, nil
}
