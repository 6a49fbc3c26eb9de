// Package repository persists domain models in PostgreSQL (and revoked
// tokens in Redis).
//
// Each concern is described by an interface consumed by the service layer;
// the pgx implementations live next to it. Row not found is reported as an
// *errs.HTTPError 404 so handlers can return it unchanged.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/budgetbud/internal/errs"
	"github.com/deppfellow/budgetbud/internal/server"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner starts database transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Repositories struct {
	Users       UserRepository
	Families    FamilyRepository
	Invitations InvitationRepository
	Categories  CategoryRepository
	Budgets     BudgetRepository
	Accounts    AccountRepository
	Goals       GoalRepository
	Txns        TransactionRepository
	Reports     ReportRepository
	Ledger      LedgerStore
	Tokens      TokenStore
}

func NewRepositories(s *server.Server) *Repositories {
	pool := s.DB.Pool
	return &Repositories{
		Users:       NewUserRepository(pool),
		Families:    NewFamilyRepository(pool),
		Invitations: NewInvitationRepository(pool),
		Categories:  NewCategoryRepository(pool),
		Budgets:     NewBudgetRepository(pool),
		Accounts:    NewAccountRepository(pool),
		Goals:       NewGoalRepository(pool),
		Txns:        NewTransactionRepository(pool),
		Reports:     NewReportRepository(pool),
		Ledger:      NewLedgerStore(pool),
		Tokens:      NewRedisTokenStore(s.Redis),
	}
}

// inTx runs fn inside a transaction, committing on success.
func inTx(ctx context.Context, db TxBeginner, fn func(tx pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, db, fn)
}

// getOne runs a query expected to return a single row scanned into T.
func getOne[T any](ctx context.Context, db DBTX, entity, sql string, args ...any) (*T, error) {
	rows, _ := db.Query(ctx, sql, args...)
	item, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound(entity)
		}
		return nil, fmt.Errorf("query %s: %w", entity, err)
	}
	return item, nil
}

// getMany runs a query and scans every row into T. It never returns a nil slice.
func getMany[T any](ctx context.Context, db DBTX, entity, sql string, args ...any) ([]T, error) {
	rows, _ := db.Query(ctx, sql, args...)
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", entity, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// execOne runs a statement that must affect exactly one row.
func execOne(ctx context.Context, db DBTX, entity, sql string, args ...any) error {
	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("exec %s: %w", entity, err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound(entity)
	}
	return nil
}
