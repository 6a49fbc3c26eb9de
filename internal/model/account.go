package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Account struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserID    uuid.UUID       `json:"user_id" db:"user_id"`
	FamilyID  *uuid.UUID      `json:"family_id" db:"family_id"`
	Name      string          `json:"name" db:"name"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// BalanceHistory is an append-only snapshot of an account balance.
type BalanceHistory struct {
	ID            int64           `json:"id" db:"id"`
	AccountID     uuid.UUID       `json:"account_id" db:"account_id"`
	TransactionID *uuid.UUID      `json:"transaction_id" db:"transaction_id"`
	Balance       decimal.Decimal `json:"balance" db:"balance"`
	Date          Date            `json:"date" db:"date"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// SortHistory orders snapshots by date, then by insertion.
func SortHistory(history []BalanceHistory) {
	sort.SliceStable(history, func(i, j int) bool {
		if !history[i].Date.Equal(history[j].Date) {
			return history[i].Date.Before(history[j].Date)
		}
		return history[i].ID < history[j].ID
	})
}

// BalanceAt returns the balance of the latest snapshot dated on or before
// date. Without such a snapshot it falls back to current.
func BalanceAt(history []BalanceHistory, date Date, current decimal.Decimal) decimal.Decimal {
	var (
		found  bool
		latest BalanceHistory
	)
	for _, h := range history {
		if h.Date.After(date) {
			continue
		}
		if !found || h.Date.After(latest.Date) || (h.Date.Equal(latest.Date) && h.ID > latest.ID) {
			latest = h
			found = true
		}
	}
	if !found {
		return current
	}
	return latest.Balance
}

type SavingsGoal struct {
	ID        uuid.UUID `json:"id" db:"id"`
	AccountID uuid.UUID `json:"account_id" db:"account_id"`
	GoalState
}

// AccountBalance is the balance of an account on a given day.
type AccountBalance struct {
	AccountID uuid.UUID       `json:"account_id"`
	Date      Date            `json:"date"`
	Balance   decimal.Decimal `json:"balance"`
}
