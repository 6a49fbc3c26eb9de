package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

type RecurringType string

const (
	RecurringDaily   RecurringType = "daily"
	RecurringWeekly  RecurringType = "weekly"
	RecurringMonthly RecurringType = "monthly"
	RecurringYearly  RecurringType = "yearly"
	RecurringOneTime RecurringType = "one-time"
)

// Next returns the occurrence after d, or nil when the type does not repeat.
func (r RecurringType) Next(d Date) *Date {
	return r.After(d, d)
}

// After returns the first occurrence of the series anchored at anchor that
// falls strictly after d, or nil when the type does not repeat. Months and
// years count from anchor, so a series on the 31st returns to the 31st after
// a short month.
func (r RecurringType) After(anchor, d Date) *Date {
	var next Date
	switch r {
	case RecurringDaily:
		next = d.AddDays(1)
		if !next.After(anchor) {
			next = anchor.AddDays(1)
		}
	case RecurringWeekly:
		k := 1
		if d.After(anchor) {
			k = daysBetween(anchor, d)/7 + 1
		}
		next = anchor.AddDays(7 * k)
	case RecurringMonthly, RecurringYearly:
		step := 1
		if r == RecurringYearly {
			step = 12
		}
		k := 1
		if d.After(anchor) {
			k = max(monthsBetween(anchor, d)/step, 1)
			for !anchor.AddMonths(k * step).After(d) {
				k++
			}
		}
		next = anchor.AddMonths(k * step)
	default:
		return nil
	}
	return &next
}

type Transaction struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	UserID            uuid.UUID       `json:"user_id" db:"user_id"`
	FamilyID          *uuid.UUID      `json:"family_id" db:"family_id"`
	AccountID         uuid.UUID       `json:"account_id" db:"account_id"`
	BudgetID          uuid.UUID       `json:"budget_id" db:"budget_id"`
	CategoryID        uuid.UUID       `json:"category_id" db:"category_id"`
	Date              Date            `json:"date" db:"date"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	TransactionType   TransactionType `json:"transaction_type" db:"transaction_type"`
	Description       string          `json:"description" db:"description"`
	IsRecurring       bool            `json:"is_recurring" db:"is_recurring"`
	RecurringType     *RecurringType  `json:"recurring_type" db:"recurring_type"`
	NextOccurrence    *Date           `json:"next_occurrence" db:"next_occurrence"`
	RecurringParentID *uuid.UUID      `json:"recurring_parent_id" db:"recurring_parent_id"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// Delta is the signed effect on balances: +amount for income, -amount for expense.
func (t *Transaction) Delta() (decimal.Decimal, error) {
	switch t.TransactionType {
	case TransactionTypeIncome:
		return t.Amount, nil
	case TransactionTypeExpense:
		return t.Amount.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("invalid transaction type %q", t.TransactionType)
	}
}

// SameSchedule reports whether t repeats on the same series as o.
func (t *Transaction) SameSchedule(o *Transaction) bool {
	if !t.IsRecurring || !o.IsRecurring || t.RecurringType == nil || o.RecurringType == nil {
		return false
	}
	return *t.RecurringType == *o.RecurringType && t.Date.Equal(o.Date)
}

// ScheduleNext fills NextOccurrence for recurring transactions saved without one.
func (t *Transaction) ScheduleNext() {
	if !t.IsRecurring || t.NextOccurrence != nil || t.RecurringType == nil {
		return
	}
	t.NextOccurrence = t.RecurringType.Next(t.Date)
}

// Occurrence builds the child transaction created for date d of a recurring parent.
func (t *Transaction) Occurrence(d Date) *Transaction {
	parentID := t.ID
	return &Transaction{
		UserID:            t.UserID,
		FamilyID:          t.FamilyID,
		AccountID:         t.AccountID,
		BudgetID:          t.BudgetID,
		CategoryID:        t.CategoryID,
		Date:              d,
		Amount:            t.Amount,
		TransactionType:   t.TransactionType,
		Description:       t.Description,
		RecurringParentID: &parentID,
	}
}

// DueOccurrences lists the dates from NextOccurrence up to and including
// today, and the next occurrence after them. At most limit dates are returned.
func (t *Transaction) DueOccurrences(today Date, limit int) ([]Date, *Date) {
	if !t.IsRecurring || t.RecurringType == nil || t.NextOccurrence == nil {
		return nil, t.NextOccurrence
	}
	var due []Date
	next := t.NextOccurrence
	for next != nil && !next.After(today) && len(due) < limit {
		due = append(due, *next)
		next = t.RecurringType.After(t.Date, *next)
	}
	return due, next
}

// TransactionFilter narrows transaction listings and reports.
type TransactionFilter struct {
	Start      *Date
	End        *Date
	Type       *TransactionType
	AccountID  *uuid.UUID
	BudgetID   *uuid.UUID
	CategoryID *uuid.UUID
	Limit      int
	Offset     int
}
