package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Budget struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	UserID         uuid.UUID       `json:"user_id" db:"user_id"`
	Name           string          `json:"name" db:"name"`
	TotalAmount    decimal.Decimal `json:"total_amount" db:"total_amount"`
	CurrentBalance decimal.Decimal `json:"current_balance" db:"current_balance"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// Retotal changes the envelope size and moves the current balance by the
// same difference, so money already spent stays spent.
func (b *Budget) Retotal(total decimal.Decimal) {
	b.CurrentBalance = b.CurrentBalance.Add(total.Sub(b.TotalAmount))
	b.TotalAmount = total
}

// Spent is how much of the envelope has been used.
func (b *Budget) Spent() decimal.Decimal {
	return b.TotalAmount.Sub(b.CurrentBalance)
}

type BudgetGoal struct {
	ID       uuid.UUID `json:"id" db:"id"`
	BudgetID uuid.UUID `json:"budget_id" db:"budget_id"`
	GoalState
}
