package model

import (
	"github.com/deppfellow/budgetbud/internal/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Listing bounds for transaction pages.
const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// checkRange reports an end date before the start date.
func checkRange(start, end *Date, startField, endField string) error {
	if start != nil && end != nil && end.Before(*start) {
		return validation.CustomValidationErrors{{Field: endField, Message: "must not be before " + startField}}
	}
	return nil
}

type CategoryPayload struct {
	ID   uuid.UUID `param:"id" json:"-"`
	Name string    `json:"name" validate:"required,max=50"`
}

func (p *CategoryPayload) Validate() error {
	return validation.Struct(p)
}

type CreateBudgetPayload struct {
	Name        string          `json:"name" validate:"required,max=100"`
	TotalAmount decimal.Decimal `json:"total_amount" validate:"gte=0,money"`
}

func (p *CreateBudgetPayload) Validate() error {
	return validation.Struct(p)
}

type UpdateBudgetPayload struct {
	ID          uuid.UUID        `param:"id" json:"-" validate:"required"`
	Name        *string          `json:"name" validate:"omitempty,min=1,max=100"`
	TotalAmount *decimal.Decimal `json:"total_amount" validate:"omitempty,gte=0,money"`
}

func (p *UpdateBudgetPayload) Validate() error {
	return validation.Struct(p)
}

// CreateGoalPayload creates a budget goal (ParentID is the budget) or a
// savings goal (ParentID is the account).
type CreateGoalPayload struct {
	ParentID      uuid.UUID       `param:"id" json:"-" validate:"required"`
	TargetBalance decimal.Decimal `json:"target_balance" validate:"money"`
	StartDate     *Date           `json:"start_date"`
	EndDate       *Date           `json:"end_date"`
}

func (p *CreateGoalPayload) Validate() error {
	if err := validation.Struct(p); err != nil {
		return err
	}
	return checkRange(p.StartDate, p.EndDate, "start_date", "end_date")
}

type UpdateGoalPayload struct {
	ID            uuid.UUID        `param:"id" json:"-" validate:"required"`
	TargetBalance *decimal.Decimal `json:"target_balance" validate:"omitempty,money"`
	StartDate     *Date            `json:"start_date"`
	EndDate       *Date            `json:"end_date"`
}

func (p *UpdateGoalPayload) Validate() error {
	if err := validation.Struct(p); err != nil {
		return err
	}
	return checkRange(p.StartDate, p.EndDate, "start_date", "end_date")
}

type CreateAccountPayload struct {
	Name     string          `json:"name" validate:"required,max=100"`
	Balance  decimal.Decimal `json:"balance" validate:"money"`
	FamilyID *uuid.UUID      `json:"family_id"`
	// Date of the opening balance snapshot; defaults to today.
	Date *Date `json:"date"`
}

func (p *CreateAccountPayload) Validate() error {
	return validation.Struct(p)
}

type UpdateAccountPayload struct {
	ID       uuid.UUID  `param:"id" json:"-" validate:"required"`
	Name     *string    `json:"name" validate:"omitempty,min=1,max=100"`
	FamilyID *uuid.UUID `json:"family_id"`
	// RemoveFamily stops sharing the account.
	RemoveFamily bool `json:"remove_family"`
}

func (p *UpdateAccountPayload) Validate() error {
	if err := validation.Struct(p); err != nil {
		return err
	}
	if p.RemoveFamily && p.FamilyID != nil {
		return validation.CustomValidationErrors{{Field: "family_id", Message: "cannot be set together with remove_family"}}
	}
	return nil
}

type BalanceHistoryPayload struct {
	ID    uuid.UUID `param:"id" json:"-" validate:"required"`
	Start *Date     `query:"start"`
	End   *Date     `query:"end"`
}

func (p *BalanceHistoryPayload) Validate() error {
	if err := validation.Struct(p); err != nil {
		return err
	}
	return checkRange(p.Start, p.End, "start", "end")
}

type BalanceAtPayload struct {
	ID   uuid.UUID `param:"id" json:"-" validate:"required"`
	Date *Date     `query:"date"`
}

func (p *BalanceAtPayload) Validate() error {
	return validation.Struct(p)
}

// TransactionPayload is the body of transaction create and update requests.
type TransactionPayload struct {
	ID              uuid.UUID       `param:"id" json:"-"`
	AccountID       uuid.UUID       `json:"account_id" validate:"required"`
	BudgetID        uuid.UUID       `json:"budget_id" validate:"required"`
	CategoryID      uuid.UUID       `json:"category_id" validate:"required"`
	Date            Date            `json:"date" validate:"required"`
	Amount          decimal.Decimal `json:"amount" validate:"gt=0,money"`
	TransactionType TransactionType `json:"transaction_type" validate:"required,oneof=income expense"`
	Description     string          `json:"description" validate:"max=1000"`
	IsRecurring     bool            `json:"is_recurring"`
	RecurringType   *RecurringType  `json:"recurring_type" validate:"omitempty,oneof=daily weekly monthly yearly one-time"`
	NextOccurrence  *Date           `json:"next_occurrence"`
}

func (p *TransactionPayload) Validate() error {
	if err := validation.Struct(p); err != nil {
		return err
	}
	if p.IsRecurring && p.RecurringType == nil {
		return validation.CustomValidationErrors{{Field: "recurring_type", Message: "is required for recurring transactions"}}
	}
	if p.NextOccurrence != nil && !p.NextOccurrence.After(p.Date) {
		return validation.CustomValidationErrors{{Field: "next_occurrence", Message: "must be after date"}}
	}
	return nil
}

// Apply copies the payload onto t. Without an explicit next occurrence, a
// transaction that keeps its recurrence series keeps its pending occurrence.
func (p *TransactionPayload) Apply(t *Transaction) {
	prev := *t
	t.AccountID = p.AccountID
	t.BudgetID = p.BudgetID
	t.CategoryID = p.CategoryID
	t.Date = p.Date
	t.Amount = p.Amount
	t.TransactionType = p.TransactionType
	t.Description = p.Description
	t.IsRecurring = p.IsRecurring
	t.RecurringType = nil
	t.NextOccurrence = nil
	if p.IsRecurring {
		t.RecurringType = p.RecurringType
		t.NextOccurrence = p.NextOccurrence
	}
	if t.NextOccurrence == nil && t.SameSchedule(&prev) {
		t.NextOccurrence = prev.NextOccurrence
	}
	t.ScheduleNext()
}

// TransactionQuery holds the listing filters of transactions and reports.
type TransactionQuery struct {
	Start      *Date           `query:"start"`
	End        *Date           `query:"end"`
	Type       TransactionType `query:"type" validate:"omitempty,oneof=income expense"`
	AccountID  *uuid.UUID      `query:"account_id"`
	BudgetID   *uuid.UUID      `query:"budget_id"`
	CategoryID *uuid.UUID      `query:"category_id"`
	Limit      int             `query:"limit" validate:"gte=0,max=500"`
	Offset     int             `query:"offset" validate:"gte=0"`
}

func (q *TransactionQuery) Validate() error {
	if err := validation.Struct(q); err != nil {
		return err
	}
	return checkRange(q.Start, q.End, "start", "end")
}

// Filter converts the query to a repository filter with a bounded page size.
func (q *TransactionQuery) Filter() TransactionFilter {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	var typ *TransactionType
	if q.Type != "" {
		t := q.Type
		typ = &t
	}
	return TransactionFilter{
		Start:      q.Start,
		End:        q.End,
		Type:       typ,
		AccountID:  q.AccountID,
		BudgetID:   q.BudgetID,
		CategoryID: q.CategoryID,
		Limit:      limit,
		Offset:     q.Offset,
	}
}
