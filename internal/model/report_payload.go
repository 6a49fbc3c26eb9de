package model

import (
	"github.com/deppfellow/budgetbud/internal/validation"
	"github.com/google/uuid"
)

// ReportQuery selects the transactions a report aggregates.
type ReportQuery struct {
	Start      *Date      `query:"start"`
	End        *Date      `query:"end"`
	AccountID  *uuid.UUID `query:"account_id"`
	BudgetID   *uuid.UUID `query:"budget_id"`
	CategoryID *uuid.UUID `query:"category_id"`
	Interval   Interval   `query:"interval" validate:"omitempty,oneof=day week month year"`
}

func (q *ReportQuery) Validate() error {
	if err := validation.Struct(q); err != nil {
		return err
	}
	return checkRange(q.Start, q.End, "start", "end")
}

// Filter returns the unpaginated filter of the query.
func (q *ReportQuery) Filter() TransactionFilter {
	return TransactionFilter{
		Start:      q.Start,
		End:        q.End,
		AccountID:  q.AccountID,
		BudgetID:   q.BudgetID,
		CategoryID: q.CategoryID,
	}
}

type ChartPayload struct {
	ReportQuery
	Name string `param:"name" json:"-" validate:"required,max=50"`
}

func (p *ChartPayload) Validate() error {
	if err := validation.Struct(p); err != nil {
		return err
	}
	return checkRange(p.Start, p.End, "start", "end")
}

type TablePayload struct {
	ReportQuery
	Page     int `query:"page" validate:"gte=0"`
	PageSize int `query:"page_size" validate:"gte=0,max=500"`
}

func (p *TablePayload) Validate() error {
	if err := validation.Struct(p); err != nil {
		return err
	}
	return checkRange(p.Start, p.End, "start", "end")
}

// Window returns the 1-based page and its size, applying defaults.
func (p *TablePayload) Window() (page, size int) {
	page, size = p.Page, p.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	return page, size
}

type CreateDashboardPayload struct {
	ReportID int        `json:"report_id" validate:"required,gt=0"`
	XSize    WidgetSize `json:"x_size" validate:"required,oneof=33 66 100"`
	YSize    WidgetSize `json:"y_size" validate:"required,oneof=33 66 100"`
	Position int        `json:"position" validate:"gte=0"`
}

func (p *CreateDashboardPayload) Validate() error {
	return validation.Struct(p)
}

type UpdateDashboardPayload struct {
	ID       uuid.UUID   `param:"id" json:"-" validate:"required"`
	XSize    *WidgetSize `json:"x_size" validate:"omitempty,oneof=33 66 100"`
	YSize    *WidgetSize `json:"y_size" validate:"omitempty,oneof=33 66 100"`
	Position *int        `json:"position" validate:"omitempty,gte=0"`
}

func (p *UpdateDashboardPayload) Validate() error {
	return validation.Struct(p)
}
