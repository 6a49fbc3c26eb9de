package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Report struct {
	ID          int    `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	DisplayName string `json:"display_name" db:"display_name"`
}

// Built-in report names, seeded by migrations.
const (
	ReportSummary            = "summary"
	ReportSpendingByCategory = "spending_by_category"
	ReportIncomeVsExpense    = "income_vs_expense"
	ReportBudgetOverview     = "budget_overview"
	ReportBalanceHistory     = "balance_history"
)

type WidgetSize string

const (
	WidgetSmall  WidgetSize = "33"
	WidgetMedium WidgetSize = "66"
	WidgetLarge  WidgetSize = "100"
)

type ReportDashboard struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	ReportID   int        `json:"report_id" db:"report_id"`
	ReportName string     `json:"report_name" db:"report_name"`
	XSize      WidgetSize `json:"x_size" db:"x_size"`
	YSize      WidgetSize `json:"y_size" db:"y_size"`
	Position   int        `json:"position" db:"position"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

type Interval string

const (
	IntervalDay   Interval = "day"
	IntervalWeek  Interval = "week"
	IntervalMonth Interval = "month"
	IntervalYear  Interval = "year"
)

func (i Interval) Valid() bool {
	switch i {
	case IntervalDay, IntervalWeek, IntervalMonth, IntervalYear:
		return true
	}
	return false
}

// Truncate returns the first day of the bucket containing d. Weeks start on Monday.
func (i Interval) Truncate(d Date) Date {
	switch i {
	case IntervalWeek:
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDays(-offset)
	case IntervalMonth:
		return NewDate(d.Year(), d.Month(), 1)
	case IntervalYear:
		return NewDate(d.Year(), time.January, 1)
	default:
		return d
	}
}

// Next returns the first day of the bucket after the one starting at start.
func (i Interval) Next(start Date) Date {
	switch i {
	case IntervalWeek:
		return start.AddDays(7)
	case IntervalMonth:
		return start.AddMonths(1)
	case IntervalYear:
		return start.AddYears(1)
	default:
		return start.AddDays(1)
	}
}

// Label formats a bucket start for chart axes.
func (i Interval) Label(start Date) string {
	switch i {
	case IntervalWeek:
		year, week := start.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case IntervalMonth:
		return start.Format("2006-01")
	case IntervalYear:
		return start.Format("2006")
	default:
		return start.String()
	}
}

// DailyTotal is the income and expense sum of one day.
type DailyTotal struct {
	Date    Date            `json:"date" db:"date"`
	Income  decimal.Decimal `json:"income" db:"income"`
	Expense decimal.Decimal `json:"expense" db:"expense"`
}

type Bucket struct {
	Label   string          `json:"label"`
	Start   Date            `json:"start"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// MaxBuckets bounds the size of a bucketed series.
const MaxBuckets = 1000

// BucketTotals groups daily totals into consecutive buckets covering
// [start, end]. Buckets without transactions are present with zero sums.
func BucketTotals(totals []DailyTotal, start, end Date, interval Interval) ([]Bucket, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	if !interval.Valid() {
		return nil, fmt.Errorf("invalid interval %q", interval)
	}

	var buckets []Bucket
	index := map[string]int{}
	for cur := interval.Truncate(start); !cur.After(end); cur = interval.Next(cur) {
		if len(buckets) == MaxBuckets {
			return nil, fmt.Errorf("range produces more than %d buckets", MaxBuckets)
		}
		index[cur.String()] = len(buckets)
		buckets = append(buckets, Bucket{
			Label:   interval.Label(cur),
			Start:   cur,
			Income:  decimal.Zero,
			Expense: decimal.Zero,
			Net:     decimal.Zero,
		})
	}

	for _, t := range totals {
		if t.Date.Before(start) || t.Date.After(end) {
			continue
		}
		i, ok := index[interval.Truncate(t.Date).String()]
		if !ok {
			continue
		}
		b := &buckets[i]
		b.Income = b.Income.Add(t.Income)
		b.Expense = b.Expense.Add(t.Expense)
		b.Net = b.Income.Sub(b.Expense)
	}

	return buckets, nil
}

// CategoryTotal is the expense sum of one category.
type CategoryTotal struct {
	CategoryID   uuid.UUID       `json:"category_id" db:"category_id"`
	CategoryName string          `json:"category_name" db:"category_name"`
	Total        decimal.Decimal `json:"total" db:"total"`
	Count        int64           `json:"count" db:"count"`
}

// Summary is the headline of a period.
type Summary struct {
	Start        *Date           `json:"start"`
	End          *Date           `json:"end"`
	Income       decimal.Decimal `json:"income"`
	Expense      decimal.Decimal `json:"expense"`
	Net          decimal.Decimal `json:"net"`
	Transactions int64           `json:"transactions"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	TopCategory  *CategoryTotal  `json:"top_category"`
}

// BudgetOverview is one row of the budget report.
type BudgetOverview struct {
	BudgetID       uuid.UUID       `json:"budget_id"`
	Name           string          `json:"name"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Spent          decimal.Decimal `json:"spent"`
	PercentUsed    decimal.Decimal `json:"percent_used"`
	GoalsMet       int             `json:"goals_met"`
	GoalsTotal     int             `json:"goals_total"`
}

// ChartDataset is one series of a chart.
type ChartDataset struct {
	Label string            `json:"label"`
	Data  []decimal.Decimal `json:"data"`
}

// Chart is a labels + datasets series consumable by chart libraries.
type Chart struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// TableRow is a transaction with its running net total.
type TableRow struct {
	Transaction
	CategoryName string          `json:"category_name" db:"category_name"`
	AccountName  string          `json:"account_name" db:"account_name"`
	SignedAmount decimal.Decimal `json:"signed_amount" db:"signed_amount"`
	RunningTotal decimal.Decimal `json:"running_total" db:"running_total"`
}

// Page is a window of a listing.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPage computes TotalPages.
func NewPage[T any](items []T, page, pageSize int, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Page[T]{Items: items, Page: page, PageSize: pageSize, Total: total, TotalPages: pages}
}

// Table is the paginated transaction export.
type Table struct {
	Page[TableRow]
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}
