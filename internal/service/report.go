package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/budgetbud/internal/errs"
	"github.com/deppfellow/budgetbud/internal/lib/pdf"
	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/deppfellow/budgetbud/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// MaxExportRows caps the rows of a PDF export.
const MaxExportRows = 5000

var hundred = decimal.NewFromInt(100)

// ReportService aggregates the caller's transactions into reports, chart
// series, tables and PDF exports, and stores the dashboard layout.
type ReportService struct {
	reports  repository.ReportRepository
	accounts repository.AccountRepository
	budgets  repository.BudgetRepository
	goals    repository.GoalRepository
	users    repository.UserRepository
	clock    Clock
}

func NewReportService(
	reports repository.ReportRepository,
	accounts repository.AccountRepository,
	budgets repository.BudgetRepository,
	goals repository.GoalRepository,
	users repository.UserRepository,
	clock Clock,
) *ReportService {
	return &ReportService{
		reports:  reports,
		accounts: accounts,
		budgets:  budgets,
		goals:    goals,
		users:    users,
		clock:    clock,
	}
}

func (s *ReportService) today() model.Date {
	return model.Today(s.clock.now(), s.clock.Location)
}

// Catalog and dashboards

func (s *ReportService) Catalog(ctx context.Context) ([]model.Report, error) {
	return s.reports.ListReports(ctx)
}

func (s *ReportService) Dashboards(ctx context.Context, userID uuid.UUID) ([]model.ReportDashboard, error) {
	widgets, err := s.reports.ListDashboards(ctx, userID)
	if err != nil {
		return nil, err
	}
	if widgets == nil {
		widgets = []model.ReportDashboard{}
	}
	return widgets, nil
}

func (s *ReportService) CreateDashboard(ctx context.Context, userID uuid.UUID, p *model.CreateDashboardPayload) (*model.ReportDashboard, error) {
	report, err := s.reports.GetReport(ctx, p.ReportID)
	if err != nil {
		return nil, err
	}
	widget := &model.ReportDashboard{
		UserID:     userID,
		ReportID:   report.ID,
		ReportName: report.Name,
		XSize:      p.XSize,
		YSize:      p.YSize,
		Position:   p.Position,
	}
	if err := s.reports.CreateDashboard(ctx, widget); err != nil {
		return nil, err
	}
	return widget, nil
}

func (s *ReportService) UpdateDashboard(ctx context.Context, userID uuid.UUID, p *model.UpdateDashboardPayload) (*model.ReportDashboard, error) {
	widget, err := s.reports.GetDashboard(ctx, userID, p.ID)
	if err != nil {
		return nil, err
	}
	if p.XSize != nil {
		widget.XSize = *p.XSize
	}
	if p.YSize != nil {
		widget.YSize = *p.YSize
	}
	if p.Position != nil {
		widget.Position = *p.Position
	}
	if err := s.reports.UpdateDashboard(ctx, widget); err != nil {
		return nil, err
	}
	return widget, nil
}

func (s *ReportService) DeleteDashboard(ctx context.Context, userID, id uuid.UUID) error {
	return s.reports.DeleteDashboard(ctx, userID, id)
}

// Aggregates

// Summary totals income and expense over the query, with the biggest
// spending category and the balance of every visible account.
func (s *ReportService) Summary(ctx context.Context, userID uuid.UUID, q *model.ReportQuery) (*model.Summary, error) {
	filter := q.Filter()

	var (
		totals     repository.TypeTotals
		categories []model.CategoryTotal
		balance    decimal.Decimal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = s.reports.Totals(gctx, userID, filter)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.reports.SpendingByCategory(gctx, userID, filter)
		return err
	})
	g.Go(func() error {
		var err error
		balance, err = s.accounts.TotalBalance(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &model.Summary{
		Start:        q.Start,
		End:          q.End,
		Income:       totals.Income,
		Expense:      totals.Expense,
		Net:          totals.Income.Sub(totals.Expense),
		Transactions: totals.Count,
		TotalBalance: balance,
	}
	if len(categories) > 0 {
		top := categories[0]
		summary.TopCategory = &top
	}
	return summary, nil
}

func (s *ReportService) SpendingByCategory(ctx context.Context, userID uuid.UUID, q *model.ReportQuery) ([]model.CategoryTotal, error) {
	totals, err := s.reports.SpendingByCategory(ctx, userID, q.Filter())
	if err != nil {
		return nil, err
	}
	if totals == nil {
		totals = []model.CategoryTotal{}
	}
	return totals, nil
}

// IncomeVsExpense buckets income and expense by interval (month by default).
// Without a range it covers the year ending today. Empty buckets are kept.
func (s *ReportService) IncomeVsExpense(ctx context.Context, userID uuid.UUID, q *model.ReportQuery) ([]model.Bucket, error) {
	interval := q.Interval
	if interval == "" {
		interval = model.IntervalMonth
	}

	end := s.today()
	if q.End != nil {
		end = *q.End
	}
	start := end.AddYears(-1).AddDays(1)
	if q.Start != nil {
		start = *q.Start
	}
	if end.Before(start) {
		return nil, errs.FieldInvalid("start", "must not be after "+end.String())
	}

	filter := q.Filter()
	filter.Start, filter.End = &start, &end

	daily, err := s.reports.DailyTotals(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	buckets, err := model.BucketTotals(daily, start, end, interval)
	if err != nil {
		return nil, errs.FieldInvalid("interval", err.Error())
	}
	return buckets, nil
}

// BudgetOverview reports how much of each budget is used and how many of
// its goals are met.
func (s *ReportService) BudgetOverview(ctx context.Context, userID uuid.UUID) ([]model.BudgetOverview, error) {
	budgets, err := s.budgets.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]model.BudgetOverview, len(budgets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range budgets {
		b := budgets[i]
		g.Go(func() error {
			goals, err := s.goals.ListBudgetGoals(gctx, b.ID)
			if err != nil {
				return err
			}
			out[i] = overview(&b, goals)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func overview(b *model.Budget, goals []model.BudgetGoal) model.BudgetOverview {
	spent := b.Spent()
	percent := decimal.Zero
	if b.TotalAmount.IsPositive() {
		percent = spent.Div(b.TotalAmount).Mul(hundred).Round(2)
	}

	met := 0
	for _, g := range goals {
		if g.GoalMet {
			met++
		}
	}

	return model.BudgetOverview{
		BudgetID:       b.ID,
		Name:           b.Name,
		TotalAmount:    b.TotalAmount,
		CurrentBalance: b.CurrentBalance,
		Spent:          spent,
		PercentUsed:    percent,
		GoalsMet:       met,
		GoalsTotal:     len(goals),
	}
}

// BalanceHistory returns the snapshots of q.AccountID, which is required.
func (s *ReportService) BalanceHistory(ctx context.Context, userID uuid.UUID, q *model.ReportQuery) ([]model.BalanceHistory, error) {
	if q.AccountID == nil {
		return nil, errs.FieldInvalid("account_id", "is required")
	}
	if _, err := s.accounts.GetVisible(ctx, userID, *q.AccountID); err != nil {
		return nil, err
	}
	history, err := s.accounts.History(ctx, *q.AccountID, q.Start, q.End)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []model.BalanceHistory{}
	}
	return history, nil
}

// Exports

// Chart renders a catalog report as chart series.
func (s *ReportService) Chart(ctx context.Context, userID uuid.UUID, p *model.ChartPayload) (*model.Chart, error) {
	report, err := s.reports.GetReportByName(ctx, p.Name)
	if err != nil {
		return nil, err
	}
	chart := &model.Chart{Name: report.Name, Title: report.DisplayName}
	q := &p.ReportQuery

	switch report.Name {
	case model.ReportSummary:
		summary, err := s.Summary(ctx, userID, q)
		if err != nil {
			return nil, err
		}
		chart.Type = "bar"
		chart.Labels = []string{"Income", "Expense", "Net"}
		chart.Datasets = []model.ChartDataset{
			{Label: "Amount", Data: []decimal.Decimal{summary.Income, summary.Expense, summary.Net}},
		}

	case model.ReportSpendingByCategory:
		totals, err := s.SpendingByCategory(ctx, userID, q)
		if err != nil {
			return nil, err
		}
		chart.Type = "pie"
		data := model.ChartDataset{Label: "Spending", Data: []decimal.Decimal{}}
		chart.Labels = []string{}
		for _, t := range totals {
			chart.Labels = append(chart.Labels, t.CategoryName)
			data.Data = append(data.Data, t.Total)
		}
		chart.Datasets = []model.ChartDataset{data}

	case model.ReportIncomeVsExpense:
		buckets, err := s.IncomeVsExpense(ctx, userID, q)
		if err != nil {
			return nil, err
		}
		chart.Type = "bar"
		income := model.ChartDataset{Label: "Income", Data: []decimal.Decimal{}}
		expense := model.ChartDataset{Label: "Expense", Data: []decimal.Decimal{}}
		net := model.ChartDataset{Label: "Net", Data: []decimal.Decimal{}}
		chart.Labels = []string{}
		for _, b := range buckets {
			chart.Labels = append(chart.Labels, b.Label)
			income.Data = append(income.Data, b.Income)
			expense.Data = append(expense.Data, b.Expense)
			net.Data = append(net.Data, b.Net)
		}
		chart.Datasets = []model.ChartDataset{income, expense, net}

	case model.ReportBudgetOverview:
		budgets, err := s.BudgetOverview(ctx, userID)
		if err != nil {
			return nil, err
		}
		chart.Type = "bar"
		spent := model.ChartDataset{Label: "Spent", Data: []decimal.Decimal{}}
		remaining := model.ChartDataset{Label: "Remaining", Data: []decimal.Decimal{}}
		chart.Labels = []string{}
		for _, b := range budgets {
			chart.Labels = append(chart.Labels, b.Name)
			spent.Data = append(spent.Data, b.Spent)
			remaining.Data = append(remaining.Data, b.CurrentBalance)
		}
		chart.Datasets = []model.ChartDataset{spent, remaining}

	case model.ReportBalanceHistory:
		history, err := s.BalanceHistory(ctx, userID, q)
		if err != nil {
			return nil, err
		}
		chart.Type = "line"
		balance := model.ChartDataset{Label: "Balance", Data: []decimal.Decimal{}}
		chart.Labels = []string{}
		for _, h := range history {
			chart.Labels = append(chart.Labels, h.Date.String())
			balance.Data = append(balance.Data, h.Balance)
		}
		chart.Datasets = []model.ChartDataset{balance}

	default:
		return nil, errs.NewNotFoundError(fmt.Sprintf("Report %q has no chart", report.Name), true, ptr(errs.CodeUnknownReport))
	}

	return chart, nil
}

// Table returns one page of transactions with running totals, plus the
// totals of the whole filtered set.
func (s *ReportService) Table(ctx context.Context, userID uuid.UUID, p *model.TablePayload) (*model.Table, error) {
	page, size := p.Window()

	filter := p.Filter()
	totals, err := s.reports.Totals(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	filter.Limit = size
	filter.Offset = (page - 1) * size
	rows, err := s.reports.TableRows(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	return &model.Table{
		Page:    model.NewPage(rows, page, size, totals.Count),
		Income:  totals.Income,
		Expense: totals.Expense,
		Net:     totals.Income.Sub(totals.Expense),
	}, nil
}

// PDF exports the summary and the transaction table of the query.
func (s *ReportService) PDF(ctx context.Context, userID uuid.UUID, q *model.ReportQuery) ([]byte, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary, err := s.Summary(ctx, userID, q)
	if err != nil {
		return nil, err
	}

	filter := q.Filter()
	filter.Limit = MaxExportRows
	rows, err := s.reports.TableRows(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = pdf.Render(&buf, pdf.Report{
		Title:       "Transaction report",
		Owner:       user.DisplayName(),
		GeneratedAt: s.clock.now().In(s.location()),
		Summary:     *summary,
		Rows:        rows,
	})
	if err != nil {
		return nil, fmt.Errorf("render pdf report: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *ReportService) location() *time.Location {
	if s.clock.Location == nil {
		return time.UTC
	}
	return s.clock.Location
}

func ptr[T any](v T) *T {
	return &v
}
