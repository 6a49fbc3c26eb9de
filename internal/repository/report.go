package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ReportRepository holds the report catalog, dashboards and aggregate queries.
// Aggregates cover the transactions visible to the user.
type ReportRepository interface {
	ListReports(ctx context.Context) ([]model.Report, error)
	GetReportByName(ctx context.Context, name string) (*model.Report, error)
	GetReport(ctx context.Context, id int) (*model.Report, error)

	ListDashboards(ctx context.Context, userID uuid.UUID) ([]model.ReportDashboard, error)
	GetDashboard(ctx context.Context, userID, id uuid.UUID) (*model.ReportDashboard, error)
	CreateDashboard(ctx context.Context, d *model.ReportDashboard) error
	UpdateDashboard(ctx context.Context, d *model.ReportDashboard) error
	DeleteDashboard(ctx context.Context, userID, id uuid.UUID) error

	Totals(ctx context.Context, userID uuid.UUID, filter model.TransactionFilter) (TypeTotals, error)
	SpendingByCategory(ctx context.Context, userID uuid.UUID, filter model.TransactionFilter) ([]model.CategoryTotal, error)
	DailyTotals(ctx context.Context, userID uuid.UUID, filter model.TransactionFilter) ([]model.DailyTotal, error)
	// TableRows returns a page of transactions with running totals computed
	// over the whole filtered set in (date, created_at) order.
	TableRows(ctx context.Context, userID uuid.UUID, filter model.TransactionFilter) ([]model.TableRow, error)
}

type TypeTotals struct {
	Income  decimal.Decimal `db:"income"`
	Expense decimal.Decimal `db:"expense"`
	Count   int64           `db:"count"`
}

type reportRepository struct {
	db DBTX
}

func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{db: pool}
}

func (r *reportRepository) ListReports(ctx context.Context) ([]model.Report, error) {
	return getMany[model.Report](ctx, r.db, "Report", `SELECT id, name, display_name FROM reports ORDER BY id`)
}

func (r *reportRepository) GetReportByName(ctx context.Context, name string) (*model.Report, error) {
	return getOne[model.Report](ctx, r.db, "Report", `SELECT id, name, display_name FROM reports WHERE name = $1`, name)
}

func (r *reportRepository) GetReport(ctx context.Context, id int) (*model.Report, error) {
	return getOne[model.Report](ctx, r.db, "Report", `SELECT id, name, display_name FROM reports WHERE id = $1`, id)
}

const dashboardQuery = `
	SELECT d.id, d.user_id, d.report_id, r.name AS report_name, d.x_size, d.y_size, d.position, d.created_at
	FROM report_dashboards d
	JOIN reports r ON r.id = d.report_id`

func (r *reportRepository) ListDashboards(ctx context.Context, userID uuid.UUID) ([]model.ReportDashboard, error) {
	return getMany[model.ReportDashboard](ctx, r.db, "ReportDashboard",
		dashboardQuery+` WHERE d.user_id = $1 ORDER BY d.position, d.created_at`, userID)
}

func (r *reportRepository) GetDashboard(ctx context.Context, userID, id uuid.UUID) (*model.ReportDashboard, error) {
	return getOne[model.ReportDashboard](ctx, r.db, "ReportDashboard",
		dashboardQuery+` WHERE d.id = $1 AND d.user_id = $2`, id, userID)
}

func (r *reportRepository) CreateDashboard(ctx context.Context, d *model.ReportDashboard) error {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, `
		INSERT INTO report_dashboards (user_id, report_id, x_size, y_size, position)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		d.UserID, d.ReportID, string(d.XSize), string(d.YSize), d.Position).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert report dashboard: %w", err)
	}
	created, err := r.GetDashboard(ctx, d.UserID, id)
	if err != nil {
		return err
	}
	*d = *created
	return nil
}

func (r *reportRepository) UpdateDashboard(ctx context.Context, d *model.ReportDashboard) error {
	if err := execOne(ctx, r.db, "ReportDashboard", `
		UPDATE report_dashboards SET report_id = $3, x_size = $4, y_size = $5, position = $6
		WHERE id = $1 AND user_id = $2`,
		d.ID, d.UserID, d.ReportID, string(d.XSize), string(d.YSize), d.Position); err != nil {
		return err
	}
	updated, err := r.GetDashboard(ctx, d.UserID, d.ID)
	if err != nil {
		return err
	}
	*d = *updated
	return nil
}

func (r *reportRepository) DeleteDashboard(ctx context.Context, userID, id uuid.UUID) error {
	return execOne(ctx, r.db, "ReportDashboard",
		`DELETE FROM report_dashboards WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *reportRepository) Totals(ctx context.Context, userID uuid.UUID, filter model.TransactionFilter) (TypeTotals, error) {
	f := newFilterClause(userID, filter)
	rows, err := getMany[TypeTotals](ctx, r.db, "Transaction", `
		SELECT
			COALESCE(SUM(t.amount) FILTER (WHERE t.transaction_type = 'income'), 0) AS income,
			COALESCE(SUM(t.amount) FILTER (WHERE t.transaction_type = 'expense'), 0) AS expense,
			COUNT(*) AS count
		FROM transactions t`+f.where(), f.args...)
	if err != nil {
		return TypeTotals{}, err
	}
	if len(rows) == 0 {
		return TypeTotals{Income: decimal.Zero, Expense: decimal.Zero}, nil
	}
	return rows[0], nil
}

func (r *reportRepository) SpendingByCategory(ctx context.Context, userID uuid.UUID, filter model.TransactionFilter) ([]model.CategoryTotal, error) {
	expense := model.TransactionTypeExpense
	filter.Type = &expense
	f := newFilterClause(userID, filter)
	return getMany[model.CategoryTotal](ctx, r.db, "Category", `
		SELECT c.id AS category_id, c.name AS category_name, SUM(t.amount) AS total, COUNT(*) AS count
		FROM transactions t
		JOIN categories c ON c.id = t.category_id`+f.where()+`
		GROUP BY c.id, c.name
		ORDER BY total DESC, c.name`, f.args...)
}

func (r *reportRepository) DailyTotals(ctx context.Context, userID uuid.UUID, filter model.TransactionFilter) ([]model.DailyTotal, error) {
	f := newFilterClause(userID, filter)
	return getMany[model.DailyTotal](ctx, r.db, "Transaction", `
		SELECT
			t.date AS date,
			COALESCE(SUM(t.amount) FILTER (WHERE t.transaction_type = 'income'), 0) AS income,
			COALESCE(SUM(t.amount) FILTER (WHERE t.transaction_type = 'expense'), 0) AS expense
		FROM transactions t`+f.where()+`
		GROUP BY t.date
		ORDER BY t.date`, f.args...)
}

func (r *reportRepository) TableRows(ctx context.Context, userID uuid.UUID, filter model.TransactionFilter) ([]model.TableRow, error) {
	f := newFilterClause(userID, filter)
	inner := `
		SELECT ` + transactionColumns + `,
			c.name AS category_name,
			a.name AS account_name,
			CASE WHEN t.transaction_type = 'income' THEN t.amount ELSE -t.amount END AS signed_amount,
			SUM(CASE WHEN t.transaction_type = 'income' THEN t.amount ELSE -t.amount END)
				OVER (ORDER BY t.date, t.created_at, t.id) AS running_total
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		JOIN accounts a ON a.id = t.account_id` + f.where()
	query := `SELECT * FROM (` + inner + `) table_rows ORDER BY date, created_at, id` + f.page(filter.Limit, filter.Offset)
	return getMany[model.TableRow](ctx, r.db, "Transaction", query, f.args...)
}
