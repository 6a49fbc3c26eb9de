package handler

import (
	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/deppfellow/budgetbud/internal/server"
	"github.com/deppfellow/budgetbud/internal/service"
	"github.com/labstack/echo/v4"
)

const (
	ReportPDFFilename    = "budgetbud-report.pdf"
	ReportPDFContentType = "application/pdf"
)

type ReportHandler struct {
	Handler
	reportService *service.ReportService
}

func NewReportHandler(s *server.Server, reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{
		Handler:       NewHandler(s),
		reportService: reportService,
	}
}

func (h *ReportHandler) Catalog(c echo.Context, _ *model.EmptyPayload) ([]model.Report, error) {
	return h.reportService.Catalog(c.Request().Context())
}

func (h *ReportHandler) Dashboards(c echo.Context, _ *model.EmptyPayload) ([]model.ReportDashboard, error) {
	return h.reportService.Dashboards(c.Request().Context(), userID(c))
}

func (h *ReportHandler) CreateDashboard(c echo.Context, payload *model.CreateDashboardPayload) (*model.ReportDashboard, error) {
	return h.reportService.CreateDashboard(c.Request().Context(), userID(c), payload)
}

func (h *ReportHandler) UpdateDashboard(c echo.Context, payload *model.UpdateDashboardPayload) (*model.ReportDashboard, error) {
	return h.reportService.UpdateDashboard(c.Request().Context(), userID(c), payload)
}

func (h *ReportHandler) DeleteDashboard(c echo.Context, payload *model.IDPayload) error {
	return h.reportService.DeleteDashboard(c.Request().Context(), userID(c), payload.ID)
}

func (h *ReportHandler) Summary(c echo.Context, query *model.ReportQuery) (*model.Summary, error) {
	return h.reportService.Summary(c.Request().Context(), userID(c), query)
}

func (h *ReportHandler) SpendingByCategory(c echo.Context, query *model.ReportQuery) ([]model.CategoryTotal, error) {
	return h.reportService.SpendingByCategory(c.Request().Context(), userID(c), query)
}

func (h *ReportHandler) IncomeVsExpense(c echo.Context, query *model.ReportQuery) ([]model.Bucket, error) {
	return h.reportService.IncomeVsExpense(c.Request().Context(), userID(c), query)
}

func (h *ReportHandler) BudgetOverview(c echo.Context, _ *model.EmptyPayload) ([]model.BudgetOverview, error) {
	return h.reportService.BudgetOverview(c.Request().Context(), userID(c))
}

func (h *ReportHandler) BalanceHistory(c echo.Context, query *model.ReportQuery) ([]model.BalanceHistory, error) {
	return h.reportService.BalanceHistory(c.Request().Context(), userID(c), query)
}

func (h *ReportHandler) Chart(c echo.Context, payload *model.ChartPayload) (*model.Chart, error) {
	return h.reportService.Chart(c.Request().Context(), userID(c), payload)
}

func (h *ReportHandler) Table(c echo.Context, payload *model.TablePayload) (*model.Table, error) {
	return h.reportService.Table(c.Request().Context(), userID(c), payload)
}

func (h *ReportHandler) PDF(c echo.Context, query *model.ReportQuery) ([]byte, error) {
	return h.reportService.PDF(c.Request().Context(), userID(c), query)
}
