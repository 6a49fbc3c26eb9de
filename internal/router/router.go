// Package router builds the echo instance: global middleware, system routes
// and the versioned API.
package router

import (
	"net/http"

	"github.com/deppfellow/budgetbud/internal/handler"
	"github.com/deppfellow/budgetbud/internal/middleware"
	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/deppfellow/budgetbud/internal/server"
	"github.com/deppfellow/budgetbud/internal/service"
	"github.com/labstack/echo/v4"
)

func NewRouter(s *server.Server, h *handler.Handlers, services *service.Services) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s, services.Auth)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.BodyLimit(),
	)

	registerSystemRoutes(router, h)

	v1 := router.Group("/api/v1")
	registerAuthRoutes(v1, h, middlewares)

	protected := v1.Group("", middlewares.Auth.RequireAuth)
	registerUserRoutes(protected, h)
	registerFamilyRoutes(protected, h)
	registerLedgerRoutes(protected, h)
	registerReportRoutes(protected, h)

	return router
}

func registerAuthRoutes(v1 *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	auth := v1.Group("/auth")
	a := h.Auth

	limited := auth.Group("", m.RateLimit.Limit())
	limited.POST("/register", handler.Handle(a.Handler, a.Register, http.StatusCreated, &model.RegisterPayload{}))
	limited.POST("/login", handler.Handle(a.Handler, a.Login, http.StatusOK, &model.LoginPayload{}))
	limited.POST("/refresh", handler.Handle(a.Handler, a.Refresh, http.StatusOK, &model.RefreshPayload{}))

	auth.POST("/logout", handler.HandleNoContent(a.Handler, a.Logout, http.StatusNoContent, &model.RefreshPayload{}), m.Auth.RequireAuth)
	auth.GET("/me", handler.Handle(a.Handler, a.Me, http.StatusOK, &model.EmptyPayload{}), m.Auth.RequireAuth)
}

func registerUserRoutes(g *echo.Group, h *handler.Handlers) {
	u := h.Users
	users := g.Group("/users")
	users.GET("", handler.Handle(u.Handler, u.List, http.StatusOK, &model.EmptyPayload{}))
	users.GET("/:id", handler.Handle(u.Handler, u.Get, http.StatusOK, &model.IDPayload{}))
	users.PATCH("/:id", handler.Handle(u.Handler, u.Update, http.StatusOK, &model.UpdateUserPayload{}))
	users.DELETE("/:id", handler.HandleNoContent(u.Handler, u.Delete, http.StatusNoContent, &model.IDPayload{}))
}

func registerFamilyRoutes(g *echo.Group, h *handler.Handlers) {
	f := h.Families
	families := g.Group("/families")
	families.GET("", handler.Handle(f.Handler, f.List, http.StatusOK, &model.EmptyPayload{}))
	families.POST("", handler.Handle(f.Handler, f.Create, http.StatusCreated, &model.CreateFamilyPayload{}))
	families.GET("/:id", handler.Handle(f.Handler, f.Get, http.StatusOK, &model.IDPayload{}))
	families.PATCH("/:id", handler.Handle(f.Handler, f.Update, http.StatusOK, &model.UpdateFamilyPayload{}))
	families.DELETE("/:id", handler.HandleNoContent(f.Handler, f.Delete, http.StatusNoContent, &model.IDPayload{}))
	families.POST("/:id/leave", handler.HandleNoContent(f.Handler, f.Leave, http.StatusNoContent, &model.IDPayload{}))
	families.DELETE("/:id/members/:user_id", handler.HandleNoContent(f.Handler, f.RemoveMember, http.StatusNoContent, &model.FamilyMemberPayload{}))
	families.GET("/:id/invitations", handler.Handle(f.Handler, f.Invitations, http.StatusOK, &model.IDPayload{}))
	families.POST("/:id/invitations", handler.Handle(f.Handler, f.Invite, http.StatusCreated, &model.CreateInvitationPayload{}))

	invitations := g.Group("/invitations")
	invitations.POST("/accept", handler.Handle(f.Handler, f.AcceptInvitation, http.StatusOK, &model.AcceptInvitationPayload{}))
	invitations.DELETE("/:id", handler.HandleNoContent(f.Handler, f.DeleteInvitation, http.StatusNoContent, &model.IDPayload{}))
}

func registerLedgerRoutes(g *echo.Group, h *handler.Handlers) {
	c := h.Categories
	categories := g.Group("/categories")
	categories.GET("", handler.Handle(c.Handler, c.List, http.StatusOK, &model.EmptyPayload{}))
	categories.POST("", handler.Handle(c.Handler, c.Create, http.StatusCreated, &model.CategoryPayload{}))
	categories.GET("/:id", handler.Handle(c.Handler, c.Get, http.StatusOK, &model.IDPayload{}))
	categories.PATCH("/:id", handler.Handle(c.Handler, c.Update, http.StatusOK, &model.CategoryPayload{}))
	categories.DELETE("/:id", handler.HandleNoContent(c.Handler, c.Delete, http.StatusNoContent, &model.IDPayload{}))

	b := h.Budgets
	budgets := g.Group("/budgets")
	budgets.GET("", handler.Handle(b.Handler, b.List, http.StatusOK, &model.EmptyPayload{}))
	budgets.POST("", handler.Handle(b.Handler, b.Create, http.StatusCreated, &model.CreateBudgetPayload{}))
	budgets.GET("/:id", handler.Handle(b.Handler, b.Get, http.StatusOK, &model.IDPayload{}))
	budgets.PATCH("/:id", handler.Handle(b.Handler, b.Update, http.StatusOK, &model.UpdateBudgetPayload{}))
	budgets.DELETE("/:id", handler.HandleNoContent(b.Handler, b.Delete, http.StatusNoContent, &model.IDPayload{}))
	budgets.GET("/:id/goals", handler.Handle(b.Handler, b.ListGoals, http.StatusOK, &model.IDPayload{}))
	budgets.POST("/:id/goals", handler.Handle(b.Handler, b.CreateGoal, http.StatusCreated, &model.CreateGoalPayload{}))

	budgetGoals := g.Group("/budget-goals")
	budgetGoals.PATCH("/:id", handler.Handle(b.Handler, b.UpdateGoal, http.StatusOK, &model.UpdateGoalPayload{}))
	budgetGoals.DELETE("/:id", handler.HandleNoContent(b.Handler, b.DeleteGoal, http.StatusNoContent, &model.IDPayload{}))

	a := h.Accounts
	accounts := g.Group("/accounts")
	accounts.GET("", handler.Handle(a.Handler, a.List, http.StatusOK, &model.EmptyPayload{}))
	accounts.POST("", handler.Handle(a.Handler, a.Create, http.StatusCreated, &model.CreateAccountPayload{}))
	accounts.GET("/:id", handler.Handle(a.Handler, a.Get, http.StatusOK, &model.IDPayload{}))
	accounts.PATCH("/:id", handler.Handle(a.Handler, a.Update, http.StatusOK, &model.UpdateAccountPayload{}))
	accounts.DELETE("/:id", handler.HandleNoContent(a.Handler, a.Delete, http.StatusNoContent, &model.IDPayload{}))
	accounts.GET("/:id/balance-history", handler.Handle(a.Handler, a.History, http.StatusOK, &model.BalanceHistoryPayload{}))
	accounts.GET("/:id/balance", handler.Handle(a.Handler, a.BalanceAt, http.StatusOK, &model.BalanceAtPayload{}))
	accounts.GET("/:id/savings-goals", handler.Handle(a.Handler, a.ListGoals, http.StatusOK, &model.IDPayload{}))
	accounts.POST("/:id/savings-goals", handler.Handle(a.Handler, a.CreateGoal, http.StatusCreated, &model.CreateGoalPayload{}))

	savingsGoals := g.Group("/savings-goals")
	savingsGoals.PATCH("/:id", handler.Handle(a.Handler, a.UpdateGoal, http.StatusOK, &model.UpdateGoalPayload{}))
	savingsGoals.DELETE("/:id", handler.HandleNoContent(a.Handler, a.DeleteGoal, http.StatusNoContent, &model.IDPayload{}))

	t := h.Transactions
	transactions := g.Group("/transactions")
	transactions.GET("", handler.Handle(t.Handler, t.List, http.StatusOK, &model.TransactionQuery{}))
	transactions.POST("", handler.Handle(t.Handler, t.Create, http.StatusCreated, &model.TransactionPayload{}))
	transactions.GET("/:id", handler.Handle(t.Handler, t.Get, http.StatusOK, &model.IDPayload{}))
	transactions.PUT("/:id", handler.Handle(t.Handler, t.Update, http.StatusOK, &model.TransactionPayload{}))
	transactions.DELETE("/:id", handler.HandleNoContent(t.Handler, t.Delete, http.StatusNoContent, &model.IDPayload{}))
}

func registerReportRoutes(g *echo.Group, h *handler.Handlers) {
	r := h.Reports
	reports := g.Group("/reports")
	reports.GET("", handler.Handle(r.Handler, r.Catalog, http.StatusOK, &model.EmptyPayload{}))

	reports.GET("/dashboard", handler.Handle(r.Handler, r.Dashboards, http.StatusOK, &model.EmptyPayload{}))
	reports.POST("/dashboard", handler.Handle(r.Handler, r.CreateDashboard, http.StatusCreated, &model.CreateDashboardPayload{}))
	reports.PATCH("/dashboard/:id", handler.Handle(r.Handler, r.UpdateDashboard, http.StatusOK, &model.UpdateDashboardPayload{}))
	reports.DELETE("/dashboard/:id", handler.HandleNoContent(r.Handler, r.DeleteDashboard, http.StatusNoContent, &model.IDPayload{}))

	reports.GET("/summary", handler.Handle(r.Handler, r.Summary, http.StatusOK, &model.ReportQuery{}))
	reports.GET("/spending-by-category", handler.Handle(r.Handler, r.SpendingByCategory, http.StatusOK, &model.ReportQuery{}))
	reports.GET("/income-vs-expense", handler.Handle(r.Handler, r.IncomeVsExpense, http.StatusOK, &model.ReportQuery{}))
	reports.GET("/budget-overview", handler.Handle(r.Handler, r.BudgetOverview, http.StatusOK, &model.EmptyPayload{}))
	reports.GET("/balance-history", handler.Handle(r.Handler, r.BalanceHistory, http.StatusOK, &model.ReportQuery{}))

	reports.GET("/chart/:name", handler.Handle(r.Handler, r.Chart, http.StatusOK, &model.ChartPayload{}))
	reports.GET("/table", handler.Handle(r.Handler, r.Table, http.StatusOK, &model.TablePayload{}))
	reports.GET("/pdf", handler.HandleFile(r.Handler, r.PDF, http.StatusOK, &model.ReportQuery{}, handler.ReportPDFFilename, handler.ReportPDFContentType))
}
