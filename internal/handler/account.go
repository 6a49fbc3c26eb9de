package handler

import (
	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/deppfellow/budgetbud/internal/server"
	"github.com/deppfellow/budgetbud/internal/service"
	"github.com/labstack/echo/v4"
)

type AccountHandler struct {
	Handler
	accountService *service.AccountService
	goalService    *service.GoalService
}

func NewAccountHandler(s *server.Server, accountService *service.AccountService, goalService *service.GoalService) *AccountHandler {
	return &AccountHandler{
		Handler:        NewHandler(s),
		accountService: accountService,
		goalService:    goalService,
	}
}

// List returns the caller's accounts and the accounts of their families.
func (h *AccountHandler) List(c echo.Context, _ *model.EmptyPayload) ([]model.Account, error) {
	return h.accountService.List(c.Request().Context(), userID(c))
}

func (h *AccountHandler) Get(c echo.Context, payload *model.IDPayload) (*model.Account, error) {
	return h.accountService.Get(c.Request().Context(), userID(c), payload.ID)
}

func (h *AccountHandler) Create(c echo.Context, payload *model.CreateAccountPayload) (*model.Account, error) {
	return h.accountService.Create(c.Request().Context(), userID(c), payload)
}

func (h *AccountHandler) Update(c echo.Context, payload *model.UpdateAccountPayload) (*model.Account, error) {
	return h.accountService.Update(c.Request().Context(), userID(c), payload)
}

func (h *AccountHandler) Delete(c echo.Context, payload *model.IDPayload) error {
	return h.accountService.Delete(c.Request().Context(), userID(c), payload.ID)
}

func (h *AccountHandler) History(c echo.Context, payload *model.BalanceHistoryPayload) ([]model.BalanceHistory, error) {
	return h.accountService.History(c.Request().Context(), userID(c), payload)
}

func (h *AccountHandler) BalanceAt(c echo.Context, payload *model.BalanceAtPayload) (*model.AccountBalance, error) {
	return h.accountService.BalanceAt(c.Request().Context(), userID(c), payload)
}

func (h *AccountHandler) ListGoals(c echo.Context, payload *model.IDPayload) ([]model.SavingsGoal, error) {
	return h.goalService.ListSavingsGoals(c.Request().Context(), userID(c), payload.ID)
}

func (h *AccountHandler) CreateGoal(c echo.Context, payload *model.CreateGoalPayload) (*model.SavingsGoal, error) {
	return h.goalService.CreateSavingsGoal(c.Request().Context(), userID(c), payload)
}

func (h *AccountHandler) UpdateGoal(c echo.Context, payload *model.UpdateGoalPayload) (*model.SavingsGoal, error) {
	return h.goalService.UpdateSavingsGoal(c.Request().Context(), userID(c), payload)
}

func (h *AccountHandler) DeleteGoal(c echo.Context, payload *model.IDPayload) error {
	return h.goalService.DeleteSavingsGoal(c.Request().Context(), userID(c), payload.ID)
}
