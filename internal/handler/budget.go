package handler

import (
	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/deppfellow/budgetbud/internal/server"
	"github.com/deppfellow/budgetbud/internal/service"
	"github.com/labstack/echo/v4"
)

type CategoryHandler struct {
	Handler
	categoryService *service.CategoryService
}

func NewCategoryHandler(s *server.Server, categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		Handler:         NewHandler(s),
		categoryService: categoryService,
	}
}

func (h *CategoryHandler) List(c echo.Context, _ *model.EmptyPayload) ([]model.Category, error) {
	return h.categoryService.List(c.Request().Context(), userID(c))
}

func (h *CategoryHandler) Get(c echo.Context, payload *model.IDPayload) (*model.Category, error) {
	return h.categoryService.Get(c.Request().Context(), userID(c), payload.ID)
}

func (h *CategoryHandler) Create(c echo.Context, payload *model.CategoryPayload) (*model.Category, error) {
	return h.categoryService.Create(c.Request().Context(), userID(c), payload)
}

func (h *CategoryHandler) Update(c echo.Context, payload *model.CategoryPayload) (*model.Category, error) {
	return h.categoryService.Update(c.Request().Context(), userID(c), payload)
}

func (h *CategoryHandler) Delete(c echo.Context, payload *model.IDPayload) error {
	return h.categoryService.Delete(c.Request().Context(), userID(c), payload.ID)
}

type BudgetHandler struct {
	Handler
	budgetService *service.BudgetService
	goalService   *service.GoalService
}

func NewBudgetHandler(s *server.Server, budgetService *service.BudgetService, goalService *service.GoalService) *BudgetHandler {
	return &BudgetHandler{
		Handler:       NewHandler(s),
		budgetService: budgetService,
		goalService:   goalService,
	}
}

func (h *BudgetHandler) List(c echo.Context, _ *model.EmptyPayload) ([]model.Budget, error) {
	return h.budgetService.List(c.Request().Context(), userID(c))
}

func (h *BudgetHandler) Get(c echo.Context, payload *model.IDPayload) (*model.Budget, error) {
	return h.budgetService.Get(c.Request().Context(), userID(c), payload.ID)
}

func (h *BudgetHandler) Create(c echo.Context, payload *model.CreateBudgetPayload) (*model.Budget, error) {
	return h.budgetService.Create(c.Request().Context(), userID(c), payload)
}

func (h *BudgetHandler) Update(c echo.Context, payload *model.UpdateBudgetPayload) (*model.Budget, error) {
	return h.budgetService.Update(c.Request().Context(), userID(c), payload)
}

func (h *BudgetHandler) Delete(c echo.Context, payload *model.IDPayload) error {
	return h.budgetService.Delete(c.Request().Context(), userID(c), payload.ID)
}

func (h *BudgetHandler) ListGoals(c echo.Context, payload *model.IDPayload) ([]model.BudgetGoal, error) {
	return h.goalService.ListBudgetGoals(c.Request().Context(), userID(c), payload.ID)
}

func (h *BudgetHandler) CreateGoal(c echo.Context, payload *model.CreateGoalPayload) (*model.BudgetGoal, error) {
	return h.goalService.CreateBudgetGoal(c.Request().Context(), userID(c), payload)
}

func (h *BudgetHandler) UpdateGoal(c echo.Context, payload *model.UpdateGoalPayload) (*model.BudgetGoal, error) {
	return h.goalService.UpdateBudgetGoal(c.Request().Context(), userID(c), payload)
}

func (h *BudgetHandler) DeleteGoal(c echo.Context, payload *model.IDPayload) error {
	return h.goalService.DeleteBudgetGoal(c.Request().Context(), userID(c), payload.ID)
}
