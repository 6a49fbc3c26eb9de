package handler

import (
	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/deppfellow/budgetbud/internal/server"
	"github.com/deppfellow/budgetbud/internal/service"
	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	Handler
	userService *service.UserService
}

func NewUserHandler(s *server.Server, userService *service.UserService) *UserHandler {
	return &UserHandler{
		Handler:     NewHandler(s),
		userService: userService,
	}
}

// List returns the caller and everyone sharing a family with them.
func (h *UserHandler) List(c echo.Context, _ *model.EmptyPayload) ([]model.User, error) {
	return h.userService.List(c.Request().Context(), userID(c))
}

func (h *UserHandler) Get(c echo.Context, payload *model.IDPayload) (*model.User, error) {
	return h.userService.Get(c.Request().Context(), userID(c), payload.ID)
}

func (h *UserHandler) Update(c echo.Context, payload *model.UpdateUserPayload) (*model.User, error) {
	return h.userService.Update(c.Request().Context(), userID(c), payload)
}

func (h *UserHandler) Delete(c echo.Context, payload *model.IDPayload) error {
	return h.userService.Delete(c.Request().Context(), userID(c), payload.ID)
}
