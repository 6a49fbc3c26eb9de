package handler

import (
	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/deppfellow/budgetbud/internal/server"
	"github.com/deppfellow/budgetbud/internal/service"
	"github.com/labstack/echo/v4"
)

type TransactionHandler struct {
	Handler
	transactionService *service.TransactionService
}

func NewTransactionHandler(s *server.Server, transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		Handler:            NewHandler(s),
		transactionService: transactionService,
	}
}

func (h *TransactionHandler) List(c echo.Context, query *model.TransactionQuery) (*model.Page[model.Transaction], error) {
	return h.transactionService.List(c.Request().Context(), userID(c), query)
}

func (h *TransactionHandler) Get(c echo.Context, payload *model.IDPayload) (*model.Transaction, error) {
	return h.transactionService.Get(c.Request().Context(), userID(c), payload.ID)
}

func (h *TransactionHandler) Create(c echo.Context, payload *model.TransactionPayload) (*model.Transaction, error) {
	return h.transactionService.Create(c.Request().Context(), userID(c), payload)
}

func (h *TransactionHandler) Update(c echo.Context, payload *model.TransactionPayload) (*model.Transaction, error) {
	return h.transactionService.Update(c.Request().Context(), userID(c), payload)
}

func (h *TransactionHandler) Delete(c echo.Context, payload *model.IDPayload) error {
	return h.transactionService.Delete(c.Request().Context(), userID(c), payload.ID)
}
