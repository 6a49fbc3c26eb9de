// Package handler is the HTTP layer. Handlers bind and validate request
// payloads through the shared pipeline in base.go and call the services.
package handler

import (
	"github.com/deppfellow/budgetbud/internal/server"
	"github.com/deppfellow/budgetbud/internal/service"
)

type Handlers struct {
	Health       *HealthHandler
	OpenAPI      *OpenAPIHandler
	Auth         *AuthHandler
	Users        *UserHandler
	Families     *FamilyHandler
	Categories   *CategoryHandler
	Budgets      *BudgetHandler
	Accounts     *AccountHandler
	Transactions *TransactionHandler
	Reports      *ReportHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(s),
		OpenAPI:      NewOpenAPIHandler(s),
		Auth:         NewAuthHandler(s, services.Auth),
		Users:        NewUserHandler(s, services.Users),
		Families:     NewFamilyHandler(s, services.Families, services.Invitations),
		Categories:   NewCategoryHandler(s, services.Categories),
		Budgets:      NewBudgetHandler(s, services.Budgets, services.Goals),
		Accounts:     NewAccountHandler(s, services.Accounts, services.Goals),
		Transactions: NewTransactionHandler(s, services.Transactions),
		Reports:      NewReportHandler(s, services.Reports),
	}
}
