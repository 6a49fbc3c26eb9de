package service

import (
	"context"
	"strings"

	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/deppfellow/budgetbud/internal/repository"
	"github.com/google/uuid"
)

type BudgetService struct {
	budgets repository.BudgetRepository
	ledger  *ledger
}

func NewBudgetService(budgets repository.BudgetRepository, ledger *ledger) *BudgetService {
	return &BudgetService{budgets: budgets, ledger: ledger}
}

func (s *BudgetService) List(ctx context.Context, userID uuid.UUID) ([]model.Budget, error) {
	return s.budgets.List(ctx, userID)
}

func (s *BudgetService) Get(ctx context.Context, userID, id uuid.UUID) (*model.Budget, error) {
	return s.budgets.GetByID(ctx, userID, id)
}

// Create opens a budget whose current balance equals its total.
func (s *BudgetService) Create(ctx context.Context, userID uuid.UUID, p *model.CreateBudgetPayload) (*model.Budget, error) {
	budget := &model.Budget{
		UserID:         userID,
		Name:           strings.TrimSpace(p.Name),
		TotalAmount:    p.TotalAmount,
		CurrentBalance: p.TotalAmount,
	}
	if err := s.budgets.Create(ctx, budget); err != nil {
		return nil, err
	}
	return budget, nil
}

// Update renames or retotals a budget. Changing the total moves the current
// balance by the same amount and re-evaluates the budget goals.
func (s *BudgetService) Update(ctx context.Context, userID uuid.UUID, p *model.UpdateBudgetPayload) (*model.Budget, error) {
	if _, err := s.budgets.GetByID(ctx, userID, p.ID); err != nil {
		return nil, err
	}
	var name *string
	if p.Name != nil {
		trimmed := strings.TrimSpace(*p.Name)
		name = &trimmed
	}
	return s.ledger.reviseBudget(ctx, p.ID, name, p.TotalAmount)
}

func (s *BudgetService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.budgets.Delete(ctx, userID, id)
}
