package service

import (
	"context"

	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/deppfellow/budgetbud/internal/repository"
	"github.com/google/uuid"
)

// TransactionService records income and expenses. Every write goes through
// the ledger so the account, its history, the budget and their goals move
// together.
type TransactionService struct {
	txns       repository.TransactionRepository
	accounts   repository.AccountRepository
	budgets    repository.BudgetRepository
	categories repository.CategoryRepository
	ledger     *ledger
}

func NewTransactionService(
	txns repository.TransactionRepository,
	accounts repository.AccountRepository,
	budgets repository.BudgetRepository,
	categories repository.CategoryRepository,
	ledger *ledger,
) *TransactionService {
	return &TransactionService{
		txns:       txns,
		accounts:   accounts,
		budgets:    budgets,
		categories: categories,
		ledger:     ledger,
	}
}

func (s *TransactionService) List(ctx context.Context, userID uuid.UUID, q *model.TransactionQuery) (*model.Page[model.Transaction], error) {
	filter := q.Filter()

	items, err := s.txns.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.txns.Count(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	page := model.NewPage(items, filter.Offset/filter.Limit+1, filter.Limit, total)
	return &page, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id uuid.UUID) (*model.Transaction, error) {
	return s.txns.GetVisible(ctx, userID, id)
}

// references checks that the caller can book on the account, budget and
// category of p and returns the account.
func (s *TransactionService) references(ctx context.Context, userID uuid.UUID, p *model.TransactionPayload) (*model.Account, error) {
	account, err := s.accounts.GetVisible(ctx, userID, p.AccountID)
	if err != nil {
		return nil, err
	}
	if _, err := s.budgets.GetByID(ctx, userID, p.BudgetID); err != nil {
		return nil, err
	}
	if _, err := s.categories.GetByID(ctx, userID, p.CategoryID); err != nil {
		return nil, err
	}
	return account, nil
}

// Create books a new transaction. It is shared with the account's family.
func (s *TransactionService) Create(ctx context.Context, userID uuid.UUID, p *model.TransactionPayload) (*model.Transaction, error) {
	account, err := s.references(ctx, userID, p)
	if err != nil {
		return nil, err
	}

	t := &model.Transaction{UserID: userID, FamilyID: account.FamilyID}
	p.Apply(t)

	if err := s.ledger.record(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Update rewrites a transaction, reversing its previous effect first.
func (s *TransactionService) Update(ctx context.Context, userID uuid.UUID, p *model.TransactionPayload) (*model.Transaction, error) {
	if _, err := s.txns.GetVisible(ctx, userID, p.ID); err != nil {
		return nil, err
	}
	account, err := s.references(ctx, userID, p)
	if err != nil {
		return nil, err
	}

	return s.ledger.revise(ctx, p.ID, userID, func(t *model.Transaction) {
		p.Apply(t)
		t.FamilyID = account.FamilyID
	})
}

// Delete removes a transaction and reverses its effect.
func (s *TransactionService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.txns.GetVisible(ctx, userID, id); err != nil {
		return err
	}
	return s.ledger.remove(ctx, id, userID)
}
