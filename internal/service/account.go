package service

import (
	"context"
	"strings"

	"github.com/deppfellow/budgetbud/internal/errs"
	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/deppfellow/budgetbud/internal/repository"
	"github.com/google/uuid"
)

var errNotAccountOwner = errs.NewForbiddenError("Only the owner of an account can change it", true)

// AccountService manages accounts. Family members can read a shared account;
// only its owner can change it.
type AccountService struct {
	accounts repository.AccountRepository
	families repository.FamilyRepository
	ledger   *ledger
	clock    Clock
}

func NewAccountService(accounts repository.AccountRepository, families repository.FamilyRepository, ledger *ledger, clock Clock) *AccountService {
	return &AccountService{accounts: accounts, families: families, ledger: ledger, clock: clock}
}

func (s *AccountService) today() model.Date {
	return model.Today(s.clock.now(), s.clock.Location)
}

func (s *AccountService) List(ctx context.Context, userID uuid.UUID) ([]model.Account, error) {
	return s.accounts.ListVisible(ctx, userID)
}

func (s *AccountService) Get(ctx context.Context, userID, id uuid.UUID) (*model.Account, error) {
	return s.accounts.GetVisible(ctx, userID, id)
}

func (s *AccountService) owned(ctx context.Context, userID, id uuid.UUID) (*model.Account, error) {
	account, err := s.accounts.GetVisible(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, errNotAccountOwner
	}
	return account, nil
}

func (s *AccountService) checkFamily(ctx context.Context, userID, familyID uuid.UUID) error {
	ok, err := s.families.IsMember(ctx, familyID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.NotFound("Family")
	}
	return nil
}

// Create opens an account and records its opening balance in the history,
// dated p.Date or today.
func (s *AccountService) Create(ctx context.Context, userID uuid.UUID, p *model.CreateAccountPayload) (*model.Account, error) {
	if p.FamilyID != nil {
		if err := s.checkFamily(ctx, userID, *p.FamilyID); err != nil {
			return nil, err
		}
	}

	date := s.today()
	if p.Date != nil {
		date = *p.Date
	}

	account := &model.Account{
		UserID:   userID,
		FamilyID: p.FamilyID,
		Name:     strings.TrimSpace(p.Name),
		Balance:  p.Balance,
	}
	if err := s.ledger.openAccount(ctx, account, date); err != nil {
		return nil, err
	}
	return account, nil
}

// Update renames the account or changes the family it is shared with.
// The balance only moves through transactions.
func (s *AccountService) Update(ctx context.Context, userID uuid.UUID, p *model.UpdateAccountPayload) (*model.Account, error) {
	account, err := s.owned(ctx, userID, p.ID)
	if err != nil {
		return nil, err
	}

	if p.Name != nil {
		account.Name = strings.TrimSpace(*p.Name)
	}
	switch {
	case p.RemoveFamily:
		account.FamilyID = nil
	case p.FamilyID != nil:
		if err := s.checkFamily(ctx, userID, *p.FamilyID); err != nil {
			return nil, err
		}
		account.FamilyID = p.FamilyID
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *AccountService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.ledger.closeAccount(ctx, id)
}

// History returns the balance snapshots of an account ordered by date.
func (s *AccountService) History(ctx context.Context, userID uuid.UUID, p *model.BalanceHistoryPayload) ([]model.BalanceHistory, error) {
	if _, err := s.accounts.GetVisible(ctx, userID, p.ID); err != nil {
		return nil, err
	}
	history, err := s.accounts.History(ctx, p.ID, p.Start, p.End)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []model.BalanceHistory{}
	}
	return history, nil
}

// BalanceAt returns the balance on a day: the latest snapshot dated on or
// before it, or the current balance when there is none.
func (s *AccountService) BalanceAt(ctx context.Context, userID uuid.UUID, p *model.BalanceAtPayload) (*model.AccountBalance, error) {
	account, err := s.accounts.GetVisible(ctx, userID, p.ID)
	if err != nil {
		return nil, err
	}

	date := s.today()
	if p.Date != nil {
		date = *p.Date
	}

	balance := account.Balance
	snapshot, err := s.accounts.BalanceOn(ctx, account.ID, date)
	if err != nil {
		return nil, err
	}
	if snapshot != nil {
		balance = *snapshot
	}

	return &model.AccountBalance{AccountID: account.ID, Date: date, Balance: balance}, nil
}
