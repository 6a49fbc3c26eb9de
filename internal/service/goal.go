package service

import (
	"context"
	"errors"
	"time"

	"github.com/deppfellow/budgetbud/internal/errs"
	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/deppfellow/budgetbud/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// GoalService manages budget goals and savings goals. A goal is evaluated
// as soon as it is created, so one that is already reached alerts at once.
type GoalService struct {
	goals    repository.GoalRepository
	budgets  repository.BudgetRepository
	accounts repository.AccountRepository
	ledger   *ledger
	clock    Clock
	logger   *zerolog.Logger
}

func NewGoalService(
	goals repository.GoalRepository,
	budgets repository.BudgetRepository,
	accounts repository.AccountRepository,
	ledger *ledger,
	clock Clock,
	logger *zerolog.Logger,
) *GoalService {
	return &GoalService{
		goals:    goals,
		budgets:  budgets,
		accounts: accounts,
		ledger:   ledger,
		clock:    clock,
		logger:   logger,
	}
}

func (s *GoalService) today() model.Date {
	return model.Today(s.clock.now(), s.clock.Location)
}

func (s *GoalService) newState(p *model.CreateGoalPayload, balance decimal.Decimal) model.GoalState {
	today := s.today()
	state := model.GoalState{
		TargetBalance:  p.TargetBalance,
		CurrentBalance: balance,
		DateSet:        today,
		StartDate:      today,
		EndDate:        p.EndDate,
	}
	if p.StartDate != nil {
		state.StartDate = *p.StartDate
	}
	return state
}

// checkDates validates the date range an update would leave on a goal.
func checkDates(current model.GoalState, p *model.UpdateGoalPayload) error {
	start, end := current.StartDate, current.EndDate
	if p.StartDate != nil {
		start = *p.StartDate
	}
	if p.EndDate != nil {
		end = p.EndDate
	}
	if end != nil && end.Before(start) {
		return errs.FieldInvalid("end_date", "must not be before start_date")
	}
	return nil
}

func applyGoalUpdate(p *model.UpdateGoalPayload) func(g *model.GoalState) {
	return func(g *model.GoalState) {
		if p.TargetBalance != nil {
			g.TargetBalance = *p.TargetBalance
		}
		if p.StartDate != nil {
			g.StartDate = *p.StartDate
		}
		if p.EndDate != nil {
			g.EndDate = p.EndDate
		}
	}
}

// Budget goals

func (s *GoalService) ListBudgetGoals(ctx context.Context, userID, budgetID uuid.UUID) ([]model.BudgetGoal, error) {
	if _, err := s.budgets.GetByID(ctx, userID, budgetID); err != nil {
		return nil, err
	}
	goals, err := s.goals.ListBudgetGoals(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if goals == nil {
		goals = []model.BudgetGoal{}
	}
	return goals, nil
}

func (s *GoalService) CreateBudgetGoal(ctx context.Context, userID uuid.UUID, p *model.CreateGoalPayload) (*model.BudgetGoal, error) {
	budget, err := s.budgets.GetByID(ctx, userID, p.ParentID)
	if err != nil {
		return nil, err
	}

	goal := &model.BudgetGoal{
		BudgetID:  budget.ID,
		GoalState: s.newState(p, budget.CurrentBalance),
	}
	if err := s.goals.CreateBudgetGoal(ctx, goal); err != nil {
		return nil, err
	}
	if err := s.ledger.checkBudget(ctx, budget.ID); err != nil {
		return nil, err
	}
	return s.goals.GetBudgetGoal(ctx, goal.ID)
}

func (s *GoalService) budgetGoal(ctx context.Context, userID, id uuid.UUID) (*model.BudgetGoal, error) {
	goal, err := s.goals.GetBudgetGoal(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.budgets.GetByID(ctx, userID, goal.BudgetID); err != nil {
		return nil, errs.NotFound("BudgetGoal")
	}
	return goal, nil
}

func (s *GoalService) UpdateBudgetGoal(ctx context.Context, userID uuid.UUID, p *model.UpdateGoalPayload) (*model.BudgetGoal, error) {
	goal, err := s.budgetGoal(ctx, userID, p.ID)
	if err != nil {
		return nil, err
	}
	if err := checkDates(goal.GoalState, p); err != nil {
		return nil, err
	}
	return s.ledger.updateBudgetGoal(ctx, goal, applyGoalUpdate(p))
}

func (s *GoalService) DeleteBudgetGoal(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.budgetGoal(ctx, userID, id); err != nil {
		return err
	}
	return s.goals.DeleteBudgetGoal(ctx, id)
}

// Savings goals

func (s *GoalService) ListSavingsGoals(ctx context.Context, userID, accountID uuid.UUID) ([]model.SavingsGoal, error) {
	if _, err := s.accounts.GetVisible(ctx, userID, accountID); err != nil {
		return nil, err
	}
	goals, err := s.goals.ListSavingsGoals(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if goals == nil {
		goals = []model.SavingsGoal{}
	}
	return goals, nil
}

func (s *GoalService) ownedAccount(ctx context.Context, userID, accountID uuid.UUID) (*model.Account, error) {
	account, err := s.accounts.GetVisible(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, errNotAccountOwner
	}
	return account, nil
}

func (s *GoalService) CreateSavingsGoal(ctx context.Context, userID uuid.UUID, p *model.CreateGoalPayload) (*model.SavingsGoal, error) {
	account, err := s.ownedAccount(ctx, userID, p.ParentID)
	if err != nil {
		return nil, err
	}

	goal := &model.SavingsGoal{
		AccountID: account.ID,
		GoalState: s.newState(p, account.Balance),
	}
	if err := s.goals.CreateSavingsGoal(ctx, goal); err != nil {
		return nil, err
	}
	if err := s.ledger.checkAccount(ctx, account.ID); err != nil {
		return nil, err
	}
	return s.goals.GetSavingsGoal(ctx, goal.ID)
}

func (s *GoalService) savingsGoal(ctx context.Context, userID, id uuid.UUID) (*model.SavingsGoal, error) {
	goal, err := s.goals.GetSavingsGoal(ctx, id)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.GetVisible(ctx, userID, goal.AccountID)
	if err != nil {
		return nil, errs.NotFound("SavingsGoal")
	}
	if account.UserID != userID {
		return nil, errNotAccountOwner
	}
	return goal, nil
}

func (s *GoalService) UpdateSavingsGoal(ctx context.Context, userID uuid.UUID, p *model.UpdateGoalPayload) (*model.SavingsGoal, error) {
	goal, err := s.savingsGoal(ctx, userID, p.ID)
	if err != nil {
		return nil, err
	}
	if err := checkDates(goal.GoalState, p); err != nil {
		return nil, err
	}
	return s.ledger.updateSavingsGoal(ctx, goal, applyGoalUpdate(p))
}

func (s *GoalService) DeleteSavingsGoal(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.savingsGoal(ctx, userID, id); err != nil {
		return err
	}
	return s.goals.DeleteSavingsGoal(ctx, id)
}

// Scheduled checks

// CheckBudgetGoals re-evaluates the budgets that have a goal ending today.
// A failing budget is logged and does not stop the others.
func (s *GoalService) CheckBudgetGoals(ctx context.Context, now time.Time) error {
	today := model.Today(now, s.clock.Location)
	ids, err := s.goals.BudgetIDsWithGoalsDue(ctx, today)
	if err != nil {
		return err
	}
	return s.checkEach(ctx, "budget_id", ids, s.ledger.checkBudget)
}

// CheckSavingsGoals is CheckBudgetGoals for savings goals.
func (s *GoalService) CheckSavingsGoals(ctx context.Context, now time.Time) error {
	today := model.Today(now, s.clock.Location)
	ids, err := s.goals.AccountIDsWithGoalsDue(ctx, today)
	if err != nil {
		return err
	}
	return s.checkEach(ctx, "account_id", ids, s.ledger.checkAccount)
}

func (s *GoalService) checkEach(ctx context.Context, field string, ids []uuid.UUID, check func(context.Context, uuid.UUID) error) error {
	log := loggerFrom(ctx, s.logger)

	var failed []error
	for _, id := range ids {
		if err := check(ctx, id); err != nil {
			log.Error().Err(err).Str(field, id.String()).Msg("goal check failed")
			failed = append(failed, err)
		}
	}

	log.Info().Int("checked", len(ids)).Int("failed", len(failed)).Msg("goal check finished")
	return errors.Join(failed...)
}
