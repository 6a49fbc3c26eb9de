// Package service contains the business logic.
//
// It sits between the handler and repository layers. It receives validated
// payloads from the handlers, enforces ownership rules, and drives the
// repositories. Balance changes always go through the ledger so an account,
// its history, its budget and the goals on both stay consistent.
package service

import (
	"context"
	"time"

	"github.com/deppfellow/budgetbud/internal/lib/job"
	"github.com/deppfellow/budgetbud/internal/lib/token"
	"github.com/deppfellow/budgetbud/internal/repository"
	"github.com/deppfellow/budgetbud/internal/server"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// TaskEnqueuer pushes background tasks. *asynq.Client and *job.JobService implement it.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Clock returns the current time. Services use it to compute "today" in the
// configured timezone.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

func (c Clock) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

type Services struct {
	Auth         *AuthService
	Users        *UserService
	Families     *FamilyService
	Invitations  *InvitationService
	Categories   *CategoryService
	Budgets      *BudgetService
	Accounts     *AccountService
	Goals        *GoalService
	Transactions *TransactionService
	Recurring    *RecurringService
	Reports      *ReportService
	Job          *job.JobService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	loc, err := s.Config.Scheduler.Location()
	if err != nil {
		return nil, err
	}
	clock := Clock{Now: time.Now, Location: loc}

	tokens := token.NewManager(s.Config.Auth.SecretKey, s.Config.Auth.AccessTokenTTL, s.Config.Auth.RefreshTokenTTL)
	alerts := newAlertDispatcher(repos.Users, s.Job, s.Logger)
	ledger := newLedger(repos.Ledger, alerts, s.Logger)

	return &Services{
		Auth:         NewAuthService(repos.Users, repos.Tokens, tokens, s.Job, s.Logger),
		Users:        NewUserService(repos.Users, ledger),
		Families:     NewFamilyService(repos.Families),
		Invitations:  NewInvitationService(repos.Invitations, repos.Families, repos.Users, s.Job, clock, s.Logger),
		Categories:   NewCategoryService(repos.Categories),
		Budgets:      NewBudgetService(repos.Budgets, ledger),
		Accounts:     NewAccountService(repos.Accounts, repos.Families, ledger, clock),
		Goals:        NewGoalService(repos.Goals, repos.Budgets, repos.Accounts, ledger, clock, s.Logger),
		Transactions: NewTransactionService(repos.Txns, repos.Accounts, repos.Budgets, repos.Categories, ledger),
		Recurring:    NewRecurringService(repos.Txns, ledger, s.Logger),
		Reports:      NewReportService(repos.Reports, repos.Accounts, repos.Budgets, repos.Goals, repos.Users, clock),
		Job:          s.Job,
	}, nil
}

// loggerFrom prefers the request scoped logger stored in ctx.
func loggerFrom(ctx context.Context, fallback *zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return fallback
}
