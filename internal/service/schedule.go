package service

import (
	"context"
	"time"

	"github.com/deppfellow/budgetbud/internal/config"
	"github.com/deppfellow/budgetbud/internal/lib/scheduler"
)

// Names of the periodic jobs.
const (
	JobCheckBudgetGoals   = "check_budget_goals"
	JobCheckSavingsGoals  = "check_savings_goals"
	JobProcessRecurring   = "process_recurring_transactions"
	JobCleanupInvitations = "cleanup_invitations"
)

// RegisterJobs adds the periodic jobs to sch using the specs of cfg.
func (s *Services) RegisterJobs(sch *scheduler.Scheduler, cfg *config.SchedulerConfig) error {
	jobs := []struct {
		name string
		spec string
		run  scheduler.RunFunc
	}{
		{JobCheckBudgetGoals, cfg.BudgetGoalsSpec, s.Goals.CheckBudgetGoals},
		{JobCheckSavingsGoals, cfg.SavingsGoalsSpec, s.Goals.CheckSavingsGoals},
		{JobProcessRecurring, cfg.RecurringSpec, func(ctx context.Context, now time.Time) error {
			_, err := s.Recurring.Process(ctx, now)
			return err
		}},
		{JobCleanupInvitations, cfg.InvitationCleanSpec, func(ctx context.Context, now time.Time) error {
			_, err := s.Invitations.CleanupExpired(ctx, now)
			return err
		}},
	}

	for _, j := range jobs {
		if err := sch.Register(j.name, j.spec, j.run); err != nil {
			return err
		}
	}
	return nil
}
