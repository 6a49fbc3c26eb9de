package service

import (
	"context"

	"github.com/deppfellow/budgetbud/internal/lib/job"
	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/deppfellow/budgetbud/internal/repository"
	"github.com/rs/zerolog"
)

// alertDispatcher enqueues goal alert e-mails. It runs after the database
// transaction that flagged the goals commits; failures are logged only.
type alertDispatcher struct {
	users  repository.UserRepository
	jobs   TaskEnqueuer
	logger *zerolog.Logger
}

func newAlertDispatcher(users repository.UserRepository, jobs TaskEnqueuer, logger *zerolog.Logger) *alertDispatcher {
	return &alertDispatcher{users: users, jobs: jobs, logger: logger}
}

func (d *alertDispatcher) dispatch(ctx context.Context, alerts []model.GoalAlert) {
	log := loggerFrom(ctx, d.logger)

	for _, alert := range alerts {
		user, err := d.users.GetByID(ctx, alert.OwnerID)
		if err != nil {
			log.Error().Err(err).Str("goal_id", alert.GoalID.String()).Msg("failed to load goal owner")
			continue
		}

		task, err := job.NewGoalAlertTask(job.GoalAlertPayload{
			To:        user.Email,
			FirstName: user.DisplayName(),
			Kind:      string(alert.Kind),
			Name:      alert.Name,
			Target:    alert.Target,
			Balance:   alert.Balance,
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to build goal alert task")
			continue
		}

		if _, err := d.jobs.EnqueueContext(ctx, task); err != nil {
			log.Error().Err(err).Str("goal_id", alert.GoalID.String()).Msg("failed to enqueue goal alert")
			continue
		}

		log.Info().
			Str("goal_id", alert.GoalID.String()).
			Str("kind", string(alert.Kind)).
			Msg("goal alert enqueued")
	}
}
