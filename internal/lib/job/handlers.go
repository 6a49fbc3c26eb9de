package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/deppfellow/budgetbud/internal/lib/email"
	"github.com/hibiken/asynq"
)

// finish logs the outcome of a send. A missing provider key is never retried.
func (j *JobService) finish(kind, to string, err error) error {
	if err == nil {
		j.logger.Info().
			Str("type", kind).
			Str("to", to).
			Msg("successfully sent email")
		return nil
	}

	j.logger.Error().
		Str("type", kind).
		Str("to", to).
		Err(err).
		Msg("failed to send email")

	if errors.Is(err, email.ErrNotConfigured) {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return err
}

func decodePayload(t *asynq.Task, v any) error {
	if err := json.Unmarshal(t.Payload(), v); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return nil
}

func (j *JobService) handleWelcomeEmailTask(ctx context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := decodePayload(t, &p); err != nil {
		return err
	}

	j.logger.Info().
		Str("type", "welcome").
		Str("to", p.To).
		Msg("processing welcome email task")

	return j.finish("welcome", p.To, j.mailer.SendWelcomeEmail(ctx, p.To, p.FirstName))
}

func (j *JobService) handleInvitationEmailTask(ctx context.Context, t *asynq.Task) error {
	var p InvitationEmailPayload
	if err := decodePayload(t, &p); err != nil {
		return err
	}

	j.logger.Info().
		Str("type", "invitation").
		Str("to", p.To).
		Bool("existing_user", p.ExistingUser).
		Msg("processing invitation email task")

	err := j.mailer.SendInvitationEmail(ctx, email.InvitationEmail{
		To:           p.To,
		InviterName:  p.InviterName,
		FamilyName:   p.FamilyName,
		Token:        p.Token,
		ExistingUser: p.ExistingUser,
	})
	return j.finish("invitation", p.To, err)
}

func (j *JobService) handleGoalAlertTask(ctx context.Context, t *asynq.Task) error {
	var p GoalAlertPayload
	if err := decodePayload(t, &p); err != nil {
		return err
	}

	j.logger.Info().
		Str("type", "goal_alert").
		Str("kind", p.Kind).
		Str("to", p.To).
		Msg("processing goal alert task")

	err := j.mailer.SendGoalAlertEmail(ctx, email.GoalAlertEmail{
		To:        p.To,
		FirstName: p.FirstName,
		Kind:      p.Kind,
		Name:      p.Name,
		Target:    p.Target,
		Balance:   p.Balance,
	})
	return j.finish("goal_alert", p.To, err)
}
