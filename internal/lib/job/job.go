// Package job provides background job processing using Asynq.
//
// Tasks are enqueued with the asynq.Client and executed by the asynq.Server
// workers, both backed by Redis.
package job

import (
	"context"
	"fmt"

	"github.com/deppfellow/budgetbud/internal/config"
	"github.com/deppfellow/budgetbud/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Mailer sends the e-mails produced by the job handlers.
type Mailer interface {
	SendWelcomeEmail(ctx context.Context, to, firstName string) error
	SendInvitationEmail(ctx context.Context, inv email.InvitationEmail) error
	SendGoalAlertEmail(ctx context.Context, alert email.GoalAlertEmail) error
}

// JobService holds the Asynq client (enqueue) and server (worker execution).
type JobService struct {
	Client *asynq.Client
	server *asynq.Server
	mailer Mailer
	logger *zerolog.Logger
}

// NewJobService creates a JobService using the Redis address from cfg.
// Critical tasks get the larger worker share.
func NewJobService(logger *zerolog.Logger, cfg *config.Config, mailer Mailer) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			Logger: newAsynqLogger(logger),
		},
	)

	return &JobService{
		Client: asynq.NewClient(redisOpt),
		server: server,
		mailer: mailer,
		logger: logger,
	}
}

// EnqueueContext satisfies the enqueuer used by the services.
func (j *JobService) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	return j.Client.EnqueueContext(ctx, task, opts...)
}

func (j *JobService) mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskWelcome, j.handleWelcomeEmailTask)
	mux.HandleFunc(TaskInvitation, j.handleInvitationEmailTask)
	mux.HandleFunc(TaskGoalAlert, j.handleGoalAlertTask)
	return mux
}

// Start registers the task handlers and starts the workers in the background.
func (j *JobService) Start() error {
	j.logger.Info().Msg("starting background job server")

	if err := j.server.Start(j.mux()); err != nil {
		return err
	}

	return nil
}

// Stop waits for running tasks and closes the client.
func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}

// Close releases the client of a service whose workers never started.
func (j *JobService) Close() {
	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}

// asynqLogger routes asynq's internal logs through zerolog.
type asynqLogger struct {
	logger zerolog.Logger
}

func newAsynqLogger(logger *zerolog.Logger) *asynqLogger {
	return &asynqLogger{logger: logger.With().Str("component", "asynq").Logger()}
}

func (l *asynqLogger) Debug(args ...any) { l.logger.Debug().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Info(args ...any)  { l.logger.Info().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Warn(args ...any)  { l.logger.Warn().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Error(args ...any) { l.logger.Error().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Fatal(args ...any) { l.logger.Fatal().Msg(fmt.Sprint(args...)) }
