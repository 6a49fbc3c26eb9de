// Package scheduler runs the periodic maintenance jobs on cron specs.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/deppfellow/budgetbud/internal/config"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// RunFunc executes one scheduled run. now is expressed in the scheduler timezone.
type RunFunc func(ctx context.Context, now time.Time) error

type job struct {
	spec string
	run  RunFunc
}

type Scheduler struct {
	cron    *cron.Cron
	loc     *time.Location
	logger  *zerolog.Logger
	jobs    map[string]job
	timeout time.Duration
	now     func() time.Time
}

// New builds a scheduler in the configured timezone. Panicking jobs are
// recovered and a run is skipped while the previous one is still going.
func New(cfg *config.SchedulerConfig, logger *zerolog.Logger) (*Scheduler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	cl := cronLogger{logger: logger.With().Str("component", "scheduler").Logger()}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	return &Scheduler{
		cron:    c,
		loc:     loc,
		logger:  logger,
		jobs:    map[string]job{},
		timeout: 10 * time.Minute,
		now:     time.Now,
	}, nil
}

// Location is the timezone jobs run in.
func (s *Scheduler) Location() *time.Location {
	return s.loc
}

// Register schedules run under name.
func (s *Scheduler) Register(name, spec string, run RunFunc) error {
	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("job %q already registered", name)
	}

	_, err := s.cron.AddFunc(spec, func() {
		if err := s.RunNow(context.Background(), name); err != nil {
			s.logger.Error().Err(err).Str("job", name).Msg("scheduled job failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid spec %q for job %q: %w", spec, name, err)
	}

	s.jobs[name] = job{spec: spec, run: run}
	return nil
}

// Jobs returns the registered job names, sorted.
func (s *Scheduler) Jobs() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunNow executes a registered job immediately.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	j, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := s.now().In(s.loc)
	log := s.logger.With().Str("job", name).Logger()
	log.Info().Msg("job started")

	if err := j.run(ctx, start); err != nil {
		return err
	}

	log.Info().Dur("duration", time.Since(start)).Msg("job finished")
	return nil
}

func (s *Scheduler) Start() {
	s.logger.Info().
		Str("timezone", s.loc.String()).
		Strs("jobs", s.Jobs()).
		Msg("starting scheduler")
	s.cron.Start()
}

// Stop stops the scheduler and returns a context done when running jobs finish.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info().Msg("stopping scheduler")
	return s.cron.Stop()
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
