package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/budgetbud/internal/database"
	"github.com/deppfellow/budgetbud/internal/handler"
	"github.com/deppfellow/budgetbud/internal/lib/scheduler"
	"github.com/deppfellow/budgetbud/internal/router"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the job workers and the in-process scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply pending migrations before serving")
	return cmd
}

func runServe(ctx context.Context, migrate bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.loggerService.Shutdown()

	if migrate {
		if err := database.Migrate(ctx, a.logger, a.cfg.Database.DSN(), -1); err != nil {
			return err
		}
	}

	h := handler.NewHandlers(a.server, a.services)
	a.server.SetupHTTPServer(router.NewRouter(a.server, h, a.services))

	if err := a.server.StartJobs(); err != nil {
		return err
	}

	var sch *scheduler.Scheduler
	if a.cfg.Scheduler.Enabled {
		sch, err = scheduler.New(a.cfg.Scheduler, a.logger)
		if err != nil {
			return err
		}
		if err := a.services.RegisterJobs(sch, a.cfg.Scheduler); err != nil {
			return err
		}
		sch.Start()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			a.logger.Error().Err(err).Msg("server stopped unexpectedly")
		}
	case <-ctx.Done():
		a.logger.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if sch != nil {
		select {
		case <-sch.Stop().Done():
		case <-shutdownCtx.Done():
			a.logger.Warn().Msg("scheduled jobs still running at shutdown")
		}
	}

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	a.logger.Info().Msg("server exited properly")
	return nil
}
