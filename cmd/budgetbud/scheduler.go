package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/deppfellow/budgetbud/internal/lib/scheduler"
	"github.com/deppfellow/budgetbud/internal/lib/utils"
	"github.com/spf13/cobra"
)

func newSchedulerCmd() *cobra.Command {
	var (
		runOnce string
		list    bool
	)

	cmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Run the periodic jobs without the HTTP server",
		Long: "Runs goal checks, recurring transactions and invitation cleanup on their cron specs.\n" +
			"Jobs only enqueue e-mails; a running `budgetbud serve` delivers them.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.loggerService.Shutdown()
			defer func() {
				if err := a.server.Shutdown(context.Background()); err != nil {
					a.logger.Error().Err(err).Msg("failed to release resources")
				}
			}()

			sch, err := scheduler.New(a.cfg.Scheduler, a.logger)
			if err != nil {
				return err
			}
			if err := a.services.RegisterJobs(sch, a.cfg.Scheduler); err != nil {
				return err
			}

			if list {
				return utils.WriteJSON(cmd.OutOrStdout(), sch.Jobs())
			}
			if runOnce != "" {
				return sch.RunNow(cmd.Context(), runOnce)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sch.Start()
			a.logger.Info().Strs("jobs", sch.Jobs()).Str("timezone", sch.Location().String()).Msg("scheduler started")
			<-ctx.Done()
			<-sch.Stop().Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&runOnce, "run", "", "run the named job once and exit")
	cmd.Flags().BoolVar(&list, "list", false, "print the registered job names and exit")
	return cmd
}
