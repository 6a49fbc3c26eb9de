package main

import (
	"github.com/deppfellow/budgetbud/internal/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var target int32

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded SQL migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, loggerService, err := loadConfigAndLogger()
			if err != nil {
				return err
			}
			defer loggerService.Shutdown()

			return database.Migrate(cmd.Context(), log, cfg.Database.DSN(), target)
		},
	}
	cmd.Flags().Int32Var(&target, "target", -1, "migration version to reach; negative means latest")
	return cmd
}
