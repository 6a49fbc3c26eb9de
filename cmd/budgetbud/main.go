// Command budgetbud runs the BudgetBud API server, its migrations and its
// periodic jobs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "budgetbud",
		Short:         "Personal and family budgeting API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSchedulerCmd(),
		newEmailPreviewCmd(),
	)
	return root
}
