package main

import (
	"fmt"

	"github.com/deppfellow/budgetbud/internal/lib/email"
	"github.com/spf13/cobra"
)

func newEmailPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "email-preview <template>",
		Short:     "Render an e-mail template with sample data to stdout",
		Args:      cobra.ExactArgs(1),
		ValidArgs: templateNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, loggerService, err := loadConfigAndLogger()
			if err != nil {
				return err
			}
			defer loggerService.Shutdown()

			client, err := email.NewClient(cfg.Email, log)
			if err != nil {
				return err
			}

			name := email.Template(args[0])
			if _, ok := email.PreviewData[name]; !ok {
				return fmt.Errorf("unknown template %q, expected one of %v", args[0], templateNames())
			}

			html, err := client.Preview(name)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), html)
			return err
		},
	}
}

func templateNames() []string {
	names := make([]string, 0, len(email.Templates))
	for _, t := range email.Templates {
		names = append(names, string(t))
	}
	return names
}
