package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/noah-isme/hr-letter-api/pkg/database"
)

// MigrateCmd applies pending schema migrations.
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			applied, err := database.Migrate(cmd.Context(), rt.db)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintln(out, "Schema is up to date.")
				return nil
			}
			for _, version := range applied {
				fmt.Fprintf(out, "%s %s\n", color.New(color.FgGreen).Sprint("APPLIED"), version)
			}
			return nil
		},
	}
}
