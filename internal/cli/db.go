package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sisemasexp/portal/internal/storage"
)

func newDBCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "exec-script FILE",
		Short: "Run a .sql script in a single transaction",
		Long:  "Run every statement of FILE against the database. Nothing is applied if any statement fails.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}
			return e.withStore(cmd, func(db *storage.DB) error {
				if err := db.ExecScript(cmd.Context(), string(script)); err != nil {
					return err
				}
				fmt.Fprintf(e.out, "Script %s applied\n", args[0])
				return nil
			})
		},
	})
	return cmd
}
