// Package cli implements the portalctl maintenance commands.
package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sisemasexp/portal/internal/config"
	"github.com/sisemasexp/portal/internal/storage"
)

// env carries what every command shares.
type env struct {
	dbPath     string
	out        io.Writer
	loadConfig func() (*config.Config, error)
}

// NewRootCmd builds the portalctl command tree writing to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	return newRootCmd(&env{out: out, loadConfig: config.Load})
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "portalctl",
		Short:         "Maintenance tool for the institutional portal",
		Long:          "Manage academic programs, load SQL scripts, query the assistant and move database backups.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(e.out)
	root.PersistentFlags().StringVarP(&e.dbPath, "db", "d", "", "Database path (default: $PORTAL_DATA_DIR/$PORTAL_DB_FILE)")

	root.AddCommand(
		newProgramsCmd(e),
		newDBCmd(e),
		newAskCmd(e),
		newBackupCmd(e),
	)
	return root
}

// Execute runs portalctl with os.Args and reports errors on stderr.
func Execute() int {
	cmd := NewRootCmd(os.Stdout)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// resolveDBPath prefers --db and falls back to the configured location.
func (e *env) resolveDBPath() (string, error) {
	if e.dbPath != "" {
		return e.dbPath, nil
	}
	cfg, err := e.loadConfig()
	if err != nil {
		return "", err
	}
	return cfg.SQLitePath(), nil
}

func (e *env) openStore(cmd *cobra.Command) (*storage.DB, error) {
	path, err := e.resolveDBPath()
	if err != nil {
		return nil, err
	}
	db, err := storage.New(cmd.Context(), path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	return db, nil
}

func parseCode(raw string) (int, error) {
	code, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || code <= 0 {
		return 0, fmt.Errorf("invalid program code %q: must be a positive integer", raw)
	}
	return code, nil
}
