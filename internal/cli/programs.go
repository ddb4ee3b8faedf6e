package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	domerrors "github.com/sisemasexp/portal/internal/errors"
	"github.com/sisemasexp/portal/internal/storage"
)

func newProgramsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "programs",
		Aliases: []string{"programas"},
		Short:   "Manage academic programs",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List programs ordered by code",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				db, err := e.openStore(cmd)
				if err != nil {
					return err
				}
				defer db.Close()

				programs, err := db.ListPrograms(cmd.Context())
				if err != nil {
					return err
				}
				if len(programs) == 0 {
					fmt.Fprintln(e.out, "No programs registered.")
					return nil
				}
				for _, p := range programs {
					fmt.Fprintf(e.out, "%d\t%s\n", p.Code, p.Name)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "search TERM...",
			Short: "List programs whose name contains TERM",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.withStore(cmd, func(db *storage.DB) error {
					programs, err := db.SearchPrograms(cmd.Context(), strings.Join(args, " "))
					if err != nil {
						return err
					}
					if len(programs) == 0 {
						fmt.Fprintln(e.out, "No matching programs.")
						return nil
					}
					for _, p := range programs {
						fmt.Fprintf(e.out, "%d\t%s\n", p.Code, p.Name)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "add CODE NAME...",
			Short: "Add a program",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := programFromArgs(args)
				if err != nil {
					return err
				}
				return e.withStore(cmd, func(db *storage.DB) error {
					if err := db.CreateProgram(cmd.Context(), p); err != nil {
						if domerrors.IsDuplicate(err) {
							return fmt.Errorf("program %d already exists", p.Code)
						}
						return err
					}
					fmt.Fprintf(e.out, "Added %d: %s\n", p.Code, p.Name)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "update CODE NAME...",
			Short: "Rename a program",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := programFromArgs(args)
				if err != nil {
					return err
				}
				return e.withStore(cmd, func(db *storage.DB) error {
					if err := db.UpdateProgram(cmd.Context(), p); err != nil {
						return notFound(err, p.Code)
					}
					fmt.Fprintf(e.out, "Updated %d: %s\n", p.Code, p.Name)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "delete CODE",
			Short: "Delete a program",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				code, err := parseCode(args[0])
				if err != nil {
					return err
				}
				return e.withStore(cmd, func(db *storage.DB) error {
					if err := db.DeleteProgram(cmd.Context(), code); err != nil {
						return notFound(err, code)
					}
					fmt.Fprintf(e.out, "Deleted %d\n", code)
					return nil
				})
			},
		},
	)
	return cmd
}

func (e *env) withStore(cmd *cobra.Command, fn func(db *storage.DB) error) error {
	db, err := e.openStore(cmd)
	if err != nil {
		return err
	}
	return errors.Join(fn(db), db.Close())
}

func programFromArgs(args []string) (storage.Program, error) {
	code, err := parseCode(args[0])
	if err != nil {
		return storage.Program{}, err
	}
	name := strings.TrimSpace(strings.Join(args[1:], " "))
	if name == "" {
		return storage.Program{}, errors.New("program name is required")
	}
	return storage.Program{Code: code, Name: name}, nil
}

func notFound(err error, code int) error {
	if domerrors.IsNotFound(err) {
		return fmt.Errorf("program %d does not exist", code)
	}
	return err
}
