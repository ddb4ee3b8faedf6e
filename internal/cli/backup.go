package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sisemasexp/portal/internal/backup"
	"github.com/sisemasexp/portal/internal/config"
	"github.com/sisemasexp/portal/internal/storage"
)

func newBackupCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Push and pull database snapshots",
		Long:  "Move zstd-compressed snapshots between the local database and the configured S3-compatible bucket.",
	}

	var key string
	pull := &cobra.Command{
		Use:   "pull DEST",
		Short: "Restore a snapshot to DEST (the newest one unless --key is given)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, err := e.backupClient(cmd)
			if err != nil {
				return err
			}
			m := backup.NewManager(client, nil, cfg.DataDir, nil)
			restored, err := m.Pull(cmd.Context(), key, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "Restored %s to %s\n", restored, args[0])
			return nil
		},
	}
	pull.Flags().StringVar(&key, "key", "", "Object key to restore")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "push",
			Short: "Upload a snapshot of the database",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, client, err := e.backupClient(cmd)
				if err != nil {
					return err
				}
				return e.withStore(cmd, func(db *storage.DB) error {
					key, err := backup.NewManager(client, db, cfg.DataDir, nil).Push(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(e.out, "Uploaded %s\n", key)
					return nil
				})
			},
		},
		pull,
		&cobra.Command{
			Use:   "list",
			Short: "List stored snapshots, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, client, err := e.backupClient(cmd)
				if err != nil {
					return err
				}
				objects, err := client.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(objects) == 0 {
					fmt.Fprintln(e.out, "No snapshots stored.")
					return nil
				}
				for _, o := range objects {
					fmt.Fprintf(e.out, "%s\t%d\t%s\n", o.Key, o.Size, o.LastModified.Format("2006-01-02 15:04:05"))
				}
				return nil
			},
		},
	)
	return cmd
}

func (e *env) backupClient(cmd *cobra.Command) (*config.Config, *backup.Client, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Backup.Enabled {
		return nil, nil, errors.New("backups are disabled; set " + config.EnvBackupEnabled + "=true")
	}
	client, err := backup.New(cmd.Context(), backup.Config{
		Endpoint:    cfg.Backup.Endpoint,
		Region:      cfg.Backup.Region,
		AccessKeyID: cfg.Backup.AccessKeyID,
		SecretKey:   cfg.Backup.SecretKey,
		Bucket:      cfg.Backup.Bucket,
		Prefix:      cfg.Backup.Prefix,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, client, nil
}
