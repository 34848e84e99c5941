package cli

import (
	"database/sql"
	"fmt"
	"io"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
	"github.com/royale/pos/internal/infrastructure/logger"
	"github.com/royale/pos/internal/infrastructure/migration"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// MigrationStatus is the schema version of the store
type MigrationStatus struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

// NewMigrateCommand creates the migrate command group
func NewMigrateCommand(ro *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the store schema",
		Long: `Apply or roll back the embedded schema migrations.

The server migrates up on start; these commands exist for upgrades
and repairs done by hand.`,
	}

	var yes bool
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration (drops all shop data)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return NewExitError(ExitCommandError, "migrate down drops all shop data; pass --yes to confirm")
			}
			return ro.withMigrator(cmd, func(m *migration.Migrator) (any, error) {
				return nil, m.Down()
			})
		},
	}
	down.Flags().BoolVar(&yes, "yes", false, "confirm dropping all shop data")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return ro.withMigrator(cmd, func(m *migration.Migrator) (any, error) {
					return nil, m.Up()
				})
			},
		},
		down,
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return ro.withMigrator(cmd, func(*migration.Migrator) (any, error) { return nil, nil })
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the schema version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return WrapExitError(ExitCommandError, "version must be a number", err)
				}
				return ro.withMigrator(cmd, func(m *migration.Migrator) (any, error) {
					return nil, m.Force(version)
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List the embedded migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				names, err := migration.Available()
				if err != nil {
					return err
				}
				return ro.formatter(cmd).Result(names, func(w io.Writer) {
					for _, n := range names {
						fmt.Fprintln(w, n)
					}
				})
			},
		},
	)
	return cmd
}

// withMigrator runs fn against a raw handle on the configured store, then
// reports the resulting schema version
func (ro *RootOptions) withMigrator(cmd *cobra.Command, fn func(*migration.Migrator) (any, error)) error {
	cfg, log, err := ro.loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync(log) }()

	db, err := sql.Open("sqlite3", cfg.Database.DSN())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer db.Close()
	if err := db.PingContext(cmd.Context()); err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}

	m, err := migration.New(db, log)
	if err != nil {
		return err
	}
	defer m.Close()

	if _, err := fn(m); err != nil {
		return err
	}
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	log.Debug("Schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))

	status := MigrationStatus{Version: version, Dirty: dirty}
	return ro.formatter(cmd).Result(status, func(w io.Writer) {
		if dirty {
			fmt.Fprintf(w, "schema version %d (dirty)\n", version)
			return
		}
		fmt.Fprintf(w, "schema version %d\n", version)
	})
}
