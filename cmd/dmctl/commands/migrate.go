package commands

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qbic/datamanager/internal/infrastructure/config"
	"github.com/qbic/datamanager/internal/infrastructure/logger"
	"github.com/qbic/datamanager/internal/infrastructure/migration"
	"github.com/qbic/datamanager/internal/infrastructure/persistence"
	"github.com/qbic/datamanager/migrations"
)

type migrateOptions struct {
	path     string
	logLevel string
}

// source returns the migrations compiled into dmctl unless --path points to
// a directory
func (o *migrateOptions) source() fs.FS {
	if o.path != "" {
		return os.DirFS(o.path)
	}
	return migrations.FS
}

func migrateCmd() *cobra.Command {
	opts := &migrateOptions{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
		Long: "Apply the schema migrations compiled into dmctl, or the ones in --path.\n" +
			"The database is configured like the server (config.toml, DM_ environment variables).",
	}
	cmd.PersistentFlags().StringVar(&opts.path, "path", "", "migrations directory (default: compiled in)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(func(m *migration.Migrator) error { return m.Up() })
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(func(m *migration.Migrator) error { return m.Steps(-1) })
			},
		},
		&cobra.Command{
			Use:   "steps <n>",
			Short: "Apply n migrations, negative values roll back",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil || n == 0 {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				return opts.run(func(m *migration.Migrator) error { return m.Steps(n) })
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the schema version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return opts.run(func(m *migration.Migrator) error { return m.Force(version) })
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(func(m *migration.Migrator) error {
					version, dirty, err := m.Version()
					if err != nil {
						return err
					}
					if dirty {
						fmt.Fprintf(cmd.OutOrStdout(), "%d (dirty)\n", version)
						return nil
					}
					fmt.Fprintln(cmd.OutOrStdout(), version)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List the available migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				names, err := migration.ListMigrations(opts.source())
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			},
		},
		createMigrationCmd(opts),
	)
	return cmd
}

func createMigrationCmd(opts *migrateOptions) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Write an empty up/down migration pair into --path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.path
			if dir == "" {
				dir = "migrations"
			}
			file, err := migration.CreateMigration(dir, args[0], description)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), file.UpPath)
			fmt.Fprintln(cmd.OutOrStdout(), file.DownPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "comment written into the up migration")
	return cmd
}

func (o *migrateOptions) run(fn func(m *migration.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	log, err := logger.New(logger.Config{Level: o.logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := persistence.Open(context.Background(), &cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("Error closing database", zap.Error(err))
		}
	}()
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.NewWithSource(sqlDB, o.source(), log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Error closing migrator", zap.Error(err))
		}
	}()
	return fn(m)
}
