package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/couchcryptid/tapwater-report-service/internal/adapter/postgres"
	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
)

type migrateOptions struct {
	dsn     string
	down    bool
	steps   int
	version bool
	force   int
}

func newMigrateCmd(g *globalFlags) *cobra.Command {
	opts := &migrateOptions{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the PostgreSQL schema",
		Long: `Runs the embedded schema migrations against a PostgreSQL database.
With no mode flag every pending migration is applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.dsn == "" {
				return errors.New("--dsn or DATABASE_URL is required")
			}
			m, err := postgres.NewMigrator(opts.dsn)
			if err != nil {
				return err
			}
			defer m.Close()

			logger := g.logger(cmd)
			out := cmd.OutOrStdout()

			if opts.version {
				v, dirty, err := m.Version()
				if errors.Is(err, migrate.ErrNilVersion) {
					fmt.Fprintln(out, "no migrations applied")
					return nil
				}
				if err != nil {
					return fmt.Errorf("read version: %w", err)
				}
				fmt.Fprintf(out, "version %d (dirty: %t)\n", v, dirty)
				return nil
			}

			switch {
			case cmd.Flags().Changed("force"):
				err = m.Force(opts.force)
			case opts.steps != 0:
				err = m.Steps(opts.steps)
			case opts.down:
				err = m.Down()
			default:
				err = m.Up()
			}
			if errors.Is(err, migrate.ErrNoChange) {
				fmt.Fprintln(out, "no change")
				return nil
			}
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			v, _, verr := m.Version()
			if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
				logger.Warn("read version after migrate", "error", verr)
			}
			fmt.Fprintf(out, "migrated to version %d\n", v)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.dsn, "dsn", os.Getenv("DATABASE_URL"), "postgres connection string")
	cmd.Flags().Bool("up", true, "apply all pending migrations (default)")
	cmd.Flags().BoolVar(&opts.down, "down", false, "roll back every migration")
	cmd.Flags().IntVar(&opts.steps, "steps", 0, "apply n migrations, or roll back n when negative")
	cmd.Flags().BoolVar(&opts.version, "version", false, "print the current schema version")
	cmd.Flags().IntVar(&opts.force, "force", 0, "set the version without running migrations, clearing the dirty flag")
	cmd.MarkFlagsMutuallyExclusive("up", "down", "steps", "version", "force")

	return cmd
}
