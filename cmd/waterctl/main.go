// Command waterctl ranks, validates, and migrates tap water report data from
// the command line.
//
// Usage:
//
//	go run ./cmd/waterctl rank --fixture data/fixtures/reports.json --territory "Austin TX, 78701"
//	go run ./cmd/waterctl validate --fixture data/fixtures/reports.json
//	go run ./cmd/waterctl migrate --dsn postgres://localhost:5432/tapwater?sslmode=disable
package main

import (
	"log/slog"
	"os"

	"github.com/couchcryptid/tapwater-report-service/internal/observability"
	"github.com/spf13/cobra"
)

const defaultFixture = "data/fixtures/reports.json"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	logLevel string
}

func (g *globalFlags) logger(cmd *cobra.Command) *slog.Logger {
	return observability.NewLoggerTo(cmd.ErrOrStderr(), g.logLevel, "text")
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "waterctl",
		Short: "Tap water contaminant report tooling",
		Long: `waterctl works with the same data the report service serves.

Examples:
  waterctl rank --territory "Austin TX, 78701" --top 3
  waterctl validate --fixture data/fixtures/reports.json
  waterctl migrate --dsn "$DATABASE_URL" --up`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	root.AddCommand(
		newRankCmd(g),
		newValidateCmd(g),
		newMigrateCmd(g),
	)
	return root
}
