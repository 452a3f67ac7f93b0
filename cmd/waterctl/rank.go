package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/couchcryptid/tapwater-report-service/internal/adapter/memory"
	"github.com/couchcryptid/tapwater-report-service/internal/domain"
	"github.com/couchcryptid/tapwater-report-service/internal/observability"
	"github.com/couchcryptid/tapwater-report-service/internal/report"
	"github.com/spf13/cobra"
)

type rankOptions struct {
	fixture   string
	territory string
	top       int
	asJSON    bool
}

func newRankCmd(g *globalFlags) *cobra.Command {
	opts := &rankOptions{}

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Print the contaminant ranking for a territory",
		Long: `Builds the report for one territory from a fixture file and prints the
primary contaminants ordered by how far they exceed their health goal, the
aesthetic guidelines, and any readings that were skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := memory.Load(opts.fixture)
			if err != nil {
				return err
			}
			svc := report.NewService(store, nil, observability.NewUnregisteredMetrics(), g.logger(cmd))

			rep, err := svc.Generate(cmd.Context(), opts.territory)
			if err != nil {
				return err
			}
			if opts.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			printReport(cmd.OutOrStdout(), rep, opts.top)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.fixture, "fixture", defaultFixture, "fixture file to load")
	cmd.Flags().StringVar(&opts.territory, "territory", "", `territory to report on, e.g. "Austin TX, 78701"`)
	cmd.Flags().IntVar(&opts.top, "top", 5, "number of headline findings")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the full report as JSON")
	_ = cmd.MarkFlagRequired("territory")

	return cmd
}

func printReport(w io.Writer, rep domain.Report, top int) {
	u := rep.Utility
	fmt.Fprintf(w, "%s (%s)\n", u.Name, u.PWSID)
	fmt.Fprintf(w, "Territory: %s   Year: %d\n\n", rep.Territory, rep.Year)

	fmt.Fprintf(w, "  %-3s %-28s %12s %14s %10s %10s\n", "#", "CONTAMINANT", "FACTOR", "OBSERVED", "GOAL", "LIMIT")
	for i, f := range rep.Ranking.Top(top) {
		printFinding(w, i+1, f)
	}
	if rest := rep.Ranking.Rest(top); len(rest) > 0 {
		fmt.Fprintf(w, "  ... %d more below the top %d\n", len(rest), top)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Aesthetics:")
	for _, a := range rep.Aesthetics {
		if !a.Available {
			fmt.Fprintf(w, "  %-10s not reported\n", a.Name)
			continue
		}
		verdict := ""
		if a.Within != nil && !*a.Within {
			verdict = "  outside guideline"
		}
		fmt.Fprintf(w, "  %-10s %s %s%s\n", a.Name, formatFloat(a.Value), a.Unit, verdict)
	}

	if rep.Diagnostics.Total() > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Skipped %d readings:\n", rep.Diagnostics.Total())
		for _, s := range rep.Diagnostics.Skipped {
			fmt.Fprintf(w, "  %-28s %s\n", s.Contaminant, s.Reason)
		}
	}
}

func printFinding(w io.Writer, rank int, f domain.PrimaryFinding) {
	marker := ""
	if f.OverLegalLimit() {
		marker = "  over legal limit"
	}
	if f.Contaminant.IsForeverChemical() {
		marker += "  forever chemical"
	}
	fmt.Fprintf(w, "  %-3d %-28s %12s %10s %-3s %10s %10s%s\n",
		rank,
		f.Contaminant.Name,
		formatFactor(f.Factor),
		formatFloat(f.Observed()),
		f.Unit,
		formatFloat(f.HealthGoal),
		formatFloat(f.LegalLimit),
		marker,
	)
}

func formatFactor(f domain.Factor) string {
	if math.IsInf(float64(f), 1) {
		return "Infinity"
	}
	return strconv.FormatFloat(float64(f), 'f', 2, 64)
}

func formatFloat(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return "-"
	}
	return strconv.FormatFloat(*v, 'g', 6, 64)
}
