package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/couchcryptid/tapwater-report-service/internal/adapter/memory"
	"github.com/couchcryptid/tapwater-report-service/internal/domain"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

// errValidationFailed is returned after the phase summary has been printed.
var errValidationFailed = errors.New("validation failed")

// phase tracks pass/fail for a validation phase. Warnings only fail the run
// in strict mode.
type phase struct {
	name     string
	errors   []string
	warnings []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *phase) passed(strict bool) bool {
	return len(p.errors) == 0 && (!strict || len(p.warnings) == 0)
}

type validateOptions struct {
	fixture string
	strict  bool
}

func newValidateCmd(_ *globalFlags) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a fixture file for integrity problems",
		Long: `Runs integrity phases over a fixture: reference data (units, health goals,
duplicate names and aliases), utilities (IDs, territories), and readings
(origins, contaminant references, report years). Exits non-zero on failure.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(opts.fixture)
			if err != nil {
				return fmt.Errorf("open fixture: %w", err)
			}
			defer f.Close()

			fx, err := memory.DecodeFixture(f)
			if err != nil {
				return err
			}
			if !runValidation(cmd.OutOrStdout(), fx, opts.strict) {
				return errValidationFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.fixture, "fixture", defaultFixture, "fixture file to validate")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "treat warnings as failures")
	return cmd
}

// runValidation prints a phase summary and details, returning whether every
// phase passed.
func runValidation(w io.Writer, fx memory.Fixture, strict bool) bool {
	fmt.Fprintln(w, "=== Tap Water Fixture Validation ===")
	fmt.Fprintln(w)

	contaminants, refPhase := validateReferenceData(fx.Contaminants)
	utilities, utilPhase := validateUtilities(fx.Utilities)
	phases := []*phase{
		refPhase,
		utilPhase,
		validateReadings(fx.Readings, utilities, contaminants),
	}

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		switch {
		case !p.passed(strict):
			status = fmt.Sprintf("FAIL (%d errors, %d warnings)", len(p.errors), len(p.warnings))
			allPassed = false
		case len(p.warnings) > 0:
			status = fmt.Sprintf("PASS (%d warnings)", len(p.warnings))
		}
		fmt.Fprintf(w, "  %-34s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Records: %d utilities, %d contaminants, %d readings\n",
		len(fx.Utilities), len(fx.Contaminants), len(fx.Readings))

	for _, p := range phases {
		if len(p.errors) == 0 && len(p.warnings) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [E%d] %s\n", i+1, e)
		}
		for i, e := range p.warnings {
			fmt.Fprintf(w, "  [W%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return true
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return false
}

// validateReferenceData checks that every contaminant parses, that ranked
// contaminants carry a usable unit and health goal, and that no name or alias
// is claimed twice.
func validateReferenceData(records []domain.ContaminantRecord) ([]domain.Contaminant, *phase) {
	p := &phase{name: "Phase 1: Reference data"}
	out := make([]domain.Contaminant, 0, len(records))
	owner := make(map[string]string)

	for i, rec := range records {
		c, err := domain.ParseContaminantRecord(rec)
		if err != nil {
			p.errorf("contaminant %d: %v", i, err)
			continue
		}
		out = append(out, c)

		switch c.Standard {
		case domain.StandardPrimary:
			if !c.Unit.Valid() {
				p.errorf("%s: primary unit %q is not ppt, ppb, or ppm", c.Name, c.Unit)
			}
			if c.HealthGoal == nil || math.IsNaN(*c.HealthGoal) || *c.HealthGoal < 0 {
				p.errorf("%s: primary contaminant has no usable health goal", c.Name)
			}
		case domain.StandardSecondary:
		default:
			p.warnf("%s: standard %q is neither Primary nor Secondary; readings will be skipped", c.Name, c.Standard)
		}

		for _, n := range append([]string{c.Name}, c.AltNames...) {
			key := strings.ToLower(n)
			if prev, ok := owner[key]; ok && prev != c.Name {
				p.errorf("name %q is claimed by both %s and %s", n, prev, c.Name)
				continue
			}
			owner[key] = c.Name
		}
	}
	return out, p
}

// validateUtilities checks IDs and territories.
func validateUtilities(records []domain.UtilityRecord) ([]domain.WaterUtility, *phase) {
	p := &phase{name: "Phase 2: Utilities"}
	out := make([]domain.WaterUtility, 0, len(records))
	ids := make(map[string]bool)
	servedBy := make(map[string]string)

	for i, rec := range records {
		u, err := domain.ParseUtilityRecord(rec)
		if err != nil {
			p.errorf("utility %d: %v", i, err)
			continue
		}
		out = append(out, u)

		if ids[u.PWSID] {
			p.errorf("%s: duplicate PWSID", u.PWSID)
		}
		ids[u.PWSID] = true

		if len(u.Territory) == 0 {
			p.errorf("%s: serves no territories", u.PWSID)
		}
		for _, t := range u.Territory {
			if domain.TerritoryPostcode(t) == "" {
				p.warnf("%s: territory %q has no postcode; address lookup cannot reach it", u.PWSID, t)
			}
			key := strings.ToLower(t)
			if prev, ok := servedBy[key]; ok && prev != u.PWSID {
				p.errorf("territory %q is served by both %s and %s", t, prev, u.PWSID)
				continue
			}
			servedBy[key] = u.PWSID
		}
	}
	return out, p
}

// validateReadings checks that readings parse, belong to a known utility, and
// name known contaminants, and that every utility has readings for its report
// year.
func validateReadings(records []domain.ReadingRecord, utilities []domain.WaterUtility, contaminants []domain.Contaminant) *phase {
	p := &phase{name: "Phase 3: Readings"}

	byID := make(map[string]domain.WaterUtility, len(utilities))
	for _, u := range utilities {
		byID[u.PWSID] = u
	}
	reportYearReadings := make(map[string]int)

	for i, rec := range records {
		r, err := domain.ParseReadingRecord(rec)
		if err != nil {
			p.errorf("reading %d (%s): %v", i, cast.ToString(rec[domain.KeyContaminant]), err)
			continue
		}

		u, ok := byID[r.Origin]
		if !ok {
			p.errorf("reading %d (%s): origin %q is not a known utility", i, r.ContaminantName, r.Origin)
			continue
		}
		if r.Year == u.ReportYear() {
			reportYearReadings[u.PWSID]++
		}

		if !resolves(contaminants, r.ContaminantName) {
			p.warnf("reading %d: %q has no reference data and will be skipped", i, r.ContaminantName)
		}
	}

	for _, u := range utilities {
		if reportYearReadings[u.PWSID] == 0 {
			p.warnf("%s: no readings for report year %d", u.PWSID, u.ReportYear())
		}
	}
	return p
}

func resolves(contaminants []domain.Contaminant, name string) bool {
	for _, c := range contaminants {
		if c.Matches(name) {
			return true
		}
	}
	return false
}
