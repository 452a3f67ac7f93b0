package domain

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"slices"
)

// Factor is a severity factor. Infinities encode as the JSON strings
// "Infinity" and "-Infinity".
type Factor float64

func (f Factor) MarshalJSON() ([]byte, error) {
	switch {
	case math.IsInf(float64(f), 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(float64(f), -1):
		return []byte(`"-Infinity"`), nil
	}
	return json.Marshal(float64(f))
}

// PrimaryFinding is a calibrated primary reading with its severity factor.
type PrimaryFinding struct {
	Year                int         `json:"year"`
	Contaminant         Contaminant `json:"contaminant"`
	HealthGoal          *float64    `json:"health_goal"`
	LegalLimit          *float64    `json:"legal_limit"`
	Max                 *float64    `json:"max"`
	NinetiethPercentile *float64    `json:"ninetieth_percentile"`
	Unit                Unit        `json:"unit"`
	Factor              Factor      `json:"factor"`
}

// Observed returns the highest level detected: Max when reported, otherwise
// the 90th percentile.
func (f PrimaryFinding) Observed() *float64 {
	if known(f.Max) {
		return f.Max
	}
	return f.NinetiethPercentile
}

// OverLegalLimit reports whether the observed level exceeds a known legal limit.
func (f PrimaryFinding) OverLegalLimit() bool {
	obs := f.Observed()
	return known(obs) && known(f.LegalLimit) && *obs > *f.LegalLimit
}

// Ranking is primary findings ordered by factor, highest first.
type Ranking struct {
	Findings []PrimaryFinding `json:"findings"`
}

// Len returns the number of findings.
func (r Ranking) Len() int {
	return len(r.Findings)
}

// Top returns the first n findings, or all of them when fewer exist.
func (r Ranking) Top(n int) []PrimaryFinding {
	return r.Findings[:clamp(n, len(r.Findings))]
}

// Rest returns the findings after the first n.
func (r Ranking) Rest(n int) []PrimaryFinding {
	return r.Findings[clamp(n, len(r.Findings)):]
}

func infinite(v *float64) bool {
	return v != nil && math.IsInf(*v, 0)
}

func clamp(n, limit int) int {
	return max(0, min(n, limit))
}

// BuildRanking calibrates each primary reading, computes its severity factor,
// and sorts the findings by factor descending. Equal factors keep input order.
// Readings that cannot be ranked are skipped and recorded.
func BuildRanking(primary []Reading) (Ranking, Diagnostics) {
	var diag Diagnostics
	findings := make([]PrimaryFinding, 0, len(primary))

	for _, r := range primary {
		f, err := newPrimaryFinding(r)
		if err != nil {
			diag.Record(r.ContaminantName, r.Year, err)
			continue
		}
		findings = append(findings, f)
	}

	slices.SortStableFunc(findings, func(a, b PrimaryFinding) int {
		return cmp.Compare(b.Factor, a.Factor)
	})

	return Ranking{Findings: findings}, diag
}

func newPrimaryFinding(r Reading) (PrimaryFinding, error) {
	if r.Contaminant == nil {
		return PrimaryFinding{}, fmt.Errorf("rank %q: %w", r.ContaminantName, ErrUnresolvedContaminant)
	}
	if r.Contaminant.Standard != StandardPrimary {
		return PrimaryFinding{}, fmt.Errorf("rank %q: %s standard: %w",
			r.ContaminantName, r.Contaminant.Standard, ErrStandardMismatch)
	}

	cal, err := Calibrate(r)
	if err != nil {
		return PrimaryFinding{}, err
	}
	if infinite(cal.Max) || infinite(cal.NinetiethPercentile) {
		return PrimaryFinding{}, fmt.Errorf("rank %q: %w: non-finite level", r.ContaminantName, ErrDomainValue)
	}

	ref := *r.Contaminant
	factor, err := SeverityFactor(ref.HealthGoal, cal.Max, cal.NinetiethPercentile)
	if err != nil {
		return PrimaryFinding{}, fmt.Errorf("rank %q: %w", r.ContaminantName, err)
	}

	return PrimaryFinding{
		Year:                cal.Year,
		Contaminant:         ref,
		HealthGoal:          ref.HealthGoal,
		LegalLimit:          ref.LegalLimit,
		Max:                 cal.Max,
		NinetiethPercentile: cal.NinetiethPercentile,
		Unit:                cal.Unit,
		Factor:              Factor(factor),
	}, nil
}
