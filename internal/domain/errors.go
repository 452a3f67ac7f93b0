package domain

import "errors"

var (
	// ErrUnresolvedContaminant means a reading references a contaminant name
	// that has no reference data.
	ErrUnresolvedContaminant = errors.New("unresolved contaminant")

	// ErrDomainValue means a value needed for a computation is unknown or out
	// of range, e.g. a missing health goal.
	ErrDomainValue = errors.New("domain value")

	// ErrUnitConversion means an observed or reference unit is not ppt, ppb, or ppm.
	ErrUnitConversion = errors.New("unit conversion")

	// ErrStandardMismatch means a reading was handed to the wrong stage, e.g.
	// a secondary reading passed to the ranking.
	ErrStandardMismatch = errors.New("standard mismatch")

	// ErrMalformedRecord means a persisted record could not be parsed.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrNotFound is returned by lookups with no match.
	ErrNotFound = errors.New("not found")
)

// Reason classifies why a reading was skipped.
type Reason string

const (
	ReasonUnresolvedContaminant Reason = "unresolved_contaminant"
	ReasonDomainValue           Reason = "domain_value"
	ReasonUnitConversion        Reason = "unit_conversion"
	ReasonStandardMismatch      Reason = "standard_mismatch"
	ReasonMalformedRecord       Reason = "malformed_record"
	ReasonOther                 Reason = "other"
)

// ReasonOf maps an error to the Reason of the sentinel it wraps.
func ReasonOf(err error) Reason {
	switch {
	case errors.Is(err, ErrUnresolvedContaminant):
		return ReasonUnresolvedContaminant
	case errors.Is(err, ErrDomainValue):
		return ReasonDomainValue
	case errors.Is(err, ErrUnitConversion):
		return ReasonUnitConversion
	case errors.Is(err, ErrStandardMismatch):
		return ReasonStandardMismatch
	case errors.Is(err, ErrMalformedRecord):
		return ReasonMalformedRecord
	default:
		return ReasonOther
	}
}

// Skip records one excluded reading.
type Skip struct {
	Contaminant string `json:"contaminant"`
	Year        int    `json:"year,omitempty"`
	Reason      Reason `json:"reason"`
	Message     string `json:"error"`
	Err         error  `json:"-"`
}

// Diagnostics collects the readings a batch operation excluded.
type Diagnostics struct {
	Skipped []Skip `json:"skipped"`
}

// Record appends a skip for the given contaminant name and year.
func (d *Diagnostics) Record(contaminant string, year int, err error) {
	d.Skipped = append(d.Skipped, Skip{
		Contaminant: contaminant,
		Year:        year,
		Reason:      ReasonOf(err),
		Message:     err.Error(),
		Err:         err,
	})
}

// Merge appends all skips from other.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Skipped = append(d.Skipped, other.Skipped...)
}

// Total returns the number of skipped readings.
func (d Diagnostics) Total() int {
	return len(d.Skipped)
}

// Count returns the number of skips with the given reason.
func (d Diagnostics) Count(r Reason) int {
	n := 0
	for _, s := range d.Skipped {
		if s.Reason == r {
			n++
		}
	}
	return n
}

// Counts returns skip totals keyed by reason.
func (d Diagnostics) Counts() map[Reason]int {
	out := make(map[Reason]int)
	for _, s := range d.Skipped {
		out[s.Reason]++
	}
	return out
}
