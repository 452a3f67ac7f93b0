package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Well-known secondary contaminant names.
const (
	SecondaryTDS      = "TDS"
	SecondaryHardness = "Hardness"
	SecondaryPH       = "pH"
)

// SecondaryFinding is an aesthetic reading as reported, without calibration.
type SecondaryFinding struct {
	Year        int         `json:"year"`
	Contaminant Contaminant `json:"contaminant"`
	Remedy      string      `json:"remedy,omitempty"`
	Max         *float64    `json:"max"`
	Unit        Unit        `json:"unit"`
}

// SecondaryIndex maps contaminant name to its secondary finding.
type SecondaryIndex struct {
	findings map[string]SecondaryFinding
}

// BuildIndex keys each secondary reading by contaminant name. When a name
// repeats, the last reading in input order wins.
func BuildIndex(secondary []Reading) (SecondaryIndex, Diagnostics) {
	var diag Diagnostics
	idx := SecondaryIndex{findings: make(map[string]SecondaryFinding, len(secondary))}

	for _, r := range secondary {
		if r.Contaminant == nil {
			diag.Record(r.ContaminantName, r.Year, fmt.Errorf("index %q: %w", r.ContaminantName, ErrUnresolvedContaminant))
			continue
		}
		if r.Contaminant.Standard != StandardSecondary {
			diag.Record(r.ContaminantName, r.Year, fmt.Errorf("index %q: %s standard: %w",
				r.ContaminantName, r.Contaminant.Standard, ErrStandardMismatch))
			continue
		}
		idx.findings[r.Contaminant.Name] = SecondaryFinding{
			Year:        r.Year,
			Contaminant: *r.Contaminant,
			Remedy:      r.Contaminant.Remedy,
			Max:         r.Max,
			Unit:        r.Unit,
		}
	}
	return idx, diag
}

// Lookup returns the finding for name or ErrNotFound. An exact key wins;
// otherwise the first finding, by sorted name, whose contaminant matches name
// or one of its alternate names is returned.
func (i SecondaryIndex) Lookup(name string) (SecondaryFinding, error) {
	if f, ok := i.findings[name]; ok {
		return f, nil
	}
	for _, key := range i.Names() {
		if f := i.findings[key]; f.Contaminant.Matches(name) {
			return f, nil
		}
	}
	return SecondaryFinding{}, fmt.Errorf("secondary %q: %w", name, ErrNotFound)
}

// Len returns the number of indexed contaminants.
func (i SecondaryIndex) Len() int {
	return len(i.findings)
}

// Names returns the indexed contaminant names in sorted order.
func (i SecondaryIndex) Names() []string {
	return slices.Sorted(maps.Keys(i.findings))
}

// All returns a copy of the index as a map.
func (i SecondaryIndex) All() map[string]SecondaryFinding {
	return maps.Clone(i.findings)
}

func (i SecondaryIndex) MarshalJSON() ([]byte, error) {
	if i.findings == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(i.findings)
}
