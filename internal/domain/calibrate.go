package domain

import (
	"fmt"
	"math"
)

// Calibrate rescales the reading's Max into its contaminant's reference unit.
// The returned reading carries the reference unit, so calibrating twice is a
// no-op. A nil Max stays nil.
func Calibrate(r Reading) (Reading, error) {
	if r.Contaminant == nil {
		return r, fmt.Errorf("calibrate %q: %w", r.ContaminantName, ErrUnresolvedContaminant)
	}
	return CalibrateTo(r, r.Contaminant.Unit)
}

// CalibrateTo rescales the reading's Max into unit to. No other field changes.
// Both units must be ppt, ppb, or ppm, even when they are equal. A Max that
// overflows during conversion is a domain error.
func CalibrateTo(r Reading, to Unit) (Reading, error) {
	if r.Unit == to && to.Valid() {
		return r, nil
	}
	var observed float64
	if r.Max != nil {
		observed = *r.Max
	}
	v, err := ConvertUnit(observed, r.Unit, to)
	if err != nil {
		return r, fmt.Errorf("calibrate %q: %w", r.ContaminantName, err)
	}
	if math.IsInf(v, 0) {
		return r, fmt.Errorf("calibrate %q: %w: %v %s overflows in %s", r.ContaminantName, ErrDomainValue, observed, r.Unit, to)
	}
	if r.Max != nil {
		r.Max = &v
	}
	r.Unit = to
	return r, nil
}
