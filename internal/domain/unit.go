package domain

import (
	"fmt"
	"strings"
)

// Unit is a concentration unit.
type Unit string

const (
	UnitPPT Unit = "ppt"
	UnitPPB Unit = "ppb"
	UnitPPM Unit = "ppm"
)

// magnitude is the power of 1000 separating each unit from ppt.
var magnitude = map[Unit]int{
	UnitPPT: 0,
	UnitPPB: 1,
	UnitPPM: 2,
}

// NormalizeUnit lowercases and trims a raw unit string without validating it.
func NormalizeUnit(s string) Unit {
	return Unit(strings.ToLower(strings.TrimSpace(s)))
}

// ParseUnit normalizes s and rejects anything other than ppt, ppb, or ppm.
func ParseUnit(s string) (Unit, error) {
	u := NormalizeUnit(s)
	if !u.Valid() {
		return "", fmt.Errorf("%w: unknown unit %q", ErrUnitConversion, s)
	}
	return u, nil
}

// Valid reports whether u is one of the three recognized units.
func (u Unit) Valid() bool {
	_, ok := magnitude[u]
	return ok
}

// Name returns the display name, e.g. "parts per billion (ppb)".
// Unrecognized units render as " (unit)".
func (u Unit) Name() string {
	var full string
	switch u {
	case UnitPPT:
		full = "parts per trillion"
	case UnitPPB:
		full = "parts per billion"
	case UnitPPM:
		full = "parts per million"
	}
	return fmt.Sprintf("%s (%s)", full, u)
}

// ConvertUnit rescales v from one unit to another using exact powers of 1000.
// NaN propagates unchanged.
func ConvertUnit(v float64, from, to Unit) (float64, error) {
	fromMag, ok := magnitude[from]
	if !ok {
		return 0, fmt.Errorf("%w: unknown observed unit %q", ErrUnitConversion, from)
	}
	toMag, ok := magnitude[to]
	if !ok {
		return 0, fmt.Errorf("%w: unknown reference unit %q", ErrUnitConversion, to)
	}

	// Scaling down divides by the exact factor: 40 ppb → ppm must equal 0.04.
	switch diff := fromMag - toMag; {
	case diff > 0:
		return v * scale(diff), nil
	case diff < 0:
		return v / scale(-diff), nil
	default:
		return v, nil
	}
}

func scale(steps int) float64 {
	f := 1.0
	for range steps {
		f *= 1000
	}
	return f
}
