package domain

import (
	"fmt"
	"math"
)

// SeverityFactor returns how many multiples over the health goal a
// contaminant was found, minus one. Rules apply in order:
//   - goal == 0: +Inf
//   - max nil or NaN: pct/goal - 1
//   - otherwise: max/goal - 1
//
// An unknown or negative goal, or a missing percentile when max is also
// missing, returns ErrDomainValue instead of NaN.
func SeverityFactor(goal, maxVal, pct *float64) (float64, error) {
	if !known(goal) || math.IsInf(*goal, 0) || *goal < 0 {
		return 0, fmt.Errorf("%w: health goal is unknown", ErrDomainValue)
	}
	if *goal == 0 {
		return math.Inf(1), nil
	}
	if known(maxVal) {
		return *maxVal / *goal - 1, nil
	}
	if !known(pct) {
		return 0, fmt.Errorf("%w: neither max nor 90th percentile reported", ErrDomainValue)
	}
	return *pct / *goal - 1, nil
}

func known(v *float64) bool {
	return v != nil && !math.IsNaN(*v)
}
