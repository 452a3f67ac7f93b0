package domain

import (
	"fmt"
	"strings"
)

// TerritoryPostcode returns the zip after the last comma of a
// "City ST, zip" territory, or "" when there is none.
func TerritoryPostcode(territory string) string {
	i := strings.LastIndex(territory, ",")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(territory[i+1:])
}

// MatchTerritory returns the first territory whose postcode equals postcode.
func MatchTerritory(territories []string, postcode string) (string, error) {
	postcode = strings.TrimSpace(postcode)
	if postcode == "" {
		return "", fmt.Errorf("territory for empty postcode: %w", ErrNotFound)
	}
	for _, t := range territories {
		if TerritoryPostcode(t) == postcode {
			return t, nil
		}
	}
	return "", fmt.Errorf("territory for postcode %q: %w", postcode, ErrNotFound)
}
