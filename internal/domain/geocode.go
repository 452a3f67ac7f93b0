package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrGeocodingDisabled is returned when an address lookup is attempted
// without a geocoder.
var ErrGeocodingDisabled = errors.New("geocoding disabled")

// LocateTerritory geocodes address and matches the resulting postcode against
// territories.
func LocateTerritory(ctx context.Context, geocoder Geocoder, territories []string, address string) (string, error) {
	if geocoder == nil {
		return "", ErrGeocodingDisabled
	}

	place, err := geocoder.ForwardGeocode(ctx, address)
	if err != nil {
		return "", fmt.Errorf("geocode address: %w", err)
	}
	if place.Postcode == "" {
		return "", fmt.Errorf("postcode for %q: %w", address, ErrNotFound)
	}
	return MatchTerritory(territories, place.Postcode)
}
