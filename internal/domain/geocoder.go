package domain

import "context"

// Place is a geocoding match for a free-form address.
type Place struct {
	Lat              float64
	Lon              float64
	Postcode         string
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Geocoder resolves free-form addresses.
type Geocoder interface {
	// ForwardGeocode converts an address to its best matching place. An empty
	// Place with a nil error means no match.
	ForwardGeocode(ctx context.Context, address string) (Place, error)
}
