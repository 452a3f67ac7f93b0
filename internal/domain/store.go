package domain

import "context"

// DataStore is the read side of report persistence.
type DataStore interface {
	// Territories lists every "City ST, zip" served by any utility.
	Territories(ctx context.Context) ([]string, error)

	// FindUtility returns the utility serving territory, or ErrNotFound.
	FindUtility(ctx context.Context, territory string) (WaterUtility, error)

	// FetchReadings returns the raw reading records for one utility-year in
	// the store's insertion order.
	FetchReadings(ctx context.Context, utilityID string, year int) ([]ReadingRecord, error)

	// ResolveContaminant looks up reference data by name or alternate name,
	// or returns ErrNotFound.
	ResolveContaminant(ctx context.Context, nameOrAlias string) (Contaminant, error)
}

// Writer is the insert side of report persistence.
type Writer interface {
	SaveUtility(ctx context.Context, u WaterUtility) error
	SaveContaminant(ctx context.Context, c Contaminant) error
	SaveReadings(ctx context.Context, readings []Reading) error
}
