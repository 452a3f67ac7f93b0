// Package report builds water quality reports from a data store. It resolves
// reading records against contaminant reference data and hands the result to
// the domain ranking and indexing functions.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/tapwater-report-service/internal/domain"
	"github.com/couchcryptid/tapwater-report-service/internal/observability"
	"github.com/spf13/cast"
)

// ErrInvalidRequest marks caller input that cannot name a territory.
var ErrInvalidRequest = errors.New("invalid request")

// Service generates reports. It is safe for concurrent use when the store is.
type Service struct {
	store    domain.DataStore
	geocoder domain.Geocoder
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewService creates a Service. A nil geocoder disables address lookup.
func NewService(store domain.DataStore, geocoder domain.Geocoder, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{store: store, geocoder: geocoder, metrics: metrics, logger: logger}
}

// GeocodingEnabled reports whether LocateTerritory can succeed.
func (s *Service) GeocodingEnabled() bool {
	return s.geocoder != nil
}

// Territories lists every territory served by a known utility.
func (s *Service) Territories(ctx context.Context) ([]string, error) {
	t, err := s.store.Territories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list territories: %w", err)
	}
	return t, nil
}

// Contaminant returns reference data for a name or alias.
func (s *Service) Contaminant(ctx context.Context, name string) (domain.Contaminant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Contaminant{}, fmt.Errorf("contaminant name is empty: %w", ErrInvalidRequest)
	}
	return s.store.ResolveContaminant(ctx, name)
}

// LocateTerritory geocodes a free-form address and returns the territory
// sharing its postcode.
func (s *Service) LocateTerritory(ctx context.Context, address string) (string, error) {
	if strings.TrimSpace(address) == "" {
		return "", fmt.Errorf("address is empty: %w", ErrInvalidRequest)
	}
	if s.geocoder == nil {
		return "", domain.ErrGeocodingDisabled
	}
	territories, err := s.Territories(ctx)
	if err != nil {
		return "", err
	}
	return domain.LocateTerritory(ctx, s.geocoder, territories, address)
}

// Generate builds the report for territory from the serving utility's latest
// reporting year.
func (s *Service) Generate(ctx context.Context, territory string) (domain.Report, error) {
	start := time.Now()
	rep, err := s.generate(ctx, strings.TrimSpace(territory))
	s.metrics.ReportDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		s.metrics.ReportsGenerated.WithLabelValues("success").Inc()
	case errors.Is(err, domain.ErrNotFound):
		s.metrics.ReportsGenerated.WithLabelValues("not_found").Inc()
	case errors.Is(err, ErrInvalidRequest):
		s.metrics.ReportsGenerated.WithLabelValues("invalid").Inc()
	default:
		s.metrics.ReportsGenerated.WithLabelValues("error").Inc()
		s.logger.Error("report generation failed", "territory", territory, "error", err)
	}
	return rep, err
}

func (s *Service) generate(ctx context.Context, territory string) (domain.Report, error) {
	if territory == "" {
		return domain.Report{}, fmt.Errorf("territory is empty: %w", ErrInvalidRequest)
	}

	u, err := s.store.FindUtility(ctx, territory)
	if err != nil {
		return domain.Report{}, err
	}

	year := u.ReportYear()
	records, err := s.store.FetchReadings(ctx, u.PWSID, year)
	if err != nil {
		return domain.Report{}, fmt.Errorf("fetch readings for %s: %w", u.PWSID, err)
	}

	readings, diag, err := s.resolve(ctx, records)
	if err != nil {
		return domain.Report{}, err
	}

	rep := domain.AssembleReport(u, territory, readings, diag)

	for reason, n := range rep.Diagnostics.Counts() {
		s.metrics.ReadingsSkipped.WithLabelValues(string(reason)).Add(float64(n))
	}
	s.metrics.RankedFindings.Observe(float64(rep.Ranking.Len()))

	if rep.Diagnostics.Total() > 0 {
		s.logger.Warn("readings skipped",
			"territory", territory,
			"pwsid", u.PWSID,
			"year", year,
			"skipped", rep.Diagnostics.Total(),
		)
	}
	s.logger.Debug("report generated",
		"territory", territory,
		"pwsid", u.PWSID,
		"year", year,
		"readings", len(records),
		"primary", rep.Ranking.Len(),
		"secondary", rep.Secondary.Len(),
	)
	return rep, nil
}

// resolve parses records and attaches contaminant reference data. Malformed
// records are skipped and recorded. A name with no reference data leaves the
// reading unresolved for the classifier to drop. Store failures abort.
func (s *Service) resolve(ctx context.Context, records []domain.ReadingRecord) ([]domain.Reading, domain.Diagnostics, error) {
	var diag domain.Diagnostics
	readings := make([]domain.Reading, 0, len(records))
	refs := make(map[string]*domain.Contaminant)

	for _, rec := range records {
		r, err := domain.ParseReadingRecord(rec)
		if err != nil {
			diag.Record(cast.ToString(rec[domain.KeyContaminant]), cast.ToInt(rec[domain.KeyYear]), err)
			continue
		}

		key := strings.ToLower(r.ContaminantName)
		ref, seen := refs[key]
		if !seen {
			c, err := s.store.ResolveContaminant(ctx, r.ContaminantName)
			switch {
			case err == nil:
				ref = &c
			case errors.Is(err, domain.ErrNotFound):
				ref = nil
			default:
				return nil, domain.Diagnostics{}, fmt.Errorf("resolve contaminant %q: %w", r.ContaminantName, err)
			}
			refs[key] = ref
		}
		r.Contaminant = ref
		readings = append(readings, r)
	}
	return readings, diag, nil
}

// CheckReadiness reports whether the store can serve territories.
func (s *Service) CheckReadiness(ctx context.Context) error {
	t, err := s.store.Territories(ctx)
	if err != nil {
		return fmt.Errorf("store not ready: %w", err)
	}
	if len(t) == 0 {
		return errors.New("store has no territories")
	}
	return nil
}
