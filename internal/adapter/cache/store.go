package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/tapwater-report-service/internal/domain"
	"github.com/couchcryptid/tapwater-report-service/internal/observability"
)

// Store is a data store that also accepts writes.
type Store interface {
	domain.DataStore
	domain.Writer
}

// CachedStore decorates a Store with a read-through cache. Entries expire by
// the backend's TTL, and every successful write purges the whole cache.
// Not-found results are never cached.
type CachedStore struct {
	inner   Store
	backend Backend
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewCachedStore wraps inner with backend.
func NewCachedStore(inner Store, backend Backend, metrics *observability.Metrics, logger *slog.Logger) *CachedStore {
	return &CachedStore{inner: inner, backend: backend, metrics: metrics, logger: logger}
}

func (s *CachedStore) Territories(ctx context.Context) ([]string, error) {
	return readThrough(ctx, s, "territories", "territories", func() ([]string, error) {
		return s.inner.Territories(ctx)
	})
}

func (s *CachedStore) FindUtility(ctx context.Context, territory string) (domain.WaterUtility, error) {
	key := "utility:" + strings.ToLower(strings.TrimSpace(territory))
	return readThrough(ctx, s, "utility", key, func() (domain.WaterUtility, error) {
		return s.inner.FindUtility(ctx, territory)
	})
}

func (s *CachedStore) FetchReadings(ctx context.Context, utilityID string, year int) ([]domain.ReadingRecord, error) {
	key := fmt.Sprintf("readings:%s:%d", utilityID, year)
	return readThrough(ctx, s, "readings", key, func() ([]domain.ReadingRecord, error) {
		return s.inner.FetchReadings(ctx, utilityID, year)
	})
}

func (s *CachedStore) ResolveContaminant(ctx context.Context, nameOrAlias string) (domain.Contaminant, error) {
	key := "contaminant:" + strings.ToLower(strings.TrimSpace(nameOrAlias))
	return readThrough(ctx, s, "contaminant", key, func() (domain.Contaminant, error) {
		return s.inner.ResolveContaminant(ctx, nameOrAlias)
	})
}

func (s *CachedStore) SaveUtility(ctx context.Context, u domain.WaterUtility) error {
	return s.writeThrough(ctx, func() error { return s.inner.SaveUtility(ctx, u) })
}

func (s *CachedStore) SaveContaminant(ctx context.Context, c domain.Contaminant) error {
	return s.writeThrough(ctx, func() error { return s.inner.SaveContaminant(ctx, c) })
}

func (s *CachedStore) SaveReadings(ctx context.Context, readings []domain.Reading) error {
	return s.writeThrough(ctx, func() error { return s.inner.SaveReadings(ctx, readings) })
}

// Invalidate drops every cached entry.
func (s *CachedStore) Invalidate(ctx context.Context) error {
	return s.backend.Purge(ctx)
}

func (s *CachedStore) writeThrough(ctx context.Context, write func() error) error {
	if err := write(); err != nil {
		return err
	}
	if err := s.Invalidate(ctx); err != nil {
		s.logger.Warn("cache invalidation failed", "error", err)
	}
	return nil
}

// readThrough serves key from the backend or loads and stores it. Backend
// failures degrade to a direct load.
func readThrough[T any](ctx context.Context, s *CachedStore, kind, key string, load func() (T, error)) (T, error) {
	if data, ok, err := s.backend.Get(ctx, key); err != nil {
		s.logger.Warn("cache get failed", "key", key, "error", err)
	} else if ok {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			s.metrics.CacheLookups.WithLabelValues(kind, "hit").Inc()
			return v, nil
		}
		s.logger.Warn("cache entry undecodable, reloading", "key", key)
	}
	s.metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()

	v, err := load()
	if err != nil {
		return v, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("cache marshal failed", "key", key, "error", err)
		return v, nil
	}
	if err := s.backend.Set(ctx, key, data); err != nil {
		s.logger.Warn("cache set failed", "key", key, "error", err)
	}
	return v, nil
}
