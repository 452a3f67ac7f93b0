package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/tapwater-report-service/internal/adapter/cache"
	"github.com/couchcryptid/tapwater-report-service/internal/adapter/memory"
	"github.com/couchcryptid/tapwater-report-service/internal/adapter/postgres"
	"github.com/couchcryptid/tapwater-report-service/internal/config"
	"github.com/couchcryptid/tapwater-report-service/internal/observability"
	"github.com/redis/go-redis/v9"
)

// openedStore is the configured store plus the cleanup for everything it opened.
type openedStore struct {
	store   cache.Store
	closers []func()
}

func (o *openedStore) close() {
	for i := len(o.closers) - 1; i >= 0; i-- {
		o.closers[i]()
	}
}

// openStore builds the persistence stack named by STORE_DRIVER and wraps it
// in the lookup cache named by CACHE_BACKEND.
func openStore(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (*openedStore, error) {
	out := &openedStore{}

	switch cfg.StoreDriver {
	case config.StorePostgres:
		pg, err := postgres.New(ctx, cfg.DatabaseURL, int32(cfg.DBMaxConns)) //nolint:gosec // validated positive and small
		if err != nil {
			return nil, err
		}
		out.store = pg
		out.closers = append(out.closers, pg.Close)
		logger.Info("postgres store connected", "max_conns", cfg.DBMaxConns)
	default:
		mem, err := memory.Load(cfg.FixturePath)
		if err != nil {
			return nil, err
		}
		out.store = mem
		logger.Info("memory store loaded", "fixture", cfg.FixturePath)
	}

	var backend cache.Backend
	switch cfg.CacheBackend {
	case config.CacheNone:
		return out, nil
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		rb := cache.NewRedisBackend(client, "tapwater", cfg.CacheTTL)
		if err := rb.Ping(ctx); err != nil {
			_ = client.Close()
			out.close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		out.closers = append(out.closers, func() { _ = client.Close() })
		backend = rb
	default:
		backend = cache.NewMemoryBackend(cfg.CacheSize, cfg.CacheTTL, nil)
	}

	out.store = cache.NewCachedStore(out.store, backend, metrics, logger)
	logger.Info("store cache enabled", "backend", cfg.CacheBackend, "ttl", cfg.CacheTTL)
	return out, nil
}
