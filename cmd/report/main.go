package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/tapwater-report-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/tapwater-report-service/internal/adapter/kafka"
	"github.com/couchcryptid/tapwater-report-service/internal/adapter/mapbox"
	"github.com/couchcryptid/tapwater-report-service/internal/config"
	"github.com/couchcryptid/tapwater-report-service/internal/domain"
	"github.com/couchcryptid/tapwater-report-service/internal/observability"
	"github.com/couchcryptid/tapwater-report-service/internal/pipeline"
	"github.com/couchcryptid/tapwater-report-service/internal/report"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, metrics); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	st, err := openStore(ctx, cfg, metrics, logger)
	if err != nil {
		return err
	}
	defer st.close()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	svc := report.NewService(st.store, geocoder, metrics, logger)
	ready := readiness{svc}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.IngestEnabled {
		reader := kafkaadapter.NewReader(cfg, logger)
		quarantine := kafkaadapter.NewQuarantineWriter(cfg, logger)
		defer func() {
			if err := reader.Close(); err != nil {
				logger.Error("kafka reader close error", "error", err)
			}
			if err := quarantine.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()

		p := pipeline.New(reader, pipeline.NewTransformer(logger), pipeline.NewStoreLoader(st.store),
			quarantine, logger, metrics, cfg.BatchSize)
		ready = append(ready, p)

		g.Go(func() error {
			return p.Run(gctx)
		})
		logger.Info("ingest enabled", "topic", cfg.KafkaSourceTopic, "group", cfg.KafkaGroupID)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, ready, cfg.ReportTopN, logger)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		return nil
	})

	return g.Wait()
}

// readiness is ready when every check passes.
type readiness []sharedobs.ReadinessChecker

func (r readiness) CheckReadiness(ctx context.Context) error {
	for _, c := range r {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}
