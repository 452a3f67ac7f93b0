// Package postgres implements the report data store on PostgreSQL.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/tapwater-report-service/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // registers the postgres:// driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrations embed.FS

// NewMigrator returns a migrator for the embedded schema.
func NewMigrator(dsn string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// Store reads and writes utilities, contaminants, and readings through a
// pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL and verifies the connection.
func New(ctx context.Context, databaseURL string, maxConns int32) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

const territoriesQuery = `
	SELECT x.t
	FROM utilities u
	CROSS JOIN LATERAL unnest(u.territory) WITH ORDINALITY AS x(t, ord)
	ORDER BY u.seq, x.ord`

func (s *Store) Territories(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, territoriesQuery)
	if err != nil {
		return nil, fmt.Errorf("query territories: %w", err)
	}
	all, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect territories: %w", err)
	}

	out := make([]string, 0, len(all))
	for _, t := range all {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out, nil
}

const findUtilityQuery = `
	SELECT name, pwsid, street, city_state_zip, supply, treatment,
	       territory, last_updated, pdf, publish
	FROM utilities
	WHERE EXISTS (SELECT 1 FROM unnest(territory) t WHERE lower(t) = lower($1))
	ORDER BY seq
	LIMIT 1`

func (s *Store) FindUtility(ctx context.Context, territory string) (domain.WaterUtility, error) {
	rows, err := s.pool.Query(ctx, findUtilityQuery, strings.TrimSpace(territory))
	if err != nil {
		return domain.WaterUtility{}, fmt.Errorf("query utility: %w", err)
	}
	rec, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.WaterUtility{}, fmt.Errorf("utility serving %q: %w", territory, domain.ErrNotFound)
	}
	if err != nil {
		return domain.WaterUtility{}, fmt.Errorf("collect utility: %w", err)
	}
	return domain.ParseUtilityRecord(domain.UtilityRecord(rec))
}

const fetchReadingsQuery = `
	SELECT year, origin, contaminant, units, max, min, annual_avg, lraa, raa,
	       ninetieth_perc, violation, sample_num
	FROM readings
	WHERE origin = $1 AND year = $2
	ORDER BY id`

func (s *Store) FetchReadings(ctx context.Context, utilityID string, year int) ([]domain.ReadingRecord, error) {
	rows, err := s.pool.Query(ctx, fetchReadingsQuery, utilityID, year)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("collect readings: %w", err)
	}

	out := make([]domain.ReadingRecord, len(maps))
	for i, m := range maps {
		out[i] = domain.ReadingRecord(m)
	}
	return out, nil
}

const resolveContaminantQuery = `
	SELECT name, alt_names, standard, type, units, mclg, mcl,
	       ac AS "AC", ro AS "RO", ion AS "Ion", risk, source, rul, effects
	FROM contaminants
	WHERE lower(name) = lower($1)
	   OR EXISTS (SELECT 1 FROM unnest(alt_names) a WHERE lower(a) = lower($1))
	ORDER BY seq
	LIMIT 1`

func (s *Store) ResolveContaminant(ctx context.Context, nameOrAlias string) (domain.Contaminant, error) {
	rows, err := s.pool.Query(ctx, resolveContaminantQuery, strings.TrimSpace(nameOrAlias))
	if err != nil {
		return domain.Contaminant{}, fmt.Errorf("query contaminant: %w", err)
	}
	rec, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Contaminant{}, fmt.Errorf("contaminant %q: %w", nameOrAlias, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Contaminant{}, fmt.Errorf("collect contaminant: %w", err)
	}
	return domain.ParseContaminantRecord(domain.ContaminantRecord(rec))
}

const saveUtilityQuery = `
	INSERT INTO utilities (
		pwsid, name, street, city_state_zip, supply, treatment,
		territory, last_updated, pdf, publish
	) VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7::text[], '{}'), $8, $9, $10)
	ON CONFLICT (pwsid) DO UPDATE SET
		name = EXCLUDED.name,
		street = EXCLUDED.street,
		city_state_zip = EXCLUDED.city_state_zip,
		supply = EXCLUDED.supply,
		treatment = EXCLUDED.treatment,
		territory = EXCLUDED.territory,
		last_updated = EXCLUDED.last_updated,
		pdf = EXCLUDED.pdf,
		publish = EXCLUDED.publish`

func (s *Store) SaveUtility(ctx context.Context, u domain.WaterUtility) error {
	_, err := s.pool.Exec(ctx, saveUtilityQuery,
		u.PWSID, u.Name, u.Street, u.CityStateZip, u.Supply, u.Treatment,
		u.Territory, u.LastUpdated, u.PDF, u.Publish,
	)
	if err != nil {
		return fmt.Errorf("upsert utility %s: %w", u.PWSID, err)
	}
	return nil
}

const saveContaminantQuery = `
	INSERT INTO contaminants (
		name, alt_names, standard, type, units, mclg, mcl,
		ac, ro, ion, risk, source, rul, effects
	) VALUES ($1, COALESCE($2::text[], '{}'), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (name) DO UPDATE SET
		alt_names = EXCLUDED.alt_names,
		standard = EXCLUDED.standard,
		type = EXCLUDED.type,
		units = EXCLUDED.units,
		mclg = EXCLUDED.mclg,
		mcl = EXCLUDED.mcl,
		ac = EXCLUDED.ac,
		ro = EXCLUDED.ro,
		ion = EXCLUDED.ion,
		risk = EXCLUDED.risk,
		source = EXCLUDED.source,
		rul = EXCLUDED.rul,
		effects = EXCLUDED.effects`

func (s *Store) SaveContaminant(ctx context.Context, c domain.Contaminant) error {
	_, err := s.pool.Exec(ctx, saveContaminantQuery,
		c.Name, c.AltNames, string(c.Standard), c.Category, string(c.Unit),
		c.HealthGoal, c.LegalLimit,
		c.Filtration.ActivatedCarbon, c.Filtration.ReverseOsmosis, c.Filtration.IonExchange,
		c.Risk, c.Source, c.Remedy, c.Effects,
	)
	if err != nil {
		return fmt.Errorf("upsert contaminant %s: %w", c.Name, err)
	}
	return nil
}

var readingColumns = []string{
	"year", "origin", "contaminant", "units", "max", "min", "annual_avg",
	"lraa", "raa", "ninetieth_perc", "violation", "sample_num",
}

// SaveReadings bulk-inserts readings with COPY.
func (s *Store) SaveReadings(ctx context.Context, readings []domain.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{"readings"}, readingColumns,
		pgx.CopyFromSlice(len(readings), func(i int) ([]any, error) {
			r := readings[i]
			return []any{
				r.Year, r.Origin, r.ContaminantName, string(r.Unit),
				r.Max, r.Min, r.AnnualAverage,
				r.LocationalRunningAnnualAverage, r.RunningAnnualAverage,
				r.NinetiethPercentile, r.Violation, r.SampleCount,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy readings: %w", err)
	}
	if int(n) != len(readings) {
		return fmt.Errorf("copy readings: wrote %d of %d rows", n, len(readings))
	}
	return nil
}
