// Package memory implements the report data store in process memory, seeded
// from a JSON fixture file.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/couchcryptid/tapwater-report-service/internal/domain"
	"github.com/spf13/cast"
)

// Fixture is the on-disk seed format.
type Fixture struct {
	Utilities    []domain.UtilityRecord     `json:"utilities"`
	Contaminants []domain.ContaminantRecord `json:"contaminants"`
	Readings     []domain.ReadingRecord     `json:"readings"`
}

// Store keeps utilities, contaminants, and raw reading records in insertion
// order. It is safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	utilities    []domain.WaterUtility
	contaminants []domain.Contaminant
	readings     []domain.ReadingRecord
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Load reads a fixture file and seeds a new store from it.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	fx, err := DecodeFixture(f)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	s := New()
	if err := s.Seed(fx); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return s, nil
}

// DecodeFixture reads a fixture document.
func DecodeFixture(r io.Reader) (Fixture, error) {
	var fx Fixture
	if err := json.NewDecoder(r).Decode(&fx); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	return fx, nil
}

// Seed adds every utility and contaminant in fx, failing on the first
// malformed one. Reading records are stored raw and parsed when a report
// is built.
func (s *Store) Seed(fx Fixture) error {
	utilities := make([]domain.WaterUtility, 0, len(fx.Utilities))
	for i, rec := range fx.Utilities {
		u, err := domain.ParseUtilityRecord(rec)
		if err != nil {
			return fmt.Errorf("utility %d: %w", i, err)
		}
		utilities = append(utilities, u)
	}
	contaminants := make([]domain.Contaminant, 0, len(fx.Contaminants))
	for i, rec := range fx.Contaminants {
		c, err := domain.ParseContaminantRecord(rec)
		if err != nil {
			return fmt.Errorf("contaminant %d: %w", i, err)
		}
		contaminants = append(contaminants, c)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range utilities {
		s.putUtility(u)
	}
	for _, c := range contaminants {
		s.putContaminant(c)
	}
	s.readings = append(s.readings, fx.Readings...)
	return nil
}

func (s *Store) Territories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for _, u := range s.utilities {
		for _, t := range u.Territory {
			if !slices.Contains(out, t) {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (s *Store) FindUtility(_ context.Context, territory string) (domain.WaterUtility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.utilities {
		if u.Serves(territory) {
			return u, nil
		}
	}
	return domain.WaterUtility{}, fmt.Errorf("utility serving %q: %w", territory, domain.ErrNotFound)
}

func (s *Store) FetchReadings(_ context.Context, utilityID string, year int) ([]domain.ReadingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.ReadingRecord
	for _, rec := range s.readings {
		if cast.ToString(rec[domain.KeyOrigin]) == utilityID && cast.ToInt(rec[domain.KeyYear]) == year {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *Store) ResolveContaminant(_ context.Context, nameOrAlias string) (domain.Contaminant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.contaminants {
		if c.Matches(nameOrAlias) {
			return c, nil
		}
	}
	return domain.Contaminant{}, fmt.Errorf("contaminant %q: %w", nameOrAlias, domain.ErrNotFound)
}

// SaveUtility inserts u or replaces the utility with the same PWSID.
func (s *Store) SaveUtility(_ context.Context, u domain.WaterUtility) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putUtility(u)
	return nil
}

// SaveContaminant inserts c or replaces the contaminant with the same name.
func (s *Store) SaveContaminant(_ context.Context, c domain.Contaminant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putContaminant(c)
	return nil
}

// SaveReadings appends readings.
func (s *Store) SaveReadings(_ context.Context, readings []domain.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range readings {
		s.readings = append(s.readings, r.Record())
	}
	return nil
}

// Snapshot returns the store contents in fixture form.
func (s *Store) Snapshot() Fixture {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fx := Fixture{
		Utilities:    make([]domain.UtilityRecord, 0, len(s.utilities)),
		Contaminants: make([]domain.ContaminantRecord, 0, len(s.contaminants)),
		Readings:     slices.Clone(s.readings),
	}
	for _, u := range s.utilities {
		fx.Utilities = append(fx.Utilities, u.Record())
	}
	for _, c := range s.contaminants {
		fx.Contaminants = append(fx.Contaminants, c.Record())
	}
	return fx
}

func (s *Store) putUtility(u domain.WaterUtility) {
	i := slices.IndexFunc(s.utilities, func(x domain.WaterUtility) bool { return x.PWSID == u.PWSID })
	if i >= 0 {
		s.utilities[i] = u
		return
	}
	s.utilities = append(s.utilities, u)
}

func (s *Store) putContaminant(c domain.Contaminant) {
	i := slices.IndexFunc(s.contaminants, func(x domain.Contaminant) bool { return x.Name == c.Name })
	if i >= 0 {
		s.contaminants[i] = c
		return
	}
	s.contaminants = append(s.contaminants, c)
}
