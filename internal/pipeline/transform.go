package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/tapwater-report-service/internal/domain"
)

// ReadingTransformer implements Transformer by validating flat JSON reading
// records. Contaminant names are kept as given and resolved when a report is
// built.
type ReadingTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates a ReadingTransformer.
func NewTransformer(logger *slog.Logger) *ReadingTransformer {
	return &ReadingTransformer{logger: logger}
}

func (t *ReadingTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.Reading, error) {
	r, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.Reading{}, err
	}
	t.logger.Debug("reading parsed",
		"origin", r.Origin,
		"year", r.Year,
		"contaminant", r.ContaminantName,
		"offset", raw.Offset,
	)
	return r, nil
}

// StoreLoader implements BatchLoader by appending readings to a store.
type StoreLoader struct {
	writer domain.Writer
}

// NewStoreLoader wraps w.
func NewStoreLoader(w domain.Writer) *StoreLoader {
	return &StoreLoader{writer: w}
}

func (l *StoreLoader) LoadBatch(ctx context.Context, readings []domain.Reading) error {
	return l.writer.SaveReadings(ctx, readings)
}
