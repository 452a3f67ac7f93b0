package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/tapwater-report-service/internal/domain"
	"github.com/couchcryptid/tapwater-report-service/internal/observability"
)

// BatchExtractor reads up to batchSize raw events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer converts a raw event into a validated reading.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.Reading, error)
}

// BatchLoader writes multiple readings to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, readings []domain.Reading) error
}

// Quarantiner receives messages the transformer rejected.
type Quarantiner interface {
	Quarantine(ctx context.Context, records []domain.QuarantinedRecord) error
}

// Pipeline orchestrates the extract-transform-load loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	quarantine  Quarantiner
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability. A nil
// quarantine drops rejected messages after logging them.
func New(e BatchExtractor, t Transformer, l BatchLoader, q Quarantiner, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		quarantine:  q,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil once the pipeline has extracted from the source
// at least once without error.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("ingest pipeline has not reached the source yet")
	}
	return nil
}

// Run executes the batch ETL loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processBatch runs one extract-transform-load cycle. Returns false if the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}
	p.ready.Store(true)

	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.MessagesConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	*backoff = 200 * time.Millisecond

	if !p.transformAndLoad(ctx, rawBatch, backoff, maxBackoff) {
		return false
	}
	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	return true
}

// transformAndLoad transforms each message in the batch, quarantines the
// rejects, loads the successes, and commits offsets. Returns false if the
// pipeline should stop.
func (p *Pipeline) transformAndLoad(ctx context.Context, rawBatch []domain.RawEvent, backoff *time.Duration, maxBackoff time.Duration) bool {
	readings := make([]domain.Reading, 0, len(rawBatch))
	loadedRaws := make([]domain.RawEvent, 0, len(rawBatch))
	var rejected []domain.QuarantinedRecord
	var rejectedRaws []domain.RawEvent

	for _, raw := range rawBatch {
		r, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("transform failed, quarantining message",
				"error", err,
				"reason", domain.ReasonOf(err),
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			rejected = append(rejected, domain.Quarantine(raw, err))
			rejectedRaws = append(rejectedRaws, raw)
			continue
		}
		readings = append(readings, r)
		loadedRaws = append(loadedRaws, raw)
	}

	p.quarantineRejected(ctx, rejected)
	for _, raw := range rejectedRaws {
		p.commitOffset(ctx, raw)
	}

	if len(readings) == 0 {
		return true
	}

	if err := p.loader.LoadBatch(ctx, readings); err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(readings))
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	p.metrics.ReadingsSaved.Add(float64(len(readings)))

	for _, raw := range loadedRaws {
		p.commitOffset(ctx, raw)
	}
	return true
}

// quarantineRejected publishes rejects. Rejects are committed whether or not
// the publish succeeds, so a poison message never blocks the partition.
func (p *Pipeline) quarantineRejected(ctx context.Context, rejected []domain.QuarantinedRecord) {
	if len(rejected) == 0 || p.quarantine == nil {
		return
	}
	if err := p.quarantine.Quarantine(ctx, rejected); err != nil {
		p.logger.Error("quarantine failed, dropping rejected messages", "error", err, "count", len(rejected))
		return
	}
	p.metrics.MessagesQuarantined.Add(float64(len(rejected)))
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
