package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/tapwater-report-service/internal/config"
	"github.com/couchcryptid/tapwater-report-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// QuarantineWriter produces rejected ingest messages to the quarantine topic.
// It implements pipeline.Quarantiner.
type QuarantineWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewQuarantineWriter creates a Kafka producer for the configured quarantine topic.
func NewQuarantineWriter(cfg *config.Config, logger *slog.Logger) *QuarantineWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaQuarantineTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &QuarantineWriter{writer: w, logger: logger}
}

// Quarantine publishes records in a single WriteMessages call.
func (w *QuarantineWriter) Quarantine(ctx context.Context, records []domain.QuarantinedRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write quarantine batch: %w", err)
	}
	w.logger.Debug("quarantined messages", "count", len(records))
	return nil
}

func (w *QuarantineWriter) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a QuarantinedRecord into a Kafka message keyed
// by its ID.
func serializeToMessage(rec domain.QuarantinedRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize quarantined record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "reason", Value: []byte(rec.Reason)},
			{Key: "quarantined_at", Value: []byte(rec.QuarantinedAt.Format(time.RFC3339))},
		},
	}, nil
}
