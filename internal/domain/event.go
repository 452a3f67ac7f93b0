package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RawEvent represents an unprocessed message from the ingest topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// ParseRawEvent decodes a flat JSON reading record and validates it.
func ParseRawEvent(raw RawEvent) (Reading, error) {
	var rec ReadingRecord
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return Reading{}, fmt.Errorf("parse raw event: %w: %v", ErrMalformedRecord, err)
	}
	r, err := ParseReadingRecord(rec)
	if err != nil {
		return Reading{}, fmt.Errorf("parse raw event: %w", err)
	}
	return r, nil
}

// QuarantinedRecord is a rejected ingest message kept for inspection.
type QuarantinedRecord struct {
	ID            string          `json:"id"`
	Topic         string          `json:"topic"`
	Partition     int             `json:"partition"`
	Offset        int64           `json:"offset"`
	Reason        Reason          `json:"reason"`
	Error         string          `json:"error"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	QuarantinedAt time.Time       `json:"quarantined_at"`
}

// Quarantine wraps a rejected message. The ID is derived from the message
// position, so redelivery of the same message yields the same ID.
func Quarantine(raw RawEvent, cause error) QuarantinedRecord {
	pos := fmt.Sprintf("%s/%d/%d", raw.Topic, raw.Partition, raw.Offset)
	q := QuarantinedRecord{
		ID:            uuid.NewSHA1(uuid.NameSpaceURL, []byte("kafka://"+pos)).String(),
		Topic:         raw.Topic,
		Partition:     raw.Partition,
		Offset:        raw.Offset,
		Reason:        ReasonOf(cause),
		Error:         cause.Error(),
		QuarantinedAt: clock.Now(),
	}
	if json.Valid(raw.Value) {
		q.Payload = json.RawMessage(raw.Value)
	}
	return q
}
