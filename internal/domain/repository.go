package domain

import (
	"context"
	"time"
)

// RawEventStore persists and retrieves raw event batches, one logical
// batch per calendar day. This abstracts away the specific
// implementations (partitioned JSONL files, Redis Streams).
type RawEventStore interface {
	// WriteBatch persists one day's raw events as the batch for that day,
	// replacing any previous batch for the same day.
	WriteBatch(ctx context.Context, day time.Time, events []Event) error

	// ReadAll returns the union of all persisted batches, across all days
	// and in no guaranteed order.
	ReadAll(ctx context.Context) ([]Event, error)
}

// CleanedRecordStore is the durable sink for the cleaning pipeline's
// output, partitioned by event_date. Writes are idempotent on event_id.
type CleanedRecordStore interface {
	WriteRecords(ctx context.Context, records []CleanedRecord) error
}
