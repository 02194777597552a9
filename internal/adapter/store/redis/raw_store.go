// Package redis implements the raw-event buffer on a Redis stream, an
// alternative to the file store when batches are fed from a live-ish
// source (see tools/replayer).
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/event-pipeline/internal/domain"
)

const defaultStreamKey = "raw_events"

// RawEventStore implements domain.RawEventStore on a Redis stream.
// Events are stored as one JSON payload per stream entry together with
// their batch date.
type RawEventStore struct {
	client    *redis.Client
	streamKey string
	logger    *slog.Logger
}

// NewRawEventStore creates a stream-backed raw event store. An empty
// streamKey selects the default.
func NewRawEventStore(client *redis.Client, streamKey string, logger *slog.Logger) *RawEventStore {
	if streamKey == "" {
		streamKey = defaultStreamKey
	}
	return &RawEventStore{
		client:    client,
		streamKey: streamKey,
		logger:    logger.With("component", "redis_raw_store"),
	}
}

// WriteBatch appends the day's events to the stream in a single
// pipelined round trip.
func (s *RawEventStore) WriteBatch(ctx context.Context, day time.Time, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	date := day.UTC().Format(domain.DateLayout)
	pipe := s.client.Pipeline()
	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", event.EventID, err)
		}
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: s.streamKey,
			Values: map[string]interface{}{
				"event":      string(data),
				"event_date": date,
			},
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append batch to stream %s: %w", s.streamKey, err)
	}

	s.logger.Debug("buffered raw batch", "stream", s.streamKey, "date", date, "events", len(events))
	return nil
}

// ReadAll returns every buffered event currently in the stream.
func (s *RawEventStore) ReadAll(ctx context.Context) ([]domain.Event, error) {
	messages, err := s.client.XRange(ctx, s.streamKey, "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("read stream %s: %w", s.streamKey, err)
	}

	var events []domain.Event
	for _, msg := range messages {
		payload, ok := msg.Values["event"].(string)
		if !ok {
			s.logger.Warn("skipping stream entry without event payload", "id", msg.ID)
			continue
		}
		var e domain.Event
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, fmt.Errorf("decode stream entry %s: %w", msg.ID, err)
		}
		events = append(events, e)
	}

	s.logger.Debug("read buffered events", "stream", s.streamKey, "events", len(events))
	return events, nil
}
