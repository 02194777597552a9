// Command replayer feeds previously generated raw JSONL batches into
// the Redis stream buffer at a bounded rate, approximating a live event
// feed for the cleaning pipeline to consume.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/user/event-pipeline/internal/domain"
	"github.com/user/event-pipeline/internal/pkg/logger"

	jsonlstore "github.com/user/event-pipeline/internal/adapter/store/jsonl"
)

func main() {
	rawPath := flag.String("raw", "data/raw/events", "Directory holding raw event batches")
	redisURL := flag.String("redis", "redis://localhost:6379", "Redis connection URL")
	streamKey := flag.String("stream", "raw_events", "Target Redis stream key")
	eps := flag.Int("eps", 500, "Events per second limit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storeLog := logger.New("info")

	store, err := jsonlstore.NewRawEventStore(*rawPath, storeLog)
	if err != nil {
		log.Fatalf("open raw event store: %v", err)
	}
	events, err := store.ReadAll(ctx)
	if err != nil {
		log.Fatalf("read raw events: %v", err)
	}
	if len(events) == 0 {
		log.Println("no raw events to replay")
		return
	}

	opts, err := redis.ParseURL(*redisURL)
	if err != nil {
		log.Fatalf("parse redis url: %v", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("connect to redis: %v", err)
	}

	log.Printf("Replaying %d events to stream %q at %d events/s", len(events), *streamKey, *eps)

	limiter := rate.NewLimiter(rate.Limit(*eps), 100) // Allow bursts up to 100
	start := time.Now()
	sent := 0

	for _, event := range events {
		if err := limiter.Wait(ctx); err != nil {
			break // context cancelled
		}

		data, err := json.Marshal(event)
		if err != nil {
			log.Printf("skipping unmarshallable event %s: %v", event.EventID, err)
			continue
		}

		err = client.XAdd(ctx, &redis.XAddArgs{
			Stream: *streamKey,
			Values: map[string]interface{}{
				"event":      string(data),
				"event_date": eventDate(event),
			},
		}).Err()
		if err != nil {
			log.Printf("failed to append event %s: %v", event.EventID, err)
			continue
		}
		sent++
	}

	elapsed := time.Since(start)
	log.Printf("Replay finished: %d/%d events in %s (%.1f events/s)",
		sent, len(events), elapsed.Round(time.Millisecond), float64(sent)/elapsed.Seconds())

	if ctx.Err() != nil {
		os.Exit(1)
	}
}

// eventDate derives the batch date label from the event's own
// timestamp; defective timestamps fall into an "unknown" partition.
func eventDate(e domain.Event) string {
	ts, err := time.Parse(domain.TimeLayout, e.EventTime)
	if err != nil {
		return "unknown"
	}
	return ts.UTC().Format(domain.DateLayout)
}
