package integration

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	jsonlstore "github.com/user/event-pipeline/internal/adapter/store/jsonl"
	"github.com/user/event-pipeline/internal/clean"
	"github.com/user/event-pipeline/internal/domain"
	"github.com/user/event-pipeline/internal/engine"
	"github.com/user/event-pipeline/internal/simulate"
	"github.com/user/event-pipeline/internal/usecase"
)

// TestGenerateThenClean drives the full pipeline over real file stores:
// a multi-day generation run with defects enabled, then a cleaning run
// over everything that was written.
func TestGenerateThenClean(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	rawStore, err := jsonlstore.NewRawEventStore(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("create raw store: %v", err)
	}

	genCfg := usecase.GenerateConfig{
		StartDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		NumDays:        4,
		Seed:           42,
		CorruptionRate: 0.10,
		DuplicateRate:  0.10,
		Simulation: simulate.Config{
			NumUsers:         50,
			SignupRate:       0.3,
			DailyActiveRate:  0.8,
			SessionsMin:      1,
			SessionsMax:      2,
			FeatureEventsMin: 1,
			FeatureEventsMax: 5,
			PurchaseRate:     0.2,
		},
	}
	generate := usecase.NewGenerateEventsUseCase(rawStore, logger, nil, genCfg)

	total, err := generate.Run(ctx)
	if err != nil {
		t.Fatalf("generation run failed: %v", err)
	}
	if total == 0 {
		t.Fatal("generation produced no events")
	}

	cleanDir := t.TempDir()
	cleanStore, err := jsonlstore.NewCleanedRecordStore(cleanDir, logger)
	if err != nil {
		t.Fatalf("create clean store: %v", err)
	}

	pipeline := clean.New(engine.New(4), 8, logger)
	cleaner := usecase.NewCleanEventsUseCase(rawStore, cleanStore, pipeline, logger, nil)

	stats, err := cleaner.Run(ctx)
	if err != nil {
		t.Fatalf("cleaning run failed: %v", err)
	}

	if stats.RowsRead != int64(total) {
		t.Errorf("rows read %d, generated %d", stats.RowsRead, total)
	}
	if stats.RowsOutput == 0 {
		t.Fatal("cleaning produced no output")
	}
	if stats.RowsOutput > stats.RowsValid || stats.RowsValid > stats.RowsRead {
		t.Errorf("stats not monotone: %+v", stats)
	}
	// With a 10% corruption rate something must get dropped, and with a
	// 10% duplicate rate dedup must collapse something.
	if stats.RowsValid == stats.RowsRead {
		t.Error("expected validation to drop some corrupted rows")
	}
	if stats.RowsOutput == stats.RowsValid {
		t.Error("expected deduplication to collapse some duplicates")
	}

	records, err := cleanStore.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read cleaned records: %v", err)
	}
	if int64(len(records)) != stats.RowsOutput {
		t.Fatalf("persisted %d records, pipeline reported %d", len(records), stats.RowsOutput)
	}

	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, dup := seen[r.EventID]; dup {
			t.Errorf("duplicate event id %q in cleaned output", r.EventID)
		}
		seen[r.EventID] = struct{}{}

		if !domain.ValidEventName(r.EventName) {
			t.Errorf("event name %q outside closed set", r.EventName)
		}
		if !domain.ValidPlatform(r.Platform) {
			t.Errorf("platform %q outside closed set", r.Platform)
		}
		if r.SchemaVersion != domain.SchemaVersion {
			t.Errorf("unexpected schema version %d", r.SchemaVersion)
		}
		if r.EventTS.Format(domain.DateLayout) != r.EventDate {
			t.Errorf("event date %q does not match timestamp %s", r.EventDate, r.EventTS)
		}
		if _, err := time.Parse(domain.TimeLayout, r.EventTime); err != nil {
			t.Errorf("raw event time %q not preserved in wire format: %v", r.EventTime, err)
		}
	}
}

// TestCleanIsIdempotentOnDisk re-runs cleaning over the same raw data
// and checks the second run yields the identical row set.
func TestCleanIsIdempotentOnDisk(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	rawStore, err := jsonlstore.NewRawEventStore(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("create raw store: %v", err)
	}

	genCfg := usecase.GenerateConfig{
		StartDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		NumDays:        2,
		Seed:           7,
		CorruptionRate: 0.05,
		DuplicateRate:  0.05,
		Simulation: simulate.Config{
			NumUsers:         20,
			SignupRate:       0.2,
			DailyActiveRate:  1.0,
			SessionsMin:      1,
			SessionsMax:      1,
			FeatureEventsMin: 1,
			FeatureEventsMax: 3,
			PurchaseRate:     0.1,
		},
	}
	if _, err := usecase.NewGenerateEventsUseCase(rawStore, logger, nil, genCfg).Run(ctx); err != nil {
		t.Fatalf("generation run failed: %v", err)
	}

	pipeline := clean.New(engine.New(2), 4, logger)

	runOnce := func() map[string]struct{} {
		store, err := jsonlstore.NewCleanedRecordStore(t.TempDir(), logger)
		if err != nil {
			t.Fatalf("create clean store: %v", err)
		}
		if _, err := usecase.NewCleanEventsUseCase(rawStore, store, pipeline, logger, nil).Run(ctx); err != nil {
			t.Fatalf("cleaning run failed: %v", err)
		}
		records, err := store.ReadAll(ctx)
		if err != nil {
			t.Fatalf("read cleaned records: %v", err)
		}
		ids := make(map[string]struct{}, len(records))
		for _, r := range records {
			ids[r.EventID] = struct{}{}
		}
		return ids
	}

	first := runOnce()
	second := runOnce()

	if len(first) != len(second) {
		t.Fatalf("row sets differ in size: %d vs %d", len(first), len(second))
	}
	for id := range first {
		if _, ok := second[id]; !ok {
			t.Errorf("event id %q missing from second run", id)
		}
	}
}
