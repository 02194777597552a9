package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/user/event-pipeline/internal/adapter/metrics"
	"github.com/user/event-pipeline/internal/clean"
	"github.com/user/event-pipeline/internal/domain"
)

// CleanEventsUseCase reads the union of all raw batches, runs the
// cleaning pipeline, and writes the validated, deduplicated records to
// the durable sink.
type CleanEventsUseCase struct {
	source   domain.RawEventStore
	sink     domain.CleanedRecordStore
	pipeline *clean.Pipeline
	logger   *slog.Logger
	metrics  *metrics.PipelineMetrics
}

// NewCleanEventsUseCase creates a new use case for cleaning. metrics
// may be nil when no registry is wired (e.g. in tests).
func NewCleanEventsUseCase(source domain.RawEventStore, sink domain.CleanedRecordStore, pipeline *clean.Pipeline, logger *slog.Logger, m *metrics.PipelineMetrics) *CleanEventsUseCase {
	return &CleanEventsUseCase{
		source:   source,
		sink:     sink,
		pipeline: pipeline,
		logger:   logger.With("component", "clean_events"),
		metrics:  m,
	}
}

// Run executes one cleaning run. An empty input dataset is a valid run
// producing empty output; only a failing source or sink is an error.
func (uc *CleanEventsUseCase) Run(ctx context.Context) (clean.Stats, error) {
	events, err := uc.source.ReadAll(ctx)
	if err != nil {
		return clean.Stats{}, fmt.Errorf("read raw events: %w", err)
	}

	records, stats := uc.pipeline.Run(events)

	if err := uc.sink.WriteRecords(ctx, records); err != nil {
		return stats, fmt.Errorf("write cleaned records: %w", err)
	}

	if uc.metrics != nil {
		uc.metrics.RowsRead.Add(float64(stats.RowsRead))
		uc.metrics.RowsValid.Add(float64(stats.RowsValid))
		uc.metrics.RowsOutput.Add(float64(stats.RowsOutput))
	}

	uc.logger.Info("cleaned raw events",
		"rows_read", stats.RowsRead,
		"rows_valid", stats.RowsValid,
		"rows_output", stats.RowsOutput,
	)
	return stats, nil
}
