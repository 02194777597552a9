package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/user/event-pipeline/internal/adapter/metrics"
	"github.com/user/event-pipeline/internal/domain"
	"github.com/user/event-pipeline/internal/simulate"
)

// GenerateConfig describes one generation run.
type GenerateConfig struct {
	StartDate      time.Time
	NumDays        int
	Seed           int64
	CorruptionRate float64
	DuplicateRate  float64
	Simulation     simulate.Config
}

// GenerateEventsUseCase runs the multi-day simulation: for each day in
// order, simulate the population, inject defects, and persist the
// day's batch. It owns the seeded generator and the cross-day signup
// state, so a fixed (seed, config) pair reproduces the run exactly.
type GenerateEventsUseCase struct {
	store   domain.RawEventStore
	logger  *slog.Logger
	metrics *metrics.PipelineMetrics
	cfg     GenerateConfig
}

// NewGenerateEventsUseCase creates a new use case for event generation.
// metrics may be nil when no registry is wired (e.g. in tests).
func NewGenerateEventsUseCase(store domain.RawEventStore, logger *slog.Logger, m *metrics.PipelineMetrics, cfg GenerateConfig) *GenerateEventsUseCase {
	return &GenerateEventsUseCase{
		store:   store,
		logger:  logger.With("component", "generate_events"),
		metrics: m,
		cfg:     cfg,
	}
}

// Run simulates cfg.NumDays days and writes one raw batch per day.
// It returns the total number of events written, duplicates included.
func (uc *GenerateEventsUseCase) Run(ctx context.Context) (int, error) {
	rng := rand.New(rand.NewSource(uc.cfg.Seed))
	builder := simulate.NewBuilder(rng)
	sim := simulate.NewSimulator(rng, builder, uc.cfg.Simulation)
	injector := simulate.NewInjector(rng, uc.cfg.CorruptionRate, uc.cfg.DuplicateRate)

	signedUp := make(map[int64]struct{})
	total := 0

	for i := 0; i < uc.cfg.NumDays; i++ {
		day := uc.cfg.StartDate.AddDate(0, 0, i)

		events := sim.Day(day, signedUp)
		events, defects := injector.Apply(events)

		if err := uc.store.WriteBatch(ctx, day, events); err != nil {
			return total, fmt.Errorf("write batch for %s: %w", day.Format(domain.DateLayout), err)
		}

		uc.observe(events, defects)
		total += len(events)

		uc.logger.Info("wrote raw batch",
			"date", day.Format(domain.DateLayout),
			"events", len(events),
			"corrupted", countCorrupted(defects),
			"duplicates", defects.Duplicates,
		)
	}

	uc.logger.Info("generation run finished", "days", uc.cfg.NumDays, "events", total, "signed_up_users", len(signedUp))
	return total, nil
}

func (uc *GenerateEventsUseCase) observe(events []domain.Event, defects simulate.DefectStats) {
	if uc.metrics == nil {
		return
	}
	for _, e := range events {
		uc.metrics.EventsGenerated.WithLabelValues(e.EventName).Inc()
	}
	for kind, n := range defects.CorruptedByKind {
		uc.metrics.DefectsInjected.WithLabelValues(kind).Add(float64(n))
	}
	uc.metrics.Duplicates.Add(float64(defects.Duplicates))
}

func countCorrupted(defects simulate.DefectStats) int {
	n := 0
	for _, c := range defects.CorruptedByKind {
		n += c
	}
	return n
}
