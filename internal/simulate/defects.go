package simulate

import (
	"math/rand"
	"strings"

	"github.com/user/event-pipeline/internal/domain"
)

// Defect kinds, used as metric labels and in tests.
const (
	DefectMissingUser  = "missing_user"
	DefectBadTime      = "bad_time"
	DefectBadPlatform  = "bad_platform"
	DefectCaseEvent    = "case_event"
	DefectBlankEventID = "blank_event_id"
)

// InvalidTimeLiteral is the syntactically broken timestamp injected by
// the bad_time defect.
const InvalidTimeLiteral = "2026-13-99T99:99:99Z"

var defectKinds = []string{
	DefectMissingUser,
	DefectBadTime,
	DefectBadPlatform,
	DefectCaseEvent,
	DefectBlankEventID,
}

// DefectStats reports what the injector did to one batch.
type DefectStats struct {
	CorruptedByKind map[string]int
	Duplicates      int
}

// Injector corrupts a small fraction of a day's events and then appends
// duplicates, simulating real-world data-quality issues and delivery
// retries.
type Injector struct {
	rng            *rand.Rand
	corruptionRate float64
	duplicateRate  float64
}

// NewInjector creates an Injector driven by the shared run generator.
func NewInjector(rng *rand.Rand, corruptionRate, duplicateRate float64) *Injector {
	return &Injector{rng: rng, corruptionRate: corruptionRate, duplicateRate: duplicateRate}
}

// Apply runs the corruption pass, then the duplication pass, then
// re-sorts the batch by event_time. Corruption happens first on
// purpose: duplicates are verbatim copies of already-corrupted events
// and are never corrupted again.
func (in *Injector) Apply(events []domain.Event) ([]domain.Event, DefectStats) {
	stats := DefectStats{CorruptedByKind: make(map[string]int)}

	for i := range events {
		if kind, ok := in.maybeCorrupt(&events[i]); ok {
			stats.CorruptedByKind[kind]++
		}
	}

	// floor(batch size × rate) verbatim copies, sampled with replacement.
	// Duplicates keep the original event_id; that is the point.
	dupes := int(float64(len(events)) * in.duplicateRate)
	for i := 0; i < dupes; i++ {
		events = append(events, events[in.rng.Intn(len(events))])
	}
	stats.Duplicates = dupes

	sortByEventTime(events)
	return events, stats
}

// maybeCorrupt applies at most one uniformly chosen defect to the event.
func (in *Injector) maybeCorrupt(e *domain.Event) (string, bool) {
	if in.rng.Float64() >= in.corruptionRate {
		return "", false
	}

	kind := defectKinds[in.rng.Intn(len(defectKinds))]
	switch kind {
	case DefectMissingUser:
		e.UserID = nil
	case DefectBadTime:
		e.EventTime = InvalidTimeLiteral
	case DefectBadPlatform:
		e.Platform = " " + strings.ToUpper(e.Platform) + " "
	case DefectCaseEvent:
		e.EventName = strings.ToUpper(e.EventName)
	case DefectBlankEventID:
		e.EventID = ""
	}
	return kind, true
}
