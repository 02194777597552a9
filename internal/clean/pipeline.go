// Package clean normalizes and validates raw event batches into
// analytics-ready records: standardize text fields, parse timestamps,
// derive the date partition key, validate against the schema contract,
// deduplicate by event_id, and project to the canonical column set.
package clean

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/user/event-pipeline/internal/domain"
	"github.com/user/event-pipeline/internal/engine"
)

// Stats are the only per-run diagnostics the pipeline reports. Invalid
// rows are counted, never individually surfaced.
type Stats struct {
	RowsRead   int64
	RowsValid  int64
	RowsOutput int64
}

// row is an Event enriched with the parsed timestamp and derived
// partition date. A row with tsValid == false survives until the
// validation stage, where it is dropped.
type row struct {
	event   domain.Event
	ts      time.Time
	tsValid bool
	date    string
}

// Pipeline runs the six cleaning stages over the batch engine. Every
// stage is a pure, row-independent transformation except deduplication,
// which groups by event_id.
type Pipeline struct {
	eng        *engine.Engine
	partitions int
	logger     *slog.Logger
}

// New creates a Pipeline. partitions < 1 means one partition per run.
func New(eng *engine.Engine, partitions int, logger *slog.Logger) *Pipeline {
	if partitions < 1 {
		partitions = 1
	}
	return &Pipeline{
		eng:        eng,
		partitions: partitions,
		logger:     logger.With("component", "clean_pipeline"),
	}
}

// Run cleans the union of all raw batches. Empty input is a valid run
// that yields empty output.
func (p *Pipeline) Run(events []domain.Event) ([]domain.CleanedRecord, Stats) {
	stats := Stats{RowsRead: int64(len(events))}

	ds := engine.FromSlice(events, p.partitions)

	standardized := engine.Map(p.eng, ds, standardize)
	parsed := engine.Map(p.eng, standardized, parseRow)
	valid := engine.Filter(p.eng, parsed, validate)
	stats.RowsValid = int64(valid.Len())

	unique := engine.DistinctBy(p.eng, valid, func(r row) string { return r.event.EventID })
	records := engine.Map(p.eng, unique, project).Collect()
	stats.RowsOutput = int64(len(records))

	p.logger.Info("cleaning run finished",
		"rows_read", stats.RowsRead,
		"rows_valid", stats.RowsValid,
		"rows_output", stats.RowsOutput,
	)
	return records, stats
}

// standardize trims surrounding whitespace and lower-cases the
// closed-set text fields. This runs before validation so that rows with
// repairable casing/whitespace defects are kept.
func standardize(e domain.Event) domain.Event {
	e.EventName = strings.ToLower(strings.TrimSpace(e.EventName))
	e.Platform = strings.ToLower(strings.TrimSpace(e.Platform))
	return e
}

// parseRow interprets event_time against the exact wire layout. A value
// that does not conform yields a null timestamp, not an error.
func parseRow(e domain.Event) row {
	ts, err := time.Parse(domain.TimeLayout, e.EventTime)
	if err != nil {
		return row{event: e}
	}
	ts = ts.UTC()
	return row{event: e, ts: ts, tsValid: true, date: ts.Format(domain.DateLayout)}
}

// validate is the schema contract: a row survives only if every
// predicate holds.
func validate(r row) bool {
	e := r.event
	switch {
	case strings.TrimSpace(e.EventID) == "":
		return false
	case !r.tsValid:
		return false
	case e.UserID == nil:
		return false
	case strings.TrimSpace(e.SessionID) == "":
		return false
	case e.SchemaVersion != domain.SchemaVersion:
		return false
	case !domain.ValidEventName(e.EventName):
		return false
	case !domain.ValidPlatform(e.Platform):
		return false
	}
	return true
}

// project emits the canonical column set. Only called on validated
// rows, so the user_id dereference is safe.
func project(r row) domain.CleanedRecord {
	return domain.CleanedRecord{
		EventID:        r.event.EventID,
		EventName:      r.event.EventName,
		EventTime:      r.event.EventTime,
		EventTS:        r.ts,
		EventDate:      r.date,
		UserID:         *r.event.UserID,
		SessionID:      r.event.SessionID,
		Platform:       r.event.Platform,
		SchemaVersion:  r.event.SchemaVersion,
		PropertiesJSON: canonicalProperties(r.event.Properties),
	}
}

// canonicalProperties re-encodes the open properties map into a stable
// compact form (encoding/json sorts map keys). Raw values that are not
// valid JSON are preserved verbatim rather than dropped; properties are
// not part of the validation contract.
func canonicalProperties(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return string(raw)
	}
	encoded, err := json.Marshal(decoded)
	if err != nil {
		return string(raw)
	}
	return string(encoded)
}
