package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PipelineMetrics holds all Prometheus metrics for both pipeline stages.
type PipelineMetrics struct {
	EventsGenerated *prometheus.CounterVec
	DefectsInjected *prometheus.CounterVec
	Duplicates      prometheus.Counter
	RowsRead        prometheus.Counter
	RowsValid       prometheus.Counter
	RowsOutput      prometheus.Counter
}

// NewPipelineMetrics initializes and registers the metrics on reg.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	factory := promauto.With(reg)
	return &PipelineMetrics{
		EventsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_pipeline",
			Subsystem: "generate",
			Name:      "events_total",
			Help:      "Total number of generated events by event name.",
		}, []string{"event_name"}),
		DefectsInjected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_pipeline",
			Subsystem: "generate",
			Name:      "defects_total",
			Help:      "Total number of intentionally corrupted events by defect kind.",
		}, []string{"kind"}),
		Duplicates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "event_pipeline",
			Subsystem: "generate",
			Name:      "duplicates_total",
			Help:      "Total number of duplicate events appended to simulate delivery retries.",
		}),
		RowsRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "event_pipeline",
			Subsystem: "clean",
			Name:      "rows_read_total",
			Help:      "Total number of raw rows read by the cleaning pipeline.",
		}),
		RowsValid: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "event_pipeline",
			Subsystem: "clean",
			Name:      "rows_valid_total",
			Help:      "Total number of rows surviving schema validation.",
		}),
		RowsOutput: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "event_pipeline",
			Subsystem: "clean",
			Name:      "rows_output_total",
			Help:      "Total number of cleaned rows written after deduplication.",
		}),
	}
}
