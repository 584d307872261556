package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for a map build.
type Metrics struct {
	// Labelled by dataset: consumption, production, boundaries.
	RowsRead       *prometheus.CounterVec
	RowsDropped    *prometheus.CounterVec // dataset, reason
	UnparsedValues *prometheus.CounterVec

	ProfilesBuilt     prometheus.Gauge
	JoinMisses        prometheus.Counter
	ArtifactsWritten  *prometheus.CounterVec // artifact
	ProfilesPublished prometheus.Counter
	RunDuration       prometheus.Histogram
	LastSuccess       prometheus.Gauge
}

// NewMetrics creates and registers all build metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "energy_map",
			Name:      "rows_read_total",
			Help:      "Input rows read per dataset.",
		}, []string{"dataset"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "energy_map",
			Name:      "rows_dropped_total",
			Help:      "Input rows excluded during normalization by dataset and reason.",
		}, []string{"dataset", "reason"}),
		UnparsedValues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "energy_map",
			Name:      "unparsed_values_total",
			Help:      "Numeric fields that failed to parse and were treated as 0.",
		}, []string{"dataset"}),
		ProfilesBuilt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "energy_map",
			Name:      "profiles_built",
			Help:      "State energy profiles computed in the last run.",
		}),
		JoinMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "energy_map",
			Name:      "join_misses_total",
			Help:      "Boundary features rendered with the fallback fill.",
		}),
		ArtifactsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "energy_map",
			Name:      "artifacts_written_total",
			Help:      "Output files written by artifact name.",
		}, []string{"artifact"}),
		ProfilesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "energy_map",
			Name:      "profiles_published_total",
			Help:      "Profiles published to the Kafka sink.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "energy_map",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete load-aggregate-render run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "energy_map",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RowsRead,
		m.RowsDropped,
		m.UnparsedValues,
		m.ProfilesBuilt,
		m.JoinMisses,
		m.ArtifactsWritten,
		m.ProfilesPublished,
		m.RunDuration,
		m.LastSuccess,
	}
}
