package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the agenda.
type Metrics struct {
	// Dataset fetch metrics.
	DatasetFetches       *prometheus.CounterVec   // labels: dataset={civicos,actividades,links,probe}, outcome={success,not_found,error}
	DatasetFetchDuration *prometheus.HistogramVec // labels: dataset
	MonthsAvailable      prometheus.Gauge

	// Rendering metrics.
	PagesRendered    *prometheus.CounterVec // labels: outcome={ok,no_data,error}
	FilteredActivity prometheus.Histogram

	// Snapshot publishing metrics.
	MessagesPublished prometheus.Counter
	PublishErrors     prometheus.Counter
	PublishRunning    prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)

	prometheus.MustRegister(
		m.DatasetFetches,
		m.DatasetFetchDuration,
		m.MonthsAvailable,
		m.PagesRendered,
		m.FilteredActivity,
		m.MessagesPublished,
		m.PublishErrors,
		m.PublishRunning,
	)

	return m
}

// NewUnregisteredMetrics creates fully described Metrics that are not added
// to any registry, for short-lived commands that expose no /metrics endpoint.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics(true)
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}

	return &Metrics{
		DatasetFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "civicos",
			Name:      "dataset_fetches_total",
			Help:      help("Dataset fetches by dataset and outcome."),
		}, []string{"dataset", "outcome"}),
		DatasetFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "civicos",
			Name:      "dataset_fetch_duration_seconds",
			Help:      help("Duration of a dataset fetch including decoding."),
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"dataset"}),
		MonthsAvailable: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "civicos",
			Name:      "months_available",
			Help:      help("Number of months found by the last discovery run."),
		}),
		PagesRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "civicos",
			Name:      "pages_rendered_total",
			Help:      help("Rendered agenda pages by outcome."),
		}, []string{"outcome"}),
		FilteredActivity: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "civicos",
			Name:      "filtered_activities",
			Help:      help("Number of activities left after filtering."),
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		}),
		MessagesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "civicos",
			Name:      "messages_published_total",
			Help:      help("Activity messages written to the snapshot topic."),
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "civicos",
			Name:      "publish_errors_total",
			Help:      help("Failed attempts to write a snapshot batch."),
		}),
		PublishRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "civicos",
			Name:      "publish_running",
			Help:      help("1 while a snapshot is being published, 0 otherwise."),
		}),
	}
}
