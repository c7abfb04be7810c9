// Package metrics defines the Prometheus collectors used by the indexer,
// work queue, query engines and sinks, and exposes an HTTP handler for
// scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for one process.
type Metrics struct {
	TasksSubmittedTotal prometheus.Counter
	TasksCompletedTotal prometheus.Counter
	TaskPanicsTotal     prometheus.Counter
	TasksPending        prometheus.Gauge
	Workers             prometheus.Gauge
	FilesIndexedTotal   *prometheus.CounterVec
	IndexMergeDuration  prometheus.Histogram
	IndexWords          prometheus.Gauge
	QueriesTotal        *prometheus.CounterVec
	SearchLatency       *prometheus.HistogramVec
	SearchResultsCount  prometheus.Histogram
	SinkExportsTotal    *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates all collectors and registers them with reg. A nil reg gets a
// private registry, which keeps repeated construction in tests safe.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		TasksSubmittedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "workqueue_tasks_submitted_total",
				Help: "Total tasks handed to the work queue.",
			},
		),
		TasksCompletedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "workqueue_tasks_completed_total",
				Help: "Total tasks finished by a worker, including failed ones.",
			},
		),
		TaskPanicsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "workqueue_task_panics_total",
				Help: "Total tasks that panicked and were recovered.",
			},
		),
		TasksPending: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "workqueue_tasks_pending",
				Help: "Tasks queued or running.",
			},
		),
		Workers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "workqueue_workers",
				Help: "Number of live worker goroutines.",
			},
		),
		FilesIndexedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "index_files_total",
				Help: "Files processed by the index builder by status (ok, error).",
			},
			[]string{"status"},
		),
		IndexMergeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "index_merge_duration_seconds",
				Help:    "Time spent merging a per-file index into the shared index.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
		),
		IndexWords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "index_words",
				Help: "Distinct stems in the index after the last build.",
			},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "query_lines_total",
				Help: "Query lines by outcome (answered, memoized, empty).",
			},
			[]string{"outcome"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "Index search latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"mode"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of locations returned per query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		SinkExportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sink_exports_total",
				Help: "Run exports by sink and status.",
			},
			[]string{"sink", "status"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Requests to the metrics server by route and status code.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Metrics server request latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	reg.MustRegister(
		m.TasksSubmittedTotal,
		m.TasksCompletedTotal,
		m.TaskPanicsTotal,
		m.TasksPending,
		m.Workers,
		m.FilesIndexedTotal,
		m.IndexMergeDuration,
		m.IndexWords,
		m.QueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.SinkExportsTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}

	return m
}

// Handler returns the scrape handler for the registry the metrics were
// registered with, falling back to the default registry.
func (m *Metrics) Handler() http.Handler {
	if m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
