// Package metrics defines the Prometheus collectors recorded during a run
// and writes them in the text exposition format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Task outcomes.
const (
	TaskSubmitted = "submitted"
	TaskCompleted = "completed"
	TaskFailed    = "failed"
	TaskPanicked  = "panicked"
)

// Query outcomes.
const (
	QueryEvaluated = "evaluated"
	QueryDuplicate = "duplicate"
	QueryEmpty     = "empty"
	QueryFailed    = "failed"
)

// Metrics holds the collectors for one run. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	DocsIndexedTotal   prometheus.Counter
	DocFailuresTotal   prometheus.Counter
	TasksTotal         *prometheus.CounterVec
	TaskDuration       prometheus.Histogram
	QueriesTotal       *prometheus.CounterVec
	SearchLatency      *prometheus.HistogramVec
	SearchResultsCount prometheus.Histogram
	IndexWords         prometheus.Gauge
	IndexLocations     prometheus.Gauge
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "search_documents_indexed_total",
				Help: "Total documents added to the index.",
			},
		),
		DocFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "search_document_failures_total",
				Help: "Total documents that could not be read.",
			},
		),
		TasksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_worker_tasks_total",
				Help: "Worker tasks by outcome (submitted, completed, failed, panicked).",
			},
			[]string{"outcome"},
		),
		TaskDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_worker_task_duration_seconds",
				Help:    "Worker task run time in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Query lines by outcome (evaluated, duplicate, empty, failed).",
			},
			[]string{"outcome"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "Search latency in seconds.",
				Buckets: []float64{0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"mode"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of results returned per query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500},
			},
		),
		IndexWords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "search_index_words",
				Help: "Distinct words in the index.",
			},
		),
		IndexLocations: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "search_index_locations",
				Help: "Locations with at least one indexed word.",
			},
		),
	}

	m.registry.MustRegister(
		m.DocsIndexedTotal,
		m.DocFailuresTotal,
		m.TasksTotal,
		m.TaskDuration,
		m.QueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.IndexWords,
		m.IndexLocations,
	)

	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// WriteTextfile writes all collected metrics to path.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) TaskSubmitted() {
	if m == nil {
		return
	}
	m.TasksTotal.WithLabelValues(TaskSubmitted).Inc()
}

// TaskDone records a finished task. outcome is TaskCompleted, TaskFailed or
// TaskPanicked.
func (m *Metrics) TaskDone(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.TasksTotal.WithLabelValues(outcome).Inc()
	m.TaskDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) DocumentIndexed() {
	if m == nil {
		return
	}
	m.DocsIndexedTotal.Inc()
}

func (m *Metrics) DocumentFailed() {
	if m == nil {
		return
	}
	m.DocFailuresTotal.Inc()
}

func (m *Metrics) QueryOutcome(outcome string) {
	if m == nil {
		return
	}
	m.QueriesTotal.WithLabelValues(outcome).Inc()
}

// SearchDone records one evaluated query.
func (m *Metrics) SearchDone(exact bool, elapsed time.Duration, results int) {
	if m == nil {
		return
	}
	mode := "prefix"
	if exact {
		mode = "exact"
	}
	m.SearchLatency.WithLabelValues(mode).Observe(elapsed.Seconds())
	m.SearchResultsCount.Observe(float64(results))
}

// IndexSize sets the index gauges.
func (m *Metrics) IndexSize(words, locations int) {
	if m == nil {
		return
	}
	m.IndexWords.Set(float64(words))
	m.IndexLocations.Set(float64(locations))
}
