// Package metrics defines the Prometheus collectors used by the analyzer
// services and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the analyzer services.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	AnalysesTotal        *prometheus.CounterVec
	AnalysisDuration     prometheus.Histogram
	CharsProcessedTotal  prometheus.Counter
	WordsCountedTotal    *prometheus.CounterVec
	SensitiveHitsTotal   prometheus.Counter
	RedundantHitsTotal   prometheus.Counter
	SectionsPerDocument  prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	PersistFailuresTotal prometheus.Counter
	EventsDroppedTotal   prometheus.Counter
	WorkerMessagesTotal  *prometheus.CounterVec
	VocabularySize       *prometheus.GaugeVec
	CircuitBreakerState  *prometheus.GaugeVec
}

// New creates the collectors and registers them with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates the collectors and registers them with reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "text_analyses_total",
				Help: "Total analysis requests by result (ok, cached, invalid, error).",
			},
			[]string{"result"},
		),
		AnalysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "text_analysis_duration_seconds",
				Help:    "Time spent in a single analysis pass.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		CharsProcessedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "text_chars_processed_total",
				Help: "Characters consumed by analysis passes, heading lines excluded.",
			},
		),
		WordsCountedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "text_words_counted_total",
				Help: "Words counted by script (latin, cjk).",
			},
			[]string{"script"},
		),
		SensitiveHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "text_sensitive_hits_total",
				Help: "Sensitive vocabulary matches.",
			},
		),
		RedundantHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "text_redundant_hits_total",
				Help: "Redundant vocabulary matches.",
			},
		),
		SectionsPerDocument: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "text_sections_per_document",
				Help:    "Sections found per analysed document.",
				Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of report cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of report cache misses.",
			},
		),
		PersistFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "report_persist_failures_total",
				Help: "Reports that could not be written to the store.",
			},
		),
		EventsDroppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "analysis_events_dropped_total",
				Help: "Analysis events dropped because the collector buffer was full.",
			},
		),
		WorkerMessagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "worker_messages_total",
				Help: "Kafka messages handled by the analysis worker by status.",
			},
			[]string{"status"},
		),
		VocabularySize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vocabulary_words",
				Help: "Loaded lookup words by list (stop, sensitive, redundant).",
			},
			[]string{"kind"},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.CharsProcessedTotal,
		m.WordsCountedTotal,
		m.SensitiveHitsTotal,
		m.RedundantHitsTotal,
		m.SectionsPerDocument,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.PersistFailuresTotal,
		m.EventsDroppedTotal,
		m.WorkerMessagesTotal,
		m.VocabularySize,
		m.CircuitBreakerState,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
