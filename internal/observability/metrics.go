// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Migration source metrics
	MigrationsReceived prometheus.Counter
	WSReconnects       prometheus.Counter
	WSState            prometheus.Gauge

	// Enrichment metrics
	EnrichmentDuration *prometheus.HistogramVec
	EnrichmentDeadlineExceeded *prometheus.CounterVec

	// Provider call metrics
	ProviderCallsTotal   *prometheus.CounterVec
	ProviderCallDuration *prometheus.HistogramVec
	ProviderKeyRotations *prometheus.CounterVec

	// Scoring metrics
	TokensScored    prometheus.Counter
	TokensPassed    prometheus.Counter
	TokensFiltered  prometheus.Counter
	ScoreHistogram  prometheus.Histogram

	// Gateway metrics
	SSESubscribers   prometheus.Gauge
	SSEEventsEmitted *prometheus.CounterVec

	// History metrics
	HistorySize prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "migration_scorer"
	}

	return &Metrics{
		MigrationsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "migration",
			Name:      "events_received_total",
			Help:      "Total number of migration events received from the upstream WebSocket",
		}),
		WSReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "migration",
			Name:      "ws_reconnects_total",
			Help:      "Total number of successful upstream WebSocket connections, including reconnects",
		}),
		WSState: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "migration",
			Name:      "ws_state",
			Help:      "Upstream WebSocket state: 0=disconnected, 1=connecting, 2=open",
		}),

		EnrichmentDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "duration_seconds",
			Help:      "Enrichment duration in seconds by mode",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		EnrichmentDeadlineExceeded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "deadline_exceeded_total",
			Help:      "Total number of enrichments that hit their outer deadline",
		}, []string{"mode"}),

		ProviderCallsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "calls_total",
			Help:      "Total provider calls by provider and outcome",
		}, []string{"provider", "outcome"}),
		ProviderCallDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "call_duration_seconds",
			Help:      "Provider call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		ProviderKeyRotations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "key_rotations_total",
			Help:      "Total number of credential key rotations by provider",
		}, []string{"provider"}),

		TokensScored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "tokens_scored_total",
			Help:      "Total number of tokens scored",
		}),
		TokensPassed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "tokens_passed_total",
			Help:      "Total number of tokens that passed the score threshold",
		}),
		TokensFiltered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "tokens_filtered_total",
			Help:      "Total number of tokens filtered out by the score threshold",
		}),
		ScoreHistogram: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "score",
			Help:      "Distribution of safety scores",
			Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),

		SSESubscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "sse_subscribers",
			Help:      "Current number of connected SSE subscribers",
		}),
		SSEEventsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "sse_events_emitted_total",
			Help:      "Total number of SSE events emitted by event name",
		}, []string{"event"}),

		HistorySize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "history_size",
			Help:      "Current number of records held in the bounded history",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordMigrationReceived increments the migrations-received counter.
func RecordMigrationReceived() {
	DefaultMetrics.MigrationsReceived.Inc()
}

// RecordWSReconnect increments the WebSocket reconnect counter.
func RecordWSReconnect() {
	DefaultMetrics.WSReconnects.Inc()
}

// UpdateWSState sets the WebSocket state gauge (0/1/2).
func UpdateWSState(state int) {
	DefaultMetrics.WSState.Set(float64(state))
}

// RecordEnrichment records an enrichment's duration and whether its
// deadline was exceeded.
func RecordEnrichment(mode string, seconds float64, deadlineExceeded bool) {
	DefaultMetrics.EnrichmentDuration.WithLabelValues(mode).Observe(seconds)
	if deadlineExceeded {
		DefaultMetrics.EnrichmentDeadlineExceeded.WithLabelValues(mode).Inc()
	}
}

// RecordProviderCall records a single provider call outcome and latency.
func RecordProviderCall(provider, outcome string, seconds float64) {
	DefaultMetrics.ProviderCallsTotal.WithLabelValues(provider, outcome).Inc()
	DefaultMetrics.ProviderCallDuration.WithLabelValues(provider).Observe(seconds)
}

// RecordKeyRotation increments the key rotation counter for provider.
func RecordKeyRotation(provider string) {
	DefaultMetrics.ProviderKeyRotations.WithLabelValues(provider).Inc()
}

// RecordScored records a scored token and whether it passed.
func RecordScored(score int, passed bool) {
	DefaultMetrics.TokensScored.Inc()
	DefaultMetrics.ScoreHistogram.Observe(float64(score))
	if passed {
		DefaultMetrics.TokensPassed.Inc()
	} else {
		DefaultMetrics.TokensFiltered.Inc()
	}
}

// UpdateSSESubscribers sets the current SSE subscriber count.
func UpdateSSESubscribers(count int) {
	DefaultMetrics.SSESubscribers.Set(float64(count))
}

// RecordSSEEvent increments the emitted-event counter for an SSE event name.
func RecordSSEEvent(event string) {
	DefaultMetrics.SSEEventsEmitted.WithLabelValues(event).Inc()
}

// UpdateHistorySize sets the history size gauge.
func UpdateHistorySize(size int) {
	DefaultMetrics.HistorySize.Set(float64(size))
}
