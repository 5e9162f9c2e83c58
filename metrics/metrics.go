// Package metrics exposes the gateway's Prometheus instruments: circuit
// breaker trips, A2A dispatch latency, cultural validator confidence, and
// per-session output queue depth. It wraps a private registry rather than
// the default global one so a gateway process can be embedded in tests
// without polluting package-level state.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	circuitBreakerTrips = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_circuit_breaker_trips_total",
			Help: "Total number of times a per-agent circuit breaker has tripped open.",
		},
		[]string{"agent"},
	)

	dispatchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_dispatch_duration_seconds",
			Help:    "A2A dispatch latency in seconds, by agent and outcome.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"agent", "outcome"},
	)

	culturalConfidence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gateway_cultural_validation_confidence",
			Help:    "Distribution of confidence scores produced by the cultural validator.",
			Buckets: []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	outputQueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gateway_output_queue_depth",
			Help: "Current number of buffered messages in a session's outbound queue.",
		},
		[]string{"session_id"},
	)
)

func init() {
	registry.MustRegister(circuitBreakerTrips, dispatchLatency, culturalConfidence, outputQueueDepth)
}

// RecordCircuitBreakerTrip increments the trip counter for agent.
func RecordCircuitBreakerTrip(agent string) {
	circuitBreakerTrips.WithLabelValues(agent).Inc()
}

// ObserveDispatchLatency records how long a dispatch call to agent took.
// outcome is "success" or "fallback".
func ObserveDispatchLatency(agent, outcome string, seconds float64) {
	dispatchLatency.WithLabelValues(agent, outcome).Observe(seconds)
}

// ObserveCulturalConfidence records a confidence score emitted by the
// cultural validator.
func ObserveCulturalConfidence(confidence float64) {
	culturalConfidence.Observe(confidence)
}

// SetOutputQueueDepth records the current depth of sessionID's outbound
// queue.
func SetOutputQueueDepth(sessionID string, depth int) {
	outputQueueDepth.WithLabelValues(sessionID).Set(float64(depth))
}

// DeleteOutputQueueDepth drops the gauge series for sessionID so closed
// sessions don't accumulate stale label values.
func DeleteOutputQueueDepth(sessionID string) {
	outputQueueDepth.DeleteLabelValues(sessionID)
}

// Handler serves the Prometheus exposition format for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}
