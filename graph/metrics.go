package graph

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics collects Prometheus metrics for Executor runs, all
// namespaced "needlepoint_":
//
//  1. inflight_generations (gauge, no labels): nodes currently
//     mid-call to a provider.
//  2. node_latency_ms (histogram, labels run_id, node_id, status):
//     duration of a single node's Generate call.
//  3. provider_errors_total (counter, labels provider, code): provider
//     call failures by error code.
//  4. retries_total (counter, labels run_id, node_id): retry attempts
//     issued under a RetryPolicy.
//
// Safe for concurrent use; the executor updates it from every node
// goroutine within a wave.
type PrometheusMetrics struct {
	inflightGenerations prometheus.Gauge
	nodeLatency         *prometheus.HistogramVec
	providerErrors      *prometheus.CounterVec
	retries             *prometheus.CounterVec

	mu      sync.RWMutex
	enabled bool
}

// NewPrometheusMetrics registers needlepoint's executor metrics with
// registry. A nil registry uses prometheus.DefaultRegisterer.
func NewPrometheusMetrics(registry prometheus.Registerer) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	pm := &PrometheusMetrics{enabled: true}

	pm.inflightGenerations = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "needlepoint",
		Name:      "inflight_generations",
		Help:      "Current number of nodes with an in-flight provider call",
	})

	pm.nodeLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "needlepoint",
		Name:      "node_latency_ms",
		Help:      "Duration of a node's provider call in milliseconds",
		Buckets:   []float64{100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
	}, []string{"run_id", "node_id", "status"})

	pm.providerErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "needlepoint",
		Name:      "provider_errors_total",
		Help:      "Provider call failures by provider and error code",
	}, []string{"provider", "code"})

	pm.retries = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "needlepoint",
		Name:      "retries_total",
		Help:      "Retry attempts issued by a RetryPolicy",
	}, []string{"run_id", "node_id"})

	return pm
}

// RecordNodeLatency observes a node's provider call duration.
func (pm *PrometheusMetrics) RecordNodeLatency(runID, nodeID string, latency time.Duration, status string) {
	if !pm.isEnabled() {
		return
	}
	pm.nodeLatency.WithLabelValues(runID, nodeID, status).Observe(float64(latency.Milliseconds()))
}

// IncrementProviderErrors records one failed provider call.
func (pm *PrometheusMetrics) IncrementProviderErrors(providerName, code string) {
	if !pm.isEnabled() {
		return
	}
	pm.providerErrors.WithLabelValues(providerName, code).Inc()
}

// IncrementRetries records one retry attempt for a node.
func (pm *PrometheusMetrics) IncrementRetries(runID, nodeID string) {
	if !pm.isEnabled() {
		return
	}
	pm.retries.WithLabelValues(runID, nodeID).Inc()
}

// SetInflightGenerations sets the current concurrent-generation count.
func (pm *PrometheusMetrics) SetInflightGenerations(count int) {
	if !pm.isEnabled() {
		return
	}
	pm.inflightGenerations.Set(float64(count))
}

func (pm *PrometheusMetrics) isEnabled() bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.enabled
}

// Disable stops metric recording; used in tests that construct a
// PrometheusMetrics but don't want to assert on its values.
func (pm *PrometheusMetrics) Disable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = false
}

// Enable re-enables metric recording after Disable.
func (pm *PrometheusMetrics) Enable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = true
}
