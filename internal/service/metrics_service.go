package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Auto-revival triggers and outcomes used as metric labels.
const (
	TriggerPayment = "payment"
	TriggerExpired = "expired"

	OutcomeRevived  = "revived"
	OutcomeFailed   = "failed"
	OutcomeReapply  = "reapplied"
	OutcomeRejected = "rejected"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP traffic,
// the reason cache, and suspension outcomes.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	outcomes        *prometheus.CounterVec
	autoRevival     *prometheus.CounterVec
	sweepDuration   prometheus.Observer
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "suspension_outcomes_total",
		Help: "Apply and revive outcomes by operation, suspension type and application code",
	}, []string{"operation", "type", "app_code"})

	autoRevival := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auto_revival_total",
		Help: "Automatic revivals by trigger and outcome",
	}, []string{"trigger", "outcome"})

	sweepDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "auto_revival_sweep_seconds",
		Help:    "Duration of expired temporary suspension sweeps",
		Buckets: prometheus.DefBuckets,
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHits, cacheMisses, outcomes, autoRevival, sweepDuration, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		outcomes:        outcomes,
		autoRevival:     autoRevival,
		sweepDuration:   sweepDuration,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordOutcome counts one apply or revive result.
func (m *MetricsService) RecordOutcome(operation, suspensionType, appCode string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(operation, suspensionType, appCode).Inc()
}

// RecordAutoRevival counts one automatic revival attempt.
func (m *MetricsService) RecordAutoRevival(trigger, outcome string) {
	if m == nil {
		return
	}
	m.autoRevival.WithLabelValues(trigger, outcome).Inc()
}

// ObserveSweep records how long an expiry sweep took.
func (m *MetricsService) ObserveSweep(duration time.Duration) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(duration.Seconds())
}
