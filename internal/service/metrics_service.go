package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// placement engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	lessonsPlaced   *prometheus.CounterVec
	slotsSkipped    *prometheus.CounterVec
	planningRuns    prometheus.Histogram
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	cacheLatency    prometheus.Observer
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

	lessonsPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_lessons_placed_total",
		Help: "Lessons created by the placement engine",
	}, []string{"mode"})

	slotsSkipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_slots_skipped_total",
		Help: "Slots the placement engine could not fill",
	}, []string{"reason"})

	planningRuns := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_run_duration_seconds",
		Help:    "Duration of week placement runs",
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

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, lessonsPlaced, slotsSkipped, planningRuns, cacheHits, cacheMisses, cacheLatency, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		lessonsPlaced:   lessonsPlaced,
		slotsSkipped:    slotsSkipped,
		planningRuns:    planningRuns,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		cacheLatency:    cacheLatency,
	}
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

// RecordLessonPlaced counts one placement in the given mode.
func (m *MetricsService) RecordLessonPlaced(mode string) {
	if m == nil {
		return
	}
	m.lessonsPlaced.WithLabelValues(mode).Inc()
}

// RecordSlotSkipped counts one unfilled slot by reason.
func (m *MetricsService) RecordSlotSkipped(reason string) {
	if m == nil {
		return
	}
	m.slotsSkipped.WithLabelValues(reason).Inc()
}

// ObservePlanningRun records the duration of one week placement run.
func (m *MetricsService) ObservePlanningRun(duration time.Duration) {
	if m == nil {
		return
	}
	m.planningRuns.Observe(duration.Seconds())
}

// RecordCacheOperation records cache hit/miss metrics.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		return
	}
	m.cacheMisses.Inc()
}
