package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry for HTTP traffic, the grid cache and the scheduling engine.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram

	scheduleChecks  *prometheus.CounterVec
	alternatives    *prometheus.CounterVec
	commitConflicts *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	makeupsPlanned  prometheus.Counter
}

// NewMetricsService registers all collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_grid_cache_lookups_total",
			Help: "Weekly grid cache lookups by result",
		}, []string{"result"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "schedule_grid_cache_latency_seconds",
			Help:    "Latency of grid cache reads",
			Buckets: prometheus.DefBuckets,
		}),
		scheduleChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_checks_total",
			Help: "Check-and-suggest evaluations by initial status",
		}, []string{"status"}),
		alternatives: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_alternatives_total",
			Help: "Alternatives returned to clients by type",
		}, []string{"type"}),
		commitConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_commit_conflicts_total",
			Help: "Commits rejected because a resource was taken after the check",
		}, []string{"operation"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "session_transitions_total",
			Help: "Session status transitions by target status",
		}, []string{"status"}),
		makeupsPlanned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "makeup_sessions_committed_total",
			Help: "Makeup sessions committed",
		}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(m.requestDuration, m.requestTotal, m.cacheLookups, m.cacheLatency,
		m.scheduleChecks, m.alternatives, m.commitConflicts, m.transitions, m.makeupsPlanned, goroutines)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
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
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a grid cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
	m.cacheLatency.Observe(duration.Seconds())
}

// RecordScheduleCheck counts one check-and-suggest evaluation and the alternatives it produced.
func (m *MetricsService) RecordScheduleCheck(status string, alternativeTypes []string) {
	if m == nil {
		return
	}
	m.scheduleChecks.WithLabelValues(status).Inc()
	for _, t := range alternativeTypes {
		m.alternatives.WithLabelValues(t).Inc()
	}
}

// RecordCommitConflict counts a commit rejected by the in-transaction re-check.
func (m *MetricsService) RecordCommitConflict(operation string) {
	if m == nil {
		return
	}
	m.commitConflicts.WithLabelValues(operation).Inc()
}

// RecordTransition counts a session status change.
func (m *MetricsService) RecordTransition(status string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(status).Inc()
}

// RecordMakeupCommitted counts a committed makeup session.
func (m *MetricsService) RecordMakeupCommitted() {
	if m == nil {
		return
	}
	m.makeupsPlanned.Inc()
}
