package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cinerate/cinerate-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the API
// and the rating pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	ratingsTotal    *prometheus.CounterVec
	ratingDuration  prometheus.Observer
	jobsTotal       *prometheus.CounterVec
	jobsInFlight    prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// NewMetricsService registers the collectors on a private registry.
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

	ratingsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ratings_total",
		Help: "Total completed ratings by predicted tier",
	}, []string{"rating"})

	ratingDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rating_pipeline_duration_seconds",
		Help:    "End-to-end duration of pipeline runs",
		Buckets: prometheus.DefBuckets,
	})

	jobsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rating_jobs_total",
		Help: "Total rating jobs by terminal state",
	}, []string{"state"})

	jobsInFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rating_jobs_in_flight",
		Help: "Rating jobs currently pending or running",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rating_cache_hits_total",
		Help: "Total rating cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rating_cache_misses_total",
		Help: "Total rating cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, ratingsTotal, ratingDuration, jobsTotal, jobsInFlight, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		ratingsTotal:    ratingsTotal,
		ratingDuration:  ratingDuration,
		jobsTotal:       jobsTotal,
		jobsInFlight:    jobsInFlight,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
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

// ObserveRating records one completed pipeline run.
func (m *MetricsService) ObserveRating(rating models.Rating, duration time.Duration) {
	if m == nil {
		return
	}
	m.ratingsTotal.WithLabelValues(string(rating)).Inc()
	m.ratingDuration.Observe(duration.Seconds())
}

// JobStarted bumps the in-flight gauge.
func (m *MetricsService) JobStarted() {
	if m == nil {
		return
	}
	m.jobsInFlight.Inc()
}

// JobFinished records a terminal job state.
func (m *MetricsService) JobFinished(state models.JobState) {
	if m == nil {
		return
	}
	m.jobsInFlight.Dec()
	m.jobsTotal.WithLabelValues(string(state)).Inc()
}

// RecordCacheLookup tracks rating cache effectiveness.
func (m *MetricsService) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}
