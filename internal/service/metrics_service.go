package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/cellbroadcast-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	pipelineTotal   *prometheus.CounterVec
	storeErrors     *prometheus.CounterVec
	presentErrors   prometheus.Counter
	reminderEvents  *prometheus.CounterVec
	ingestDuration  *prometheus.HistogramVec
}

// GaugeSources supplies live values sampled at scrape time.
type GaugeSources struct {
	DedupKeys   func() int
	IngestQueue func() int
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService(sources GaugeSources) *MetricsService {
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

	pipelineTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cellbroadcast_pipeline_total",
		Help: "Broadcasts handled by the alert pipeline by outcome",
	}, []string{"status"})

	storeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cellbroadcast_store_errors_total",
		Help: "Broadcast store failures by operation",
	}, []string{"op"})

	presentErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cellbroadcast_present_errors_total",
		Help: "Alert presentation requests that could not be delivered",
	})

	reminderEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cellbroadcast_reminder_events_total",
		Help: "Reminder scheduler transitions",
	}, []string{"event"})

	ingestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cellbroadcast_ingest_duration_seconds",
		Help:    "Time a broadcast spent queued and in the pipeline",
		Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
	}, []string{"stage"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, pipelineTotal, storeErrors, presentErrors, reminderEvents, ingestDuration, goroutines)

	if sources.DedupKeys != nil {
		registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "cellbroadcast_dedup_keys",
			Help: "Broadcast keys held in the duplicate-detection window",
		}, func() float64 { return float64(sources.DedupKeys()) }))
	}
	if sources.IngestQueue != nil {
		registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "cellbroadcast_ingest_queue_depth",
			Help: "Broadcasts waiting for the pipeline worker",
		}, func() float64 { return float64(sources.IngestQueue()) }))
	}

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		pipelineTotal:   pipelineTotal,
		storeErrors:     storeErrors,
		presentErrors:   presentErrors,
		reminderEvents:  reminderEvents,
		ingestDuration:  ingestDuration,
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

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
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

// ObservePipeline counts a pipeline outcome.
func (m *MetricsService) ObservePipeline(status models.PipelineStatus) {
	if m == nil {
		return
	}
	m.pipelineTotal.WithLabelValues(string(status)).Inc()
}

// ObserveStoreError counts a broadcast store failure.
func (m *MetricsService) ObserveStoreError(op string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(op).Inc()
}

// ObservePresentError counts a failed presentation request.
func (m *MetricsService) ObservePresentError() {
	if m == nil {
		return
	}
	m.presentErrors.Inc()
}

// ObserveReminder counts a reminder transition.
func (m *MetricsService) ObserveReminder(event string) {
	if m == nil {
		return
	}
	m.reminderEvents.WithLabelValues(event).Inc()
}

// ObserveIngest records how long a broadcast waited for the worker and how long it ran.
func (m *MetricsService) ObserveIngest(wait, run time.Duration) {
	if m == nil {
		return
	}
	m.ingestDuration.WithLabelValues("queued").Observe(wait.Seconds())
	m.ingestDuration.WithLabelValues("pipeline").Observe(run.Seconds())
}
