package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates the Prometheus instrumentation for the gateway
// and the generation pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	generationTotal    *prometheus.CounterVec
	generationDuration prometheus.Observer
	modelCallTotal     *prometheus.CounterVec
	parseRejections    prometheus.Counter
	shiftsSaved        prometheus.Counter
}

// NewMetricsService registers the gateway collectors on a fresh registry.
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

	generationTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_generations_total",
		Help: "Schedule generation outcomes",
	}, []string{"outcome"})

	generationDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_generation_duration_seconds",
		Help:    "End to end schedule generation latency",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
	})

	modelCallTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "model_calls_total",
		Help: "Model invocations by error kind, OK for successes",
	}, []string{"kind"})

	parseRejections := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "model_response_rejections_total",
		Help: "Model responses rejected by the parser",
	})

	shiftsSaved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shifts_saved_total",
		Help: "Shifts written to the database",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, generationTotal, generationDuration,
		modelCallTotal, parseRejections, shiftsSaved, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		generationTotal:    generationTotal,
		generationDuration: generationDuration,
		modelCallTotal:     modelCallTotal,
		parseRejections:    parseRejections,
		shiftsSaved:        shiftsSaved,
	}
}

// Handler serves the scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	return m.handler
}

// ObserveHTTPRequest records one handled request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := prometheus.Labels{"method": method, "path": path, "status": strconv.Itoa(status)}
	m.requestDuration.With(labels).Observe(duration.Seconds())
	m.requestTotal.With(labels).Inc()
}

// ObserveGeneration records one completed generation attempt.
func (m *MetricsService) ObserveGeneration(outcome string, duration time.Duration) {
	m.generationTotal.WithLabelValues(outcome).Inc()
	m.generationDuration.Observe(duration.Seconds())
}

// ObserveModelCall records one model invocation by result kind.
func (m *MetricsService) ObserveModelCall(kind string) {
	m.modelCallTotal.WithLabelValues(kind).Inc()
}

// ObserveParseRejection counts a rejected model response.
func (m *MetricsService) ObserveParseRejection() {
	m.parseRejections.Inc()
}

// ObserveShiftsSaved counts persisted shifts.
func (m *MetricsService) ObserveShiftsSaved(count int) {
	m.shiftsSaved.Add(float64(count))
}
