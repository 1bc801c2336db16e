package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	answerRequestsTotal *prometheus.CounterVec
	answerReferences    *prometheus.HistogramVec
	answerNoMaterial    *prometheus.CounterVec
	answerDuration      *prometheus.HistogramVec
	pipelineStage       *prometheus.HistogramVec
	ingestedSections    *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gikai",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gikai",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "gikai",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	answerRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gikai",
			Subsystem: "answer",
			Name:      "requests_total",
			Help:      "Total successful answer generations.",
		},
		[]string{"service"},
	)
	answerReferences := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gikai",
			Subsystem: "answer",
			Name:      "references",
			Help:      "Distribution of cited references per answer.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5},
		},
		[]string{"service"},
	)
	answerNoMaterial := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gikai",
			Subsystem: "answer",
			Name:      "no_material_total",
			Help:      "Total answer requests where retrieval found nothing.",
		},
		[]string{"service"},
	)
	answerDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gikai",
			Subsystem: "answer",
			Name:      "duration_seconds",
			Help:      "End-to-end answer generation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	pipelineStage := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gikai",
			Subsystem: "answer",
			Name:      "stage_duration_seconds",
			Help:      "Per-stage duration of the answer pipeline.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "stage"},
	)
	ingestedSections := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gikai",
			Subsystem: "ingest",
			Name:      "sections",
			Help:      "Distribution of sections per ingested document.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		answerRequestsTotal,
		answerReferences,
		answerNoMaterial,
		answerDuration,
		pipelineStage,
		ingestedSections,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		answerRequestsTotal: answerRequestsTotal,
		answerReferences:    answerReferences,
		answerNoMaterial:    answerNoMaterial,
		answerDuration:      answerDuration,
		pipelineStage:       pipelineStage,
		ingestedSections:    ingestedSections,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			r.URL.Path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

func (m *HTTPServerMetrics) RecordAnswerObservation(service string, referenceCount int, duration time.Duration) {
	m.answerRequestsTotal.WithLabelValues(service).Inc()
	m.answerReferences.WithLabelValues(service).Observe(float64(referenceCount))
	m.answerDuration.WithLabelValues(service).Observe(duration.Seconds())
	if referenceCount == 0 {
		m.answerNoMaterial.WithLabelValues(service).Inc()
	}
}

func (m *HTTPServerMetrics) RecordPipelineStage(service, stage string, elapsed time.Duration) {
	m.pipelineStage.WithLabelValues(service, stage).Observe(elapsed.Seconds())
}

func (m *HTTPServerMetrics) RecordIngestedSections(service string, sections int) {
	m.ingestedSections.WithLabelValues(service).Observe(float64(sections))
}
