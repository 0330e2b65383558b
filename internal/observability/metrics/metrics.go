// Package metrics exposes the client's Prometheus instruments.
// Every method is safe on a nil *Metrics so components can run unmetered in tests.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	domainauth "github.com/visorhr/visorhr-ui/internal/domain/auth"
)

const namespace = "visorhr"

// Outcome labels for backend calls.
const (
	OutcomeSuccess   = "success"
	OutcomeRejected  = "rejected"
	OutcomeTransport = "transport_error"
	OutcomeCanceled  = "canceled"
)

// Metrics groups the instruments. Build it once with NewMetrics.
type Metrics struct {
	authOps        *prometheus.CounterVec
	authLatency    *prometheus.HistogramVec
	previewsLive   prometheus.Gauge
	viewsActive    prometheus.Gauge
	statusMessages *prometheus.CounterVec
	httpInFlight   prometheus.Gauge
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewMetrics creates and registers every instrument on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		authOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_operations_total",
			Help:      "Backend auth calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		authLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "auth_operation_duration_seconds",
			Help:      "Backend auth call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		previewsLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "previews_live",
			Help:      "File preview handles currently held.",
		}),
		viewsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "views_active",
			Help:      "Browser views currently mounted.",
		}),
		statusMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_messages_total",
			Help:      "Status messages shown, by kind.",
		}, []string{"kind"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "In-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		m.authOps, m.authLatency, m.previewsLive, m.viewsActive, m.statusMessages,
		m.httpInFlight, m.httpRequests, m.httpDuration,
	)
	return m
}

// Outcome classifies a backend call error for labelling.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	case domainauth.IsTransport(err):
		return OutcomeTransport
	default:
		return OutcomeRejected
	}
}

// ObserveAuthOp records one backend call.
func (m *Metrics) ObserveAuthOp(op string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.authOps.WithLabelValues(op, Outcome(err)).Inc()
	m.authLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

// PreviewGauge is handed to the preview registry.
func (m *Metrics) PreviewGauge() prometheus.Gauge {
	if m == nil {
		return nil
	}
	return m.previewsLive
}

// SetActiveViews records the number of mounted views.
func (m *Metrics) SetActiveViews(n int) {
	if m == nil {
		return
	}
	m.viewsActive.Set(float64(n))
}

// StatusShown counts a status message of kind.
func (m *Metrics) StatusShown(kind string) {
	if m == nil {
		return
	}
	m.statusMessages.WithLabelValues(kind).Inc()
}

// Instrument measures requests. The route label is the matched ServeMux pattern,
// so it must wrap the mux itself.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(sw.code)
		m.httpDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpRequests.WithLabelValues(r.Method, route, status).Inc()
	})
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

type statusWriter struct {
	http.ResponseWriter
	code        int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.code = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// Flush keeps server-sent event streams working through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
