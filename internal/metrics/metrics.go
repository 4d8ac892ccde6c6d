// Package metrics provides Prometheus metrics for the casos API client and
// view server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Manager owns every casos metric and the registry they live on.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Outgoing API requests
	apiRequests        *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec
	apiInFlight        prometheus.Gauge

	// View server
	viewRenders *prometheus.CounterVec

	// Events and export
	eventsPublished *prometheus.CounterVec
	exportRuns      *prometheus.CounterVec
	exportBytes     prometheus.Gauge
}

// NewManager creates a manager on a fresh registry unless WithRegistry is
// given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "casos",
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.apiRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Requests sent to the casos API by method and status code",
	}, []string{"method", "code"})

	m.apiRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "Latency of casos API requests",
		Buckets:   m.histogramBuckets,
	}, []string{"method"})

	m.apiInFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "api",
		Name:      "requests_in_flight",
		Help:      "Requests to the casos API currently in flight",
	})

	m.viewRenders = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "views",
		Name:      "renders_total",
		Help:      "View renders by view and outcome",
	}, []string{"view", "outcome"})

	m.eventsPublished = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Events published by topic and outcome",
	}, []string{"topic", "outcome"})

	m.exportRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "export",
		Name:      "runs_total",
		Help:      "Export runs by outcome",
	}, []string{"outcome"})

	m.exportBytes = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "export",
		Name:      "last_size_bytes",
		Help:      "Size of the last successful export",
	})
}

// Registry returns the registry backing the manager.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Handler serves the manager's metrics in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RoundTripper instruments next (http.DefaultTransport when nil) with the
// API request metrics. Pass the result to client.WithHTTPClient.
func (m *Manager) RoundTripper(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperInFlight(m.apiInFlight,
		promhttp.InstrumentRoundTripperCounter(m.apiRequests,
			promhttp.InstrumentRoundTripperDuration(m.apiRequestDuration, next),
		),
	)
}

// RecordViewRender counts one render of view.
func (m *Manager) RecordViewRender(view string, err error) {
	m.viewRenders.WithLabelValues(view, outcome(err)).Inc()
}

// RecordEventPublished counts one publish attempt on topic.
func (m *Manager) RecordEventPublished(topic string, err error) {
	m.eventsPublished.WithLabelValues(topic, outcome(err)).Inc()
}

// RecordExport counts one export run and, on success, its size.
func (m *Manager) RecordExport(bytes int, err error) {
	m.exportRuns.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		m.exportBytes.Set(float64(bytes))
	}
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
