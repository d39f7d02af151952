// Package metrics exposes Prometheus counters for the editing service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments of the server.
type Metrics struct {
	registry          *prometheus.Registry
	requestsTotal     prometheus.Counter
	opsAppliedTotal   *prometheus.CounterVec
	opsRejectedTotal  *prometheus.CounterVec
	wsMessagesTotal   prometheus.Counter
	openSessions      prometheus.Gauge
	errorsTotal       prometheus.Counter
}

// New creates and registers the server metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cutroom_requests_total",
		Help: "Total number of HTTP requests received",
	})
	opsAppliedTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cutroom_timeline_ops_applied_total",
		Help: "Timeline operations committed, by operation",
	}, []string{"op"})
	opsRejectedTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cutroom_timeline_ops_rejected_total",
		Help: "Timeline operations rejected by validation, by operation",
	}, []string{"op"})
	wsMessagesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cutroom_ws_messages_total",
		Help: "Total number of websocket edit messages handled",
	})
	openSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cutroom_open_sessions",
		Help: "Number of live editing sessions",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cutroom_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})

	registry.MustRegister(
		requestsTotal,
		opsAppliedTotal,
		opsRejectedTotal,
		wsMessagesTotal,
		openSessions,
		errorsTotal,
	)

	return &Metrics{
		registry:         registry,
		requestsTotal:    requestsTotal,
		opsAppliedTotal:  opsAppliedTotal,
		opsRejectedTotal: opsRejectedTotal,
		wsMessagesTotal:  wsMessagesTotal,
		openSessions:     openSessions,
		errorsTotal:      errorsTotal,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// OpApplied counts a committed timeline operation.
func (m *Metrics) OpApplied(op string) {
	m.opsAppliedTotal.WithLabelValues(op).Inc()
}

// OpRejected counts a rejected timeline operation.
func (m *Metrics) OpRejected(op string) {
	m.opsRejectedTotal.WithLabelValues(op).Inc()
}

// IncWSMessages counts a handled websocket edit message.
func (m *Metrics) IncWSMessages() {
	m.wsMessagesTotal.Inc()
}

// SetOpenSessions sets the open sessions gauge.
func (m *Metrics) SetOpenSessions(n int) {
	m.openSessions.Set(float64(n))
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// Handler returns an http.Handler that serves the metrics. updateGauges
// runs before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
