// Package metrics provides Prometheus metrics for the Mission Control server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the server.
type Metrics struct {
	EventsTotal        *prometheus.CounterVec
	CommandsTotal      *prometheus.CounterVec
	RequestsTotal      *prometheus.CounterVec
	ErrorsTotal        *prometheus.CounterVec
	InstancesTracked   prometheus.Gauge
	InstancesActive    prometheus.Gauge
	CodebasesTracked   prometheus.Gauge

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		EventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mission_control_events_total",
				Help: "Total ingested events by event kind.",
			},
			[]string{"event"},
		),
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mission_control_commands_total",
				Help: "Total commands enqueued by source.",
			},
			[]string{"source"},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mission_control_http_requests_total",
				Help: "Total HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mission_control_errors_total",
				Help: "Total errors by component and type.",
			},
			[]string{"component", "type"},
		),
		InstancesTracked: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mission_control_instances_tracked",
				Help: "Number of instances currently in the registry.",
			},
		),
		InstancesActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mission_control_instances_active",
				Help: "Number of instances currently marked active.",
			},
		),
		CodebasesTracked: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mission_control_codebases_tracked",
				Help: "Number of codebases known to the analytics store.",
			},
		),
		registry: reg,
	}

	reg.MustRegister(m.EventsTotal)
	reg.MustRegister(m.CommandsTotal)
	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.ErrorsTotal)
	reg.MustRegister(m.InstancesTracked)
	reg.MustRegister(m.InstancesActive)
	reg.MustRegister(m.CodebasesTracked)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordEvent increments the event counter.
func (m *Metrics) RecordEvent(event string) {
	m.EventsTotal.WithLabelValues(event).Inc()
}

// RecordCommand increments the command counter.
func (m *Metrics) RecordCommand(source string) {
	m.CommandsTotal.WithLabelValues(source).Inc()
}

// RecordRequest increments the HTTP request counter.
func (m *Metrics) RecordRequest(method, path, status string) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(component, errType string) {
	m.ErrorsTotal.WithLabelValues(component, errType).Inc()
}

// SetGauges updates the registry and store gauges in one call.
func (m *Metrics) SetGauges(tracked, active, codebases int) {
	m.InstancesTracked.Set(float64(tracked))
	m.InstancesActive.Set(float64(active))
	m.CodebasesTracked.Set(float64(codebases))
}
