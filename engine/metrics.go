package engine

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics are registered per engine so several engines can live in one process
type metrics struct {
	registry *prometheus.Registry

	stepExecutionsTotal   *prometheus.CounterVec
	stepExecutionDuration *prometheus.HistogramVec
	stepsInFlight         prometheus.Gauge
	registrationsTotal    *prometheus.CounterVec
	callbacksTotal        *prometheus.CounterVec
	flowsRegistered       prometheus.Gauge
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &metrics{
		registry: reg,

		/* Step metrics */
		stepExecutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slims_step_executions_total",
				Help: "Total number of step executions",
			},
			[]string{"flow_id", "status"},
		),
		stepExecutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "slims_step_execution_duration_seconds",
				Help:    "Step execution duration in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30, 60, 300},
			},
			[]string{"flow_id"},
		),
		stepsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "slims_steps_in_flight",
				Help: "Number of step executions currently running",
			},
		),

		/* Server interaction metrics */
		registrationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slims_flow_registrations_total",
				Help: "Total number of flow registration attempts",
			},
			[]string{"kind", "status"},
		),
		callbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slims_callbacks_total",
				Help: "Total number of step callbacks received",
			},
			[]string{"status"},
		),
		flowsRegistered: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "slims_flows_registered",
				Help: "Number of flows known to the engine",
			},
		),
	}
}

// recordStep records a finished step execution
func (m *metrics) recordStep(flowID, status string, duration time.Duration) {
	m.stepExecutionsTotal.WithLabelValues(flowID, status).Inc()
	m.stepExecutionDuration.WithLabelValues(flowID).Observe(duration.Seconds())
}

// recordRegistration records a registration attempt
func (m *metrics) recordRegistration(reregister bool, status string) {
	kind := "register"
	if reregister {
		kind = "reregister"
	}
	m.registrationsTotal.WithLabelValues(kind, status).Inc()
}

// recordCallback records an inbound callback by HTTP status
func (m *metrics) recordCallback(status string) {
	m.callbacksTotal.WithLabelValues(status).Inc()
}

// handler returns the Prometheus metrics handler for this engine
func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
