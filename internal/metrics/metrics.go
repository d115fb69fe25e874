// Package metrics provides Prometheus metrics for the treatment server:
// HTTP request counters and latency, plus domain gauges maintained by the
// missed-step sweep. All metrics are registered with the default registry
// during package initialization and exposed on /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	TreatmentCommandTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treatment_command_total",
			Help: "Total treatment engine commands by outcome",
		},
		[]string{"command", "outcome"},
	)

	ActiveTreatments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "treatment_active_total",
			Help: "Treatments currently in progress",
		},
	)

	MissedSteps = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "treatment_missed_steps_total",
			Help: "Overdue treatment steps found by the last sweep",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(TreatmentCommandTotals)
	prometheus.MustRegister(ActiveTreatments)
	prometheus.MustRegister(MissedSteps)
}
