// Package metrics exposes Prometheus collectors for evaluation cycles.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/geofence-notifier/internal/geofence"
)

// Cycle outcomes used as the "outcome" label.
const (
	OutcomeInside      = "inside"
	OutcomeOutside     = "outside"
	OutcomeConfigError = "config_error"
	OutcomeFetchSkip   = "fetch_skipped"
)

// Metrics tracks cycle outcomes, failures and durations.
type Metrics struct {
	registry *prometheus.Registry

	Cycles             *prometheus.CounterVec
	CoordinateFailures prometheus.Counter
	NotifyFailures     prometheus.Counter
	FallbackResults    prometheus.Counter
	OverlappingTicks   prometheus.Counter
	CycleDuration      prometheus.Histogram
	LastInside         prometheus.Gauge
}

// New creates a Metrics instance registered on its own registry,
// so several instances can coexist in tests.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Cycles: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "geofence_cycles_total",
			Help: "Evaluation cycles by outcome",
		}, []string{"outcome"}),
		CoordinateFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "geofence_coordinate_fetch_failures_total",
			Help: "Failed coordinate lookups",
		}),
		NotifyFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "geofence_notification_failures_total",
			Help: "Notifications that could not be delivered",
		}),
		FallbackResults: factory.NewCounter(prometheus.CounterOpts{
			Name: "geofence_sentinel_results_total",
			Help: "Results computed from the (0,0) sentinel coordinate",
		}),
		OverlappingTicks: factory.NewCounter(prometheus.CounterOpts{
			Name: "geofence_ticks_skipped_total",
			Help: "Ticks skipped because the previous cycle was still running",
		}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "geofence_cycle_duration_seconds",
			Help:    "Duration of completed evaluation cycles",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		}),
		LastInside: factory.NewGauge(prometheus.GaugeOpts{
			Name: "geofence_last_inside",
			Help: "1 if the last completed cycle was inside the geofence, 0 otherwise",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) CoordinateFailed() {
	m.CoordinateFailures.Inc()
}

func (m *Metrics) ConfigFailed() {
	m.Cycles.WithLabelValues(OutcomeConfigError).Inc()
}

func (m *Metrics) NotifyFailed() {
	m.NotifyFailures.Inc()
}

func (m *Metrics) CycleSkipped() {
	m.Cycles.WithLabelValues(OutcomeFetchSkip).Inc()
}

// CycleCompleted records a finished cycle.
func (m *Metrics) CycleCompleted(r geofence.EvaluationResult, took time.Duration) {
	outcome := OutcomeOutside
	inside := 0.0
	if r.Inside {
		outcome = OutcomeInside
		inside = 1
	}
	m.Cycles.WithLabelValues(outcome).Inc()
	m.CycleDuration.Observe(took.Seconds())
	m.LastInside.Set(inside)
	if r.Fallback {
		m.FallbackResults.Inc()
	}
}

// TickSkipped records a tick dropped by the scheduler.
func (m *Metrics) TickSkipped() {
	m.OverlappingTicks.Inc()
}
