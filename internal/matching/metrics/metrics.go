// Package metrics provides Prometheus observability for the matching module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the matching module's Prometheus collectors. All methods are
// nil-safe so wiring metrics stays optional in tests.
type Metrics struct {
	// Evaluations by outcome ("eligible" / "ineligible")
	Evaluations *prometheus.CounterVec

	// Trials skipped for configuration errors
	TrialsSkipped prometheus.Counter

	// Patient records rejected at validation
	RecordsRejected prometheus.Counter

	// Per-decision confidence distribution
	Confidence prometheus.Histogram

	// Full orchestration run latency
	RunDuration prometheus.Histogram
}

// New creates a Metrics instance with all matching module metrics registered.
func New() *Metrics {
	return &Metrics{
		Evaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trialmatch_evaluations_total",
			Help: "Total trial evaluations by outcome",
		}, []string{"outcome"}),

		TrialsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trialmatch_trials_skipped_total",
			Help: "Total trials skipped for configuration errors",
		}),

		RecordsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trialmatch_records_rejected_total",
			Help: "Total patient records rejected at validation",
		}),

		Confidence: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "trialmatch_decision_confidence",
			Help:    "Distribution of per-decision confidence scores",
			Buckets: []float64{0, 0.2, 0.4, 0.5, 0.6, 0.8, 0.9, 1},
		}),

		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "trialmatch_run_duration_seconds",
			Help:    "Duration of full catalog orchestration runs",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementEvaluation records one evaluation outcome and its confidence.
func (m *Metrics) IncrementEvaluation(eligible bool, confidence float64) {
	if m == nil {
		return
	}
	outcome := "ineligible"
	if eligible {
		outcome = "eligible"
	}
	m.Evaluations.WithLabelValues(outcome).Inc()
	m.Confidence.Observe(confidence)
}

// IncrementSkipped records a configuration-skipped trial.
func (m *Metrics) IncrementSkipped() {
	if m != nil {
		m.TrialsSkipped.Inc()
	}
}

// IncrementRejected records a rejected patient record.
func (m *Metrics) IncrementRejected() {
	if m != nil {
		m.RecordsRejected.Inc()
	}
}

// ObserveRunDuration records the latency of one orchestration run.
func (m *Metrics) ObserveRunDuration(d time.Duration) {
	if m != nil {
		m.RunDuration.Observe(d.Seconds())
	}
}
