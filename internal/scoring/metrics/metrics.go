package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the scoring module.
type Metrics struct {
	// Evidence fetch latencies by source
	EvidenceLatency *prometheus.HistogramVec

	// Committed snapshots by track and tier
	ScoreOutcome *prometheus.CounterVec

	// Full recompute latency by track
	ComputeLatency *prometheus.HistogramVec

	// Fraud flags raised by type
	FlagsRaised *prometheus.CounterVec
}

// New creates a Metrics instance with all scoring metrics registered.
func New() *Metrics {
	return &Metrics{
		EvidenceLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nexolend_scoring_evidence_duration_seconds",
			Help:    "Duration of collaborator data fetches by source",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"source"}),

		ScoreOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nexolend_scoring_outcomes_total",
			Help: "Committed score snapshots by track and tier",
		}, []string{"track", "tier"}),

		ComputeLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nexolend_scoring_compute_duration_seconds",
			Help:    "Duration of full score recomputation including evidence fetches",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"track"}),

		FlagsRaised: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nexolend_scoring_fraud_flags_total",
			Help: "Fraud flags raised by type",
		}, []string{"fraud_type"}),
	}
}

// ObserveEvidenceLatency records the duration of one collaborator fetch.
func (m *Metrics) ObserveEvidenceLatency(source string, d time.Duration) {
	if m != nil {
		m.EvidenceLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// IncrementOutcome records a committed snapshot.
func (m *Metrics) IncrementOutcome(track, tier string) {
	if m != nil {
		m.ScoreOutcome.WithLabelValues(track, tier).Inc()
	}
}

// ObserveComputeLatency records a full recompute duration.
func (m *Metrics) ObserveComputeLatency(track string, d time.Duration) {
	if m != nil {
		m.ComputeLatency.WithLabelValues(track).Observe(d.Seconds())
	}
}

// IncrementFlagsRaised records a newly persisted fraud flag.
func (m *Metrics) IncrementFlagsRaised(fraudType string) {
	if m != nil {
		m.FlagsRaised.WithLabelValues(fraudType).Inc()
	}
}
