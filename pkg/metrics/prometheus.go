package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	decisionsTotal    *prometheus.CounterVec
	degradationsTotal *prometheus.CounterVec
	finalScore        *prometheus.GaugeVec
	latency           *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		decisionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "equitysignal_decisions_total",
				Help: "Total number of decisions produced",
			},
			[]string{"symbol", "action"},
		),
		degradationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "equitysignal_agent_degradations_total",
				Help: "Total number of degraded agent analyses",
			},
			[]string{"agent", "kind"},
		),
		finalScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "equitysignal_final_score",
				Help: "Last aggregated score for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "equitysignal_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordDecision records a produced decision.
func (r *Recorder) RecordDecision(symbol, action string) {
	r.decisionsTotal.WithLabelValues(symbol, action).Inc()
}

// RecordDegradation records an agent falling back to a degraded result.
func (r *Recorder) RecordDegradation(agent, kind string) {
	r.degradationsTotal.WithLabelValues(agent, kind).Inc()
}

// RecordFinalScore records the latest aggregated score for a symbol.
func (r *Recorder) RecordFinalScore(symbol string, score float64) {
	r.finalScore.WithLabelValues(symbol).Set(score)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
