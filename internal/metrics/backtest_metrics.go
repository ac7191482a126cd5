// Package metrics defines backtesting-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backtest counter vectors
var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by method and status",
	}, []string{"method", "status"})
)

// Validation histogram vectors
var (
	ValidationCompositeScore = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "validation_composite_score",
		Help:      "Composite validation scores by recommendation",
		Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	}, []string{"recommendation"})
)

// Threshold optimization gauge vectors
var (
	ThresholdCandidateROI = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "threshold_candidate_roi",
		Help:      "ROI percentage of each detection threshold candidate",
	}, []string{"threshold"})
)

// RecordBacktestRun records a backtest run event.
// method should be one of: "replay", "walk_forward", "optimize", "monte_carlo"
// status should be one of: "success", "failure"
func RecordBacktestRun(method, status string) {
	BacktestRunsTotal.WithLabelValues(method, status).Inc()
}

// RecordCompositeScore records a composite validation score.
func RecordCompositeScore(recommendation string, score float64) {
	ValidationCompositeScore.WithLabelValues(recommendation).Observe(score)
}

// UpdateThresholdROI updates the ROI gauge for one threshold candidate.
func UpdateThresholdROI(threshold string, roi float64) {
	ThresholdCandidateROI.WithLabelValues(threshold).Set(roi)
}
