// Package metrics defines strategy-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Strategy-specific counter vectors
var (
	StrategyDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "strategy_decisions_total",
		Help:      "Total number of strategy decisions by outcome",
	}, []string{"strategy_name", "outcome"})
)

// Strategy-specific histogram vectors
var (
	StrategyConfidenceScore = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "strategy_confidence_score",
		Help:      "Confidence scores (0-100) of detected edges",
		Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	}, []string{"strategy_name"})
)

// RecordStrategyDecision records a strategy decision.
func RecordStrategyDecision(strategyName, outcome string) {
	StrategyDecisionsTotal.WithLabelValues(strategyName, outcome).Inc()
}

// RecordStrategyConfidence records a strategy confidence score.
func RecordStrategyConfidence(strategyName string, score float64) {
	StrategyConfidenceScore.WithLabelValues(strategyName).Observe(score)
}
