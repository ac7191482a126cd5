// Package metrics provides centralized Prometheus metrics registry for the edge engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "line_edge"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	GamesProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "games_processed_total",
		Help:      "Historical games processed by league and final state",
	}, []string{"league", "state"})
	GameFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "game_failures_total",
		Help:      "Games whose analysis failed and were skipped",
	}, []string{"league"})
	EdgesDetectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "edges_detected_total",
		Help:      "Edges detected by league and strength tier",
	}, []string{"league", "tier"})
	NoEdgesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "no_edges_total",
		Help:      "Matchups without an edge by league and reason",
	}, []string{"league", "reason"})
	BetsGradedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bets_graded_total",
		Help:      "Simulated bets graded by league and result",
	}, []string{"league", "result"})
)

// Gauge metrics
var (
	StreamBankroll = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_bankroll",
		Help:      "Running bankroll per league and season stream",
	}, []string{"stream"})
	RatingCacheSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rating_cache_size",
		Help:      "Number of memoized power ratings",
	})
)

// Histogram metrics
var (
	EdgeMagnitude = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "edge_magnitude_points",
		Help:      "Magnitude of detected edges in points",
		Buckets:   []float64{3, 4, 5, 6, 7, 8, 10, 12, 15},
	}, []string{"league"})
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(GamesProcessedTotal)
		registry.MustRegister(GameFailuresTotal)
		registry.MustRegister(EdgesDetectedTotal)
		registry.MustRegister(NoEdgesTotal)
		registry.MustRegister(BetsGradedTotal)

		registry.MustRegister(StreamBankroll)
		registry.MustRegister(RatingCacheSize)

		registry.MustRegister(EdgeMagnitude)
		registry.MustRegister(BacktestDuration)

		registry.MustRegister(StrategyDecisionsTotal)
		registry.MustRegister(StrategyConfidenceScore)

		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(ValidationCompositeScore)
		registry.MustRegister(ThresholdCandidateROI)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordGameProcessed records the final state reached by one game.
func RecordGameProcessed(league, state string) {
	GamesProcessedTotal.WithLabelValues(league, state).Inc()
}

// RecordGameFailure records a game whose analysis failed.
func RecordGameFailure(league string) {
	GameFailuresTotal.WithLabelValues(league).Inc()
}

// RecordEdge records a detected edge.
func RecordEdge(league, tier string, magnitude float64) {
	EdgesDetectedTotal.WithLabelValues(league, tier).Inc()
	EdgeMagnitude.WithLabelValues(league).Observe(magnitude)
}

// RecordNoEdge records a matchup without an edge.
func RecordNoEdge(league, reason string) {
	NoEdgesTotal.WithLabelValues(league, reason).Inc()
}

// RecordBetGraded records a graded bet.
func RecordBetGraded(league, result string) {
	BetsGradedTotal.WithLabelValues(league, result).Inc()
}

// UpdateStreamBankroll updates the bankroll gauge for a stream.
func UpdateStreamBankroll(stream string, amount float64) {
	StreamBankroll.WithLabelValues(stream).Set(amount)
}

// UpdateRatingCacheSize updates the rating cache gauge.
func UpdateRatingCacheSize(size int) {
	RatingCacheSize.Set(float64(size))
}

// RecordBacktestDuration records backtest duration.
func RecordBacktestDuration(durationSeconds float64) {
	BacktestDuration.Observe(durationSeconds)
}
