package validation

import (
	"math"

	"github.com/yourusername/line-edge/internal/backtest"
)

// Recommendations
const (
	RecommendAccept      = "ACCEPT"
	RecommendNeedsReview = "NEEDS_REVIEW"
	RecommendReject      = "REJECT"
)

// CompositeWeights weight each evidence source in the composite score
type CompositeWeights struct {
	Backtest     float64 `json:"backtest"`
	WalkForward  float64 `json:"walk_forward"`
	Significance float64 `json:"significance"`
	MonteCarlo   float64 `json:"monte_carlo"`
}

// DefaultCompositeWeights returns the standard weighting
func DefaultCompositeWeights() CompositeWeights {
	return CompositeWeights{Backtest: 0.35, WalkForward: 0.35, Significance: 0.15, MonteCarlo: 0.15}
}

// CalculateBacktestScore scores in-sample metrics in [0,1]
func CalculateBacktestScore(m backtest.PerformanceMetrics) float64 {
	sharpeScore := normalize(m.SharpeRatio, -0.5, 0.5)
	roiScore := normalize(m.ROI, -10, 10)
	profitFactorScore := normalize(m.ProfitFactor, 0, 2)
	drawdownPenalty := 1.0 - normalize(m.MaxDrawdown, 0, 50)
	clvScore := normalize(m.AverageCLV, -1, 1)

	weighted := 0.0
	weighted += sharpeScore * 0.25
	weighted += roiScore * 0.25
	weighted += profitFactorScore * 0.15
	weighted += drawdownPenalty * 0.15
	weighted += clvScore * 0.20
	return weighted
}

// CalculateCompositeScore blends every evidence source. Missing sources
// contribute zero.
func CalculateCompositeScore(m backtest.PerformanceMetrics, wf *WalkForwardResult, sig SignificanceResult, mc *backtest.MonteCarloResult, w CompositeWeights) float64 {
	score := CalculateBacktestScore(m) * w.Backtest
	if wf != nil {
		wfScore := 0.5*wf.ConsistencyScore + 0.5*normalize(wf.Pooled.ROI, -10, 10)
		score += wfScore * w.WalkForward
	}
	if sig.Insufficient == nil {
		score += (1 - normalize(sig.PValue, 0, 0.5)) * w.Significance
	}
	if mc != nil {
		score += mc.ProbabilityOfProfit * w.MonteCarlo
	}
	return score
}

// GenerateRecommendation determines if a strategy is acceptable
func GenerateRecommendation(score float64, backtestROI float64, wf *WalkForwardResult, sig SignificanceResult) string {
	consistency, wfROI := 0.0, 0.0
	if wf != nil {
		consistency, wfROI = wf.ConsistencyScore, wf.Pooled.ROI
	}
	if score > 0.7 && backtestROI > 0 && wfROI > 0 && consistency > 0.6 && sig.Verdict == VerdictPass {
		return RecommendAccept
	}
	if score < 0.4 || backtestROI < 0 || wfROI < 0 || (wf != nil && consistency < 0.4) {
		return RecommendReject
	}
	return RecommendNeedsReview
}

func normalize(value, min, max float64) float64 {
	if max-min == 0 {
		return 0
	}
	v := (value - min) / (max - min)
	return math.Max(0, math.Min(1, v))
}
