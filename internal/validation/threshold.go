package validation

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/yourusername/line-edge/internal/metrics"
	"github.com/yourusername/line-edge/internal/models"
)

// ThresholdCandidate is one grid point of a threshold sweep
type ThresholdCandidate struct {
	Threshold   float64 `json:"threshold"`
	Bets        int     `json:"bets"`
	WinRate     float64 `json:"win_rate"`
	ROI         float64 `json:"roi"`
	SharpeRatio float64 `json:"sharpe_ratio"`
	Profit      float64 `json:"profit"`
	Eligible    bool    `json:"eligible"`
}

// ThresholdResult reports every candidate so callers can trade volume against
// per-bet quality. Best is nil when no candidate reached MinBets.
type ThresholdResult struct {
	Candidates []ThresholdCandidate `json:"candidates"`
	Best       *ThresholdCandidate  `json:"best,omitempty"`
	MinBets    int                  `json:"min_bets"`
}

// Grid expands [min, max] by step. Points are rounded to avoid float drift.
func Grid(min, max, step float64) []float64 {
	if step <= 0 || min > max {
		return nil
	}
	var points []float64
	for i := 0; ; i++ {
		p := math.Round((min+float64(i)*step)*1e6) / 1e6
		if p > max+1e-9 {
			break
		}
		points = append(points, p)
	}
	return points
}

// OptimizeThreshold replays games once per grid threshold and selects the
// highest-ROI candidate with at least MinBets bets. Ties prefer more bets,
// then the lower threshold.
func (v *Validator) OptimizeThreshold(ctx context.Context, games []*models.HistoricalGame) (ThresholdResult, error) {
	result := ThresholdResult{MinBets: v.config.MinBets}
	for _, th := range Grid(v.config.ThresholdMin, v.config.ThresholdMax, v.config.ThresholdStep) {
		strat, err := v.factory(th)
		if err != nil {
			return ThresholdResult{}, fmt.Errorf("threshold %.2f: %w", th, err)
		}
		summary, err := v.engine.WithStrategy(strat).RunStreams(ctx, games)
		if err != nil {
			return ThresholdResult{}, fmt.Errorf("threshold %.2f: %w", th, err)
		}
		m := summary.Metrics
		candidate := ThresholdCandidate{
			Threshold:   th,
			Bets:        m.TotalBets,
			WinRate:     m.WinRate,
			ROI:         m.ROI,
			SharpeRatio: m.SharpeRatio,
			Profit:      m.TotalProfit.InexactFloat64(),
			Eligible:    m.TotalBets > 0 && m.TotalBets >= v.config.MinBets,
		}
		result.Candidates = append(result.Candidates, candidate)
		metrics.UpdateThresholdROI(strconv.FormatFloat(th, 'f', 1, 64), m.ROI)
	}

	for i := range result.Candidates {
		c := &result.Candidates[i]
		if !c.Eligible {
			continue
		}
		if result.Best == nil || better(*c, *result.Best) {
			result.Best = c
		}
	}
	return result, nil
}

// better compares ROI at 0.01 point resolution so cent rounding noise does
// not decide between candidates
func better(a, b ThresholdCandidate) bool {
	ra, rb := math.Round(a.ROI*100), math.Round(b.ROI*100)
	if ra != rb {
		return ra > rb
	}
	if a.Bets != b.Bets {
		return a.Bets > b.Bets
	}
	return a.Threshold < b.Threshold
}
