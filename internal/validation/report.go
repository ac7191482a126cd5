package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/line-edge/internal/backtest"
	"github.com/yourusername/line-edge/internal/metrics"
	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/strategy"
)

// ValidationReport is the read-only outcome of a full validation
type ValidationReport struct {
	GeneratedAt    time.Time                   `json:"generated_at"`
	Strategy       strategy.Metadata           `json:"strategy"`
	Backtest       backtest.PerformanceMetrics `json:"backtest"`
	Segments       backtest.Segments           `json:"segments"`
	Failures       int                         `json:"failures"`
	Threshold      ThresholdResult             `json:"threshold"`
	WalkForward    *WalkForwardResult          `json:"walk_forward,omitempty"`
	WalkForwardErr string                      `json:"walk_forward_error,omitempty"`
	Significance   SignificanceResult          `json:"significance"`
	Bias           BiasReport                  `json:"bias"`
	Benchmarks     BenchmarkReport             `json:"benchmarks"`
	MonteCarlo     *backtest.MonteCarloResult  `json:"monte_carlo,omitempty"`
	CompositeScore float64                     `json:"composite_score"`
	Recommendation string                      `json:"recommendation"`
}

// ToJSON exports the report
func (r *ValidationReport) ToJSON() string {
	data, _ := json.MarshalIndent(r, "", "  ")
	return string(data)
}

// Run executes every validation method over games. Too little history for
// walk-forward or Monte Carlo is reported on the result, not returned as an
// error.
func (v *Validator) Run(ctx context.Context, games []*models.HistoricalGame) (*ValidationReport, error) {
	summary, err := v.engine.RunStreams(ctx, games)
	if err != nil {
		metrics.RecordBacktestRun("validate", "error")
		return nil, fmt.Errorf("baseline replay: %w", err)
	}

	report := &ValidationReport{
		GeneratedAt: time.Now().UTC(),
		Strategy:    summary.Strategy,
		Backtest:    summary.Metrics,
		Segments:    summary.Segments,
		Failures:    summary.Failures,
	}

	report.Threshold, err = v.OptimizeThreshold(ctx, games)
	if err != nil {
		metrics.RecordBacktestRun("validate", "error")
		return nil, err
	}

	wf, err := v.WalkForward(ctx, games)
	switch {
	case err == nil:
		report.WalkForward = &wf
	case errors.Is(err, models.ErrInsufficientSample):
		report.WalkForwardErr = err.Error()
	default:
		metrics.RecordBacktestRun("validate", "error")
		return nil, err
	}

	report.Significance = LedgerSignificance(summary.Ledger, v.config.ConfidenceLevel, v.config.MinSamples)
	report.Bias = DetectBias(summary.Ledger, v.config.FavoriteThreshold)
	report.Benchmarks = CompareBenchmarks(summary.Metrics, DefaultBenchmarks())

	btCfg := v.engine.Config()
	mc, err := backtest.RunMonteCarlo(ctx, summary.Ledger, backtest.MonteCarloConfig{
		Iterations:      btCfg.MonteCarloIterations,
		Seed:            btCfg.Seed,
		InitialBankroll: btCfg.InitialBankroll.InexactFloat64(),
	})
	switch {
	case err == nil:
		report.MonteCarlo = &mc
	case !errors.Is(err, models.ErrInsufficientSample):
		metrics.RecordBacktestRun("validate", "error")
		return nil, err
	}

	report.CompositeScore = CalculateCompositeScore(summary.Metrics, report.WalkForward, report.Significance, report.MonteCarlo, DefaultCompositeWeights())
	report.Recommendation = GenerateRecommendation(report.CompositeScore, summary.Metrics.ROI, report.WalkForward, report.Significance)

	metrics.RecordCompositeScore(report.Recommendation, report.CompositeScore)
	metrics.RecordBacktestRun("validate", "success")
	v.logger.LogValidationResult("composite", report.Recommendation, map[string]interface{}{
		"score":        report.CompositeScore,
		"roi":          summary.Metrics.ROI,
		"p_value":      report.Significance.PValue,
		"significance": report.Significance.Verdict,
		"bias_flags":   len(report.Bias.Flags),
	})
	return report, nil
}

// GenerateConsoleReport formats a validation report for terminal output
func GenerateConsoleReport(r *ValidationReport) string {
	var b strings.Builder
	b.WriteString("Validation Report\n")
	b.WriteString("=================\n")
	b.WriteString(fmt.Sprintf("Strategy: %s\n", r.Strategy.Name))
	b.WriteString(fmt.Sprintf("Recommendation: %s (composite %.3f)\n", r.Recommendation, r.CompositeScore))
	b.WriteString(fmt.Sprintf("Backtest: %d bets, win %.2f%%, ROI %.2f%%, Sharpe %.3f\n",
		r.Backtest.TotalBets, r.Backtest.WinRate, r.Backtest.ROI, r.Backtest.SharpeRatio))

	b.WriteString("\nThreshold sweep\n")
	for _, c := range r.Threshold.Candidates {
		marker := " "
		if r.Threshold.Best != nil && r.Threshold.Best.Threshold == c.Threshold {
			marker = "*"
		}
		b.WriteString(fmt.Sprintf(" %s %5.1f  %4d bets  win %6.2f%%  ROI %7.2f%%  Sharpe %6.3f\n",
			marker, c.Threshold, c.Bets, c.WinRate, c.ROI, c.SharpeRatio))
	}

	b.WriteString("\nWalk-forward\n")
	if r.WalkForward != nil {
		for _, f := range r.WalkForward.Folds {
			th := "baseline"
			if f.Tuned {
				th = fmt.Sprintf("%.1f", f.Threshold)
			}
			b.WriteString(fmt.Sprintf("  fold %2d  %s..%s  threshold %-8s  %3d bets  ROI %7.2f%%\n",
				f.Index, f.TestFrom.Format("2006-01-02"), f.TestTo.Format("2006-01-02"), th, f.TestMetrics.TotalBets, f.TestMetrics.ROI))
		}
		b.WriteString(fmt.Sprintf("  pooled ROI %.2f%%, consistency %.2f, overfit %.2f\n",
			r.WalkForward.Pooled.ROI, r.WalkForward.ConsistencyScore, r.WalkForward.OverfitScore))
	} else {
		b.WriteString(fmt.Sprintf("  skipped: %s\n", r.WalkForwardErr))
	}

	s := r.Significance
	b.WriteString("\nSignificance\n")
	if s.Insufficient != nil {
		b.WriteString(fmt.Sprintf("  %s: %s\n", s.Verdict, s.Insufficient.Error()))
	} else if s.Degenerate {
		b.WriteString(fmt.Sprintf("  %s: every bet returned %.2f, no variance to test\n", s.Verdict, s.Mean))
	} else {
		b.WriteString(fmt.Sprintf("  %s: mean %.2f, t %.3f, p %.4f, %.0f%% CI [%.2f, %.2f]\n",
			s.Verdict, s.Mean, s.TStatistic, s.PValue, s.ConfidenceLevel*100, s.CILow, s.CIHigh))
	}

	b.WriteString("\nBias\n")
	for _, p := range []Population{r.Bias.Home, r.Bias.Away, r.Bias.Favorite, r.Bias.Underdog, r.Bias.PickEm} {
		b.WriteString(fmt.Sprintf("  %-9s %4d bets  win %6.2f%%  ROI %7.2f%%\n", p.Name, p.Bets, p.WinRate, p.ROI))
	}
	for _, flag := range r.Bias.Flags {
		b.WriteString(fmt.Sprintf("  ! %s\n", flag))
	}

	b.WriteString(fmt.Sprintf("\nBenchmarks (breakeven %.2f%%)\n", r.Benchmarks.BreakevenWinRate))
	for _, c := range r.Benchmarks.Comparisons {
		b.WriteString(fmt.Sprintf("  %-9s win %+6.2f  ROI %+7.2f  beats=%t\n", c.Benchmark.Name, c.WinRateDelta, c.ROIDelta, c.Beats))
	}

	if r.MonteCarlo != nil {
		b.WriteString(fmt.Sprintf("\nMonte Carlo (%d paths): mean %.2f%%, VaR95 %.2f%%, P(profit) %.2f, P(ruin) %.3f\n",
			r.MonteCarlo.Iterations, r.MonteCarlo.MeanReturn*100, r.MonteCarlo.VaR95*100,
			r.MonteCarlo.ProbabilityOfProfit, r.MonteCarlo.ProbabilityOfRuin))
	}
	return b.String()
}
