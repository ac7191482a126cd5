package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/yourusername/line-edge/internal/analysis"
	"github.com/yourusername/line-edge/internal/backtest"
	"github.com/yourusername/line-edge/internal/validation"
)

var (
	asOfFlag     string
	bankrollFlag float64
)

func init() {
	analyzeCmd.Flags().StringVar(&asOfFlag, "as-of", "", "Analysis time (RFC3339 or YYYY-MM-DD); defaults to now")
	analyzeCmd.Flags().Float64Var(&bankrollFlag, "bankroll", 0, "Bankroll to size stakes against; defaults to the configured initial bankroll")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay the configured window and report performance",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		summary, err := engine.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("backtest failed: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), backtest.GenerateConsoleReport(summary))

		if dir := engine.Config().OutputPath; dir != "" {
			if err := backtest.ExportReports(summary, dir); err != nil {
				return fmt.Errorf("failed to export reports: %w", err)
			}
			appLog.WithField("dir", dir).Info("Reports exported")
		}
		return nil
	},
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Sweep the edge threshold grid over the configured window",
	RunE: func(cmd *cobra.Command, args []string) error {
		v, engine, err := newValidator()
		if err != nil {
			return err
		}
		games, err := engine.LoadGames(cmd.Context())
		if err != nil {
			return err
		}
		result, err := v.OptimizeThreshold(cmd.Context(), games)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Threshold sweep (min %d bets)\n", result.MinBets)
		for _, c := range result.Candidates {
			marker := " "
			if result.Best != nil && result.Best.Threshold == c.Threshold {
				marker = "*"
			}
			fmt.Fprintf(out, " %s %5.1f  %4d bets  win %6.2f%%  ROI %7.2f%%  Sharpe %6.3f\n",
				marker, c.Threshold, c.Bets, c.WinRate, c.ROI, c.SharpeRatio)
		}
		if result.Best == nil {
			fmt.Fprintln(out, "no threshold met the minimum bet count")
		}
		return writeJSON(engine.Config().OutputPath, "threshold.json", result)
	},
}

var walkForwardCmd = &cobra.Command{
	Use:   "walk-forward",
	Short: "Tune on rolling train windows and score the following test windows",
	RunE: func(cmd *cobra.Command, args []string) error {
		v, engine, err := newValidator()
		if err != nil {
			return err
		}
		games, err := engine.LoadGames(cmd.Context())
		if err != nil {
			return err
		}
		result, err := v.WalkForward(cmd.Context(), games)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, f := range result.Folds {
			th := "baseline"
			if f.Tuned {
				th = fmt.Sprintf("%.1f", f.Threshold)
			}
			fmt.Fprintf(out, "fold %2d  train %s..%s  test %s..%s  threshold %-8s  %3d bets  ROI %7.2f%%\n",
				f.Index,
				f.TrainFrom.Format("2006-01-02"), f.TrainTo.Format("2006-01-02"),
				f.TestFrom.Format("2006-01-02"), f.TestTo.Format("2006-01-02"),
				th, f.TestMetrics.TotalBets, f.TestMetrics.ROI)
		}
		fmt.Fprintf(out, "pooled: %d bets, ROI %.2f%%, consistency %.2f, overfit %.2f\n",
			result.Pooled.TotalBets, result.Pooled.ROI, result.ConsistencyScore, result.OverfitScore)
		return writeJSON(engine.Config().OutputPath, "walk_forward.json", result)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run every validation method and print a recommendation",
	RunE: func(cmd *cobra.Command, args []string) error {
		v, engine, err := newValidator()
		if err != nil {
			return err
		}
		games, err := engine.LoadGames(cmd.Context())
		if err != nil {
			return err
		}
		report, err := v.Run(cmd.Context(), games)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), validation.GenerateConsoleReport(report))
		return writeJSON(engine.Config().OutputPath, "validation.json", report)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Rate and size the upcoming slate",
	RunE: func(cmd *cobra.Command, args []string) error {
		asOf, err := parseAsOf(asOfFlag)
		if err != nil {
			return err
		}
		bankroll := decimal.NewFromFloat(cfg.Backtest.InitialBankroll).Round(2)
		if bankrollFlag > 0 {
			bankroll = decimal.NewFromFloat(bankrollFlag).Round(2)
		}

		a, err := analysis.NewAnalyzer(repos, baseline, cfg.Backtest.Concurrency, appLog)
		if err != nil {
			return err
		}
		if a, err = a.WithRiskLimits(analysis.RiskLimitsFromConfig(&cfg.Analysis)); err != nil {
			return err
		}
		report, err := a.AnalyzeUpcoming(cmd.Context(), asOf, bankroll)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Slate as of %s, bankroll %s\n", report.AsOf.Format(time.RFC3339), report.Bankroll.StringFixed(2))
		for _, e := range report.Edges {
			edge := e.Signal.Edge
			fmt.Fprintf(out, "%2d. %-24s %-5s %-4s line %+5.1f model %+5.1f edge %4.1f (%s) conf %3.0f  stake %s  kelly %.3f\n",
				e.Rank, e.MatchupID, e.League, edge.Side, edge.MarketLine, edge.PredictedLine,
				edge.Magnitude, edge.Tier, edge.Confidence, e.Stake.StringFixed(2), e.KellyFraction)
		}
		fmt.Fprintf(out, "%d edges, %d passes, %d errors, total risk %s of %s (%d capped, %d dropped)\n",
			len(report.Edges), len(report.Passes), len(report.Errors), report.TotalRisk.StringFixed(2),
			report.Risk.MaxExposure.StringFixed(2), report.Risk.Capped, report.Risk.Dropped)
		for _, e := range report.Errors {
			fmt.Fprintf(out, "  ! %s: %s\n", e.MatchupID, e.Message)
		}
		return writeJSON(cfg.Backtest.OutputPath, "analysis.json", report)
	},
}

func parseAsOf(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q: want RFC3339 or YYYY-MM-DD", s)
	}
	return t, nil
}

// writeJSON writes v to dir/name when an output directory is configured
func writeJSON(dir, name string, v interface{}) error {
	if dir == "" {
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return err
	}
	appLog.WithField("path", path).Info("Report written")
	return nil
}
