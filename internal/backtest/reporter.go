package backtest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yourusername/line-edge/internal/models"
)

// GenerateConsoleReport formats a replay summary for terminal output
func GenerateConsoleReport(s *Summary) string {
	m := s.Metrics
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Run: %s (%s)\n", s.RunID, s.Strategy.Name))
	builder.WriteString(fmt.Sprintf("Games: %d processed, %d analyzed, %d skipped, %d failed\n",
		s.GamesProcessed, s.GamesAnalyzed, s.GamesSkipped, s.Failures))
	builder.WriteString(fmt.Sprintf("Bankroll: %s -> %s\n", s.StartingBankroll().StringFixed(2), s.EndingBankroll().StringFixed(2)))
	builder.WriteString(fmt.Sprintf("Bets: %d (%d-%d-%d)\n", m.TotalBets, m.Wins, m.Losses, m.Pushes))
	builder.WriteString(fmt.Sprintf("Win Rate: %.2f%%\n", m.WinRate))
	builder.WriteString(fmt.Sprintf("ROI: %.2f%%\n", m.ROI))
	builder.WriteString(fmt.Sprintf("Profit: %s on %s staked\n", m.TotalProfit.StringFixed(2), m.TotalStaked.StringFixed(2)))
	builder.WriteString(fmt.Sprintf("Sharpe Ratio: %.3f\n", m.SharpeRatio))
	builder.WriteString(fmt.Sprintf("Max Drawdown: %.2f%%\n", m.MaxDrawdown))
	builder.WriteString(fmt.Sprintf("Average CLV: %.2f (%d samples, %.1f%% positive)\n", m.AverageCLV, m.CLVSamples, m.PositiveCLVRate))
	builder.WriteString(fmt.Sprintf("Streaks: %d wins, %d losses\n", m.LongestWinStreak, m.LongestLossStreak))
	builder.WriteString(fmt.Sprintf("Profit Factor: %.2f\n", m.ProfitFactor))

	if len(s.Streams) > 0 {
		builder.WriteString("\nStreams\n")
		for _, st := range s.Streams {
			builder.WriteString(fmt.Sprintf("  %-12s %4d bets  ROI %7.2f%%  %s -> %s\n",
				st.Key, st.Metrics.TotalBets, st.Metrics.ROI,
				st.StartingBankroll.StringFixed(2), st.EndingBankroll.StringFixed(2)))
		}
	}
	writeSegments(&builder, "Confidence", s.Segments.ByConfidence)
	writeSegments(&builder, "Tier", s.Segments.ByTier)
	writeSegments(&builder, "Month", s.Segments.ByMonth)

	if len(s.Errors) > 0 {
		builder.WriteString("\nFailures\n")
		for _, e := range s.Errors {
			builder.WriteString(fmt.Sprintf("  %s [%s] %s: %s\n", e.MatchupID, e.Stream, e.Stage, e.Message))
		}
	}
	return builder.String()
}

func writeSegments(b *strings.Builder, title string, segments []Segment) {
	if len(segments) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("\nBy %s\n", title))
	for _, seg := range segments {
		b.WriteString(fmt.Sprintf("  %-12s %4d bets  win %6.2f%%  ROI %7.2f%%\n",
			seg.Key, seg.Metrics.TotalBets, seg.Metrics.WinRate, seg.Metrics.ROI))
	}
}

var ledgerHeader = []string{
	"bet_id", "game_date", "league", "season", "matchup_id", "side", "tier",
	"predicted_line", "market_line", "magnitude", "confidence", "stake_fraction",
	"odds", "stake", "result", "profit", "closing_line", "clv",
}

// WriteLedgerCSV writes one row per bet record
func WriteLedgerCSV(w io.Writer, ledger []*models.BetRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ledgerHeader); err != nil {
		return err
	}
	for _, b := range ledger {
		closing, clv := "", ""
		if b.ClosingLine != nil {
			closing = formatFloat(*b.ClosingLine, 1)
		}
		if b.CLV != nil {
			clv = formatFloat(*b.CLV, 2)
		}
		row := []string{
			b.ID.String(),
			b.GameDate.Format("2006-01-02"),
			b.League,
			strconv.Itoa(b.Season),
			b.Edge.MatchupID,
			string(b.Edge.Side),
			string(b.Edge.Tier),
			formatFloat(b.Edge.PredictedLine, 2),
			formatFloat(b.Edge.MarketLine, 1),
			formatFloat(b.Edge.Magnitude, 2),
			formatFloat(b.Edge.Confidence, 1),
			formatFloat(b.Edge.StakeFraction, 4),
			strconv.Itoa(b.Odds),
			b.Stake.StringFixed(2),
			string(b.Result),
			b.Profit.StringFixed(2),
			closing,
			clv,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportReports writes summary.json, ledger.csv and one equity curve CSV per
// stream into dir
func ExportReports(s *Summary, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "summary.json"), data, 0o644); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(dir, "ledger.csv"))
	if err != nil {
		return err
	}
	if err := WriteLedgerCSV(f, s.Ledger); err != nil {
		f.Close()
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	for _, st := range s.Streams {
		name := "equity_" + strings.ReplaceAll(st.Key, ":", "_") + ".csv"
		if err := os.WriteFile(filepath.Join(dir, name), []byte(st.EquityCurve.ToCSV()), 0o644); err != nil {
			return err
		}
	}
	return nil
}
