package validation

import (
	"github.com/yourusername/line-edge/internal/backtest"
	"github.com/yourusername/line-edge/internal/models"
)

// StandardOdds is the flat spread price the reference baselines assume
const StandardOdds = -110

// Benchmark is a reference flat-betting baseline at -110
type Benchmark struct {
	Name    string  `json:"name"`
	WinRate float64 `json:"win_rate"`
	ROI     float64 `json:"roi"`
}

// DefaultBenchmarks returns the documented reference baselines
func DefaultBenchmarks() []Benchmark {
	return []Benchmark{
		{Name: "random", WinRate: 50.0, ROI: -4.55},
		{Name: "favorites", WinRate: 48.5, ROI: -7.4},
		{Name: "underdogs", WinRate: 51.5, ROI: -1.7},
	}
}

// Comparison is the strategy's margin over one baseline
type Comparison struct {
	Benchmark    Benchmark `json:"benchmark"`
	WinRateDelta float64   `json:"win_rate_delta"`
	ROIDelta     float64   `json:"roi_delta"`
	Beats        bool      `json:"beats"`
}

// BenchmarkReport compares a ledger against every baseline
type BenchmarkReport struct {
	WinRate          float64      `json:"win_rate"`
	ROI              float64      `json:"roi"`
	BreakevenWinRate float64      `json:"breakeven_win_rate"`
	AboveBreakeven   bool         `json:"above_breakeven"`
	Comparisons      []Comparison `json:"comparisons"`
}

// CompareBenchmarks measures the ledger against the baselines. A baseline is
// beaten only when both ROI and win rate exceed it.
func CompareBenchmarks(m backtest.PerformanceMetrics, benchmarks []Benchmark) BenchmarkReport {
	report := BenchmarkReport{
		WinRate:          m.WinRate,
		ROI:              m.ROI,
		BreakevenWinRate: models.BreakevenWinRate(StandardOdds),
		Comparisons:      make([]Comparison, 0, len(benchmarks)),
	}
	report.AboveBreakeven = m.TotalBets > 0 && m.WinRate > report.BreakevenWinRate
	for _, b := range benchmarks {
		c := Comparison{
			Benchmark:    b,
			WinRateDelta: m.WinRate - b.WinRate,
			ROIDelta:     m.ROI - b.ROI,
		}
		c.Beats = m.TotalBets > 0 && c.WinRateDelta > 0 && c.ROIDelta > 0
		report.Comparisons = append(report.Comparisons, c)
	}
	return report
}
