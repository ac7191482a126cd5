package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/line-edge/internal/models"
)

// MonteCarloConfig configures monte carlo simulation
type MonteCarloConfig struct {
	Iterations      int
	Seed            int64
	InitialBankroll float64
	// RuinFraction is the share of the starting bankroll below which a path
	// counts as ruined
	RuinFraction float64
}

// MonteCarloResult represents monte carlo outcomes. Returns are fractions of
// the initial bankroll.
type MonteCarloResult struct {
	Iterations          int                `json:"iterations"`
	Bets                int                `json:"bets"`
	MeanReturn          float64            `json:"mean_return"`
	MedianReturn        float64            `json:"median_return"`
	StdReturn           float64            `json:"std_return"`
	VaR95               float64            `json:"var_95"`
	VaR99               float64            `json:"var_99"`
	ProbabilityOfProfit float64            `json:"probability_of_profit"`
	ProbabilityOfRuin   float64            `json:"probability_of_ruin"`
	MeanMaxDrawdown     float64            `json:"mean_max_drawdown"`
	ConfidenceIntervals map[string]float64 `json:"confidence_intervals"`
	Distribution        []float64          `json:"-"`
}

// BetReturns converts a ledger into per-bet bankroll returns: the bet's return
// on stake scaled by the stake fraction it was sized at
func BetReturns(ledger []*models.BetRecord) []float64 {
	returns := make([]float64, 0, len(ledger))
	for _, b := range gradedOnly(ledger) {
		if !b.Stake.IsPositive() {
			continue
		}
		onStake := b.Profit.Div(b.Stake).InexactFloat64()
		returns = append(returns, onStake*b.Edge.StakeFraction)
	}
	return returns
}

// RunMonteCarlo bootstraps the ledger: each path resamples the per-bet
// returns with replacement and compounds them from the initial bankroll
func RunMonteCarlo(ctx context.Context, ledger []*models.BetRecord, cfg MonteCarloConfig) (MonteCarloResult, error) {
	returns := BetReturns(ledger)
	if len(returns) < 2 {
		return MonteCarloResult{}, &models.InsufficientSampleError{Required: 2, Actual: len(returns)}
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = 1000
	}
	if cfg.InitialBankroll <= 0 {
		return MonteCarloResult{}, models.NewConfigurationError("initial_bankroll", "must be positive, got %v", cfg.InitialBankroll)
	}
	if cfg.RuinFraction <= 0 || cfg.RuinFraction >= 1 {
		cfg.RuinFraction = 0.5
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(seed))
	distribution := make([]float64, cfg.Iterations)
	ruinLevel := cfg.InitialBankroll * cfg.RuinFraction
	ruined := 0
	drawdownSum := 0.0

	for i := 0; i < cfg.Iterations; i++ {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return MonteCarloResult{}, err
			}
		}
		bankroll := cfg.InitialBankroll
		peak := bankroll
		maxDD := 0.0
		hitRuin := false
		for range returns {
			bankroll *= 1 + returns[rng.Intn(len(returns))]
			if bankroll > peak {
				peak = bankroll
			}
			if dd := (peak - bankroll) / peak; dd > maxDD {
				maxDD = dd
			}
			if bankroll < ruinLevel {
				hitRuin = true
			}
		}
		if hitRuin {
			ruined++
		}
		drawdownSum += maxDD
		distribution[i] = (bankroll - cfg.InitialBankroll) / cfg.InitialBankroll
	}

	sorted := append([]float64(nil), distribution...)
	sort.Float64s(sorted)
	mean, std := stat.MeanStdDev(sorted, nil)

	return MonteCarloResult{
		Iterations:          cfg.Iterations,
		Bets:                len(returns),
		MeanReturn:          mean,
		MedianReturn:        stat.Quantile(0.5, stat.Empirical, sorted, nil),
		StdReturn:           std,
		VaR95:               stat.Quantile(0.05, stat.Empirical, sorted, nil),
		VaR99:               stat.Quantile(0.01, stat.Empirical, sorted, nil),
		ProbabilityOfProfit: probabilityAbove(sorted, 0),
		ProbabilityOfRuin:   float64(ruined) / float64(cfg.Iterations),
		MeanMaxDrawdown:     drawdownSum / float64(cfg.Iterations),
		ConfidenceIntervals: CalculateConfidenceIntervals(sorted, []float64{0.9, 0.95, 0.99}),
		Distribution:        distribution,
	}, nil
}

// CalculateConfidenceIntervals returns the width of each central interval of
// an ascending distribution
func CalculateConfidenceIntervals(sorted []float64, levels []float64) map[string]float64 {
	results := make(map[string]float64, len(levels))
	if len(sorted) == 0 {
		return results
	}
	for _, level := range levels {
		p := (1.0 - level) / 2.0
		low := stat.Quantile(p, stat.Empirical, sorted, nil)
		high := stat.Quantile(1.0-p, stat.Empirical, sorted, nil)
		results[formatPercent(level)] = high - low
	}
	return results
}

// ToJSON exports the result without the raw distribution
func (m MonteCarloResult) ToJSON() string {
	data, _ := json.Marshal(m)
	return string(data)
}

func probabilityAbove(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v > threshold {
			count++
		}
	}
	return float64(count) / float64(len(values))
}

func formatPercent(level float64) string {
	return fmt.Sprintf("%.0f%%", level*100)
}
