package backtest

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/line-edge/internal/config"
)

// BacktestConfig extends core config with backtest-specific settings
type BacktestConfig struct {
	StartDate            time.Time
	EndDate              time.Time
	Leagues              []string
	InitialBankroll      decimal.Decimal
	RiskFreeRate         float64
	Concurrency          int
	MonteCarloIterations int
	Seed                 int64
	OutputPath           string
}

// DefaultConfig returns an unbounded replay over every league
func DefaultConfig() BacktestConfig {
	return BacktestConfig{
		InitialBankroll:      decimal.NewFromInt(10000),
		Concurrency:          4,
		MonteCarloIterations: 1000,
	}
}

// FromConfig converts app config to backtest config
func FromConfig(cfg *config.BacktestConfig) (BacktestConfig, error) {
	if cfg == nil {
		return BacktestConfig{}, fmt.Errorf("backtest config is required")
	}
	start, end, err := cfg.Window()
	if err != nil {
		return BacktestConfig{}, fmt.Errorf("invalid backtest window: %w", err)
	}

	leagues := make([]string, 0, len(cfg.Leagues))
	for _, l := range cfg.Leagues {
		leagues = append(leagues, strings.ToUpper(l))
	}

	bt := BacktestConfig{
		StartDate:            start,
		EndDate:              end,
		Leagues:              leagues,
		InitialBankroll:      decimal.NewFromFloat(cfg.InitialBankroll).Round(2),
		RiskFreeRate:         cfg.RiskFreeRate,
		Concurrency:          cfg.Concurrency,
		MonteCarloIterations: cfg.MonteCarloIterations,
		Seed:                 cfg.Seed,
		OutputPath:           cfg.OutputPath,
	}

	return bt, bt.Validate()
}

// Validate validates backtest config parameters
func (b BacktestConfig) Validate() error {
	if !b.StartDate.IsZero() && !b.EndDate.IsZero() && b.StartDate.After(b.EndDate) {
		return fmt.Errorf("start date must be before end date")
	}
	if !b.InitialBankroll.IsPositive() {
		return fmt.Errorf("initial bankroll must be positive")
	}
	if b.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	if b.MonteCarloIterations <= 0 {
		return fmt.Errorf("monte carlo iterations must be positive")
	}
	return nil
}

// includes reports whether a league is selected. An empty selection means all.
func (b BacktestConfig) includes(league string) bool {
	if len(b.Leagues) == 0 {
		return true
	}
	for _, l := range b.Leagues {
		if l == league {
			return true
		}
	}
	return false
}
