// Package validation checks whether a strategy's backtest edge is real:
// threshold sweeps, walk-forward folds, significance, bias and benchmarks.
package validation

import (
	"fmt"

	"github.com/yourusername/line-edge/internal/backtest"
	"github.com/yourusername/line-edge/internal/config"
	"github.com/yourusername/line-edge/internal/logger"
	"github.com/yourusername/line-edge/internal/strategy"
)

// StrategyFactory builds the strategy to replay at a detection threshold
type StrategyFactory func(threshold float64) (strategy.Strategy, error)

// Config holds validation parameters
type Config struct {
	ThresholdMin      float64
	ThresholdMax      float64
	ThresholdStep     float64
	MinBets           int
	TrainGames        int
	TestGames         int
	StepGames         int
	ConfidenceLevel   float64
	MinSamples        int
	FavoriteThreshold float64
}

// DefaultConfig returns the documented validation defaults
func DefaultConfig() Config {
	return Config{
		ThresholdMin:      2.0,
		ThresholdMax:      10.0,
		ThresholdStep:     0.5,
		MinBets:           20,
		TrainGames:        200,
		TestGames:         50,
		StepGames:         50,
		ConfidenceLevel:   0.95,
		MinSamples:        30,
		FavoriteThreshold: 3,
	}
}

// FromConfig converts app config to validation config
func FromConfig(cfg *config.ValidationConfig) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		ThresholdMin:      cfg.ThresholdMin,
		ThresholdMax:      cfg.ThresholdMax,
		ThresholdStep:     cfg.ThresholdStep,
		MinBets:           cfg.MinBets,
		TrainGames:        cfg.TrainGames,
		TestGames:         cfg.TestGames,
		StepGames:         cfg.StepGames,
		ConfidenceLevel:   cfg.ConfidenceLevel,
		MinSamples:        cfg.MinSamples,
		FavoriteThreshold: cfg.FavoriteThreshold,
	}
}

// Validate checks parameter ranges
func (c Config) Validate() error {
	if c.ThresholdStep <= 0 || c.ThresholdMin <= 0 || c.ThresholdMin > c.ThresholdMax {
		return fmt.Errorf("invalid threshold grid %.2f..%.2f step %.2f", c.ThresholdMin, c.ThresholdMax, c.ThresholdStep)
	}
	if c.TrainGames <= 0 || c.TestGames <= 0 || c.StepGames <= 0 {
		return fmt.Errorf("walk-forward window sizes must be positive")
	}
	if c.ConfidenceLevel <= 0 || c.ConfidenceLevel >= 1 {
		return fmt.Errorf("confidence level must be in (0,1), got %v", c.ConfidenceLevel)
	}
	if c.MinSamples < 2 {
		return fmt.Errorf("min samples must be at least 2, got %d", c.MinSamples)
	}
	return nil
}

// Validator runs every validation method against one engine
type Validator struct {
	engine  *backtest.Engine
	factory StrategyFactory
	config  Config
	logger  *logger.BacktestLogger
}

// NewValidator creates a validator. The engine's own strategy is the
// untuned baseline; factory produces threshold variants of it.
func NewValidator(engine *backtest.Engine, factory StrategyFactory, cfg Config) (*Validator, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if factory == nil {
		return nil, fmt.Errorf("strategy factory is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid validation config: %w", err)
	}
	return &Validator{
		engine:  engine,
		factory: factory,
		config:  cfg,
		logger:  logger.NewBacktestLogger(engine.Logger()),
	}, nil
}

// Config returns the validation configuration
func (v *Validator) Config() Config {
	return v.config
}
