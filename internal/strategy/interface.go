package strategy

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/line-edge/internal/edge"
	"github.com/yourusername/line-edge/internal/models"
)

// Strategy defines the interface for backtesting strategies
type Strategy interface {
	Name() string
	Evaluate(ctx context.Context, strategyCtx Context) (Signal, error)
	ShouldBet(signal Signal) bool
	CalculateStake(signal Signal, bankroll decimal.Decimal) decimal.Decimal
	GetParameters() map[string]interface{}
}

// Signal is a strategy's read on one game
type Signal struct {
	edge.Result
	Odds      int    `json:"odds"`
	Reasoning string `json:"reasoning"`
}

// Context provides the strategy with temporal-safe inputs. Game carries only
// pre-game fields: the opening line and conditions known before kickoff.
type Context struct {
	Game         *models.HistoricalGame
	AwaySnapshot *models.TeamSnapshot
	HomeSnapshot *models.TeamSnapshot
	CurrentTime  time.Time
}

// Metadata describes a strategy for run reports
type Metadata struct {
	Name       string                 `json:"name"`
	Version    string                 `json:"version"`
	Parameters map[string]interface{} `json:"parameters"`
}

// Describe builds metadata for a strategy
func Describe(s Strategy, version string) Metadata {
	return Metadata{Name: s.Name(), Version: version, Parameters: s.GetParameters()}
}
