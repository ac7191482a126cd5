package analysis

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/line-edge/internal/config"
	"github.com/yourusername/line-edge/internal/models"
)

// Limit reasons recorded on a trimmed recommendation
const (
	LimitStakeCap = "stake_cap"
	LimitExposure = "exposure"
	LimitMinStake = "min_stake"
)

// RiskLimits bound the stakes recommended for one slate. A zero value
// disables that limit.
type RiskLimits struct {
	MaxStakeFraction    float64         `json:"max_stake_fraction"`
	MaxExposureFraction float64         `json:"max_exposure_fraction"`
	MinStake            decimal.Decimal `json:"min_stake"`
}

// RiskLimitsFromConfig converts app config to slate limits
func RiskLimitsFromConfig(cfg *config.AnalysisConfig) RiskLimits {
	if cfg == nil {
		return RiskLimits{}
	}
	return RiskLimits{
		MaxStakeFraction:    cfg.MaxStakeFraction,
		MaxExposureFraction: cfg.MaxExposureFraction,
		MinStake:            decimal.NewFromFloat(cfg.MinStake).Round(2),
	}
}

// Validate checks every limit is a usable fraction
func (l RiskLimits) Validate() error {
	if l.MaxStakeFraction < 0 || l.MaxStakeFraction > 1 {
		return models.NewConfigurationError("max_stake_fraction", "must be in [0,1], got %v", l.MaxStakeFraction)
	}
	if l.MaxExposureFraction < 0 || l.MaxExposureFraction > 1 {
		return models.NewConfigurationError("max_exposure_fraction", "must be in [0,1], got %v", l.MaxExposureFraction)
	}
	if l.MinStake.IsNegative() {
		return models.NewConfigurationError("min_stake", "must not be negative, got %s", l.MinStake)
	}
	return nil
}

// RiskMetrics represents slate exposure after limits
type RiskMetrics struct {
	Exposure          decimal.Decimal `json:"exposure"`
	MaxExposure       decimal.Decimal `json:"max_exposure"`
	RemainingCapacity decimal.Decimal `json:"remaining_capacity"`
	Bets              int             `json:"bets"`
	Capped            int             `json:"capped"`
	Dropped           int             `json:"dropped"`
}

// ApplyLimits walks ranked edges and trims stakes in place: each stake is
// capped per bet, then filled against the slate exposure budget in rank
// order. Stakes that end below the minimum are dropped.
func ApplyLimits(edges []*MatchupAnalysis, bankroll decimal.Decimal, limits RiskLimits, log *logrus.Logger) RiskMetrics {
	m := RiskMetrics{Exposure: decimal.Zero, MaxExposure: bankroll, RemainingCapacity: bankroll}
	if limits.MaxExposureFraction > 0 {
		m.MaxExposure = fraction(bankroll, limits.MaxExposureFraction)
	}

	for _, e := range edges {
		if !e.Stake.IsPositive() {
			continue
		}
		proposed := e.Stake

		if limits.MaxStakeFraction > 0 {
			if maxStake := fraction(bankroll, limits.MaxStakeFraction); e.Stake.GreaterThan(maxStake) {
				e.Stake, e.Limited = maxStake, LimitStakeCap
			}
		}

		remaining := m.MaxExposure.Sub(m.Exposure)
		if e.Stake.GreaterThan(remaining) {
			e.Stake, e.Limited = decimal.Max(remaining, decimal.Zero), LimitExposure
		}

		if e.Stake.IsPositive() && e.Stake.LessThan(limits.MinStake) {
			e.Stake, e.Limited = decimal.Zero, LimitMinStake
		}

		switch {
		case e.Stake.IsZero():
			m.Dropped++
		case e.Limited != "":
			m.Capped++
		}
		if e.Limited != "" && log != nil {
			log.WithFields(logrus.Fields{
				"matchup_id": e.MatchupID,
				"proposed":   proposed.StringFixed(2),
				"stake":      e.Stake.StringFixed(2),
				"limit":      e.Limited,
			}).Debug("Stake limited")
		}
		if e.Stake.IsPositive() {
			m.Bets++
			m.Exposure = m.Exposure.Add(e.Stake)
		}
	}

	m.RemainingCapacity = m.MaxExposure.Sub(m.Exposure)
	return m
}

func fraction(bankroll decimal.Decimal, f float64) decimal.Decimal {
	return bankroll.Mul(decimal.NewFromFloat(f)).RoundDown(2)
}

// String renders the limits for logs
func (l RiskLimits) String() string {
	return fmt.Sprintf("stake<=%.3f exposure<=%.3f min=%s", l.MaxStakeFraction, l.MaxExposureFraction, l.MinStake.StringFixed(2))
}
