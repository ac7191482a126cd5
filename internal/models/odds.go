package models

import (
	"fmt"
	"time"
)

// SnapshotKind distinguishes opening from closing market lines
type SnapshotKind string

const (
	SnapshotOpening SnapshotKind = "opening"
	SnapshotClosing SnapshotKind = "closing"
)

// MarketLine represents an immutable point-in-time market snapshot.
// Spread is the expected away margin: positive means the away side is favored.
type MarketLine struct {
	MatchupID     string       `json:"matchup_id" validate:"required"`
	Spread        float64      `json:"spread"`
	Total         *float64     `json:"total,omitempty" validate:"omitempty,gt=0"`
	AwayMoneyline *int         `json:"away_moneyline,omitempty"`
	HomeMoneyline *int         `json:"home_moneyline,omitempty"`
	Kind          SnapshotKind `json:"kind" validate:"required,oneof=opening closing"`
	Timestamp     time.Time    `json:"timestamp" validate:"required"`
}

// HomeSpread returns the spread as quoted for the home side (e.g. -3.5 when
// the home team gives 3.5 points)
func (m MarketLine) HomeSpread() float64 {
	return m.Spread
}

// AwaySpread returns the spread as quoted for the away side
func (m MarketLine) AwaySpread() float64 {
	return -m.Spread
}

// FavoredSide returns the side the market favors, or SideNone on a pick'em
func (m MarketLine) FavoredSide() Side {
	switch {
	case m.Spread > 0:
		return SideAway
	case m.Spread < 0:
		return SideHome
	default:
		return SideNone
	}
}

// AmericanToDecimal converts American odds to decimal odds
// American +150 → Decimal 2.50
// American -150 → Decimal 1.67
func AmericanToDecimal(american int) (float64, error) {
	if american == 0 {
		return 0, fmt.Errorf("invalid American odds: cannot be 0")
	}
	if american > 0 {
		return (float64(american) / 100.0) + 1.0, nil
	}
	return (100.0 / float64(-american)) + 1.0, nil
}

// ImpliedProbability converts American odds to an implied win probability
func ImpliedProbability(american int) (float64, error) {
	dec, err := AmericanToDecimal(american)
	if err != nil {
		return 0, err
	}
	return 1.0 / dec, nil
}

// BreakevenWinRate is the win percentage (0-100) needed to break even at the
// given American price
func BreakevenWinRate(american int) float64 {
	p, err := ImpliedProbability(american)
	if err != nil {
		return 0
	}
	return p * 100
}
