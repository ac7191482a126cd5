package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BetStatus represents the lifecycle state of a bet record
type BetStatus string

const (
	BetStatusOpen   BetStatus = "open"
	BetStatusGraded BetStatus = "graded"
)

// BetResult is the graded outcome of a bet
type BetResult string

const (
	BetResultWin  BetResult = "win"
	BetResultLoss BetResult = "loss"
	BetResultPush BetResult = "push"
)

// BetRecord is an edge snapshot plus its eventual outcome
type BetRecord struct {
	ID          uuid.UUID       `json:"id"`
	Edge        Edge            `json:"edge"`
	League      string          `json:"league"`
	Season      int             `json:"season"`
	GameDate    time.Time       `json:"game_date"`
	Status      BetStatus       `json:"status"`
	Stake       decimal.Decimal `json:"stake"`
	Odds        int             `json:"odds"`
	PlacedAt    time.Time       `json:"placed_at"`
	Result      BetResult       `json:"result,omitempty"`
	AwayScore   *int            `json:"away_score,omitempty"`
	HomeScore   *int            `json:"home_score,omitempty"`
	Profit      decimal.Decimal `json:"profit"`
	ClosingLine *float64        `json:"closing_line,omitempty"`
	CLV         *float64        `json:"clv,omitempty"`
	GradedAt    *time.Time      `json:"graded_at,omitempty"`
}

// NewBetRecord opens a bet on an edge
func NewBetRecord(edge Edge, league string, season int, gameDate time.Time, stake decimal.Decimal, odds int, placedAt time.Time) *BetRecord {
	return &BetRecord{
		ID:       uuid.New(),
		Edge:     edge,
		League:   league,
		Season:   season,
		GameDate: gameDate,
		Status:   BetStatusOpen,
		Stake:    stake.Round(2),
		Odds:     odds,
		PlacedAt: placedAt,
		Profit:   decimal.Zero,
	}
}

// IsGraded checks if the bet has been graded
func (b *BetRecord) IsGraded() bool {
	return b.Status == BetStatusGraded && b.GradedAt != nil
}

// Grade settles the bet against the final score. It may be called exactly once.
// The closing line is used only for closing line value.
func (b *BetRecord) Grade(awayScore, homeScore int, closing *MarketLine, gradedAt time.Time) error {
	if b.Status == BetStatusGraded {
		return fmt.Errorf("grade bet %s: %w", b.ID, ErrAlreadyGraded)
	}
	result, err := SpreadResult(b.Edge.Side, b.Edge.MarketLine, awayScore-homeScore)
	if err != nil {
		return fmt.Errorf("grade bet %s: %w", b.ID, err)
	}
	profit, err := SettleProfit(b.Stake, b.Odds, result)
	if err != nil {
		return fmt.Errorf("grade bet %s: %w", b.ID, err)
	}

	b.Result = result
	b.Profit = profit
	b.AwayScore = &awayScore
	b.HomeScore = &homeScore
	if closing != nil {
		line := closing.Spread
		clv := CalculateCLV(b.Edge.Side, b.Edge.MarketLine, line)
		b.ClosingLine = &line
		b.CLV = &clv
	}
	b.GradedAt = &gradedAt
	b.Status = BetStatusGraded
	return nil
}

// GetROI returns the return on investment percentage
func (b *BetRecord) GetROI() float64 {
	if b.Stake.IsZero() || !b.IsGraded() {
		return 0
	}
	return b.Profit.Div(b.Stake).InexactFloat64() * 100
}

// SpreadResult grades a spread bet. line is the expected away margin quoted
// when the bet was placed; awayMargin is the final away margin.
func SpreadResult(side Side, line float64, awayMargin int) (BetResult, error) {
	diff := float64(awayMargin) - line
	switch side {
	case SideAway:
	case SideHome:
		diff = -diff
	default:
		return "", fmt.Errorf("cannot grade side %q on a spread", side)
	}
	switch {
	case diff > 0:
		return BetResultWin, nil
	case diff < 0:
		return BetResultLoss, nil
	default:
		return BetResultPush, nil
	}
}

// SettleProfit returns the profit in currency units, rounded to cents
func SettleProfit(stake decimal.Decimal, american int, result BetResult) (decimal.Decimal, error) {
	switch result {
	case BetResultPush:
		return decimal.Zero, nil
	case BetResultLoss:
		return stake.Neg().Round(2), nil
	case BetResultWin:
	default:
		return decimal.Zero, fmt.Errorf("unknown bet result %q", result)
	}
	if american == 0 {
		return decimal.Zero, fmt.Errorf("invalid American odds: cannot be 0")
	}
	hundred := decimal.NewFromInt(100)
	if american > 0 {
		return stake.Mul(decimal.NewFromInt(int64(american))).Div(hundred).Round(2), nil
	}
	return stake.Mul(hundred).Div(decimal.NewFromInt(int64(-american))).Round(2), nil
}

// CalculateCLV returns closing line value in points. Positive means the market
// moved toward the side that was bet after the bet was placed.
func CalculateCLV(side Side, openingLine, closingLine float64) float64 {
	switch side {
	case SideAway:
		return closingLine - openingLine
	case SideHome:
		return openingLine - closingLine
	default:
		return 0
	}
}

// StreamKey builds the league+season key that orders bankroll compounding
func StreamKey(league string, season int) string {
	return league + ":" + strconv.Itoa(season)
}
