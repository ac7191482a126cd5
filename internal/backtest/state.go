package backtest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/line-edge/internal/models"
)

// BacktestState tracks the running bankroll of one league+season stream
type BacktestState struct {
	Stream           string
	StartingBankroll decimal.Decimal
	CurrentBankroll  decimal.Decimal
	PeakBankroll     decimal.Decimal
	Bets             []*models.BetRecord
	EquityCurve      EquityCurve
	DailyPnL         map[time.Time]decimal.Decimal
}

// NewBacktestState initializes backtest state. The first equity point sits at
// start with the initial bankroll.
func NewBacktestState(stream string, initialBankroll decimal.Decimal, start time.Time) *BacktestState {
	state := &BacktestState{
		Stream:           stream,
		StartingBankroll: initialBankroll,
		CurrentBankroll:  initialBankroll,
		PeakBankroll:     initialBankroll,
		Bets:             []*models.BetRecord{},
		EquityCurve:      EquityCurve{},
		DailyPnL:         make(map[time.Time]decimal.Decimal),
	}
	state.RecordEquityPoint(start, decimal.Zero)
	return state
}

// UpdateState applies a graded bet's profit to the bankroll
func (s *BacktestState) UpdateState(bet *models.BetRecord) {
	s.CurrentBankroll = s.CurrentBankroll.Add(bet.Profit)
	if s.CurrentBankroll.GreaterThan(s.PeakBankroll) {
		s.PeakBankroll = s.CurrentBankroll
	}
	s.Bets = append(s.Bets, bet)

	day := time.Date(bet.GameDate.Year(), bet.GameDate.Month(), bet.GameDate.Day(), 0, 0, 0, 0, time.UTC)
	s.DailyPnL[day] = s.DailyPnL[day].Add(bet.Profit)
	s.RecordEquityPoint(bet.GameDate, bet.Profit)
}

// TotalProfit returns the summed profit of every bet in the stream
func (s *BacktestState) TotalProfit() decimal.Decimal {
	total := decimal.Zero
	for _, b := range s.Bets {
		total = total.Add(b.Profit)
	}
	return total
}

// GetCurrentDrawdown calculates peak-to-trough drawdown as a fraction
func (s *BacktestState) GetCurrentDrawdown() float64 {
	if !s.PeakBankroll.IsPositive() {
		return 0
	}
	drawdown := s.PeakBankroll.Sub(s.CurrentBankroll).Div(s.PeakBankroll).InexactFloat64()
	if drawdown < 0 {
		return 0
	}
	return drawdown
}

// RecordEquityPoint adds the current bankroll to the curve
func (s *BacktestState) RecordEquityPoint(t time.Time, pnl decimal.Decimal) {
	point := EquityPoint{
		Time:     t,
		Value:    s.CurrentBankroll.InexactFloat64(),
		Drawdown: s.GetCurrentDrawdown(),
		PnL:      pnl.InexactFloat64(),
	}
	s.EquityCurve = append(s.EquityCurve, point)
}
