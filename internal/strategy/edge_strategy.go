package strategy

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yourusername/line-edge/internal/adjustment"
	"github.com/yourusername/line-edge/internal/edge"
	"github.com/yourusername/line-edge/internal/league"
	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/rating"
)

// EdgeStrategy bets spread edges found by comparing power ratings with the
// opening line
type EdgeStrategy struct {
	NameValue string
	leagues   map[string]league.League
	engines   map[string]*rating.Engine
	detectors map[string]*edge.Detector
	store     *rating.Store
}

// NewEdgeStrategy builds rating engines and detectors for every registered
// league. The store is shared across strategies derived from this one.
func NewEdgeStrategy(registry *league.Registry, store *rating.Store) (*EdgeStrategy, error) {
	return newEdgeStrategy(registry.Leagues(), store)
}

func newEdgeStrategy(leagues []league.League, store *rating.Store) (*EdgeStrategy, error) {
	s := &EdgeStrategy{
		NameValue: "rating_edge",
		leagues:   make(map[string]league.League, len(leagues)),
		engines:   make(map[string]*rating.Engine, len(leagues)),
		detectors: make(map[string]*edge.Detector, len(leagues)),
		store:     store,
	}
	for _, l := range leagues {
		engine, err := rating.NewEngine(l, store)
		if err != nil {
			return nil, err
		}
		sizer, err := NewSizer(l.Sizing)
		if err != nil {
			return nil, err
		}
		detector, err := edge.NewDetector(l, sizer)
		if err != nil {
			return nil, err
		}
		s.leagues[l.Code] = l
		s.engines[l.Code] = engine
		s.detectors[l.Code] = detector
	}
	return s, nil
}

// WithThreshold returns a copy using a different detection threshold in
// every league
func (s *EdgeStrategy) WithThreshold(threshold float64) (*EdgeStrategy, error) {
	leagues := make([]league.League, 0, len(s.leagues))
	for _, l := range s.leagues {
		leagues = append(leagues, l.WithThreshold(threshold))
	}
	next, err := newEdgeStrategy(leagues, s.store)
	if err != nil {
		return nil, err
	}
	next.NameValue = s.NameValue
	return next, nil
}

// League returns the policy for a league code
func (s *EdgeStrategy) League(code string) (league.League, bool) {
	l, ok := s.leagues[code]
	return l, ok
}

// Name returns strategy name
func (s *EdgeStrategy) Name() string {
	return s.NameValue
}

// Evaluate rates both teams and runs edge detection on pre-game data
func (s *EdgeStrategy) Evaluate(ctx context.Context, strategyCtx Context) (Signal, error) {
	if err := ctx.Err(); err != nil {
		return Signal{}, err
	}
	if err := ValidateTemporalSafety(strategyCtx); err != nil {
		return Signal{}, err
	}
	g := strategyCtx.Game
	if g.Opening == nil {
		return Signal{}, &models.MissingDataError{Entity: g.MatchupID, Field: "opening"}
	}
	l, ok := s.leagues[g.League]
	if !ok {
		return Signal{}, fmt.Errorf("no league policy for %q", g.League)
	}

	away := s.rate(g.League, strategyCtx.AwaySnapshot)
	home := s.rate(g.League, strategyCtx.HomeSnapshot)

	in := edge.Input{
		MatchupID:      g.MatchupID,
		Away:           away,
		Home:           home,
		Market:         *g.Opening,
		PredictedTotal: rating.ProjectTotal(strategyCtx.AwaySnapshot, strategyCtx.HomeSnapshot),
		Adjustments:    GameAdjustments(l, g),
		Sharp:          g.Sharp,
		Practice:       g.Practice,
		At:             strategyCtx.CurrentTime,
	}
	result := s.detectors[g.League].Detect(in)
	return Signal{Result: result, Odds: l.Sizing.Odds, Reasoning: reasoning(result)}, nil
}

// GameAdjustments computes the weather, situational and injury adjustments
// from a game's pre-game fields
func GameAdjustments(l league.League, g *models.HistoricalGame) []models.Adjustment {
	return []models.Adjustment{
		adjustment.Weather(l.Weather, g.Weather, g.Outdoor),
		adjustment.Situational(l.Situational, g.Situational, g.Opening),
		adjustment.Injury(l.Injury, g.AwayInjuries, g.HomeInjuries),
	}
}

// ShouldBet determines if a signal should be executed
func (s *EdgeStrategy) ShouldBet(signal Signal) bool {
	return signal.Found() && signal.Edge.StakeFraction > 0
}

// CalculateStake sizes the bet against the current bankroll, in cents
func (s *EdgeStrategy) CalculateStake(signal Signal, bankroll decimal.Decimal) decimal.Decimal {
	if !signal.Found() || !bankroll.IsPositive() {
		return decimal.Zero
	}
	stake := bankroll.Mul(decimal.NewFromFloat(signal.Edge.StakeFraction)).RoundDown(2)
	if stake.GreaterThan(bankroll) {
		return bankroll
	}
	return stake
}

// GetParameters returns strategy parameters for reports
func (s *EdgeStrategy) GetParameters() map[string]interface{} {
	params := make(map[string]interface{}, len(s.leagues))
	for code, l := range s.leagues {
		params[code] = map[string]interface{}{
			"threshold":     l.Detection.Threshold,
			"home_field":    l.Rating.HomeField,
			"max_kelly_cap": l.Sizing.MaxKellyCap,
			"odds":          l.Sizing.Odds,
		}
	}
	return params
}

func (s *EdgeStrategy) rate(leagueCode string, snap *models.TeamSnapshot) *models.PowerRating {
	if snap == nil {
		return nil
	}
	r := s.engines[leagueCode].RateSnapshot(*snap)
	return &r
}

func reasoning(r edge.Result) string {
	if r.Found() {
		return fmt.Sprintf("%s edge %.2f on %s (predicted %.2f vs market %.2f)",
			r.Edge.Tier, r.Edge.Magnitude, r.Edge.Side, r.Edge.PredictedLine, r.Edge.MarketLine)
	}
	return fmt.Sprintf("no edge: %s (%s)", r.NoEdge.Reason, r.NoEdge.Detail)
}
