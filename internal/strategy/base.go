package strategy

import (
	"fmt"
	"math"
	"time"

	"github.com/yourusername/line-edge/internal/league"
	"github.com/yourusername/line-edge/internal/models"
)

// Sizer converts edge magnitude into a capped stake fraction
type Sizer struct {
	ScalingConstant float64
	MaxKellyCap     float64
	KellyFraction   float64
}

// NewSizer validates sizing parameters
func NewSizer(p league.SizingParams) (*Sizer, error) {
	if p.ScalingConstant <= 0 || math.IsNaN(p.ScalingConstant) {
		return nil, models.NewConfigurationError("sizing.scaling_constant", "must be positive, got %v", p.ScalingConstant)
	}
	if p.MaxKellyCap <= 0 || p.MaxKellyCap > 1 || math.IsNaN(p.MaxKellyCap) {
		return nil, models.NewConfigurationError("sizing.max_kelly_cap", "must be in (0,1], got %v", p.MaxKellyCap)
	}
	return &Sizer{ScalingConstant: p.ScalingConstant, MaxKellyCap: p.MaxKellyCap, KellyFraction: 0.5}, nil
}

// Size returns min(magnitude/scaling, cap). Confidence only gates the stake:
// a non-positive confidence sizes to zero.
func (s *Sizer) Size(magnitude, confidence float64) float64 {
	if magnitude <= 0 || confidence <= 0 || math.IsNaN(magnitude) || math.IsNaN(confidence) {
		return 0
	}
	return math.Min(magnitude/s.ScalingConstant, s.MaxKellyCap)
}

// ApplyKellyCriterion returns the capped fractional Kelly stake fraction for
// a win probability at American odds
func (s *Sizer) ApplyKellyCriterion(probability float64, american int) float64 {
	dec, err := models.AmericanToDecimal(american)
	if err != nil || probability <= 0 || probability >= 1 {
		return 0
	}
	b := dec - 1.0
	kelly := (b*probability - (1 - probability)) / b
	if kelly <= 0 {
		return 0
	}
	fraction := s.KellyFraction
	if fraction <= 0 {
		fraction = 0.5
	}
	return math.Min(kelly*fraction, s.MaxKellyCap)
}

// CalculateExpectedValue returns expected profit per unit staked
func CalculateExpectedValue(probability float64, american int) float64 {
	dec, err := models.AmericanToDecimal(american)
	if err != nil || probability <= 0 {
		return 0
	}
	return probability*(dec-1) - (1 - probability)
}

// ValidateTemporalSafety ensures no input postdates the decision time and no
// closing information reached the strategy
func ValidateTemporalSafety(sctx Context) error {
	g := sctx.Game
	if g == nil {
		return fmt.Errorf("game is required")
	}
	if g.Closing != nil {
		return fmt.Errorf("temporal safety violation: closing line visible for %s", g.MatchupID)
	}
	if g.IsCompleted() {
		return fmt.Errorf("temporal safety violation: final score visible for %s", g.MatchupID)
	}
	if g.Opening != nil && g.Opening.Kind != models.SnapshotOpening {
		return fmt.Errorf("temporal safety violation: %s line used for decision on %s", g.Opening.Kind, g.MatchupID)
	}
	if g.Opening != nil && !sctx.CurrentTime.IsZero() && g.Opening.Timestamp.After(sctx.CurrentTime) {
		return fmt.Errorf("temporal safety violation: opening line %s after %s", g.Opening.Timestamp, sctx.CurrentTime)
	}
	for _, snap := range []*models.TeamSnapshot{sctx.AwaySnapshot, sctx.HomeSnapshot} {
		if snap != nil && snap.AsOf.After(sctx.CurrentTime) {
			return fmt.Errorf("temporal safety violation: %s snapshot %s after %s", snap.Team, snap.AsOf, sctx.CurrentTime)
		}
	}
	if g.Sharp != nil && !g.Sharp.Timestamp.IsZero() && g.Sharp.Timestamp.After(sctx.CurrentTime) {
		return fmt.Errorf("temporal safety violation: sharp snapshot %s after %s", g.Sharp.Timestamp, sctx.CurrentTime)
	}
	return nil
}

// NormalizeProbability ensures probability in [0,1]
func NormalizeProbability(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// PreGameView strips outcome and closing fields from a game
func PreGameView(g *models.HistoricalGame) *models.HistoricalGame {
	view := *g
	view.AwayScore = nil
	view.HomeScore = nil
	view.Closing = nil
	return &view
}

// DecisionTime is the moment the opening snapshot was taken, falling back to
// the game date when no timestamp is present
func DecisionTime(g *models.HistoricalGame) time.Time {
	if g.Opening != nil && !g.Opening.Timestamp.IsZero() {
		return g.Opening.Timestamp
	}
	return g.Date
}
