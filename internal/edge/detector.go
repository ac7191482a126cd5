// Package edge compares rating-based predictions with market lines and turns
// the divergence into tiered, sized recommendations.
package edge

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/line-edge/internal/adjustment"
	"github.com/yourusername/line-edge/internal/league"
	"github.com/yourusername/line-edge/internal/models"
)

// Sizer converts an edge into a stake fraction
type Sizer interface {
	Size(magnitude, confidence float64) float64
}

// Input is everything known about a matchup at decision time
type Input struct {
	MatchupID      string
	Away           *models.PowerRating
	Home           *models.PowerRating
	Market         models.MarketLine
	PredictedTotal *float64
	Adjustments    []models.Adjustment
	Sharp          *models.SharpMoneySnapshot
	Practice       *models.PracticeReport
	At             time.Time
}

// Result holds exactly one of Edge or NoEdge
type Result struct {
	Edge   *models.Edge   `json:"edge,omitempty"`
	NoEdge *models.NoEdge `json:"no_edge,omitempty"`
}

// Found reports whether an edge was detected
func (r Result) Found() bool {
	return r.Edge != nil
}

// Detector finds edges for one league
type Detector struct {
	league league.League
	sizer  Sizer
}

// NewDetector validates the league policy and returns a detector
func NewDetector(l league.League, sizer Sizer) (*Detector, error) {
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("edge detector: %w", err)
	}
	if sizer == nil {
		return nil, models.NewConfigurationError("sizer", "is required")
	}
	return &Detector{league: l, sizer: sizer}, nil
}

// League returns the detector's policy
func (d *Detector) League() league.League {
	return d.league
}

// PredictedLine is the expected away margin implied by two ratings
func PredictedLine(awayRating, homeRating, homeField float64) float64 {
	return awayRating - homeRating - homeField
}

// Detect evaluates one matchup. Missing ratings, an exact match with the
// market and sub-threshold edges all produce NoEdge.
func (d *Detector) Detect(in Input) Result {
	if in.Away == nil || in.Home == nil {
		missing := "away"
		if in.Away != nil {
			missing = "home"
		} else if in.Home == nil {
			missing = "away and home"
		}
		return noEdge(in.MatchupID, models.NoEdgeMissingRating, missing+" rating unavailable", 0, 0, 0)
	}

	homeField := d.league.Rating.HomeField
	predicted := PredictedLine(in.Away.Overall, in.Home.Overall, homeField)
	divergence := predicted - in.Market.Spread

	var side models.Side
	switch {
	case divergence > 0:
		side = models.SideAway
	case divergence < 0:
		side = models.SideHome
	default:
		return noEdge(in.MatchupID, models.NoEdgeNoDivergence, "prediction equals market", predicted, 0, 0)
	}
	raw := math.Abs(divergence)

	applied := make([]models.AppliedAdjustment, 0, len(in.Adjustments))
	var adjusted float64
	for _, a := range in.Adjustments {
		if a.Market != models.MarketSpread {
			continue
		}
		oriented := adjustment.Orient(a, side)
		adjusted += oriented
		applied = append(applied, models.AppliedAdjustment{Adjustment: a, Oriented: oriented})
	}
	total := math.Max(0, raw+adjusted)

	det := d.league.Detection
	if total < det.Threshold {
		return noEdge(in.MatchupID, models.NoEdgeBelowThreshold,
			fmt.Sprintf("edge %.2f below threshold %.2f", total, det.Threshold), predicted, raw, total)
	}

	e := &models.Edge{
		ID:            uuid.New(),
		MatchupID:     in.MatchupID,
		League:        d.league.Code,
		AwayRating:    in.Away.Overall,
		HomeRating:    in.Home.Overall,
		HomeField:     homeField,
		PredictedLine: predicted,
		MarketLine:    in.Market.Spread,
		RawEdge:       raw,
		Magnitude:     total,
		Tier:          det.Tiers.Classify(total),
		Side:          side,
		Adjustments:   applied,
		Total:         d.totalEdge(in),
		DetectedAt:    in.At,
	}
	d.score(e, in)
	e.StakeFraction = d.sizer.Size(e.Magnitude, e.Confidence)
	return Result{Edge: e}
}

// totalEdge reports the over/under read when a predicted total and a market
// total are both known
func (d *Detector) totalEdge(in Input) *models.TotalEdge {
	if in.PredictedTotal == nil || in.Market.Total == nil {
		return nil
	}
	t := &models.TotalEdge{
		PredictedTotal: *in.PredictedTotal,
		AdjustedTotal:  *in.PredictedTotal,
		MarketTotal:    *in.Market.Total,
	}
	for _, a := range in.Adjustments {
		if a.Market != models.MarketTotal {
			continue
		}
		t.AdjustedTotal += a.Points
		t.Adjustments = append(t.Adjustments, models.AppliedAdjustment{Adjustment: a, Oriented: a.Points})
	}
	diff := t.AdjustedTotal - t.MarketTotal
	t.Magnitude = math.Abs(diff)
	switch {
	case diff > 0:
		t.Side = models.SideOver
	case diff < 0:
		t.Side = models.SideUnder
	}
	t.Qualifies = t.Side != models.SideNone && t.Magnitude >= d.league.Detection.TotalThreshold
	if t.Qualifies {
		t.Tier = d.league.Detection.Tiers.Classify(t.Magnitude)
	}
	return t
}

func noEdge(matchupID string, reason models.NoEdgeReason, detail string, predicted, raw, total float64) Result {
	return Result{NoEdge: &models.NoEdge{
		MatchupID:     matchupID,
		Reason:        reason,
		Detail:        detail,
		PredictedLine: predicted,
		RawEdge:       raw,
		TotalEdge:     total,
	}}
}
