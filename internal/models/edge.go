package models

import (
	"time"

	"github.com/google/uuid"
)

// Side identifies which outcome a recommendation backs
type Side string

const (
	SideNone  Side = ""
	SideAway  Side = "away"
	SideHome  Side = "home"
	SideOver  Side = "over"
	SideUnder Side = "under"
)

// Opposite returns the other side of the same market
func (s Side) Opposite() Side {
	switch s {
	case SideAway:
		return SideHome
	case SideHome:
		return SideAway
	case SideOver:
		return SideUnder
	case SideUnder:
		return SideOver
	default:
		return SideNone
	}
}

// StrengthTier buckets an edge by magnitude
type StrengthTier string

const (
	TierVeryStrong StrengthTier = "very_strong"
	TierStrong     StrengthTier = "strong"
	TierMedium     StrengthTier = "medium"
	TierWeak       StrengthTier = "weak"
)

// AdjustmentKind names the calculator that produced an adjustment
type AdjustmentKind string

const (
	AdjustmentWeather     AdjustmentKind = "weather"
	AdjustmentSituational AdjustmentKind = "situational"
	AdjustmentInjury      AdjustmentKind = "injury"
)

// MarketKind is the market an adjustment applies to
type MarketKind string

const (
	MarketSpread MarketKind = "spread"
	MarketTotal  MarketKind = "total"
)

// AdjustmentDetail is one line item inside an adjustment
type AdjustmentDetail struct {
	Name   string  `json:"name"`
	Points float64 `json:"points"`
}

// Adjustment is a bounded point adjustment. Spread points favor the away side
// when positive; total points shift the predicted total.
type Adjustment struct {
	Kind        AdjustmentKind     `json:"kind"`
	Market      MarketKind         `json:"market"`
	Points      float64            `json:"points"`
	Cap         float64            `json:"cap"`
	Capped      bool               `json:"capped"`
	Explanation string             `json:"explanation"`
	Details     []AdjustmentDetail `json:"details,omitempty"`
}

// AppliedAdjustment records how an adjustment moved an edge
type AppliedAdjustment struct {
	Adjustment
	Oriented float64 `json:"oriented"`
}

// ConfidenceFactorKind describes how a factor combines with base confidence
type ConfidenceFactorKind string

const (
	FactorMultiplier ConfidenceFactorKind = "multiplier"
	FactorAdditive   ConfidenceFactorKind = "additive"
)

// ConfidenceFactor is a secondary signal applied to base confidence
type ConfidenceFactor struct {
	Name        string               `json:"name"`
	Kind        ConfidenceFactorKind `json:"kind"`
	Value       float64              `json:"value"`
	Explanation string               `json:"explanation"`
}

// TotalEdge is the over/under sub-edge reported when a predicted total is known
type TotalEdge struct {
	PredictedTotal float64             `json:"predicted_total"`
	AdjustedTotal  float64             `json:"adjusted_total"`
	MarketTotal    float64             `json:"market_total"`
	Magnitude      float64             `json:"magnitude"`
	Side           Side                `json:"side"`
	Tier           StrengthTier        `json:"tier,omitempty"`
	Qualifies      bool                `json:"qualifies"`
	Adjustments    []AppliedAdjustment `json:"adjustments,omitempty"`
}

// Edge is a detected mispricing on one matchup
type Edge struct {
	ID                uuid.UUID           `json:"id"`
	MatchupID         string              `json:"matchup_id"`
	League            string              `json:"league"`
	AwayRating        float64             `json:"away_rating"`
	HomeRating        float64             `json:"home_rating"`
	HomeField         float64             `json:"home_field"`
	PredictedLine     float64             `json:"predicted_line"`
	MarketLine        float64             `json:"market_line"`
	RawEdge           float64             `json:"raw_edge"`
	Magnitude         float64             `json:"magnitude"`
	Tier              StrengthTier        `json:"tier"`
	Side              Side                `json:"side"`
	Adjustments       []AppliedAdjustment `json:"adjustments"`
	BaseConfidence    float64             `json:"base_confidence"`
	ConfidenceFactors []ConfidenceFactor  `json:"confidence_factors"`
	Confidence        float64             `json:"confidence"`
	StakeFraction     float64             `json:"stake_fraction"`
	Total             *TotalEdge          `json:"total,omitempty"`
	DetectedAt        time.Time           `json:"detected_at"`
}

// IsFavorite reports whether the recommended side is the market favorite by at
// least threshold points
func (e *Edge) IsFavorite(threshold float64) bool {
	switch e.Side {
	case SideAway:
		return e.MarketLine >= threshold
	case SideHome:
		return e.MarketLine <= -threshold
	default:
		return false
	}
}

// IsUnderdog reports whether the recommended side receives at least threshold points
func (e *Edge) IsUnderdog(threshold float64) bool {
	switch e.Side {
	case SideAway:
		return e.MarketLine <= -threshold
	case SideHome:
		return e.MarketLine >= threshold
	default:
		return false
	}
}

// NoEdgeReason explains why a matchup produced no edge
type NoEdgeReason string

const (
	NoEdgeMissingRating  NoEdgeReason = "missing_rating"
	NoEdgeBelowThreshold NoEdgeReason = "below_threshold"
	NoEdgeNoDivergence   NoEdgeReason = "no_divergence"
)

// NoEdge is the expected, non-error outcome of a detection pass
type NoEdge struct {
	MatchupID     string       `json:"matchup_id"`
	Reason        NoEdgeReason `json:"reason"`
	Detail        string       `json:"detail"`
	PredictedLine float64      `json:"predicted_line"`
	RawEdge       float64      `json:"raw_edge"`
	TotalEdge     float64      `json:"total_edge"`
}
