// Package adjustment holds the bounded point and confidence adjustments
// applied on top of a rating-based prediction. Every calculator is a pure
// function of its inputs and a league table.
package adjustment

import (
	"fmt"
	"math"
	"strings"

	"github.com/yourusername/line-edge/internal/models"
)

// builder accumulates line items and produces a capped adjustment
type builder struct {
	kind    models.AdjustmentKind
	market  models.MarketKind
	limit   float64
	details []models.AdjustmentDetail
}

func newBuilder(kind models.AdjustmentKind, market models.MarketKind, limit float64) *builder {
	return &builder{kind: kind, market: market, limit: limit}
}

func (b *builder) add(name string, points float64) {
	if points == 0 {
		return
	}
	b.details = append(b.details, models.AdjustmentDetail{Name: name, Points: points})
}

func (b *builder) build(empty string) models.Adjustment {
	var sum float64
	parts := make([]string, 0, len(b.details))
	for _, d := range b.details {
		sum += d.Points
		parts = append(parts, fmt.Sprintf("%s %+.2f", d.Name, d.Points))
	}

	points, capped := capPoints(sum, b.limit)
	explanation := empty
	if len(parts) > 0 {
		explanation = strings.Join(parts, ", ")
		if capped {
			explanation += fmt.Sprintf(" (capped at %.1f)", b.limit)
		}
	}
	return models.Adjustment{
		Kind:        b.kind,
		Market:      b.market,
		Points:      points,
		Cap:         b.limit,
		Capped:      capped,
		Explanation: explanation,
		Details:     b.details,
	}
}

// capPoints bounds v to [-limit, limit]
func capPoints(v, limit float64) (float64, bool) {
	if math.Abs(v) <= limit {
		return v, false
	}
	return math.Copysign(limit, v), true
}

// Orient returns the adjustment's spread points from the perspective of side.
// Total-market adjustments and unknown sides orient to zero.
func Orient(a models.Adjustment, side models.Side) float64 {
	if a.Market != models.MarketSpread {
		return 0
	}
	switch side {
	case models.SideAway:
		return a.Points
	case models.SideHome:
		return -a.Points
	default:
		return 0
	}
}
