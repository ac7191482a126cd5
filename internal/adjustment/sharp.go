package adjustment

import (
	"fmt"
	"math"

	"github.com/yourusername/line-edge/internal/league"
	"github.com/yourusername/line-edge/internal/models"
)

// SharpStrength buckets money/ticket divergence
type SharpStrength string

const (
	SharpNone       SharpStrength = "none"
	SharpModerate   SharpStrength = "moderate"
	SharpStrong     SharpStrength = "strong"
	SharpVeryStrong SharpStrength = "very_strong"
)

// SharpSignal is the sharp-money read on one matchup
type SharpSignal struct {
	Side       models.Side   `json:"side"`
	Divergence float64       `json:"divergence"`
	Strength   SharpStrength `json:"strength"`
	Adjustment float64       `json:"adjustment"`
}

// SharpMoney reads divergence between money and ticket share. The sharp side
// is the reported side when its money share exceeds its ticket share, and the
// opposite side otherwise.
func SharpMoney(th league.SharpThresholds, snap *models.SharpMoneySnapshot) SharpSignal {
	if snap == nil {
		return SharpSignal{Strength: SharpNone}
	}
	div := math.Abs(snap.MoneyPct - snap.TicketPct)
	s := SharpSignal{Divergence: div, Strength: SharpNone}
	switch {
	case div >= th.VeryStrong:
		s.Strength, s.Adjustment = SharpVeryStrong, th.VeryStrongAdjustment
	case div >= th.Strong:
		s.Strength, s.Adjustment = SharpStrong, th.StrongAdjustment
	case div >= th.Moderate:
		s.Strength, s.Adjustment = SharpModerate, th.ModerateAdjustment
	default:
		return s
	}
	if snap.MoneyPct > snap.TicketPct {
		s.Side = snap.Side
	} else {
		s.Side = snap.Side.Opposite()
	}
	return s
}

// Multiplier returns the confidence multiplier for a detected side: above one
// when sharps agree, below one when they disagree, exactly one without a signal
func (s SharpSignal) Multiplier(detected models.Side) float64 {
	if s.Strength == SharpNone || s.Side == models.SideNone || detected == models.SideNone {
		return 1
	}
	if s.Side == detected {
		return 1 + s.Adjustment
	}
	return 1 - s.Adjustment
}

// Factor renders the signal as a confidence factor for a detected side
func (s SharpSignal) Factor(detected models.Side) models.ConfidenceFactor {
	m := s.Multiplier(detected)
	explanation := "no sharp signal"
	if s.Strength != SharpNone {
		verb := "agrees"
		if m < 1 {
			verb = "disagrees"
		}
		explanation = fmt.Sprintf("%s sharp money on %s (divergence %.1f) %s", s.Strength, s.Side, s.Divergence, verb)
	}
	return models.ConfidenceFactor{
		Name:        "sharp_money",
		Kind:        models.FactorMultiplier,
		Value:       m,
		Explanation: explanation,
	}
}
