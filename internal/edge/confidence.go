package edge

import (
	"fmt"
	"math"

	"github.com/yourusername/line-edge/internal/adjustment"
	"github.com/yourusername/line-edge/internal/models"
)

// trendPerPoint converts a momentum gap into a multiplier step
const trendPerPoint = 0.01

// score sets base confidence, secondary factors and the final clamped value.
// Multipliers apply before additive factors.
func (d *Detector) score(e *models.Edge, in Input) {
	det := d.league.Detection
	e.BaseConfidence = math.Min(e.Magnitude*det.ConfidenceScale, 100)

	factors := []models.ConfidenceFactor{
		d.trendFactor(e.Side, in.Away, in.Home),
		adjustment.SharpMoney(d.league.Sharp, in.Sharp).Factor(e.Side),
		d.practiceFactor(e.Side, in.Practice),
	}

	conf := e.BaseConfidence
	for _, f := range factors {
		if f.Kind == models.FactorMultiplier {
			conf *= f.Value
		}
	}
	for _, f := range factors {
		if f.Kind == models.FactorAdditive {
			conf += f.Value
		}
	}
	e.ConfidenceFactors = factors
	e.Confidence = clamp(conf, 0, 100)
}

// trendFactor compares the momentum components of the two ratings
func (d *Detector) trendFactor(side models.Side, away, home *models.PowerRating) models.ConfidenceFactor {
	f := models.ConfidenceFactor{Name: "team_trend", Kind: models.FactorMultiplier, Value: 1}
	am, aok := away.Component(models.ComponentMomentum)
	hm, hok := home.Component(models.ComponentMomentum)
	if !aok || !hok || am.Missing || hm.Missing {
		f.Explanation = "momentum unavailable"
		return f
	}

	gap := am.Raw - hm.Raw
	if side == models.SideHome {
		gap = -gap
	}
	limit := d.league.Detection.TrendCap
	f.Value = 1 + clamp(gap*trendPerPoint, -limit, limit)
	f.Explanation = fmt.Sprintf("momentum gap %+.2f for %s", gap, side)
	return f
}

// practiceFactor rewards the side whose opponent has more key players limited
func (d *Detector) practiceFactor(side models.Side, p *models.PracticeReport) models.ConfidenceFactor {
	f := models.ConfidenceFactor{Name: "practice", Kind: models.FactorAdditive}
	if p == nil {
		f.Explanation = "no practice report"
		return f
	}
	gap := p.HomeKeyPlayersLimited - p.AwayKeyPlayersLimited
	if side == models.SideHome {
		gap = -gap
	}
	det := d.league.Detection
	f.Value = clamp(float64(gap)*det.PracticeStep, -det.PracticeCap, det.PracticeCap)
	f.Explanation = fmt.Sprintf("opponent limited players gap %+d", gap)
	return f
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
