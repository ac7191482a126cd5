// Package rating converts team component statistics into bounded power ratings.
package rating

import (
	"fmt"
	"math"

	"github.com/yourusername/line-edge/internal/league"
	"github.com/yourusername/line-edge/internal/models"
)

// Engine computes power ratings for one league
type Engine struct {
	league league.League
	store  *Store
}

// NewEngine validates the league policy and returns an engine. A nil store
// disables memoization.
func NewEngine(l league.League, store *Store) (*Engine, error) {
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("rating engine: %w", err)
	}
	return &Engine{league: l, store: store}, nil
}

// League returns the policy the engine was built with
func (e *Engine) League() league.League {
	return e.league
}

// ComputeRating composes the weighted rating for one team. Missing inputs zero
// only their own component; the result is always within the league range.
func (e *Engine) ComputeRating(
	team string,
	offensive, defensive *models.ComponentMetrics,
	injury *models.InjuryImpact,
	status *models.TeamStatus,
) models.PowerRating {
	p := e.league.Rating
	w := p.Weights

	components := []models.ComponentContribution{
		e.offenseComponent(offensive),
		e.defenseComponent(defensive),
		e.injuryComponent(injury),
		e.momentumComponent(status),
		{
			Name:        models.ComponentHome,
			Raw:         p.HomeField,
			Explanation: fmt.Sprintf("league home-field constant %.2f", p.HomeField),
		},
	}
	weights := map[string]float64{
		models.ComponentOffense:  w.Offense,
		models.ComponentDefense:  w.Defense,
		models.ComponentInjury:   w.Injury,
		models.ComponentMomentum: w.Momentum,
		models.ComponentHome:     w.HomeField,
	}

	overall := p.Baseline
	for i := range components {
		c := &components[i]
		c.Weight = weights[c.Name]
		if c.Missing {
			c.Raw = 0
		}
		c.Contribution = c.Weight * c.Raw
		overall += c.Contribution
	}

	return models.PowerRating{
		Team:       team,
		League:     e.league.Code,
		Period:     periodOf(offensive, defensive),
		Baseline:   p.Baseline,
		Overall:    e.league.Clamp(overall),
		Unclamped:  overall,
		Components: components,
	}
}

// RateSnapshot rates a team snapshot, memoizing by season, period and
// snapshot time when the engine has a store. A snapshot with an external reference rating yields
// the differential between the two.
func (e *Engine) RateSnapshot(snap models.TeamSnapshot) models.PowerRating {
	if e.store != nil {
		if r, ok := e.store.Get(e.league.Code, snap.Season, snap.Team, snap.Period, snap.AsOf); ok {
			return r
		}
	}

	r := e.ComputeRating(snap.Team, snap.Offense, snap.Defense, snap.Injury, snap.Status)
	r.Period = snap.Period
	r.Season = snap.Season
	r.AsOf = snap.AsOf
	if snap.ExternalReference != nil && usable(*snap.ExternalReference) {
		diff := r.Overall - *snap.ExternalReference
		r.ExternalDifferential = &diff
	}

	if e.store != nil {
		e.store.Put(r)
	}
	return r
}

func (e *Engine) offenseComponent(m *models.ComponentMetrics) models.ComponentContribution {
	c := models.ComponentContribution{Name: models.ComponentOffense}
	raw, explanation, ok := e.blend(m, 1)
	if !ok {
		c.Missing = true
		c.Explanation = "no offensive metrics"
		return c
	}
	c.Raw = raw
	c.Explanation = "offense " + explanation
	return c
}

func (e *Engine) defenseComponent(m *models.ComponentMetrics) models.ComponentContribution {
	c := models.ComponentContribution{Name: models.ComponentDefense}
	raw, explanation, ok := e.blend(m, -1)
	if !ok {
		c.Missing = true
		c.Explanation = "no defensive metrics"
		return c
	}
	c.Raw = raw
	c.Explanation = "defense allowed " + explanation
	return c
}

// blend combines the primary and secondary deviations. sign is -1 for
// defensive bundles where lower production allowed is better.
func (e *Engine) blend(m *models.ComponentMetrics, sign float64) (float64, string, bool) {
	p := e.league.Rating
	primary := m.Primary()
	secondary := m.Secondary(p.SecondaryMetric)

	primaryOK := primary != nil && usable(*primary)
	secondaryOK := secondary != nil && usable(*secondary)
	if !primaryOK && !secondaryOK {
		return 0, "", false
	}

	var raw float64
	explanation := ""
	if primaryOK {
		dev := sign * deviation(*primary, p.AvgScoringRate)
		raw += p.PrimaryWeight * dev
		explanation = fmt.Sprintf("scoring %.2f vs avg %.2f (%+.1f%%)", *primary, p.AvgScoringRate, dev)
	} else {
		explanation = "scoring missing"
	}
	if secondaryOK {
		dev := sign * deviation(*secondary, p.AvgSecondaryRate)
		raw += p.SecondaryWeight * dev
		explanation += fmt.Sprintf(", %s %.2f vs avg %.2f (%+.1f%%)", p.SecondaryMetric, *secondary, p.AvgSecondaryRate, dev)
	} else {
		explanation += fmt.Sprintf(", %s missing", p.SecondaryMetric)
	}
	return raw, explanation, true
}

func (e *Engine) injuryComponent(i *models.InjuryImpact) models.ComponentContribution {
	c := models.ComponentContribution{Name: models.ComponentInjury}
	if i == nil {
		c.Missing = true
		c.Explanation = "no injury report"
		return c
	}
	p := e.league.Rating
	weighted := i.WeightedImpact()
	if !usable(weighted) {
		c.Missing = true
		c.Explanation = "injury impact not finite"
		return c
	}
	c.Raw = math.Max(-weighted/p.InjuryDivisor, p.InjuryFloor)
	c.Explanation = fmt.Sprintf("%d unavailable, weighted impact %.2f", i.TotalUnavailable(), weighted)
	return c
}

func (e *Engine) momentumComponent(s *models.TeamStatus) models.ComponentContribution {
	c := models.ComponentContribution{Name: models.ComponentMomentum}
	if s == nil || s.GamesPlayed() == 0 {
		c.Missing = true
		c.Explanation = "no record"
		return c
	}
	p := e.league.Rating

	games := s.Streak
	if games > p.StreakCapGames {
		games = p.StreakCapGames
	}
	streak := float64(games) * p.StreakPerGame
	direction := "W"
	if !s.StreakWinning {
		streak = -streak
		direction = "L"
	}
	winPct := s.WinPct()
	c.Raw = streak + p.WinPctScale*(winPct-0.5)
	c.Explanation = fmt.Sprintf("streak %s%d (%+.2f), record %d-%d-%d (%.3f)",
		direction, s.Streak, streak, s.Wins, s.Losses, s.Ties, winPct)
	return c
}

// deviation is the percent difference of v from avg
func deviation(v, avg float64) float64 {
	return (v - avg) / avg * 100
}

func usable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func periodOf(bundles ...*models.ComponentMetrics) string {
	for _, b := range bundles {
		if b != nil && b.Period != "" {
			return b.Period
		}
	}
	return ""
}
