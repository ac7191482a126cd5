package models

import "time"

// ComponentMetrics is one side (offense or defense) of a team's statistic
// bundle for a period. For a defensive bundle every rate is production allowed.
type ComponentMetrics struct {
	Team           string    `json:"team" validate:"required"`
	Period         string    `json:"period" validate:"required"`
	AsOf           time.Time `json:"as_of"`
	ScoringRate    *float64  `json:"scoring_rate,omitempty" validate:"omitempty,gte=0"`
	YardageRate    *float64  `json:"yardage_rate,omitempty" validate:"omitempty,gte=0"`
	EfficiencyRate *float64  `json:"efficiency_rate,omitempty" validate:"omitempty,gte=0"`
	ThirdDownRate  *float64  `json:"third_down_rate,omitempty" validate:"omitempty,gte=0,lte=1"`
	RedZoneRate    *float64  `json:"red_zone_rate,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// Secondary metric names
const (
	SecondaryYardage    = "yardage"
	SecondaryEfficiency = "efficiency"
)

// Primary returns the scoring rate, or nil when absent
func (c *ComponentMetrics) Primary() *float64 {
	if c == nil {
		return nil
	}
	return c.ScoringRate
}

// Secondary returns the named secondary rate, or nil when absent
func (c *ComponentMetrics) Secondary(metric string) *float64 {
	if c == nil {
		return nil
	}
	switch metric {
	case SecondaryYardage:
		return c.YardageRate
	case SecondaryEfficiency:
		return c.EfficiencyRate
	default:
		return nil
	}
}

// InjuryTier aggregates unavailable players of one severity
type InjuryTier struct {
	Count        int     `json:"count" validate:"gte=0"`
	ImpactPoints float64 `json:"impact_points" validate:"gte=0"`
}

// InjuryImpact is a team-level aggregate of injuries by severity tier
type InjuryImpact struct {
	Team         string     `json:"team"`
	Out          InjuryTier `json:"out"`
	Doubtful     InjuryTier `json:"doubtful"`
	Questionable InjuryTier `json:"questionable"`
}

// Severity weights applied to each tier's impact points
const (
	OutWeight          = 1.0
	DoubtfulWeight     = 0.75
	QuestionableWeight = 0.25
)

// WeightedImpact returns the tier-weighted sum of impact points
func (i *InjuryImpact) WeightedImpact() float64 {
	if i == nil {
		return 0
	}
	return i.Out.ImpactPoints*OutWeight +
		i.Doubtful.ImpactPoints*DoubtfulWeight +
		i.Questionable.ImpactPoints*QuestionableWeight
}

// TotalUnavailable returns the number of listed players across all tiers
func (i *InjuryImpact) TotalUnavailable() int {
	if i == nil {
		return 0
	}
	return i.Out.Count + i.Doubtful.Count + i.Questionable.Count
}

// TeamStatus captures record and streak information
type TeamStatus struct {
	Team          string `json:"team"`
	Wins          int    `json:"wins" validate:"gte=0"`
	Losses        int    `json:"losses" validate:"gte=0"`
	Ties          int    `json:"ties" validate:"gte=0"`
	Streak        int    `json:"streak" validate:"gte=0"`
	StreakWinning bool   `json:"streak_winning"`
	HomeWins      int    `json:"home_wins" validate:"gte=0"`
	HomeLosses    int    `json:"home_losses" validate:"gte=0"`
	AwayWins      int    `json:"away_wins" validate:"gte=0"`
	AwayLosses    int    `json:"away_losses" validate:"gte=0"`
}

// GamesPlayed returns the number of decided and tied games
func (s *TeamStatus) GamesPlayed() int {
	if s == nil {
		return 0
	}
	return s.Wins + s.Losses + s.Ties
}

// WinPct returns the win percentage in [0,1] counting ties as half a win
func (s *TeamStatus) WinPct() float64 {
	played := s.GamesPlayed()
	if played == 0 {
		return 0
	}
	return (float64(s.Wins) + 0.5*float64(s.Ties)) / float64(played)
}

// TeamSnapshot bundles every team input captured for one period. AsOf is the
// moment the snapshot became available.
type TeamSnapshot struct {
	Team              string            `json:"team" validate:"required"`
	League            string            `json:"league" validate:"required"`
	Season            int               `json:"season"`
	Period            string            `json:"period" validate:"required"`
	AsOf              time.Time         `json:"as_of" validate:"required"`
	Offense           *ComponentMetrics `json:"offense,omitempty"`
	Defense           *ComponentMetrics `json:"defense,omitempty"`
	Status            *TeamStatus       `json:"status,omitempty"`
	Injury            *InjuryImpact     `json:"injury,omitempty"`
	ExternalReference *float64          `json:"external_reference,omitempty"`
}
