// Package league holds per-league numeric policy as immutable configuration values.
package league

import (
	"sort"

	"github.com/yourusername/line-edge/internal/models"
)

// Sport families share injury and weather tables
type Sport string

const (
	SportFootball   Sport = "football"
	SportBasketball Sport = "basketball"
)

// League codes shipped with the engine
const (
	NFL   = "NFL"
	NCAAF = "NCAAF"
	NBA   = "NBA"
	NCAAB = "NCAAB"
)

// Codes returns the built-in league codes in sorted order
func Codes() []string {
	return []string{NBA, NCAAB, NCAAF, NFL}
}

// Weights are the rating composition weights
type Weights struct {
	Offense   float64 `yaml:"offense" mapstructure:"offense" validate:"gte=0,lte=1"`
	Defense   float64 `yaml:"defense" mapstructure:"defense" validate:"gte=0,lte=1"`
	Injury    float64 `yaml:"injury" mapstructure:"injury" validate:"gte=0,lte=1"`
	Momentum  float64 `yaml:"momentum" mapstructure:"momentum" validate:"gte=0,lte=1"`
	HomeField float64 `yaml:"home_field" mapstructure:"home_field" validate:"gte=0,lte=1"`
}

// Sum returns the total of all weights
func (w Weights) Sum() float64 {
	return w.Offense + w.Defense + w.Injury + w.Momentum + w.HomeField
}

// RatingParams configures the rating engine for a league
type RatingParams struct {
	Baseline         float64 `yaml:"baseline" validate:"gt=0"`
	Min              float64 `yaml:"min" validate:"gte=0"`
	Max              float64 `yaml:"max" validate:"gtfield=Min"`
	HomeField        float64 `yaml:"home_field" validate:"gte=0,lte=10"`
	Weights          Weights `yaml:"weights"`
	PrimaryWeight    float64 `yaml:"primary_weight" validate:"gte=0,lte=1"`
	SecondaryWeight  float64 `yaml:"secondary_weight" validate:"gte=0,lte=1"`
	SecondaryMetric  string  `yaml:"secondary_metric" validate:"oneof=yardage efficiency"`
	AvgScoringRate   float64 `yaml:"avg_scoring_rate" validate:"gt=0"`
	AvgSecondaryRate float64 `yaml:"avg_secondary_rate" validate:"gt=0"`
	InjuryDivisor    float64 `yaml:"injury_divisor" validate:"gt=0"`
	InjuryFloor      float64 `yaml:"injury_floor" validate:"lte=0"`
	StreakPerGame    float64 `yaml:"streak_per_game" validate:"gte=0"`
	StreakCapGames   int     `yaml:"streak_cap_games" validate:"gte=0"`
	WinPctScale      float64 `yaml:"win_pct_scale" validate:"gte=0"`
}

// TierThresholds are the minimum magnitudes for each strength tier
type TierThresholds struct {
	VeryStrong float64 `yaml:"very_strong" validate:"gtfield=Strong"`
	Strong     float64 `yaml:"strong" validate:"gtfield=Medium"`
	Medium     float64 `yaml:"medium" validate:"gte=0"`
}

// Classify maps a magnitude to its tier
func (t TierThresholds) Classify(magnitude float64) models.StrengthTier {
	switch {
	case magnitude >= t.VeryStrong:
		return models.TierVeryStrong
	case magnitude >= t.Strong:
		return models.TierStrong
	case magnitude >= t.Medium:
		return models.TierMedium
	default:
		return models.TierWeak
	}
}

// DetectionParams configures edge detection
type DetectionParams struct {
	Threshold       float64        `yaml:"threshold" validate:"gt=0"`
	TotalThreshold  float64        `yaml:"total_threshold" validate:"gt=0"`
	Tiers           TierThresholds `yaml:"tiers"`
	ConfidenceScale float64        `yaml:"confidence_scale" validate:"gt=0"`
	PracticeStep    float64        `yaml:"practice_step" validate:"gte=0"`
	PracticeCap     float64        `yaml:"practice_cap" validate:"gte=0,lte=100"`
	TrendCap        float64        `yaml:"trend_cap" validate:"gte=0,lt=1"`
}

// SizingParams configures the bet sizer
type SizingParams struct {
	ScalingConstant float64 `yaml:"scaling_constant" validate:"gt=0"`
	MaxKellyCap     float64 `yaml:"max_kelly_cap" validate:"gt=0,lte=1"`
	Odds            int     `yaml:"odds" validate:"ne=0"`
}

// Band maps a threshold to a point value
type Band struct {
	Limit  float64 `yaml:"limit"`
	Points float64 `yaml:"points"`
}

// WeatherTable configures the weather adjustment
type WeatherTable struct {
	// Temperature bands apply when temperature is strictly below Limit; sorted ascending.
	Temperature []Band `yaml:"temperature"`
	// Wind bands apply when wind is strictly above Limit; sorted descending.
	Wind          []Band                           `yaml:"wind"`
	Precipitation map[models.Precipitation]float64 `yaml:"precipitation"`
	Cap           float64                          `yaml:"cap" validate:"gte=0"`
}

// SituationalTable configures the situational adjustment
type SituationalTable struct {
	BaselineRestDays    int     `yaml:"baseline_rest_days" validate:"gte=0"`
	RestPerDay          float64 `yaml:"rest_per_day" validate:"gte=0"`
	RestCap             float64 `yaml:"rest_cap" validate:"gte=0"`
	TravelPer1000       float64 `yaml:"travel_per_1000" validate:"gte=0"`
	TravelCap           float64 `yaml:"travel_cap" validate:"gte=0"`
	AltitudeThresholdFt float64 `yaml:"altitude_threshold_ft" validate:"gte=0"`
	AltitudePenalty     float64 `yaml:"altitude_penalty" validate:"gte=0"`
	Rivalry             float64 `yaml:"rivalry" validate:"gte=0"`
	Elimination         float64 `yaml:"elimination" validate:"gte=0"`
	PlayoffImplications float64 `yaml:"playoff_implications" validate:"gte=0"`
	Cap                 float64 `yaml:"cap" validate:"gte=0"`
}

// SeverityPoints maps each severity to a point value for one position
type SeverityPoints map[models.InjurySeverity]float64

// InjuryTable configures the game-level injury adjustment
type InjuryTable struct {
	Positions map[string]SeverityPoints `yaml:"positions"`
	Default   SeverityPoints            `yaml:"default"`
	Cap       float64                   `yaml:"cap" validate:"gte=0"`
}

// Points returns the table value for a position and severity
func (t InjuryTable) Points(position string, severity models.InjurySeverity) float64 {
	if row, ok := t.Positions[position]; ok {
		return row[severity]
	}
	return t.Default[severity]
}

// SharpThresholds configures sharp money strength tiers and multipliers
type SharpThresholds struct {
	VeryStrong           float64 `yaml:"very_strong" validate:"gtfield=Strong"`
	Strong               float64 `yaml:"strong" validate:"gtfield=Moderate"`
	Moderate             float64 `yaml:"moderate" validate:"gt=0"`
	VeryStrongAdjustment float64 `yaml:"very_strong_adjustment" validate:"gte=0,lte=0.2"`
	StrongAdjustment     float64 `yaml:"strong_adjustment" validate:"gte=0,lte=0.2"`
	ModerateAdjustment   float64 `yaml:"moderate_adjustment" validate:"gte=0,lte=0.2"`
}

// League is the full numeric policy for one league
type League struct {
	Code        string           `yaml:"code" validate:"required"`
	Name        string           `yaml:"name"`
	Sport       Sport            `yaml:"sport" validate:"oneof=football basketball"`
	Rating      RatingParams     `yaml:"rating"`
	Detection   DetectionParams  `yaml:"detection"`
	Sizing      SizingParams     `yaml:"sizing"`
	Weather     WeatherTable     `yaml:"weather"`
	Situational SituationalTable `yaml:"situational"`
	Injury      InjuryTable      `yaml:"injury"`
	Sharp       SharpThresholds  `yaml:"sharp"`
}

// Clamp bounds a rating to the league range
func (l League) Clamp(rating float64) float64 {
	if rating < l.Rating.Min {
		return l.Rating.Min
	}
	if rating > l.Rating.Max {
		return l.Rating.Max
	}
	return rating
}

// WithThreshold returns a copy of the league with a different detection threshold
func (l League) WithThreshold(threshold float64) League {
	l.Detection.Threshold = threshold
	return l
}

// Registry is an immutable set of leagues keyed by code
type Registry struct {
	leagues map[string]League
}

// NewRegistry validates and indexes the given leagues
func NewRegistry(leagues ...League) (*Registry, error) {
	r := &Registry{leagues: make(map[string]League, len(leagues))}
	for _, l := range leagues {
		if err := l.Validate(); err != nil {
			return nil, err
		}
		r.leagues[l.Code] = l
	}
	return r, nil
}

// Get returns the league for a code
func (r *Registry) Get(code string) (League, bool) {
	l, ok := r.leagues[code]
	return l, ok
}

// Codes returns the registered league codes in sorted order
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.leagues))
	for code := range r.leagues {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Leagues returns every registered league
func (r *Registry) Leagues() []League {
	out := make([]League, 0, len(r.leagues))
	for _, code := range r.Codes() {
		out = append(out, r.leagues[code])
	}
	return out
}
