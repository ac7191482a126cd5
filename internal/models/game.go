package models

import "time"

// Precipitation bands used by the weather adjustment
type Precipitation string

const (
	PrecipitationNone      Precipitation = "none"
	PrecipitationLightRain Precipitation = "light_rain"
	PrecipitationHeavyRain Precipitation = "heavy_rain"
	PrecipitationLightSnow Precipitation = "light_snow"
	PrecipitationHeavySnow Precipitation = "heavy_snow"
)

// WeatherConditions captures game-time conditions at the venue
type WeatherConditions struct {
	TemperatureF  *float64      `json:"temperature_f,omitempty"`
	WindMPH       *float64      `json:"wind_mph,omitempty" validate:"omitempty,gte=0"`
	Precipitation Precipitation `json:"precipitation,omitempty"`
	Indoor        bool          `json:"indoor"`
}

// SituationalContext captures rest, travel and motivation factors
type SituationalContext struct {
	AwayRestDays            int     `json:"away_rest_days" validate:"gte=0"`
	HomeRestDays            int     `json:"home_rest_days" validate:"gte=0"`
	AwayTravelMiles         float64 `json:"away_travel_miles" validate:"gte=0"`
	HomeTravelMiles         float64 `json:"home_travel_miles" validate:"gte=0"`
	AwayAltitudeGainFt      float64 `json:"away_altitude_gain_ft"`
	HomeAltitudeGainFt      float64 `json:"home_altitude_gain_ft"`
	Rivalry                 bool    `json:"rivalry"`
	AwayEliminated          bool    `json:"away_eliminated"`
	HomeEliminated          bool    `json:"home_eliminated"`
	AwayPlayoffImplications bool    `json:"away_playoff_implications"`
	HomePlayoffImplications bool    `json:"home_playoff_implications"`
}

// InjurySeverity is a player availability designation
type InjurySeverity string

const (
	SeverityOut          InjurySeverity = "out"
	SeverityDoubtful     InjurySeverity = "doubtful"
	SeverityQuestionable InjurySeverity = "questionable"
)

// PlayerInjury is one entry of an injury report
type PlayerInjury struct {
	Player   string         `json:"player"`
	Position string         `json:"position" validate:"required"`
	Severity InjurySeverity `json:"severity" validate:"required,oneof=out doubtful questionable"`
}

// InjurySnapshot is a team's injury report at a point in time
type InjurySnapshot struct {
	Team    string         `json:"team"`
	AsOf    time.Time      `json:"as_of"`
	Players []PlayerInjury `json:"players"`
}

// SharpMoneySnapshot reports public wagering percentages for one side
type SharpMoneySnapshot struct {
	MatchupID string    `json:"matchup_id"`
	Side      Side      `json:"side" validate:"required,oneof=away home"`
	TicketPct float64   `json:"ticket_pct" validate:"gte=0,lte=100"`
	MoneyPct  float64   `json:"money_pct" validate:"gte=0,lte=100"`
	Timestamp time.Time `json:"timestamp"`
}

// PracticeReport summarizes key players limited in practice ahead of a game
type PracticeReport struct {
	AwayKeyPlayersLimited int `json:"away_key_players_limited" validate:"gte=0"`
	HomeKeyPlayersLimited int `json:"home_key_players_limited" validate:"gte=0"`
}

// HistoricalGame is one game of the backtest corpus
type HistoricalGame struct {
	MatchupID    string              `json:"matchup_id" validate:"required"`
	League       string              `json:"league" validate:"required"`
	Season       int                 `json:"season" validate:"required"`
	Week         int                 `json:"week"`
	Date         time.Time           `json:"date" validate:"required"`
	AwayTeam     string              `json:"away_team" validate:"required"`
	HomeTeam     string              `json:"home_team" validate:"required"`
	AwayScore    *int                `json:"away_score,omitempty"`
	HomeScore    *int                `json:"home_score,omitempty"`
	Venue        string              `json:"venue"`
	Outdoor      bool                `json:"outdoor"`
	Weather      *WeatherConditions  `json:"weather,omitempty"`
	Opening      *MarketLine         `json:"opening,omitempty"`
	Closing      *MarketLine         `json:"closing,omitempty"`
	Sharp        *SharpMoneySnapshot `json:"sharp,omitempty"`
	Situational  *SituationalContext `json:"situational,omitempty"`
	Practice     *PracticeReport     `json:"practice,omitempty"`
	AwayInjuries *InjurySnapshot     `json:"away_injuries,omitempty"`
	HomeInjuries *InjurySnapshot     `json:"home_injuries,omitempty"`
}

// IsCompleted reports whether the final score is known
func (g *HistoricalGame) IsCompleted() bool {
	return g.AwayScore != nil && g.HomeScore != nil
}

// AwayMargin returns the final away margin (away score minus home score)
func (g *HistoricalGame) AwayMargin() (int, bool) {
	if !g.IsCompleted() {
		return 0, false
	}
	return *g.AwayScore - *g.HomeScore, true
}

// StreamKey identifies the league+season stream the game belongs to
func (g *HistoricalGame) StreamKey() string {
	return StreamKey(g.League, g.Season)
}
