package league

import "github.com/yourusername/line-edge/internal/models"

// DefaultWeights is the standard rating composition
var DefaultWeights = Weights{
	Offense:   0.30,
	Defense:   0.25,
	Injury:    0.15,
	Momentum:  0.15,
	HomeField: 0.15,
}

func defaultTiers() TierThresholds {
	return TierThresholds{VeryStrong: 7, Strong: 5, Medium: 3}
}

func defaultSizing() SizingParams {
	return SizingParams{ScalingConstant: 200, MaxKellyCap: 0.05, Odds: -110}
}

func defaultDetection() DetectionParams {
	return DetectionParams{
		Threshold:       3.5,
		TotalThreshold:  4.0,
		Tiers:           defaultTiers(),
		ConfidenceScale: 10,
		PracticeStep:    2.5,
		PracticeCap:     10,
		TrendCap:        0.10,
	}
}

func temperatureBands() []Band {
	return []Band{
		{Limit: 20, Points: -4},
		{Limit: 25, Points: -3},
		{Limit: 32, Points: -2},
		{Limit: 40, Points: -1},
	}
}

func precipitationPoints() map[models.Precipitation]float64 {
	return map[models.Precipitation]float64{
		models.PrecipitationHeavySnow: -5,
		models.PrecipitationHeavyRain: -3,
		models.PrecipitationLightSnow: -2,
		models.PrecipitationLightRain: -1,
	}
}

func footballInjuryTable() InjuryTable {
	return InjuryTable{
		Positions: map[string]SeverityPoints{
			"QB": {models.SeverityOut: 7, models.SeverityDoubtful: 5, models.SeverityQuestionable: 2},
			"RB": {models.SeverityOut: 2, models.SeverityDoubtful: 1.5, models.SeverityQuestionable: 0.5},
			"WR": {models.SeverityOut: 2, models.SeverityDoubtful: 1.5, models.SeverityQuestionable: 0.5},
			"TE": {models.SeverityOut: 1.5, models.SeverityDoubtful: 1, models.SeverityQuestionable: 0.5},
			"OL": {models.SeverityOut: 1, models.SeverityDoubtful: 0.75, models.SeverityQuestionable: 0.25},
			"DL": {models.SeverityOut: 1.5, models.SeverityDoubtful: 1, models.SeverityQuestionable: 0.5},
			"LB": {models.SeverityOut: 1, models.SeverityDoubtful: 0.75, models.SeverityQuestionable: 0.25},
			"CB": {models.SeverityOut: 1.5, models.SeverityDoubtful: 1, models.SeverityQuestionable: 0.5},
			"S":  {models.SeverityOut: 1, models.SeverityDoubtful: 0.75, models.SeverityQuestionable: 0.25},
			"K":  {models.SeverityOut: 0.5, models.SeverityDoubtful: 0.25},
		},
		Default: SeverityPoints{models.SeverityOut: 0.5, models.SeverityDoubtful: 0.25, models.SeverityQuestionable: 0.1},
		Cap:     10,
	}
}

func basketballInjuryTable() InjuryTable {
	return InjuryTable{
		Positions: map[string]SeverityPoints{
			"PG": {models.SeverityOut: 4, models.SeverityDoubtful: 3, models.SeverityQuestionable: 1},
			"SG": {models.SeverityOut: 3, models.SeverityDoubtful: 2, models.SeverityQuestionable: 1},
			"G":  {models.SeverityOut: 3.5, models.SeverityDoubtful: 2.5, models.SeverityQuestionable: 1},
			"SF": {models.SeverityOut: 3, models.SeverityDoubtful: 2, models.SeverityQuestionable: 1},
			"PF": {models.SeverityOut: 3, models.SeverityDoubtful: 2, models.SeverityQuestionable: 1},
			"F":  {models.SeverityOut: 3, models.SeverityDoubtful: 2, models.SeverityQuestionable: 1},
			"C":  {models.SeverityOut: 3.5, models.SeverityDoubtful: 2.5, models.SeverityQuestionable: 1},
		},
		Default: SeverityPoints{models.SeverityOut: 1, models.SeverityDoubtful: 0.5, models.SeverityQuestionable: 0.25},
		Cap:     10,
	}
}

func situational(baselineRest int) SituationalTable {
	return SituationalTable{
		BaselineRestDays:    baselineRest,
		RestPerDay:          0.25,
		RestCap:             1,
		TravelPer1000:       0.5,
		TravelCap:           2,
		AltitudeThresholdFt: 3000,
		AltitudePenalty:     1,
		Rivalry:             1,
		Elimination:         1,
		PlayoffImplications: 0.5,
		Cap:                 4,
	}
}

func liquidSharp() SharpThresholds {
	return SharpThresholds{
		VeryStrong:           15,
		Strong:               10,
		Moderate:             5,
		VeryStrongAdjustment: 0.20,
		StrongAdjustment:     0.10,
		ModerateAdjustment:   0.05,
	}
}

func thinSharp() SharpThresholds {
	return SharpThresholds{
		VeryStrong:           40,
		Strong:               30,
		Moderate:             20,
		VeryStrongAdjustment: 0.20,
		StrongAdjustment:     0.10,
		ModerateAdjustment:   0.05,
	}
}

// DefaultNFL returns the NFL policy
func DefaultNFL() League {
	return League{
		Code:  NFL,
		Name:  "National Football League",
		Sport: SportFootball,
		Rating: RatingParams{
			Baseline:         80,
			Min:              50,
			Max:              110,
			HomeField:        2.5,
			Weights:          DefaultWeights,
			PrimaryWeight:    0.6,
			SecondaryWeight:  0.4,
			SecondaryMetric:  models.SecondaryYardage,
			AvgScoringRate:   22.0,
			AvgSecondaryRate: 5.4,
			InjuryDivisor:    2,
			InjuryFloor:      -10,
			StreakPerGame:    0.5,
			StreakCapGames:   5,
			WinPctScale:      10,
		},
		Detection: defaultDetection(),
		Sizing:    defaultSizing(),
		Weather: WeatherTable{
			Temperature: temperatureBands(),
			Wind: []Band{
				{Limit: 20, Points: -6},
				{Limit: 15, Points: -4},
				{Limit: 10, Points: -2},
			},
			Precipitation: precipitationPoints(),
			Cap:           12,
		},
		Situational: situational(7),
		Injury:      footballInjuryTable(),
		Sharp:       liquidSharp(),
	}
}

// DefaultNCAAF returns the college football policy
func DefaultNCAAF() League {
	l := DefaultNFL()
	l.Code = NCAAF
	l.Name = "NCAA Football"
	l.Rating.Baseline = 75
	l.Rating.Min = 30
	l.Rating.Max = 120
	l.Rating.HomeField = 3.5
	l.Rating.AvgScoringRate = 28.0
	l.Rating.AvgSecondaryRate = 5.9
	l.Weather.Wind = []Band{
		{Limit: 20, Points: -4},
		{Limit: 15, Points: -3},
		{Limit: 10, Points: -1},
	}
	l.Weather.Precipitation = precipitationPoints()
	l.Weather.Temperature = temperatureBands()
	l.Injury = footballInjuryTable()
	l.Sharp = thinSharp()
	return l
}

// DefaultNBA returns the NBA policy
func DefaultNBA() League {
	detection := defaultDetection()
	detection.Threshold = 4.0
	detection.TotalThreshold = 6.0
	detection.Tiers = TierThresholds{VeryStrong: 8, Strong: 6, Medium: 4}
	return League{
		Code:  NBA,
		Name:  "National Basketball Association",
		Sport: SportBasketball,
		Rating: RatingParams{
			Baseline:         100,
			Min:              80,
			Max:              120,
			HomeField:        2.5,
			Weights:          DefaultWeights,
			PrimaryWeight:    0.6,
			SecondaryWeight:  0.4,
			SecondaryMetric:  models.SecondaryEfficiency,
			AvgScoringRate:   114.0,
			AvgSecondaryRate: 115.0,
			InjuryDivisor:    2,
			InjuryFloor:      -10,
			StreakPerGame:    0.5,
			StreakCapGames:   5,
			WinPctScale:      10,
		},
		Detection:   detection,
		Sizing:      defaultSizing(),
		Weather:     WeatherTable{Cap: 0},
		Situational: situational(1),
		Injury:      basketballInjuryTable(),
		Sharp:       liquidSharp(),
	}
}

// DefaultNCAAB returns the college basketball policy
func DefaultNCAAB() League {
	l := DefaultNBA()
	l.Code = NCAAB
	l.Name = "NCAA Basketball"
	l.Rating.Baseline = 70
	l.Rating.Min = 40
	l.Rating.Max = 100
	l.Rating.HomeField = 3.5
	l.Rating.AvgScoringRate = 72.0
	l.Rating.AvgSecondaryRate = 104.0
	l.Situational = situational(2)
	l.Injury = basketballInjuryTable()
	l.Sharp = thinSharp()
	return l
}

// Defaults returns every built-in league
func Defaults() []League {
	return []League{DefaultNFL(), DefaultNCAAF(), DefaultNBA(), DefaultNCAAB()}
}

// DefaultRegistry returns a registry of the built-in leagues
func DefaultRegistry() *Registry {
	r, err := NewRegistry(Defaults()...)
	if err != nil {
		panic(err)
	}
	return r
}
