package adjustment

import (
	"math"
	"testing"

	"github.com/yourusername/line-edge/internal/league"
	"github.com/yourusername/line-edge/internal/models"
)

func f(v float64) *float64 { return &v }

func TestWeatherBands(t *testing.T) {
	nfl := league.DefaultNFL().Weather
	ncaaf := league.DefaultNCAAF().Weather

	cases := []struct {
		name  string
		table league.WeatherTable
		w     models.WeatherConditions
		want  float64
	}{
		{"frigid", nfl, models.WeatherConditions{TemperatureF: f(12)}, -4},
		{"cold", nfl, models.WeatherConditions{TemperatureF: f(22)}, -3},
		{"freezing", nfl, models.WeatherConditions{TemperatureF: f(30)}, -2},
		{"chilly", nfl, models.WeatherConditions{TemperatureF: f(38)}, -1},
		{"mild", nfl, models.WeatherConditions{TemperatureF: f(65)}, 0},
		{"gale nfl", nfl, models.WeatherConditions{WindMPH: f(24)}, -6},
		{"gale ncaaf", ncaaf, models.WeatherConditions{WindMPH: f(24)}, -4},
		{"breezy", nfl, models.WeatherConditions{WindMPH: f(12)}, -2},
		{"exactly ten", nfl, models.WeatherConditions{WindMPH: f(10)}, 0},
		{"heavy snow", nfl, models.WeatherConditions{Precipitation: models.PrecipitationHeavySnow}, -5},
		{"heavy rain", nfl, models.WeatherConditions{Precipitation: models.PrecipitationHeavyRain}, -3},
		{"blizzard capped", nfl, models.WeatherConditions{TemperatureF: f(10), WindMPH: f(30), Precipitation: models.PrecipitationHeavySnow}, -12},
	}
	for _, c := range cases {
		adj := Weather(c.table, &c.w, true)
		if adj.Points != c.want {
			t.Errorf("%s: expected %.1f, got %.1f (%s)", c.name, c.want, adj.Points, adj.Explanation)
		}
		if adj.Market != models.MarketTotal {
			t.Errorf("%s: expected total market", c.name)
		}
		if math.Abs(adj.Points) > adj.Cap {
			t.Errorf("%s: %.1f exceeds cap %.1f", c.name, adj.Points, adj.Cap)
		}
	}
}

func TestWeatherIndoor(t *testing.T) {
	table := league.DefaultNFL().Weather
	w := &models.WeatherConditions{TemperatureF: f(5), WindMPH: f(40), Precipitation: models.PrecipitationHeavySnow, Indoor: true}
	if adj := Weather(table, w, true); adj.Points != 0 {
		t.Fatalf("expected indoor 0, got %f", adj.Points)
	}
	w.Indoor = false
	if adj := Weather(table, w, false); adj.Points != 0 {
		t.Fatalf("expected non-outdoor venue 0, got %f", adj.Points)
	}
}

func TestSituational(t *testing.T) {
	table := league.DefaultNFL().Situational
	homeFav := &models.MarketLine{Spread: -6.5}

	ctx := &models.SituationalContext{
		AwayRestDays:    14,
		HomeRestDays:    7,
		AwayTravelMiles: 2500,
		Rivalry:         true,
	}
	adj := Situational(table, ctx, homeFav)
	// rest +1 (capped), travel -1.25, rivalry +1 toward away underdog
	if math.Abs(adj.Points-0.75) > 1e-9 {
		t.Fatalf("expected 0.75, got %f (%s)", adj.Points, adj.Explanation)
	}
	if len(adj.Details) != 3 {
		t.Fatalf("expected 3 details, got %+v", adj.Details)
	}
}

func TestSituationalCap(t *testing.T) {
	table := league.DefaultNFL().Situational
	ctx := &models.SituationalContext{
		AwayRestDays:            4,
		HomeRestDays:            14,
		AwayTravelMiles:         6000,
		AwayAltitudeGainFt:      5200,
		AwayEliminated:          true,
		HomePlayoffImplications: true,
	}
	adj := Situational(table, ctx, nil)
	if adj.Points != -4 || !adj.Capped {
		t.Fatalf("expected capped -4, got %f capped=%v", adj.Points, adj.Capped)
	}
}

func TestSituationalNil(t *testing.T) {
	if adj := Situational(league.DefaultNBA().Situational, nil, nil); adj.Points != 0 {
		t.Fatalf("expected 0, got %f", adj.Points)
	}
}

func TestInjuryAdjustment(t *testing.T) {
	table := league.DefaultNFL().Injury
	away := &models.InjurySnapshot{Team: "GB", Players: []models.PlayerInjury{
		{Player: "QB1", Position: "QB", Severity: models.SeverityOut},
		{Player: "WR2", Position: "WR", Severity: models.SeverityQuestionable},
	}}
	home := &models.InjurySnapshot{Team: "CHI", Players: []models.PlayerInjury{
		{Player: "CB1", Position: "CB", Severity: models.SeverityDoubtful},
	}}
	adj := Injury(table, away, home)
	// away -7.5, home +1
	if math.Abs(adj.Points-(-6.5)) > 1e-9 {
		t.Fatalf("expected -6.5, got %f", adj.Points)
	}
	if Orient(adj, models.SideHome) <= 0 {
		t.Fatalf("expected away injuries to help a home bet")
	}

	heavy := &models.InjurySnapshot{Players: []models.PlayerInjury{
		{Position: "QB", Severity: models.SeverityOut},
		{Position: "RB", Severity: models.SeverityOut},
		{Position: "WR", Severity: models.SeverityOut},
		{Position: "TE", Severity: models.SeverityOut},
	}}
	if adj := Injury(table, nil, heavy); adj.Points != 10 || !adj.Capped {
		t.Fatalf("expected capped 10, got %f", adj.Points)
	}
}

func TestSummarizeInjuries(t *testing.T) {
	table := league.DefaultNBA().Injury
	snap := &models.InjurySnapshot{Team: "BOS", Players: []models.PlayerInjury{
		{Position: "PG", Severity: models.SeverityOut},
		{Position: "C", Severity: models.SeverityQuestionable},
		{Position: "SF", Severity: models.SeverityQuestionable},
	}}
	impact := SummarizeInjuries(table, snap)
	if impact.Out.Count != 1 || impact.Out.ImpactPoints != 4 {
		t.Fatalf("unexpected out tier %+v", impact.Out)
	}
	if impact.Questionable.Count != 2 || impact.Questionable.ImpactPoints != 2 {
		t.Fatalf("unexpected questionable tier %+v", impact.Questionable)
	}
	if got := impact.WeightedImpact(); got != 4.5 {
		t.Fatalf("expected weighted impact 4.5, got %f", got)
	}
	if SummarizeInjuries(table, nil) != nil {
		t.Fatalf("expected nil for no report")
	}
}

func TestSharpMoney(t *testing.T) {
	nfl := league.DefaultNFL().Sharp
	ncaaf := league.DefaultNCAAF().Sharp

	snap := &models.SharpMoneySnapshot{Side: models.SideHome, TicketPct: 35, MoneyPct: 52}
	s := SharpMoney(nfl, snap)
	if s.Strength != SharpVeryStrong || s.Side != models.SideHome {
		t.Fatalf("expected very strong home, got %+v", s)
	}
	if got := s.Multiplier(models.SideHome); math.Abs(got-1.2) > 1e-9 {
		t.Fatalf("expected agreement 1.2, got %f", got)
	}
	if got := s.Multiplier(models.SideAway); math.Abs(got-0.8) > 1e-9 {
		t.Fatalf("expected contradiction 0.8, got %f", got)
	}

	college := SharpMoney(ncaaf, snap)
	if college.Strength != SharpNone || college.Multiplier(models.SideHome) != 1 {
		t.Fatalf("expected no signal at college thresholds, got %+v", college)
	}

	public := SharpMoney(nfl, &models.SharpMoneySnapshot{Side: models.SideAway, TicketPct: 70, MoneyPct: 58})
	if public.Strength != SharpStrong || public.Side != models.SideHome {
		t.Fatalf("expected strong home signal against public away, got %+v", public)
	}

	if none := SharpMoney(nfl, nil); none.Multiplier(models.SideAway) != 1 {
		t.Fatalf("expected neutral multiplier without data")
	}
}

func TestOrient(t *testing.T) {
	spread := models.Adjustment{Market: models.MarketSpread, Points: 2}
	total := models.Adjustment{Market: models.MarketTotal, Points: -4}
	if Orient(spread, models.SideAway) != 2 || Orient(spread, models.SideHome) != -2 {
		t.Fatalf("unexpected spread orientation")
	}
	if Orient(total, models.SideAway) != 0 {
		t.Fatalf("total adjustments should not move spread edges")
	}
}
