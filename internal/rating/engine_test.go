package rating

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/yourusername/line-edge/internal/league"
	"github.com/yourusername/line-edge/internal/models"
)

func f(v float64) *float64 { return &v }

func newNFLEngine(t *testing.T, store *Store) *Engine {
	t.Helper()
	e, err := NewEngine(league.DefaultNFL(), store)
	if err != nil {
		t.Fatalf("expected valid engine, got %v", err)
	}
	return e
}

func TestComputeRatingFullInputs(t *testing.T) {
	e := newNFLEngine(t, nil)
	off := &models.ComponentMetrics{Team: "KC", Period: "2023-W10", ScoringRate: f(27.5), YardageRate: f(5.94)}
	def := &models.ComponentMetrics{Team: "KC", Period: "2023-W10", ScoringRate: f(17.6), YardageRate: f(4.86)}
	inj := &models.InjuryImpact{Team: "KC", Out: models.InjuryTier{Count: 1, ImpactPoints: 4}}
	status := &models.TeamStatus{Team: "KC", Wins: 7, Losses: 2, Streak: 3, StreakWinning: true}

	r := e.ComputeRating("KC", off, def, inj, status)

	// offense: 0.6*25 + 0.4*10 = 19; defense: 0.6*20 + 0.4*10 = 16
	// injury: -4/2 = -2; momentum: 1.5 + 10*(7/9-0.5); home: 2.5
	momentum := 1.5 + 10*(7.0/9.0-0.5)
	want := 80 + 0.30*19 + 0.25*16 + 0.15*-2 + 0.15*momentum + 0.15*2.5
	if math.Abs(r.Overall-want) > 1e-9 {
		t.Fatalf("expected overall %.6f, got %.6f", want, r.Overall)
	}
	if r.Period != "2023-W10" {
		t.Fatalf("expected period from metrics, got %q", r.Period)
	}
	if r.UsableComponents() != 5 {
		t.Fatalf("expected 5 usable components, got %d", r.UsableComponents())
	}
	for _, c := range r.Components {
		if c.Explanation == "" {
			t.Errorf("component %s has no explanation", c.Name)
		}
	}
	d, _ := r.Component(models.ComponentDefense)
	if d.Raw <= 0 {
		t.Fatalf("expected better-than-average defense to be positive, got %f", d.Raw)
	}
}

func TestComputeRatingMissingInputs(t *testing.T) {
	e := newNFLEngine(t, nil)
	r := e.ComputeRating("NYJ", nil, nil, nil, nil)

	want := 80 + 0.15*2.5
	if math.Abs(r.Overall-want) > 1e-9 {
		t.Fatalf("expected baseline plus home field %.4f, got %.4f", want, r.Overall)
	}
	if r.UsableComponents() != 1 {
		t.Fatalf("expected only home field usable, got %d", r.UsableComponents())
	}
	for _, name := range []string{models.ComponentOffense, models.ComponentDefense, models.ComponentInjury, models.ComponentMomentum} {
		c, ok := r.Component(name)
		if !ok || !c.Missing || c.Contribution != 0 {
			t.Errorf("expected %s zeroed and flagged missing, got %+v", name, c)
		}
	}
}

func TestComputeRatingPartialBundle(t *testing.T) {
	e := newNFLEngine(t, nil)
	off := &models.ComponentMetrics{ScoringRate: f(24.2)}
	r := e.ComputeRating("BUF", off, nil, nil, nil)
	c, _ := r.Component(models.ComponentOffense)
	if c.Missing {
		t.Fatalf("expected offense usable with scoring only")
	}
	if math.Abs(c.Raw-0.6*10) > 1e-9 {
		t.Fatalf("expected raw 6, got %f", c.Raw)
	}
}

func TestComputeRatingBounds(t *testing.T) {
	for _, l := range league.Defaults() {
		e, err := NewEngine(l, nil)
		if err != nil {
			t.Fatalf("league %s: %v", l.Code, err)
		}
		inputs := []struct {
			scoring, allowed float64
			streak           int
			winning          bool
			injury           float64
		}{
			{1000, 0, 20, true, 0},
			{0, 1000, 20, false, 500},
			{l.Rating.AvgScoringRate, l.Rating.AvgScoringRate, 0, true, 0},
		}
		for _, in := range inputs {
			off := &models.ComponentMetrics{ScoringRate: f(in.scoring), YardageRate: f(in.scoring), EfficiencyRate: f(in.scoring)}
			def := &models.ComponentMetrics{ScoringRate: f(in.allowed), YardageRate: f(in.allowed), EfficiencyRate: f(in.allowed)}
			inj := &models.InjuryImpact{Out: models.InjuryTier{Count: 3, ImpactPoints: in.injury}}
			status := &models.TeamStatus{Wins: 10, Losses: 1, Streak: in.streak, StreakWinning: in.winning}
			r := e.ComputeRating("T", off, def, inj, status)
			if r.Overall < l.Rating.Min || r.Overall > l.Rating.Max {
				t.Fatalf("league %s: rating %f outside [%f, %f]", l.Code, r.Overall, l.Rating.Min, l.Rating.Max)
			}
		}
	}
}

func TestInjuryComponentFloor(t *testing.T) {
	e := newNFLEngine(t, nil)
	inj := &models.InjuryImpact{Out: models.InjuryTier{Count: 6, ImpactPoints: 40}}
	r := e.ComputeRating("T", nil, nil, inj, nil)
	c, _ := r.Component(models.ComponentInjury)
	if c.Raw != -10 {
		t.Fatalf("expected injury floored at -10, got %f", c.Raw)
	}
}

func TestMomentumStreakCap(t *testing.T) {
	e := newNFLEngine(t, nil)
	status := &models.TeamStatus{Wins: 5, Losses: 5, Streak: 9, StreakWinning: false}
	r := e.ComputeRating("T", nil, nil, nil, status)
	c, _ := r.Component(models.ComponentMomentum)
	if c.Raw != -2.5 {
		t.Fatalf("expected capped losing streak -2.5, got %f", c.Raw)
	}
}

func TestRateSnapshotExternalDifferentialAndStore(t *testing.T) {
	store := NewStore()
	e := newNFLEngine(t, store)
	snap := models.TeamSnapshot{
		Team:              "PHI",
		League:            league.NFL,
		Season:            2023,
		Period:            "2023-W11",
		AsOf:              time.Date(2023, 11, 14, 0, 0, 0, 0, time.UTC),
		Offense:           &models.ComponentMetrics{ScoringRate: f(26.4)},
		ExternalReference: f(85),
	}

	first := e.RateSnapshot(snap)
	if first.ExternalDifferential == nil {
		t.Fatalf("expected external differential")
	}
	if math.Abs(*first.ExternalDifferential-(first.Overall-85)) > 1e-9 {
		t.Fatalf("unexpected differential %f", *first.ExternalDifferential)
	}

	snap.Offense = &models.ComponentMetrics{ScoringRate: f(10)}
	second := e.RateSnapshot(snap)
	if second.Overall != first.Overall {
		t.Fatalf("expected memoized rating for same period")
	}

	snap.Period = "2023-W12"
	snap.AsOf = snap.AsOf.AddDate(0, 0, 7)
	third := e.RateSnapshot(snap)
	if third.Overall == first.Overall {
		t.Fatalf("expected new period to produce a new rating")
	}
	if store.Len() != 2 {
		t.Fatalf("expected two stored periods, got %d", store.Len())
	}
	latest, ok := store.Latest(league.NFL, "PHI")
	if !ok || latest.Period != "2023-W12" {
		t.Fatalf("expected latest period 2023-W12, got %+v", latest)
	}
	old, ok := store.Get(league.NFL, 2023, "PHI", "2023-W11", first.AsOf)
	if !ok || old.Overall != first.Overall {
		t.Fatalf("expected older period untouched")
	}
}

func TestRateSnapshotKeyedBySeasonAndTime(t *testing.T) {
	store := NewStore()
	e := newNFLEngine(t, store)

	strong := models.TeamSnapshot{
		Team:    "KC",
		League:  league.NFL,
		Season:  2023,
		Period:  "W09",
		AsOf:    time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC),
		Offense: &models.ComponentMetrics{ScoringRate: f(31), YardageRate: f(6.4)},
		Defense: &models.ComponentMetrics{ScoringRate: f(15), YardageRate: f(4.5)},
	}
	weak := strong
	weak.Season = 2022
	weak.AsOf = time.Date(2022, 11, 2, 0, 0, 0, 0, time.UTC)
	weak.Offense = &models.ComponentMetrics{ScoringRate: f(16), YardageRate: f(4.6)}
	weak.Defense = &models.ComponentMetrics{ScoringRate: f(27), YardageRate: f(6.1)}

	rated2023 := e.RateSnapshot(strong)
	rated2022 := e.RateSnapshot(weak)
	fresh2022 := newNFLEngine(t, nil).RateSnapshot(weak)

	if rated2022.Overall == rated2023.Overall {
		t.Fatalf("2022 snapshot rated with the 2023 rating %.3f", rated2023.Overall)
	}
	if math.Abs(rated2022.Overall-fresh2022.Overall) > 1e-9 {
		t.Fatalf("expected %.3f from a fresh engine, got %.3f", fresh2022.Overall, rated2022.Overall)
	}
	if rated2022.Season != 2022 || !rated2022.AsOf.Equal(weak.AsOf) {
		t.Fatalf("expected rating stamped with its snapshot, got season %d at %s", rated2022.Season, rated2022.AsOf)
	}

	// a later snapshot in the same season and period is rated, not served stale
	revised := strong
	revised.AsOf = strong.AsOf.Add(24 * time.Hour)
	revised.Offense = &models.ComponentMetrics{ScoringRate: f(20), YardageRate: f(5)}
	if again := e.RateSnapshot(revised); again.Overall == rated2023.Overall {
		t.Fatalf("expected revised snapshot to produce a new rating")
	}

	latest, ok := store.Latest(league.NFL, "KC")
	if !ok || latest.Season != 2023 || !latest.AsOf.Equal(revised.AsOf) {
		t.Fatalf("expected newest 2023 rating as latest, got %+v", latest)
	}
	if store.Len() != 3 {
		t.Fatalf("expected three stored ratings, got %d", store.Len())
	}
}

func TestPowerRatingRoundTrip(t *testing.T) {
	e := newNFLEngine(t, nil)
	off := &models.ComponentMetrics{ScoringRate: f(23.123456), YardageRate: f(5.61)}
	r := e.ComputeRating("DAL", off, nil, nil, &models.TeamStatus{Wins: 3, Losses: 1, Streak: 2, StreakWinning: true})
	diff := 1.234567
	r.ExternalDifferential = &diff

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back models.PowerRating
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if math.Abs(back.Overall-r.Overall) > 1e-6 || len(back.Components) != len(r.Components) {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, r)
	}
	for i := range r.Components {
		a, b := r.Components[i], back.Components[i]
		if a.Name != b.Name || a.Missing != b.Missing || math.Abs(a.Raw-b.Raw) > 1e-6 ||
			math.Abs(a.Weight-b.Weight) > 1e-6 || math.Abs(a.Contribution-b.Contribution) > 1e-6 {
			t.Fatalf("component %s mismatch: %+v vs %+v", a.Name, a, b)
		}
	}
	if math.Abs(*back.ExternalDifferential-diff) > 1e-6 {
		t.Fatalf("differential mismatch")
	}
}

func TestNewEngineRejectsBadLeague(t *testing.T) {
	l := league.DefaultNFL()
	l.Rating.Weights.Injury = 0.9
	if _, err := NewEngine(l, nil); err == nil {
		t.Fatalf("expected configuration error")
	}
}
