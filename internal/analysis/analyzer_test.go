package analysis

import (
	"context"
	"io"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/line-edge/internal/league"
	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/rating"
	"github.com/yourusername/line-edge/internal/repository"
	"github.com/yourusername/line-edge/internal/strategy"
)

var asOf = time.Date(2023, 11, 10, 12, 0, 0, 0, time.UTC)

func f(v float64) *float64 { return &v }
func ml(v int) *int { return &v }

func snapshot(team string, scoring, allowed float64, at time.Time) models.TeamSnapshot {
	return models.TeamSnapshot{
		Team:    team,
		League:  league.NFL,
		Season:  2023,
		Period:  "2023-W09",
		AsOf:    at,
		Offense: &models.ComponentMetrics{ScoringRate: f(scoring), YardageRate: f(5.4)},
		Defense: &models.ComponentMetrics{ScoringRate: f(allowed), YardageRate: f(5.4)},
		Status:  &models.TeamStatus{Wins: 6, Losses: 2, Streak: 2, StreakWinning: true},
	}
}

func upcoming(id, away, home string, opening *models.MarketLine) models.HistoricalGame {
	return models.HistoricalGame{
		MatchupID: id,
		League:    league.NFL,
		Season:    2023,
		Week:      10,
		Date:      time.Date(2023, 11, 12, 18, 0, 0, 0, time.UTC),
		AwayTeam:  away,
		HomeTeam:  home,
		Opening:   opening,
	}
}

func slateFixture(t *testing.T) *repository.Repositories {
	t.Helper()
	open := asOf.Add(-48 * time.Hour)

	edgeGame := upcoming("2023-W10-KC-MIA", "KC", "MIA", &models.MarketLine{
		MatchupID: "2023-W10-KC-MIA", Spread: -1, Kind: models.SnapshotOpening, Timestamp: open,
		AwayMoneyline: ml(105), HomeMoneyline: ml(-125),
	})
	edgeGame.HomeInjuries = &models.InjurySnapshot{Team: "MIA", AsOf: open, Players: []models.PlayerInjury{
		{Player: "WR1", Position: "WR", Severity: models.SeverityOut},
		{Player: "CB2", Position: "CB", Severity: models.SeverityQuestionable},
	}}

	unrated := upcoming("2023-W10-BUF-NYJ", "BUF", "NYJ", &models.MarketLine{
		MatchupID: "2023-W10-BUF-NYJ", Spread: 3, Kind: models.SnapshotOpening, Timestamp: open,
	})
	noLine := upcoming("2023-W10-DAL-NYG", "DAL", "NYG", nil)

	final := upcoming("2023-W09-KC-DEN", "KC", "DEN", &models.MarketLine{
		MatchupID: "2023-W09-KC-DEN", Spread: 7, Kind: models.SnapshotOpening, Timestamp: open.Add(-7 * 24 * time.Hour),
	})
	final.Date = asOf.Add(-5 * 24 * time.Hour)
	a, h := 24, 9
	final.AwayScore, final.HomeScore = &a, &h

	// published after the analysis time and must not be used
	late := snapshot("MIA", 40, 10, asOf.Add(time.Hour))
	late.Period = "2023-W10"

	corpus := &repository.Corpus{
		Games: []models.HistoricalGame{edgeGame, unrated, noLine, final},
		Snapshots: []models.TeamSnapshot{
			snapshot("KC", 30.8, 17.6, asOf.Add(-24*time.Hour)),
			snapshot("MIA", 19.8, 26.4, asOf.Add(-24*time.Hour)),
			late,
		},
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	store, err := repository.NewStore(corpus, log)
	require.NoError(t, err)
	repos, err := repository.NewRepositories(store)
	require.NoError(t, err)
	return repos
}

func newAnalyzer(t *testing.T, repos *repository.Repositories) *Analyzer {
	t.Helper()
	strat, err := strategy.NewEdgeStrategy(league.DefaultRegistry(), rating.NewStore())
	require.NoError(t, err)
	log := logrus.New()
	log.SetOutput(io.Discard)
	a, err := NewAnalyzer(repos, strat, 2, log)
	require.NoError(t, err)
	return a
}

func TestAnalyzeUpcoming(t *testing.T) {
	a := newAnalyzer(t, slateFixture(t))
	bankroll := decimal.NewFromInt(1000)

	report, err := a.AnalyzeUpcoming(context.Background(), asOf, bankroll)
	require.NoError(t, err)

	require.Len(t, report.Edges, 1)
	require.Len(t, report.Passes, 1)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "2023-W10-DAL-NYG", report.Errors[0].MatchupID)
	assert.Equal(t, models.NoEdgeMissingRating, report.Passes[0].Signal.NoEdge.Reason)

	top := report.Edges[0]
	assert.Equal(t, 1, top.Rank)
	assert.Equal(t, models.SideAway, top.Signal.Edge.Side)
	assert.Equal(t, -1.0, top.Signal.Edge.MarketLine)
	assert.True(t, top.Stake.IsPositive())
	assert.True(t, top.Stake.LessThanOrEqual(decimal.NewFromInt(50)))
	assert.True(t, report.TotalRisk.Equal(top.Stake))

	assert.Greater(t, top.CoverProbability, 0.5)
	assert.Less(t, top.CoverProbability, 1.0)
	assert.LessOrEqual(t, top.KellyFraction, 0.05)

	require.NotNil(t, top.MarketWinProbability)
	pa, _ := models.ImpliedProbability(105)
	ph, _ := models.ImpliedProbability(-125)
	assert.InDelta(t, pa/(pa+ph), *top.MarketWinProbability, 1e-9)

	assert.Nil(t, top.Injuries[0])
	require.NotNil(t, top.Injuries[1])
	assert.Equal(t, 1, top.Injuries[1].Out.Count)
	assert.Equal(t, 1, top.Injuries[1].Questionable.Count)
}

func TestAnalyzeIgnoresOpeningPostedAfterAsOf(t *testing.T) {
	a := newAnalyzer(t, slateFixture(t))

	late := upcoming("2023-W10-KC-MIA", "KC", "MIA", &models.MarketLine{
		MatchupID: "2023-W10-KC-MIA", Spread: -1, Kind: models.SnapshotOpening, Timestamp: asOf.Add(time.Hour),
		AwayMoneyline: ml(105), HomeMoneyline: ml(-125),
	})
	report, err := a.Analyze(context.Background(), []*models.HistoricalGame{&late}, asOf, decimal.NewFromInt(1000))
	require.NoError(t, err)

	assert.Empty(t, report.Edges)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0].Message, "opening")
	assert.True(t, report.TotalRisk.IsZero())

	// the same line is usable once it has been posted
	report, err = a.Analyze(context.Background(), []*models.HistoricalGame{&late}, asOf.Add(2*time.Hour), decimal.NewFromInt(1000))
	require.NoError(t, err)
	require.Len(t, report.Edges, 1)
	require.NotNil(t, report.Edges[0].MarketWinProbability)
}

func TestAnalyzeZeroBankroll(t *testing.T) {
	a := newAnalyzer(t, slateFixture(t))

	report, err := a.AnalyzeUpcoming(context.Background(), asOf, decimal.Zero)
	require.NoError(t, err)
	require.Len(t, report.Edges, 1)
	assert.True(t, report.Edges[0].Stake.IsZero())

	_, err = a.AnalyzeUpcoming(context.Background(), asOf, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestAnalyzeHonoursCancellation(t *testing.T) {
	a := newAnalyzer(t, slateFixture(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.AnalyzeUpcoming(ctx, asOf, decimal.NewFromInt(1000))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewAnalyzerValidation(t *testing.T) {
	repos := slateFixture(t)
	strat, err := strategy.NewEdgeStrategy(league.DefaultRegistry(), nil)
	require.NoError(t, err)

	_, err = NewAnalyzer(nil, strat, 1, nil)
	assert.Error(t, err)
	_, err = NewAnalyzer(repos, nil, 1, nil)
	assert.Error(t, err)
	_, err = NewAnalyzer(repos, strat, 0, nil)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestCoverProbability(t *testing.T) {
	assert.Equal(t, 0.5, CoverProbability(0, 13.5))
	assert.Equal(t, 0.5, CoverProbability(3, 0))

	prev := 0.5
	for m := 0.5; m <= 14; m += 0.5 {
		p := CoverProbability(m, 13.5)
		assert.Greater(t, p, prev)
		prev = p
	}
	// one standard deviation
	assert.InDelta(t, 0.8413, CoverProbability(13.5, 13.5), 1e-4)
}

func TestNoVigProbability(t *testing.T) {
	line := models.MarketLine{AwayMoneyline: ml(-110), HomeMoneyline: ml(-110)}
	p := NoVigProbability(line, models.SideHome)
	require.NotNil(t, p)
	assert.InDelta(t, 0.5, *p, 1e-12)

	assert.Nil(t, NoVigProbability(line, models.SideNone))
	assert.Nil(t, NoVigProbability(models.MarketLine{AwayMoneyline: ml(150)}, models.SideAway))

	line = models.MarketLine{AwayMoneyline: ml(150), HomeMoneyline: ml(-170)}
	away, home := NoVigProbability(line, models.SideAway), NoVigProbability(line, models.SideHome)
	assert.InDelta(t, 1.0, *away+*home, 1e-12)
	assert.True(t, *home > *away)
	assert.False(t, math.IsNaN(*away))
}

func TestRankEdges(t *testing.T) {
	mk := func(id string, conf, mag float64) *MatchupAnalysis {
		a := &MatchupAnalysis{MatchupID: id}
		a.Signal.Edge = &models.Edge{Confidence: conf, Magnitude: mag}
		return a
	}
	edges := []*MatchupAnalysis{mk("c", 60, 4), mk("a", 60, 4), mk("b", 80, 3)}

	rankEdges(edges)
	assert.Equal(t, "b", edges[0].MatchupID)
	assert.Equal(t, "a", edges[1].MatchupID)
	assert.Equal(t, "c", edges[2].MatchupID)
	assert.Equal(t, 3, edges[2].Rank)
}

func staked(id string, stake int64) *MatchupAnalysis {
	a := &MatchupAnalysis{MatchupID: id, Stake: decimal.NewFromInt(stake)}
	a.Signal.Edge = &models.Edge{}
	return a
}

func TestApplyLimits(t *testing.T) {
	bankroll := decimal.NewFromInt(1000)
	edges := []*MatchupAnalysis{staked("a", 80), staked("b", 40), staked("c", 40), staked("d", 0)}
	limits := RiskLimits{MaxStakeFraction: 0.05, MaxExposureFraction: 0.1, MinStake: decimal.NewFromInt(20)}

	m := ApplyLimits(edges, bankroll, limits, nil)

	assert.True(t, edges[0].Stake.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, LimitStakeCap, edges[0].Limited)
	assert.True(t, edges[1].Stake.Equal(decimal.NewFromInt(40)))
	assert.Empty(t, edges[1].Limited)
	// only 10 of the 100 budget left, below the minimum stake
	assert.True(t, edges[2].Stake.IsZero())
	assert.Equal(t, LimitMinStake, edges[2].Limited)
	assert.Empty(t, edges[3].Limited)

	assert.True(t, m.Exposure.Equal(decimal.NewFromInt(90)))
	assert.True(t, m.MaxExposure.Equal(decimal.NewFromInt(100)))
	assert.True(t, m.RemainingCapacity.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 2, m.Bets)
	assert.Equal(t, 1, m.Capped)
	assert.Equal(t, 1, m.Dropped)
}

func TestApplyLimitsExposureTrim(t *testing.T) {
	edges := []*MatchupAnalysis{staked("a", 60), staked("b", 60)}
	m := ApplyLimits(edges, decimal.NewFromInt(1000), RiskLimits{MaxExposureFraction: 0.1}, nil)

	assert.True(t, edges[1].Stake.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, LimitExposure, edges[1].Limited)
	assert.True(t, m.RemainingCapacity.IsZero())
}

func TestApplyLimitsDisabled(t *testing.T) {
	edges := []*MatchupAnalysis{staked("a", 60), staked("b", 60)}
	m := ApplyLimits(edges, decimal.NewFromInt(1000), RiskLimits{}, nil)
	assert.True(t, m.Exposure.Equal(decimal.NewFromInt(120)))
	assert.Zero(t, m.Capped)
}

func TestWithRiskLimits(t *testing.T) {
	a := newAnalyzer(t, slateFixture(t))
	_, err := a.WithRiskLimits(RiskLimits{MaxExposureFraction: 2})
	assert.ErrorIs(t, err, models.ErrConfiguration)

	limited, err := a.WithRiskLimits(RiskLimits{MaxStakeFraction: 0.001})
	require.NoError(t, err)
	report, err := limited.AnalyzeUpcoming(context.Background(), asOf, decimal.NewFromInt(1000))
	require.NoError(t, err)
	require.Len(t, report.Edges, 1)
	assert.True(t, report.Edges[0].Stake.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, LimitStakeCap, report.Edges[0].Limited)
	assert.True(t, report.TotalRisk.Equal(report.Edges[0].Stake))
}
