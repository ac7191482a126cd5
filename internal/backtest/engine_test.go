package backtest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/line-edge/internal/edge"
	"github.com/yourusername/line-edge/internal/logger"
	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/repository"
	"github.com/yourusername/line-edge/internal/strategy"
)

type fakeGameRepo struct{ games []*models.HistoricalGame }

func (r *fakeGameRepo) GetByID(ctx context.Context, id string) (*models.HistoricalGame, error) {
	for _, g := range r.games {
		if g.MatchupID == id {
			return g, nil
		}
	}
	return nil, models.ErrNotFound
}
func (r *fakeGameRepo) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.HistoricalGame, error) {
	return r.games, nil
}
func (r *fakeGameRepo) GetBySeason(ctx context.Context, league string, season int) ([]*models.HistoricalGame, error) {
	return nil, nil
}
func (r *fakeGameRepo) GetUpcoming(ctx context.Context, asOf time.Time) ([]*models.HistoricalGame, error) {
	return nil, nil
}

type fakeSnapshotRepo struct {
	mu      sync.Mutex
	lookups map[string]time.Time
}

func (r *fakeSnapshotRepo) GetAsOf(ctx context.Context, league, team string, asOf time.Time) (*models.TeamSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookups == nil {
		r.lookups = make(map[string]time.Time)
	}
	r.lookups[team] = asOf
	return nil, models.ErrNotFound
}
func (r *fakeSnapshotRepo) GetHistory(ctx context.Context, league, team string) ([]*models.TeamSnapshot, error) {
	return nil, nil
}

// play scripts the strategy's answer for one matchup
type play struct {
	side     models.Side
	fraction float64
	err      error
	panics   bool
}

type scriptedStrategy struct {
	plays map[string]play

	mu   sync.Mutex
	seen []string
}

func (s *scriptedStrategy) Name() string { return "scripted" }

func (s *scriptedStrategy) Evaluate(ctx context.Context, sctx strategy.Context) (strategy.Signal, error) {
	g := sctx.Game
	s.mu.Lock()
	s.seen = append(s.seen, g.MatchupID)
	s.mu.Unlock()

	if g.Closing != nil || g.IsCompleted() {
		return strategy.Signal{}, fmt.Errorf("lookahead: %s", g.MatchupID)
	}
	p, ok := s.plays[g.MatchupID]
	if !ok {
		return strategy.Signal{Result: edge.Result{NoEdge: &models.NoEdge{MatchupID: g.MatchupID, Reason: models.NoEdgeBelowThreshold}}}, nil
	}
	if p.panics {
		panic("scripted panic")
	}
	if p.err != nil {
		return strategy.Signal{}, p.err
	}
	e := &models.Edge{
		MatchupID:     g.MatchupID,
		League:        g.League,
		MarketLine:    g.Opening.Spread,
		Magnitude:     5,
		Tier:          models.TierStrong,
		Side:          p.side,
		Confidence:    60,
		StakeFraction: p.fraction,
	}
	return strategy.Signal{Result: edge.Result{Edge: e}, Odds: -110}, nil
}

func (s *scriptedStrategy) ShouldBet(signal strategy.Signal) bool { return signal.Found() }

func (s *scriptedStrategy) CalculateStake(signal strategy.Signal, bankroll decimal.Decimal) decimal.Decimal {
	return bankroll.Mul(decimal.NewFromFloat(signal.Edge.StakeFraction)).RoundDown(2)
}

func (s *scriptedStrategy) GetParameters() map[string]interface{} { return map[string]interface{}{} }

var day0 = time.Date(2023, 9, 10, 17, 0, 0, 0, time.UTC)

func game(id, leagueCode string, season, day, away, home int, opening float64) *models.HistoricalGame {
	date := day0.AddDate(0, 0, day)
	open := date.Add(-48 * time.Hour)
	return &models.HistoricalGame{
		MatchupID: id,
		League:    leagueCode,
		Season:    season,
		Date:      date,
		AwayTeam:  "A" + id,
		HomeTeam:  "H" + id,
		AwayScore: &away,
		HomeScore: &home,
		Opening:   &models.MarketLine{MatchupID: id, Spread: opening, Kind: models.SnapshotOpening, Timestamp: open},
	}
}

func newTestEngine(t *testing.T, games []*models.HistoricalGame, strat strategy.Strategy) (*Engine, *fakeSnapshotRepo) {
	t.Helper()
	snaps := &fakeSnapshotRepo{}
	repos := &repository.Repositories{Games: &fakeGameRepo{games: games}, Snapshots: snaps}
	engine, err := NewEngine(DefaultConfig(), repos, strat, logger.Discard())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine, snaps
}

func TestProfitSumEqualsBankrollChange(t *testing.T) {
	games := []*models.HistoricalGame{
		game("g1", "NFL", 2023, 0, 24, 20, -3),
		game("g2", "NFL", 2023, 7, 10, 27, 1.5),
		game("g3", "NFL", 2023, 14, 17, 17, 0),
		game("g4", "NBA", 2023, 1, 101, 99, 2),
		game("g5", "NBA", 2023, 2, 88, 110, -4.5),
	}
	strat := &scriptedStrategy{plays: map[string]play{
		"g1": {side: models.SideAway, fraction: 0.03},
		"g2": {side: models.SideAway, fraction: 0.0337},
		"g3": {side: models.SideHome, fraction: 0.02},
		"g4": {side: models.SideHome, fraction: 0.05},
		"g5": {side: models.SideHome, fraction: 0.041},
	}}
	engine, _ := newTestEngine(t, games, strat)

	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(summary.Streams) != 2 {
		t.Fatalf("expected 2 streams, got %d", len(summary.Streams))
	}
	if len(summary.Ledger) != 5 {
		t.Fatalf("expected 5 bets, got %d", len(summary.Ledger))
	}

	total := decimal.Zero
	for _, b := range summary.Ledger {
		total = total.Add(b.Profit)
	}
	change := summary.EndingBankroll().Sub(summary.StartingBankroll())
	if !total.Equal(change) {
		t.Fatalf("profit %s != bankroll change %s", total, change)
	}
	if !summary.Metrics.TotalProfit.Equal(change) {
		t.Fatalf("metrics profit %s != bankroll change %s", summary.Metrics.TotalProfit, change)
	}

	for _, st := range summary.Streams {
		streamTotal := decimal.Zero
		for _, b := range st.Bets {
			streamTotal = streamTotal.Add(b.Profit)
		}
		if !streamTotal.Equal(st.EndingBankroll.Sub(st.StartingBankroll)) {
			t.Fatalf("stream %s: profit %s != %s", st.Key, streamTotal, st.EndingBankroll.Sub(st.StartingBankroll))
		}
		if !st.StartingBankroll.Equal(decimal.NewFromInt(10000)) {
			t.Fatalf("stream %s should start at the initial bankroll, got %s", st.Key, st.StartingBankroll)
		}
	}
}

func TestChronologicalCompounding(t *testing.T) {
	// supplied out of order; the stream must replay g1 before g2
	games := []*models.HistoricalGame{
		game("g2", "NFL", 2023, 7, 20, 10, 0),
		game("g1", "NFL", 2023, 0, 20, 10, 0),
	}
	strat := &scriptedStrategy{plays: map[string]play{
		"g1": {side: models.SideAway, fraction: 0.05},
		"g2": {side: models.SideAway, fraction: 0.05},
	}}
	engine, _ := newTestEngine(t, games, strat)

	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if strat.seen[0] != "g1" || strat.seen[1] != "g2" {
		t.Fatalf("expected chronological evaluation, got %v", strat.seen)
	}

	first, second := summary.Ledger[0], summary.Ledger[1]
	if !first.Stake.Equal(decimal.RequireFromString("500")) {
		t.Fatalf("expected first stake 500, got %s", first.Stake)
	}
	if !first.Profit.Equal(decimal.RequireFromString("454.55")) {
		t.Fatalf("expected first profit 454.55, got %s", first.Profit)
	}
	// 5% of 10454.55, rounded down to cents
	if !second.Stake.Equal(decimal.RequireFromString("522.72")) {
		t.Fatalf("expected compounded stake 522.72, got %s", second.Stake)
	}
}

func TestGameFailuresAreIsolated(t *testing.T) {
	games := []*models.HistoricalGame{
		game("g1", "NFL", 2023, 0, 20, 10, 0),
		game("g2", "NFL", 2023, 1, 20, 10, 0),
		game("g3", "NFL", 2023, 2, 20, 10, 0),
		game("g4", "NFL", 2023, 3, 20, 10, 0),
	}
	boom := errors.New("boom")
	strat := &scriptedStrategy{plays: map[string]play{
		"g1": {side: models.SideAway, fraction: 0.02},
		"g2": {err: boom},
		"g3": {panics: true},
		"g4": {side: models.SideAway, fraction: 0.02},
	}}
	engine, _ := newTestEngine(t, games, strat)

	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Failures != 2 || len(summary.Errors) != 2 {
		t.Fatalf("expected 2 failures, got %d (%d errors)", summary.Failures, len(summary.Errors))
	}
	if len(summary.Ledger) != 2 {
		t.Fatalf("expected the remaining 2 games graded, got %d", len(summary.Ledger))
	}
	states := map[string]GameState{}
	for _, tr := range summary.Traces {
		states[tr.MatchupID] = tr.State
	}
	if states["g2"] != GameFailed || states["g3"] != GameFailed {
		t.Fatalf("expected failed traces, got %v", states)
	}
	if states["g4"] != GameGraded {
		t.Fatalf("game after failures should be graded, got %s", states["g4"])
	}
	if summary.Errors[0].Stage != "analyze" {
		t.Fatalf("expected analyze stage, got %s", summary.Errors[0].Stage)
	}
}

func TestClosingLineUsedOnlyForCLV(t *testing.T) {
	// away +3 at open, +1 at close; a 2-point away loss covers only the opening number
	g := game("g1", "NFL", 2023, 0, 17, 19, -3)
	g.Closing = &models.MarketLine{MatchupID: "g1", Spread: -1, Kind: models.SnapshotClosing, Timestamp: g.Date.Add(-time.Hour)}
	strat := &scriptedStrategy{plays: map[string]play{"g1": {side: models.SideAway, fraction: 0.02}}}
	engine, snaps := newTestEngine(t, []*models.HistoricalGame{g}, strat)

	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Failures != 0 {
		t.Fatalf("strategy saw post-open data: %+v", summary.Errors)
	}
	bet := summary.Ledger[0]
	if bet.Result != models.BetResultWin {
		t.Fatalf("expected win graded at the opening line, got %s", bet.Result)
	}
	if bet.CLV == nil || *bet.CLV != 2 {
		t.Fatalf("expected CLV 2, got %v", bet.CLV)
	}
	if g.Closing == nil || g.AwayScore == nil {
		t.Fatalf("replay must not mutate corpus games")
	}
	if got := snaps.lookups[g.AwayTeam]; !got.Equal(g.Opening.Timestamp) {
		t.Fatalf("expected snapshot lookup at %s, got %s", g.Opening.Timestamp, got)
	}
}

func TestScheduledGamesAreSkipped(t *testing.T) {
	g := game("g1", "NFL", 2023, 0, 0, 0, 0)
	g.AwayScore, g.HomeScore = nil, nil
	strat := &scriptedStrategy{plays: map[string]play{"g1": {side: models.SideAway, fraction: 0.02}}}
	engine, _ := newTestEngine(t, []*models.HistoricalGame{g}, strat)

	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(strat.seen) != 0 {
		t.Fatalf("scheduled game should not be evaluated")
	}
	if summary.Traces[0].State != GameScheduled || summary.GamesSkipped != 1 {
		t.Fatalf("expected scheduled skip, got %+v", summary.Traces[0])
	}
}

func TestLeagueSelection(t *testing.T) {
	games := []*models.HistoricalGame{
		game("g1", "NFL", 2023, 0, 20, 10, 0),
		game("g2", "NBA", 2023, 0, 90, 80, 0),
	}
	strat := &scriptedStrategy{plays: map[string]play{}}
	engine, _ := newTestEngine(t, games, strat)
	engine.config.Leagues = []string{"NBA"}

	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(summary.Streams) != 1 || summary.Streams[0].League != "NBA" {
		t.Fatalf("expected only the NBA stream, got %+v", summary.Streams)
	}
	if summary.GamesAnalyzed != 1 {
		t.Fatalf("expected 1 analyzed game, got %d", summary.GamesAnalyzed)
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	games := []*models.HistoricalGame{game("g1", "NFL", 2023, 0, 20, 10, 0)}
	engine, _ := newTestEngine(t, games, &scriptedStrategy{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := engine.RunStreams(ctx, games); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewEngineValidation(t *testing.T) {
	repos := &repository.Repositories{Games: &fakeGameRepo{}, Snapshots: &fakeSnapshotRepo{}}
	if _, err := NewEngine(DefaultConfig(), nil, &scriptedStrategy{}, nil); err == nil {
		t.Fatalf("expected error without repositories")
	}
	if _, err := NewEngine(DefaultConfig(), repos, nil, nil); err == nil {
		t.Fatalf("expected error without strategy")
	}
	cfg := DefaultConfig()
	cfg.Concurrency = 0
	if _, err := NewEngine(cfg, repos, &scriptedStrategy{}, nil); err == nil {
		t.Fatalf("expected error for zero concurrency")
	}
}
