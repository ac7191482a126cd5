package backtest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/line-edge/internal/logger"
	"github.com/yourusername/line-edge/internal/metrics"
	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/repository"
	"github.com/yourusername/line-edge/internal/strategy"
)

// GameState is the replay state of one historical game
type GameState string

const (
	GameScheduled GameState = "SCHEDULED"
	GameCompleted GameState = "COMPLETED"
	GameAnalyzed  GameState = "ANALYZED"
	GameGraded    GameState = "GRADED"
	GameFailed    GameState = "FAILED"
)

// GameTrace records how far a game got through the replay and why it stopped
type GameTrace struct {
	MatchupID string     `json:"matchup_id"`
	League    string     `json:"league"`
	Stream    string     `json:"stream"`
	State     GameState  `json:"state"`
	Reason    string     `json:"reason,omitempty"`
	EdgeFound bool       `json:"edge_found"`
	BetID     *uuid.UUID `json:"bet_id,omitempty"`
}

// GameError is an isolated per-game failure
type GameError struct {
	MatchupID string `json:"matchup_id"`
	Stream    string `json:"stream"`
	Stage     string `json:"stage"`
	Message   string `json:"error"`
	err       error
}

func (e *GameError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.MatchupID, e.Stage, e.Message)
}

func (e *GameError) Unwrap() error {
	return e.err
}

// StreamResult is the outcome of one league+season stream
type StreamResult struct {
	Key              string              `json:"key"`
	League           string              `json:"league"`
	Season           int                 `json:"season"`
	StartingBankroll decimal.Decimal     `json:"starting_bankroll"`
	EndingBankroll   decimal.Decimal     `json:"ending_bankroll"`
	Games            int                 `json:"games"`
	Bets             []*models.BetRecord `json:"bets"`
	EquityCurve      EquityCurve         `json:"equity_curve"`
	Metrics          PerformanceMetrics  `json:"metrics"`
}

// Summary is the read-only result of a replay
type Summary struct {
	RunID           uuid.UUID           `json:"run_id"`
	Strategy        strategy.Metadata   `json:"strategy"`
	ParameterHash   string              `json:"parameter_hash"`
	StartedAt       time.Time           `json:"started_at"`
	FinishedAt      time.Time           `json:"finished_at"`
	InitialBankroll decimal.Decimal     `json:"initial_bankroll"`
	Streams         []StreamResult      `json:"streams"`
	Ledger          []*models.BetRecord `json:"ledger"`
	Metrics         PerformanceMetrics  `json:"metrics"`
	Segments        Segments            `json:"segments"`
	GamesProcessed  int                 `json:"games_processed"`
	GamesSkipped    int                 `json:"games_skipped"`
	GamesAnalyzed   int                 `json:"games_analyzed"`
	Failures        int                 `json:"failures"`
	Errors          []GameError         `json:"errors"`
	Traces          []GameTrace         `json:"traces"`
}

// StartingBankroll is the combined starting capital of every stream
func (s *Summary) StartingBankroll() decimal.Decimal {
	total := decimal.Zero
	for _, st := range s.Streams {
		total = total.Add(st.StartingBankroll)
	}
	return total
}

// EndingBankroll is the combined ending capital of every stream
func (s *Summary) EndingBankroll() decimal.Decimal {
	total := decimal.Zero
	for _, st := range s.Streams {
		total = total.Add(st.EndingBankroll)
	}
	return total
}

// Engine replays historical games through a strategy
type Engine struct {
	config       BacktestConfig
	repositories *repository.Repositories
	strategy     strategy.Strategy
	logger       *logrus.Logger
	btLogger     *logger.BacktestLogger
	edgeLogger   *logger.EdgeLogger
}

// NewEngine creates a new backtesting engine
func NewEngine(cfg BacktestConfig, repos *repository.Repositories, strat strategy.Strategy, log *logrus.Logger) (*Engine, error) {
	if repos == nil || repos.Games == nil || repos.Snapshots == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if strat == nil {
		return nil, fmt.Errorf("strategy is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backtest config: %w", err)
	}
	if log == nil {
		log = logrus.New()
	}

	return &Engine{
		config:       cfg,
		repositories: repos,
		strategy:     strat,
		logger:       log,
		btLogger:     logger.NewBacktestLogger(log),
		edgeLogger:   logger.NewEdgeLogger(log),
	}, nil
}

// WithStrategy returns an engine sharing config and sources but replaying a
// different strategy
func (e *Engine) WithStrategy(strat strategy.Strategy) *Engine {
	next := *e
	next.strategy = strat
	return &next
}

// Config returns the backtest configuration
func (e *Engine) Config() BacktestConfig {
	return e.config
}

// Strategy returns the strategy being replayed
func (e *Engine) Strategy() strategy.Strategy {
	return e.strategy
}

// Logger returns the engine logger
func (e *Engine) Logger() *logrus.Logger {
	return e.logger
}

// Repositories returns the repository container
func (e *Engine) Repositories() *repository.Repositories {
	return e.repositories
}

// LoadGames returns the configured window's games for the selected leagues in
// chronological order
func (e *Engine) LoadGames(ctx context.Context) ([]*models.HistoricalGame, error) {
	games, err := e.repositories.Games.GetByDateRange(ctx, e.config.StartDate, e.config.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}
	selected := make([]*models.HistoricalGame, 0, len(games))
	for _, g := range games {
		if e.config.includes(g.League) {
			selected = append(selected, g)
		}
	}
	return selected, nil
}

// Run replays the configured window
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	games, err := e.LoadGames(ctx)
	if err != nil {
		metrics.RecordBacktestRun("replay", "error")
		return nil, err
	}
	summary, err := e.RunStreams(ctx, games)
	if err != nil {
		metrics.RecordBacktestRun("replay", "error")
		return nil, err
	}
	metrics.RecordBacktestRun("replay", "success")
	return summary, nil
}

type streamOutcome struct {
	result StreamResult
	traces []GameTrace
	errors []GameError
}

// RunStreams partitions games into league+season streams and replays them
// concurrently. Each stream starts at the initial bankroll and is processed
// strictly in date order. Only context cancellation aborts the run.
func (e *Engine) RunStreams(ctx context.Context, games []*models.HistoricalGame) (*Summary, error) {
	startedAt := time.Now().UTC()
	runID := uuid.New()

	streams := partitionStreams(games, e.config.includes)
	keys := make([]string, 0, len(streams))
	total := 0
	for k, s := range streams {
		keys = append(keys, k)
		total += len(s)
	}
	sort.Strings(keys)

	e.btLogger.LogRunStarted(runID.String(), e.strategy.Name(), total, len(keys))

	outcomes := make([]streamOutcome, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Concurrency)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			outcome, err := e.runStream(gctx, runID, key, streams[key])
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("backtest run %s: %w", runID, err)
	}

	summary := &Summary{
		RunID:           runID,
		Strategy:        strategy.Describe(e.strategy, "1"),
		ParameterHash:   HashParameters(e.strategy.GetParameters()),
		StartedAt:       startedAt,
		InitialBankroll: e.config.InitialBankroll,
		Streams:         make([]StreamResult, 0, len(outcomes)),
		Errors:          []GameError{},
		Traces:          make([]GameTrace, 0, total),
	}
	for _, o := range outcomes {
		summary.Streams = append(summary.Streams, o.result)
		summary.Ledger = append(summary.Ledger, o.result.Bets...)
		summary.Traces = append(summary.Traces, o.traces...)
		summary.Errors = append(summary.Errors, o.errors...)
	}
	sortLedger(summary.Ledger)

	for _, t := range summary.Traces {
		summary.GamesProcessed++
		switch t.State {
		case GameScheduled, GameCompleted:
			summary.GamesSkipped++
		case GameAnalyzed, GameGraded:
			summary.GamesAnalyzed++
		case GameFailed:
			summary.Failures++
		}
	}

	pooledStart := summary.StartingBankroll()
	if len(summary.Streams) == 0 {
		pooledStart = e.config.InitialBankroll
	}
	summary.Metrics = CalculateMetrics(summary.Ledger, pooledStart, e.config.RiskFreeRate)
	summary.Segments = SegmentLedger(summary.Ledger, pooledStart, e.config.RiskFreeRate)
	summary.FinishedAt = time.Now().UTC()

	duration := summary.FinishedAt.Sub(startedAt)
	metrics.RecordBacktestDuration(duration.Seconds())
	e.btLogger.LogRunCompleted(runID.String(), summary.Metrics.TotalBets, summary.Failures,
		summary.Metrics.ROI, summary.Metrics.WinRate, duration)

	return summary, nil
}

func (e *Engine) runStream(ctx context.Context, runID uuid.UUID, key string, games []*models.HistoricalGame) (streamOutcome, error) {
	first := games[0]
	state := NewBacktestState(key, e.config.InitialBankroll, first.Date)
	outcome := streamOutcome{traces: make([]GameTrace, 0, len(games))}

	for _, g := range games {
		if err := ctx.Err(); err != nil {
			return streamOutcome{}, err
		}
		trace, gameErr := e.processGame(ctx, state, g)
		outcome.traces = append(outcome.traces, trace)
		if gameErr != nil {
			outcome.errors = append(outcome.errors, *gameErr)
			metrics.RecordGameFailure(g.League)
			e.btLogger.LogGameFailure(runID.String(), key, g.MatchupID, gameErr.Stage, gameErr)
		}
	}

	outcome.result = StreamResult{
		Key:              key,
		League:           first.League,
		Season:           first.Season,
		StartingBankroll: state.StartingBankroll,
		EndingBankroll:   state.CurrentBankroll,
		Games:            len(games),
		Bets:             state.Bets,
		EquityCurve:      state.EquityCurve,
		Metrics:          CalculateMetrics(state.Bets, state.StartingBankroll, e.config.RiskFreeRate),
	}
	metrics.UpdateStreamBankroll(key, state.CurrentBankroll.InexactFloat64())
	e.btLogger.LogStreamCompleted(runID.String(), key, len(state.Bets),
		state.StartingBankroll.StringFixed(2), state.CurrentBankroll.StringFixed(2))
	return outcome, nil
}

// processGame advances one game through SCHEDULED, COMPLETED, ANALYZED and
// GRADED. Panics and errors are converted into a GameError for the caller.
func (e *Engine) processGame(ctx context.Context, state *BacktestState, g *models.HistoricalGame) (trace GameTrace, gameErr *GameError) {
	trace = GameTrace{MatchupID: g.MatchupID, League: g.League, Stream: state.Stream, State: GameScheduled}
	stage := "load"

	defer func() {
		if r := recover(); r != nil {
			gameErr = &GameError{MatchupID: g.MatchupID, Stream: state.Stream, Stage: stage, Message: fmt.Sprintf("panic: %v", r)}
		}
		if gameErr != nil {
			trace.State = GameFailed
			trace.Reason = gameErr.Message
		}
		metrics.RecordGameProcessed(g.League, string(trace.State))
	}()

	fail := func(err error) *GameError {
		return &GameError{MatchupID: g.MatchupID, Stream: state.Stream, Stage: stage, Message: err.Error(), err: err}
	}

	if !g.IsCompleted() {
		trace.Reason = "no final result"
		return trace, nil
	}
	trace.State = GameCompleted

	decision := strategy.DecisionTime(g)
	stage = "snapshots"
	away, err := e.snapshotAsOf(ctx, g.League, g.AwayTeam, decision)
	if err != nil {
		return trace, fail(err)
	}
	home, err := e.snapshotAsOf(ctx, g.League, g.HomeTeam, decision)
	if err != nil {
		return trace, fail(err)
	}

	stage = "analyze"
	signal, err := e.strategy.Evaluate(ctx, strategy.Context{
		Game:         strategy.PreGameView(g),
		AwaySnapshot: away,
		HomeSnapshot: home,
		CurrentTime:  decision,
	})
	if err != nil {
		var missing *models.MissingDataError
		if errors.As(err, &missing) {
			trace.Reason = err.Error()
			return trace, nil
		}
		return trace, fail(err)
	}
	trace.State = GameAnalyzed
	trace.EdgeFound = signal.Found()
	e.recordSignal(g, signal)

	if !e.strategy.ShouldBet(signal) {
		metrics.RecordStrategyDecision(e.strategy.Name(), "pass")
		trace.Reason = signal.Reasoning
		return trace, nil
	}
	stake := e.strategy.CalculateStake(signal, state.CurrentBankroll)
	if !stake.IsPositive() {
		metrics.RecordStrategyDecision(e.strategy.Name(), "pass")
		trace.Reason = "stake rounds to zero"
		return trace, nil
	}
	metrics.RecordStrategyDecision(e.strategy.Name(), "bet")
	e.edgeLogger.LogStakeSized(g.MatchupID, signal.Edge.StakeFraction,
		state.CurrentBankroll.StringFixed(2), stake.StringFixed(2))

	stage = "grade"
	bet := models.NewBetRecord(*signal.Edge, g.League, g.Season, g.Date, stake, signal.Odds, decision)
	if err := bet.Grade(*g.AwayScore, *g.HomeScore, g.Closing, g.Date); err != nil {
		return trace, fail(err)
	}
	state.UpdateState(bet)

	trace.State = GameGraded
	trace.BetID = &bet.ID
	trace.Reason = signal.Reasoning
	metrics.RecordBetGraded(g.League, string(bet.Result))
	e.btLogger.LogBetGraded(bet.ID.String(), g.MatchupID, string(bet.Result),
		bet.Stake.StringFixed(2), bet.Profit.StringFixed(2), state.CurrentBankroll.StringFixed(2))
	return trace, nil
}

// snapshotAsOf returns nil without error when the team has no snapshot yet
func (e *Engine) snapshotAsOf(ctx context.Context, league, team string, asOf time.Time) (*models.TeamSnapshot, error) {
	snap, err := e.repositories.Snapshots.GetAsOf(ctx, league, team, asOf)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot %s/%s: %w", league, team, err)
	}
	return snap, nil
}

func (e *Engine) recordSignal(g *models.HistoricalGame, signal strategy.Signal) {
	if signal.Found() {
		ed := signal.Edge
		metrics.RecordEdge(g.League, string(ed.Tier), ed.Magnitude)
		metrics.RecordStrategyConfidence(e.strategy.Name(), ed.Confidence)
		e.edgeLogger.LogEdgeDetected(g.MatchupID, g.League, string(ed.Side), string(ed.Tier),
			ed.PredictedLine, ed.MarketLine, ed.Magnitude, ed.Confidence, ed.StakeFraction)
		return
	}
	if signal.NoEdge != nil {
		metrics.RecordNoEdge(g.League, string(signal.NoEdge.Reason))
		e.edgeLogger.LogNoEdge(g.MatchupID, g.League, string(signal.NoEdge.Reason), signal.NoEdge.Detail)
	}
}

// partitionStreams groups selected games by league+season, each stream
// ordered by date then matchup id
func partitionStreams(games []*models.HistoricalGame, include func(string) bool) map[string][]*models.HistoricalGame {
	streams := make(map[string][]*models.HistoricalGame)
	for _, g := range games {
		if g == nil || !include(g.League) {
			continue
		}
		key := g.StreamKey()
		streams[key] = append(streams[key], g)
	}
	for _, s := range streams {
		sort.SliceStable(s, func(i, j int) bool {
			if !s[i].Date.Equal(s[j].Date) {
				return s[i].Date.Before(s[j].Date)
			}
			return s[i].MatchupID < s[j].MatchupID
		})
	}
	return streams
}

func sortLedger(ledger []*models.BetRecord) {
	sort.SliceStable(ledger, func(i, j int) bool {
		if !ledger[i].GameDate.Equal(ledger[j].GameDate) {
			return ledger[i].GameDate.Before(ledger[j].GameDate)
		}
		return ledger[i].Edge.MatchupID < ledger[j].Edge.MatchupID
	})
}
