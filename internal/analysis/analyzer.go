// Package analysis evaluates the upcoming slate with the same rating and
// edge pipeline the backtest replays.
package analysis

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
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/yourusername/line-edge/internal/adjustment"
	"github.com/yourusername/line-edge/internal/league"
	"github.com/yourusername/line-edge/internal/logger"
	"github.com/yourusername/line-edge/internal/metrics"
	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/repository"
	"github.com/yourusername/line-edge/internal/strategy"
)

// Final-margin standard deviation around the spread, per sport. Used only to
// express a spread edge as a cover probability for the Kelly cross-check.
var marginStdDev = map[league.Sport]float64{
	league.SportFootball:   13.5,
	league.SportBasketball: 11.5,
}

// MatchupAnalysis is the analyzer's read on one upcoming game
type MatchupAnalysis struct {
	MatchupID string                  `json:"matchup_id"`
	League    string                  `json:"league"`
	Date      time.Time               `json:"date"`
	AwayTeam  string                  `json:"away_team"`
	HomeTeam  string                  `json:"home_team"`
	Signal    strategy.Signal         `json:"signal"`
	Stake     decimal.Decimal         `json:"stake"`
	Injuries  [2]*models.InjuryImpact `json:"injuries"`
	Sharp     adjustment.SharpSignal  `json:"sharp"`

	// Kelly cross-check at the spread price
	CoverProbability float64 `json:"cover_probability,omitempty"`
	KellyFraction    float64 `json:"kelly_fraction,omitempty"`
	ExpectedValue    float64 `json:"expected_value,omitempty"`

	// Vig-free market probability for the recommended side, when both
	// moneylines are quoted
	MarketWinProbability *float64 `json:"market_win_probability,omitempty"`

	Rank    int    `json:"rank,omitempty"`
	Limited string `json:"limited,omitempty"`
}

// MatchupError records a matchup the analyzer could not evaluate
type MatchupError struct {
	MatchupID string `json:"matchup_id"`
	Message   string `json:"error"`
}

// Report is the ranked slate
type Report struct {
	ID        uuid.UUID          `json:"id"`
	AsOf      time.Time          `json:"as_of"`
	Bankroll  decimal.Decimal    `json:"bankroll"`
	Strategy  strategy.Metadata  `json:"strategy"`
	Edges     []*MatchupAnalysis `json:"edges"`
	Passes    []*MatchupAnalysis `json:"passes"`
	Errors    []MatchupError     `json:"errors"`
	TotalRisk decimal.Decimal    `json:"total_risk"`
	Risk      RiskMetrics        `json:"risk"`
}

// Analyzer evaluates upcoming matchups concurrently
type Analyzer struct {
	repositories *repository.Repositories
	strategy     *strategy.EdgeStrategy
	concurrency  int
	limits       RiskLimits
	logger       *logrus.Logger
	edgeLogger   *logger.EdgeLogger
}

// NewAnalyzer creates a slate analyzer
func NewAnalyzer(repos *repository.Repositories, strat *strategy.EdgeStrategy, concurrency int, log *logrus.Logger) (*Analyzer, error) {
	if repos == nil || repos.Games == nil || repos.Snapshots == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if strat == nil {
		return nil, fmt.Errorf("strategy is required")
	}
	if concurrency <= 0 {
		return nil, models.NewConfigurationError("concurrency", "must be positive, got %d", concurrency)
	}
	if log == nil {
		log = logrus.New()
	}
	return &Analyzer{
		repositories: repos,
		strategy:     strat,
		concurrency:  concurrency,
		logger:       log,
		edgeLogger:   logger.NewEdgeLogger(log),
	}, nil
}

// WithRiskLimits returns a copy that trims stakes to the given limits
func (a *Analyzer) WithRiskLimits(limits RiskLimits) (*Analyzer, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	next := *a
	next.limits = limits
	return &next, nil
}

// AnalyzeUpcoming evaluates every game scheduled at or after asOf
func (a *Analyzer) AnalyzeUpcoming(ctx context.Context, asOf time.Time, bankroll decimal.Decimal) (*Report, error) {
	games, err := a.repositories.Games.GetUpcoming(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming games: %w", err)
	}
	return a.Analyze(ctx, games, asOf, bankroll)
}

// Analyze evaluates games as of asOf and ranks the edges by confidence. A
// failure on one matchup is recorded on the report and does not stop the
// others.
func (a *Analyzer) Analyze(ctx context.Context, games []*models.HistoricalGame, asOf time.Time, bankroll decimal.Decimal) (*Report, error) {
	if bankroll.IsNegative() {
		return nil, models.NewConfigurationError("bankroll", "must not be negative, got %s", bankroll)
	}

	results := make([]*MatchupAnalysis, len(games))
	errs := make([]error, len(games))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, game := range games {
		i, game := i, game
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = a.analyzeGame(gctx, game, asOf, bankroll)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		ID:        uuid.New(),
		AsOf:      asOf,
		Bankroll:  bankroll,
		Strategy:  strategy.Describe(a.strategy, "live"),
		Edges:     []*MatchupAnalysis{},
		Passes:    []*MatchupAnalysis{},
		Errors:    []MatchupError{},
		TotalRisk: decimal.Zero,
	}
	for i, res := range results {
		if errs[i] != nil {
			report.Errors = append(report.Errors, MatchupError{MatchupID: games[i].MatchupID, Message: errs[i].Error()})
			a.logger.WithError(errs[i]).WithField("matchup_id", games[i].MatchupID).Warn("Matchup analysis failed")
			continue
		}
		if res.Signal.Found() {
			report.Edges = append(report.Edges, res)
		} else {
			report.Passes = append(report.Passes, res)
		}
	}

	rankEdges(report.Edges)
	report.Risk = ApplyLimits(report.Edges, bankroll, a.limits, a.logger)
	report.TotalRisk = report.Risk.Exposure
	a.logger.WithFields(logrus.Fields{
		"games":  len(games),
		"edges":  len(report.Edges),
		"errors": len(report.Errors),
		"risk":   report.TotalRisk.StringFixed(2),
	}).Info("Slate analyzed")
	return report, nil
}

func (a *Analyzer) analyzeGame(ctx context.Context, g *models.HistoricalGame, asOf time.Time, bankroll decimal.Decimal) (*MatchupAnalysis, error) {
	l, ok := a.strategy.League(g.League)
	if !ok {
		return nil, fmt.Errorf("no league policy for %q", g.League)
	}
	if g.IsCompleted() {
		return nil, fmt.Errorf("matchup %s is already final", g.MatchupID)
	}

	away, err := a.snapshotAsOf(ctx, g.League, g.AwayTeam, asOf)
	if err != nil {
		return nil, err
	}
	home, err := a.snapshotAsOf(ctx, g.League, g.HomeTeam, asOf)
	if err != nil {
		return nil, err
	}

	view := strategy.PreGameView(g)
	if view.Opening != nil && view.Opening.Timestamp.After(asOf) {
		view.Opening = nil
	}
	sharp := view.Sharp
	if sharp != nil && sharp.Timestamp.After(asOf) {
		view.Sharp, sharp = nil, nil
	}

	signal, err := a.strategy.Evaluate(ctx, strategy.Context{
		Game:         view,
		AwaySnapshot: away,
		HomeSnapshot: home,
		CurrentTime:  asOf,
	})
	if err != nil {
		return nil, err
	}

	res := &MatchupAnalysis{
		MatchupID: g.MatchupID,
		League:    g.League,
		Date:      g.Date,
		AwayTeam:  g.AwayTeam,
		HomeTeam:  g.HomeTeam,
		Signal:    signal,
		Stake:     decimal.Zero,
		Injuries: [2]*models.InjuryImpact{
			adjustment.SummarizeInjuries(l.Injury, g.AwayInjuries),
			adjustment.SummarizeInjuries(l.Injury, g.HomeInjuries),
		},
		Sharp: adjustment.SharpMoney(l.Sharp, sharp),
	}

	if !signal.Found() {
		metrics.RecordNoEdge(g.League, string(signal.NoEdge.Reason))
		a.edgeLogger.LogNoEdge(g.MatchupID, g.League, string(signal.NoEdge.Reason), signal.NoEdge.Detail)
		return res, nil
	}

	e := signal.Edge
	metrics.RecordEdge(g.League, string(e.Tier), e.Magnitude)
	a.edgeLogger.LogEdgeDetected(g.MatchupID, g.League, string(e.Side), string(e.Tier),
		e.PredictedLine, e.MarketLine, e.Magnitude, e.Confidence, e.StakeFraction)

	if a.strategy.ShouldBet(signal) {
		res.Stake = a.strategy.CalculateStake(signal, bankroll)
		a.edgeLogger.LogStakeSized(g.MatchupID, e.StakeFraction, bankroll.StringFixed(2), res.Stake.StringFixed(2))
	}

	if sigma, ok := marginStdDev[l.Sport]; ok {
		res.CoverProbability = CoverProbability(e.Magnitude, sigma)
		sizer, err := strategy.NewSizer(l.Sizing)
		if err != nil {
			return nil, err
		}
		res.KellyFraction = sizer.ApplyKellyCriterion(res.CoverProbability, signal.Odds)
		res.ExpectedValue = strategy.CalculateExpectedValue(res.CoverProbability, signal.Odds)
	}
	if view.Opening != nil {
		res.MarketWinProbability = NoVigProbability(*view.Opening, e.Side)
	}
	return res, nil
}

func (a *Analyzer) snapshotAsOf(ctx context.Context, leagueCode, team string, asOf time.Time) (*models.TeamSnapshot, error) {
	snap, err := a.repositories.Snapshots.GetAsOf(ctx, leagueCode, team, asOf)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot for %s: %w", team, err)
	}
	return snap, nil
}

// CoverProbability maps a spread edge in points to the probability the
// recommended side covers, treating the final margin as normal around the
// predicted line
func CoverProbability(magnitude, sigma float64) float64 {
	if sigma <= 0 || magnitude <= 0 {
		return 0.5
	}
	n := distuv.Normal{Mu: 0, Sigma: sigma}
	return strategy.NormalizeProbability(n.CDF(magnitude))
}

// NoVigProbability returns the recommended side's win probability implied by
// the two moneylines with the bookmaker margin removed
func NoVigProbability(line models.MarketLine, side models.Side) *float64 {
	if line.AwayMoneyline == nil || line.HomeMoneyline == nil {
		return nil
	}
	pa, err := models.ImpliedProbability(*line.AwayMoneyline)
	if err != nil {
		return nil
	}
	ph, err := models.ImpliedProbability(*line.HomeMoneyline)
	if err != nil {
		return nil
	}
	var p float64
	switch side {
	case models.SideAway:
		p = pa / (pa + ph)
	case models.SideHome:
		p = ph / (pa + ph)
	default:
		return nil
	}
	return &p
}

// rankEdges orders by confidence, then magnitude, then matchup ID
func rankEdges(edges []*MatchupAnalysis) {
	sort.SliceStable(edges, func(i, j int) bool {
		a, b := edges[i].Signal.Edge, edges[j].Signal.Edge
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Magnitude != b.Magnitude {
			return a.Magnitude > b.Magnitude
		}
		return edges[i].MatchupID < edges[j].MatchupID
	})
	for i, e := range edges {
		e.Rank = i + 1
	}
}
