package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/teams"
)

// Store is a read-only in-memory corpus implementing GameRepository and
// SnapshotRepository. It never changes after NewStore returns.
type Store struct {
	games     []*models.HistoricalGame
	byID      map[string]*models.HistoricalGame
	snapshots map[string][]*models.TeamSnapshot
	teams     *teams.Normalizer
	rejected  []Rejection
}

// NewStore normalizes team names, validates every record and indexes the
// corpus. Invalid records are skipped and reported by Rejected.
func NewStore(c *Corpus, logger *logrus.Logger) (*Store, error) {
	if c == nil {
		return nil, fmt.Errorf("corpus is required")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	normalizer, err := teams.NewNormalizer(c.Teams)
	if err != nil {
		return nil, fmt.Errorf("failed to build team table: %w", err)
	}

	s := &Store{
		byID:      make(map[string]*models.HistoricalGame, len(c.Games)),
		snapshots: make(map[string][]*models.TeamSnapshot),
		teams:     normalizer,
	}

	for i := range c.Games {
		g := c.Games[i]
		s.normalizeGame(&g)
		if problems := validateGame(&g); len(problems) > 0 {
			s.reject("game", g.MatchupID, problems, logger)
			continue
		}
		if _, dup := s.byID[g.MatchupID]; dup {
			s.reject("game", g.MatchupID, []string{"duplicate matchup_id"}, logger)
			continue
		}
		s.byID[g.MatchupID] = &g
		s.games = append(s.games, &g)
	}
	sort.SliceStable(s.games, func(i, j int) bool {
		return gameBefore(s.games[i], s.games[j])
	})

	seen := make(map[string]bool, len(c.Snapshots))
	for i := range c.Snapshots {
		snap := c.Snapshots[i]
		s.normalizeSnapshot(&snap)
		id := fmt.Sprintf("%s/%d/%s/%s", snap.League, snap.Season, snap.Team, snap.Period)
		if problems := validateSnapshot(&snap); len(problems) > 0 {
			s.reject("snapshot", id, problems, logger)
			continue
		}
		if seen[id] {
			s.reject("snapshot", id, []string{"duplicate season and period"}, logger)
			continue
		}
		seen[id] = true
		key := snapshotKey(snap.League, snap.Team)
		s.snapshots[key] = append(s.snapshots[key], &snap)
	}
	for _, list := range s.snapshots {
		sort.SliceStable(list, func(i, j int) bool { return list[i].AsOf.Before(list[j].AsOf) })
	}

	logger.WithFields(logrus.Fields{
		"games":     len(s.games),
		"snapshots": len(c.Snapshots) - s.rejectedCount("snapshot"),
		"rejected":  len(s.rejected),
	}).Info("Corpus loaded")

	return s, nil
}

// GetByID retrieves a game by matchup ID
func (s *Store) GetByID(ctx context.Context, matchupID string) (*models.HistoricalGame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g, ok := s.byID[matchupID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return g, nil
}

// GetByDateRange retrieves games dated within [start, end] in chronological
// order. A zero bound is open.
func (s *Store) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.HistoricalGame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []*models.HistoricalGame
	for _, g := range s.games {
		if !start.IsZero() && g.Date.Before(start) {
			continue
		}
		if !end.IsZero() && g.Date.After(end) {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

// GetBySeason retrieves one league's games, optionally limited to a season
// (0 means every season)
func (s *Store) GetBySeason(ctx context.Context, league string, season int) ([]*models.HistoricalGame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []*models.HistoricalGame
	for _, g := range s.games {
		if g.League == league && (season == 0 || g.Season == season) {
			out = append(out, g)
		}
	}
	return out, nil
}

// GetUpcoming retrieves games without a final score dated at or after asOf
func (s *Store) GetUpcoming(ctx context.Context, asOf time.Time) ([]*models.HistoricalGame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []*models.HistoricalGame
	for _, g := range s.games {
		if !g.IsCompleted() && !g.Date.Before(asOf) {
			out = append(out, g)
		}
	}
	return out, nil
}

// GetAsOf returns the latest snapshot with AsOf at or before asOf
func (s *Store) GetAsOf(ctx context.Context, league, team string, asOf time.Time) (*models.TeamSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	list := s.snapshots[snapshotKey(league, s.teams.Resolve(league, team))]
	// first index strictly after asOf
	i := sort.Search(len(list), func(i int) bool { return list[i].AsOf.After(asOf) })
	if i == 0 {
		return nil, fmt.Errorf("snapshot %s/%s as of %s: %w", league, team, asOf.Format(time.RFC3339), models.ErrNotFound)
	}
	return list[i-1], nil
}

// GetHistory returns every snapshot of a team in AsOf order
func (s *Store) GetHistory(ctx context.Context, league, team string) ([]*models.TeamSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	list := s.snapshots[snapshotKey(league, s.teams.Resolve(league, team))]
	out := make([]*models.TeamSnapshot, len(list))
	copy(out, list)
	return out, nil
}

// Rejected returns the records skipped during loading
func (s *Store) Rejected() []Rejection {
	out := make([]Rejection, len(s.rejected))
	copy(out, s.rejected)
	return out
}

// Len returns the number of indexed games
func (s *Store) Len() int {
	return len(s.games)
}

// Teams returns the team normalizer the corpus was loaded with
func (s *Store) Teams() *teams.Normalizer {
	return s.teams
}

func (s *Store) normalizeGame(g *models.HistoricalGame) {
	g.League = strings.ToUpper(strings.TrimSpace(g.League))
	g.AwayTeam = s.teams.Resolve(g.League, g.AwayTeam)
	g.HomeTeam = s.teams.Resolve(g.League, g.HomeTeam)
	for _, line := range []*models.MarketLine{g.Opening, g.Closing} {
		if line != nil && line.MatchupID == "" {
			line.MatchupID = g.MatchupID
		}
	}
	if g.Sharp != nil && g.Sharp.MatchupID == "" {
		g.Sharp.MatchupID = g.MatchupID
	}
	if g.AwayInjuries != nil {
		g.AwayInjuries.Team = g.AwayTeam
	}
	if g.HomeInjuries != nil {
		g.HomeInjuries.Team = g.HomeTeam
	}
}

func (s *Store) normalizeSnapshot(snap *models.TeamSnapshot) {
	snap.League = strings.ToUpper(strings.TrimSpace(snap.League))
	snap.Team = s.teams.Resolve(snap.League, snap.Team)
	for _, m := range []*models.ComponentMetrics{snap.Offense, snap.Defense} {
		if m == nil {
			continue
		}
		m.Team = snap.Team
		if m.Period == "" {
			m.Period = snap.Period
		}
		if m.AsOf.IsZero() {
			m.AsOf = snap.AsOf
		}
	}
	if snap.Status != nil {
		snap.Status.Team = snap.Team
	}
	if snap.Injury != nil {
		snap.Injury.Team = snap.Team
	}
}

func (s *Store) reject(kind, id string, problems []string, logger *logrus.Logger) {
	reason := strings.Join(problems, "; ")
	s.rejected = append(s.rejected, Rejection{Kind: kind, ID: id, Reason: reason})
	logger.WithFields(logrus.Fields{
		"kind":   kind,
		"id":     id,
		"reason": reason,
	}).Warn("Corpus record rejected")
}

func (s *Store) rejectedCount(kind string) int {
	n := 0
	for _, r := range s.rejected {
		if r.Kind == kind {
			n++
		}
	}
	return n
}

func gameBefore(a, b *models.HistoricalGame) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return a.MatchupID < b.MatchupID
}

func snapshotKey(league, team string) string {
	return league + "|" + team
}
