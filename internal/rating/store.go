package rating

import (
	"strconv"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/line-edge/internal/models"
)

// Store memoizes one rating per snapshot, keyed by league, season, team,
// period and snapshot time. Ratings never expire; a newer snapshot is stored
// alongside, never over, an older one.
type Store struct {
	cache  *cache.Cache
	mu     sync.Mutex
	latest map[string]models.PowerRating
	hits   uint64
	misses uint64
}

// NewStore creates an empty rating store
func NewStore() *Store {
	return &Store{
		cache:  cache.New(cache.NoExpiration, 0),
		latest: make(map[string]models.PowerRating),
	}
}

func key(leagueCode string, season int, team, period string, asOf time.Time) string {
	return leagueCode + "|" + strconv.Itoa(season) + "|" + team + "|" + period + "|" + strconv.FormatInt(asOf.UnixNano(), 10)
}

// Get returns the stored rating for one snapshot
func (s *Store) Get(leagueCode string, season int, team, period string, asOf time.Time) (models.PowerRating, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, found := s.cache.Get(key(leagueCode, season, team, period, asOf)); found {
		if r, ok := v.(models.PowerRating); ok {
			s.hits++
			return r, true
		}
	}
	s.misses++
	return models.PowerRating{}, false
}

// Put stores a rating. An existing rating for the same snapshot is kept.
func (s *Store) Put(r models.PowerRating) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(r.League, r.Season, r.Team, r.Period, r.AsOf)
	if err := s.cache.Add(k, r, cache.NoExpiration); err != nil {
		return
	}
	team := r.League + "|" + r.Team
	if prev, ok := s.latest[team]; !ok || newer(r, prev) {
		s.latest[team] = r
	}
}

func newer(a, b models.PowerRating) bool {
	if a.Season != b.Season {
		return a.Season > b.Season
	}
	return a.AsOf.After(b.AsOf)
}

// Latest returns the stored rating with the newest season and snapshot time
// for a team
func (s *Store) Latest(leagueCode, team string) (models.PowerRating, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.latest[leagueCode+"|"+team]
	return r, ok
}

// Len returns the number of stored ratings
func (s *Store) Len() int {
	return s.cache.ItemCount()
}

// Stats returns hit and miss counts
func (s *Store) Stats() (hits, misses uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits, s.misses
}
