package repository

import (
	"context"
	"time"

	"github.com/yourusername/line-edge/internal/models"
)

// GameRepository defines read access to the historical game corpus. Returned
// games are shared and must be treated as read-only.
type GameRepository interface {
	GetByID(ctx context.Context, matchupID string) (*models.HistoricalGame, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.HistoricalGame, error)
	GetBySeason(ctx context.Context, league string, season int) ([]*models.HistoricalGame, error)
	GetUpcoming(ctx context.Context, asOf time.Time) ([]*models.HistoricalGame, error)
}

// SnapshotRepository defines read access to point-in-time team snapshots
type SnapshotRepository interface {
	// GetAsOf returns the latest snapshot that was available at asOf.
	// It returns models.ErrNotFound when no snapshot predates asOf.
	GetAsOf(ctx context.Context, league, team string, asOf time.Time) (*models.TeamSnapshot, error)
	GetHistory(ctx context.Context, league, team string) ([]*models.TeamSnapshot, error)
}
