package repository

import (
	"context"

	"wokebucks/database"
	"wokebucks/models"
)

// LeaderboardRepository persists the singleton leaderboard document.
type LeaderboardRepository struct {
	db *database.DB
}

// NewLeaderboardRepository creates a new leaderboard repository
func NewLeaderboardRepository(db *database.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

// Get retrieves the leaderboard. The singleton is provisioned at startup,
// so a miss is surfaced as nil for the caller to treat as a bootstrap
// defect.
func (r *LeaderboardRepository) Get(ctx context.Context) (*models.Leaderboard, error) {
	return database.GetDocument[models.Leaderboard](ctx, r.db, database.TableLeaderboards, models.LeaderboardID)
}

// Upsert replaces the stored leaderboard document.
func (r *LeaderboardRepository) Upsert(ctx context.Context, leaderboard *models.Leaderboard) error {
	return database.UpsertDocument(ctx, r.db, database.TableLeaderboards, leaderboard)
}
