package repository

import (
	"context"

	"wokebucks/database"
	"wokebucks/models"
)

// LotteryRepository persists per-guild lottery documents.
type LotteryRepository struct {
	db *database.DB
}

// NewLotteryRepository creates a new lottery repository
func NewLotteryRepository(db *database.DB) *LotteryRepository {
	return &LotteryRepository{db: db}
}

// Get retrieves a guild's lottery, or nil when the guild has none yet.
func (r *LotteryRepository) Get(ctx context.Context, guildID string) (*models.Lottery, error) {
	return database.GetDocument[models.Lottery](ctx, r.db, database.TableLotteries, models.LotteryID(guildID))
}

// Upsert replaces the stored lottery document.
func (r *LotteryRepository) Upsert(ctx context.Context, lottery *models.Lottery) error {
	return database.UpsertDocument(ctx, r.db, database.TableLotteries, lottery)
}
