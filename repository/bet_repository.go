package repository

import (
	"context"

	"wokebucks/database"
	"wokebucks/models"
)

// BetRepository persists bet documents. Bets are deleted when settled.
type BetRepository struct {
	db *database.DB
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{db: db}
}

// Get retrieves a bet by its content-addressed id, or nil when no bet with
// that id is open.
func (r *BetRepository) Get(ctx context.Context, betID string) (*models.Bet, error) {
	return database.GetDocument[models.Bet](ctx, r.db, database.TableBets, betID)
}

// Upsert replaces the stored bet document.
func (r *BetRepository) Upsert(ctx context.Context, bet *models.Bet) error {
	return database.UpsertDocument(ctx, r.db, database.TableBets, bet)
}

// Delete removes a settled bet.
func (r *BetRepository) Delete(ctx context.Context, betID string) error {
	return database.DeleteDocument(ctx, r.db, database.TableBets, betID)
}
