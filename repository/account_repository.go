package repository

import (
	"context"

	"wokebucks/database"
	"wokebucks/models"
)

// AccountRepository persists UserAccount documents.
type AccountRepository struct {
	db *database.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Get retrieves an account by Discord user id. A missing account returns
// nil without error; callers create accounts lazily.
func (r *AccountRepository) Get(ctx context.Context, userID string) (*models.UserAccount, error) {
	return database.GetDocument[models.UserAccount](ctx, r.db, database.TableAccounts, userID)
}

// Upsert replaces the stored account document.
func (r *AccountRepository) Upsert(ctx context.Context, account *models.UserAccount) error {
	return database.UpsertDocument(ctx, r.db, database.TableAccounts, account)
}
