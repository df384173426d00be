package repository

import (
	"context"

	"wokebucks/database"
	"wokebucks/models"
)

// TicketRepository persists cancel-ticket documents.
type TicketRepository struct {
	db *database.DB
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// Get retrieves a ticket by its pair-derived id, or nil when the pair has
// never opened one.
func (r *TicketRepository) Get(ctx context.Context, ticketID string) (*models.CancelTicket, error) {
	return database.GetDocument[models.CancelTicket](ctx, r.db, database.TableCancelTickets, ticketID)
}

// Upsert replaces the stored ticket document.
func (r *TicketRepository) Upsert(ctx context.Context, ticket *models.CancelTicket) error {
	return database.UpsertDocument(ctx, r.db, database.TableCancelTickets, ticket)
}
