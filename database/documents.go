package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"wokebucks/models"
)

// Table names, one per document kind.
const (
	TableAccounts      = "accounts"
	TableLeaderboards  = "leaderboards"
	TableLotteries     = "lotteries"
	TableBets          = "bets"
	TableCancelTickets = "cancel_tickets"
)

// GetDocument loads the document with the given id from a kind table. A
// missing document is a normal outcome and returns nil without error.
func GetDocument[T any](ctx context.Context, db *DB, table, id string) (*T, error) {
	query := fmt.Sprintf(`SELECT data FROM %s WHERE id = $1`, table)

	var data []byte
	err := db.Pool.QueryRow(ctx, query, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s/%s: %w", table, id, err)
	}

	var doc T
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s/%s: %w", table, id, err)
	}
	return &doc, nil
}

// UpsertDocument writes the document whole, replacing any stored revision.
// There is no version check; concurrent writers are last-write-wins.
func UpsertDocument(ctx context.Context, db *DB, table string, doc models.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document %s/%s: %w", table, doc.DocumentID(), err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, table)

	if _, err := db.Pool.Exec(ctx, query, doc.DocumentID(), data); err != nil {
		return fmt.Errorf("failed to upsert document %s/%s: %w", table, doc.DocumentID(), err)
	}
	return nil
}

// DeleteDocument removes a document. Deleting an id that does not exist is
// not an error.
func DeleteDocument(ctx context.Context, db *DB, table, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table)
	if _, err := db.Pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", table, id, err)
	}
	return nil
}
