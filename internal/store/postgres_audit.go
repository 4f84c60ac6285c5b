package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trimly/trimly/internal/audit"
)

// AuditStore is the PostgreSQL implementation of audit.Repository.
type AuditStore struct {
	pool *pgxpool.Pool
}

// NewAuditStore creates a new PostgreSQL-backed audit store.
func NewAuditStore(pool *pgxpool.Pool) *AuditStore {
	return &AuditStore{pool: pool}
}

func (s *AuditStore) Append(ctx context.Context, draft audit.Draft) error {
	query := `
		INSERT INTO activity_log (account_id, entry_text, created_at)
		VALUES ($1, $2, now())
	`

	_, err := s.pool.Exec(ctx, query, draft.AccountID, draft.Text)

	return err
}

func (s *AuditStore) List(ctx context.Context, accountID uuid.UUID, offset, limit int) ([]audit.Entry, error) {
	query := `
		SELECT account_id, entry_text, created_at
		FROM activity_log
		WHERE account_id = $1
		ORDER BY id ASC
		OFFSET $2 LIMIT $3
	`

	rows, err := s.pool.Query(ctx, query, accountID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []audit.Entry

	for rows.Next() {
		var entry audit.Entry

		if err := rows.Scan(&entry.AccountID, &entry.Text, &entry.CreatedAt); err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
