package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trimly/trimly/internal/ledger"
)

// VisitStore is the PostgreSQL implementation of ledger.Repository.
type VisitStore struct {
	pool *pgxpool.Pool
}

// NewVisitStore creates a new PostgreSQL-backed visit store.
func NewVisitStore(pool *pgxpool.Pool) *VisitStore {
	return &VisitStore{pool: pool}
}

func (s *VisitStore) Append(ctx context.Context, event *ledger.VisitEvent) error {
	query := `
		INSERT INTO visit_events (entry_id, visitor_id, visited_at)
		VALUES ($1, $2, $3)
	`

	_, err := s.pool.Exec(ctx, query, event.EntryID, event.VisitorID, event.VisitedAt)

	return err
}

func (s *VisitStore) CountFor(ctx context.Context, entryID uuid.UUID) (int64, error) {
	var count int64

	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM visit_events WHERE entry_id = $1`, entryID).Scan(&count)

	return count, err
}

func (s *VisitStore) UniqueVisitorsFor(ctx context.Context, entryID uuid.UUID) (int64, error) {
	var count int64

	err := s.pool.QueryRow(ctx,
		`SELECT count(DISTINCT visitor_id) FROM visit_events WHERE entry_id = $1 AND visitor_id IS NOT NULL`,
		entryID).Scan(&count)

	return count, err
}
