package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trimly/trimly/internal/registry"
)

// EntryStore is the PostgreSQL implementation of registry.Repository.
type EntryStore struct {
	pool *pgxpool.Pool
}

// NewEntryStore creates a new PostgreSQL-backed entry store.
func NewEntryStore(pool *pgxpool.Pool) *EntryStore {
	return &EntryStore{pool: pool}
}

func (s *EntryStore) Insert(ctx context.Context, entry *registry.Entry) error {
	query := `
		INSERT INTO entries (id, short_code, target, owner_id, visibility, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING created_at, updated_at
	`

	err := s.pool.QueryRow(ctx, query,
		entry.ID,
		entry.ShortCode,
		entry.Target,
		entry.OwnerID,
		string(entry.Visibility),
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		switch violatedConstraint(err) {
		case "entries_short_code_key":
			return registry.ErrCodeTaken
		case "entries_target_key":
			return registry.ErrTargetExists
		}

		return err
	}

	return nil
}

func (s *EntryStore) GetByCode(ctx context.Context, code string) (*registry.Entry, error) {
	return s.getBy(ctx, "short_code = $1", code)
}

func (s *EntryStore) GetByID(ctx context.Context, id uuid.UUID) (*registry.Entry, error) {
	return s.getBy(ctx, "id = $1", id)
}

func (s *EntryStore) GetByTarget(ctx context.Context, target string) (*registry.Entry, error) {
	return s.getBy(ctx, "target = $1", target)
}

func (s *EntryStore) getBy(ctx context.Context, cond string, arg any) (*registry.Entry, error) {
	query := `
		SELECT id, short_code, target, owner_id, visibility, created_at, updated_at
		FROM entries
		WHERE ` + cond

	entry, err := scanEntry(s.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, registry.ErrNotFound
		}

		return nil, err
	}

	return entry, nil
}

func (s *EntryStore) SetVisibility(ctx context.Context, id uuid.UUID, visibility registry.Visibility) error {
	query := `
		UPDATE entries
		SET visibility = $2, updated_at = now()
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query, id, string(visibility))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return registry.ErrNotFound
	}

	return nil
}

func (s *EntryStore) Delete(ctx context.Context, id uuid.UUID) error {
	// visit_events cascade via the foreign key
	tag, err := s.pool.Exec(ctx, `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return registry.ErrNotFound
	}

	return nil
}

func (s *EntryStore) DeleteBatch(ctx context.Context, ids []uuid.UUID) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM entries WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (s *EntryStore) ListByOwner(ctx context.Context, owner uuid.UUID, offset, limit int) ([]registry.Entry, error) {
	query := `
		SELECT id, short_code, target, owner_id, visibility, created_at, updated_at
		FROM entries
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		OFFSET $2 LIMIT $3
	`

	rows, err := s.pool.Query(ctx, query, owner, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []registry.Entry

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, *entry)
	}

	return entries, rows.Err()
}

func (s *EntryStore) CountByOwner(ctx context.Context, owner uuid.UUID) (int64, error) {
	var count int64

	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM entries WHERE owner_id = $1`, owner).Scan(&count)

	return count, err
}

func scanEntry(row pgx.Row) (*registry.Entry, error) {
	var (
		entry      registry.Entry
		visibility string
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := row.Scan(&entry.ID, &entry.ShortCode, &entry.Target, &entry.OwnerID, &visibility, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	entry.Visibility = registry.Visibility(visibility)
	entry.CreatedAt = createdAt
	entry.UpdatedAt = updatedAt

	return &entry, nil
}
