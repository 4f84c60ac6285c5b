package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trimly/trimly/internal/registry"
	"github.com/trimly/trimly/internal/stats"
)

// StatsStore is the PostgreSQL implementation of stats.Repository. Grouping
// happens in SQL so per-request cost stays bounded by the page limit.
type StatsStore struct {
	pool *pgxpool.Pool
}

// NewStatsStore creates a new PostgreSQL-backed stats store.
func NewStatsStore(pool *pgxpool.Pool) *StatsStore {
	return &StatsStore{pool: pool}
}

const statsSelect = `
	SELECT
		e.id, e.short_code, e.target, e.owner_id, e.visibility,
		count(v.entry_id) AS total_clicks,
		count(DISTINCT v.visitor_id) AS unique_visitors
	FROM entries e
	LEFT JOIN visit_events v ON v.entry_id = e.id
`

func (s *StatsStore) AggregateEntries(ctx context.Context, filter stats.Filter, offset, limit int) ([]stats.Row, error) {
	where, args := filterClause(filter)
	args = append(args, offset, limit)

	query := fmt.Sprintf(`%s %s
		GROUP BY e.id, e.short_code, e.target, e.owner_id, e.visibility
		ORDER BY e.id ASC
		OFFSET $%d LIMIT $%d`,
		statsSelect, where, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []stats.Row

	for rows.Next() {
		row, err := scanStatsRow(rows)
		if err != nil {
			return nil, err
		}

		result = append(result, *row)
	}

	return result, rows.Err()
}

func (s *StatsStore) CountEntries(ctx context.Context, filter stats.Filter) (int64, error) {
	where, args := filterClause(filter)

	var count int64

	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM entries e `+where, args...).Scan(&count)

	return count, err
}

func (s *StatsStore) AggregateEntry(ctx context.Context, id uuid.UUID) (*stats.Row, error) {
	query := statsSelect + `
		WHERE e.id = $1
		GROUP BY e.id, e.short_code, e.target, e.owner_id, e.visibility`

	row, err := scanStatsRow(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, registry.ErrNotFound
		}

		return nil, err
	}

	return row, nil
}

// filterClause builds the WHERE clause for a stats filter. Placeholders start
// at $1; callers append their own after the returned args.
func filterClause(filter stats.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		conds = append(conds, fmt.Sprintf("e.owner_id = $%d", len(args)))
	}

	if filter.Visibility != nil {
		args = append(args, string(*filter.Visibility))
		conds = append(conds, fmt.Sprintf("e.visibility = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}

	where := "WHERE " + conds[0]
	for _, cond := range conds[1:] {
		where += " AND " + cond
	}

	return where, args
}

func scanStatsRow(row pgx.Row) (*stats.Row, error) {
	var (
		result     stats.Row
		visibility string
	)

	err := row.Scan(
		&result.EntryID,
		&result.ShortCode,
		&result.Target,
		&result.OwnerID,
		&visibility,
		&result.TotalClicks,
		&result.UniqueVisitors,
	)
	if err != nil {
		return nil, err
	}

	result.Visibility = registry.Visibility(visibility)

	return &result, nil
}
