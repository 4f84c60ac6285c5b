// Package stats computes usage statistics from the visit ledger, one row per
// registry entry.
package stats

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/trimly/trimly/internal/registry"
)

// ErrNoResults means the filtered, paginated result set is empty. Both an
// empty filter match and a page beyond the last one produce it; the
// independent total in Pagination lets callers tell the two apart.
var ErrNoResults = errors.New("no entries match the criteria")

// Filter narrows aggregation to an owner and/or a visibility.
type Filter struct {
	OwnerID    *uuid.UUID
	Visibility *registry.Visibility
}

// Row is the aggregated usage of a single entry.
type Row struct {
	EntryID        uuid.UUID
	ShortCode      string
	Target         string
	OwnerID        uuid.UUID
	Visibility     registry.Visibility
	TotalClicks    int64
	UniqueVisitors int64
}

// Pagination describes the position of a result page within the full set.
type Pagination struct {
	CurrentPage  int
	TotalPages   int
	TotalRecords int64
	Limit        int
}

// Repository defines the grouped queries the engine runs.
type Repository interface {
	// AggregateEntries returns one row per matching entry, ordered by
	// entry id ascending for a deterministic cursor.
	AggregateEntries(ctx context.Context, filter Filter, offset, limit int) ([]Row, error)

	// CountEntries counts matching entries under the same filter,
	// independent of pagination.
	CountEntries(ctx context.Context, filter Filter) (int64, error)

	// AggregateEntry returns the row for a single entry, or
	// registry.ErrNotFound.
	AggregateEntry(ctx context.Context, id uuid.UUID) (*Row, error)
}

// Engine is the usage aggregation engine.
type Engine struct {
	repo Repository
}

// NewEngine creates a new aggregation engine.
func NewEngine(repo Repository) *Engine {
	return &Engine{repo: repo}
}

// Aggregate returns one page of usage rows matching the filter. Page and
// limit are 1-based and clamped to 1. An empty page yields ErrNoResults.
func (e *Engine) Aggregate(ctx context.Context, filter Filter, page, limit int) ([]Row, Pagination, error) {
	page = max(page, 1)
	limit = max(limit, 1)

	rows, err := e.repo.AggregateEntries(ctx, filter, (page-1)*limit, limit)
	if err != nil {
		return nil, Pagination{}, err
	}

	if len(rows) == 0 {
		return nil, Pagination{}, ErrNoResults
	}

	total, err := e.repo.CountEntries(ctx, filter)
	if err != nil {
		return nil, Pagination{}, err
	}

	pagination := Pagination{
		CurrentPage:  page,
		TotalPages:   int((total + int64(limit) - 1) / int64(limit)),
		TotalRecords: total,
		Limit:        limit,
	}

	return rows, pagination, nil
}

// EntryStats returns the usage row for one entry.
func (e *Engine) EntryStats(ctx context.Context, id uuid.UUID) (*Row, error) {
	return e.repo.AggregateEntry(ctx, id)
}
