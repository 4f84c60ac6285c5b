package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// VisitEvent is one recorded access to an entry. Events are append-only and
// are only removed when the entry itself is deleted.
type VisitEvent struct {
	EntryID   uuid.UUID
	VisitorID *uuid.UUID // nil for anonymous visits
	VisitedAt time.Time
}

// Repository defines the storage operations for the visit ledger.
type Repository interface {
	Append(ctx context.Context, event *VisitEvent) error

	CountFor(ctx context.Context, entryID uuid.UUID) (int64, error)

	// UniqueVisitorsFor counts distinct non-nil visitors. Anonymous visits
	// never contribute to uniqueness.
	UniqueVisitorsFor(ctx context.Context, entryID uuid.UUID) (int64, error)
}

// Ledger records and counts visits.
type Ledger struct {
	repo Repository
	now  func() time.Time
}

// New creates a ledger over the given repository.
func New(repo Repository) *Ledger {
	return &Ledger{
		repo: repo,
		now:  time.Now,
	}
}

// Record appends a visit event stamped with the current time.
func (l *Ledger) Record(ctx context.Context, entryID uuid.UUID, visitorID *uuid.UUID) error {
	return l.repo.Append(ctx, &VisitEvent{
		EntryID:   entryID,
		VisitorID: visitorID,
		VisitedAt: l.now(),
	})
}

// CountFor returns the total number of visits for an entry.
func (l *Ledger) CountFor(ctx context.Context, entryID uuid.UUID) (int64, error) {
	return l.repo.CountFor(ctx, entryID)
}

// UniqueVisitorsFor returns the number of distinct signed-in visitors.
func (l *Ledger) UniqueVisitorsFor(ctx context.Context, entryID uuid.UUID) (int64, error) {
	return l.repo.UniqueVisitorsFor(ctx, entryID)
}
