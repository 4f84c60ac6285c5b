package registry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("entry not found")
	ErrInvalidTarget = errors.New("invalid target url")

	// ErrCodeTaken and ErrTargetExists are returned by repositories when
	// the corresponding unique constraint is violated.
	ErrCodeTaken    = errors.New("short code already taken")
	ErrTargetExists = errors.New("target already shortened")

	// ErrCodeSpaceExhausted means code generation kept colliding.
	ErrCodeSpaceExhausted = errors.New("short code generation attempts exhausted")
)

// Visibility controls who may resolve an entry.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ParseVisibility validates a visibility value received from the outside.
func ParseVisibility(s string) (Visibility, bool) {
	switch Visibility(s) {
	case VisibilityPublic, VisibilityPrivate:
		return Visibility(s), true
	}

	return "", false
}

// Toggled returns the opposite visibility.
func (v Visibility) Toggled() Visibility {
	if v == VisibilityPublic {
		return VisibilityPrivate
	}

	return VisibilityPublic
}

// Entry maps a short code to a target URL.
type Entry struct {
	ID         uuid.UUID
	ShortCode  string
	Target     string
	OwnerID    uuid.UUID
	Visibility Visibility
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Repository defines the storage operations for entries.
type Repository interface {
	// Insert persists a new entry. Returns ErrCodeTaken or ErrTargetExists
	// on the respective unique-constraint violation.
	Insert(ctx context.Context, entry *Entry) error

	GetByCode(ctx context.Context, code string) (*Entry, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	GetByTarget(ctx context.Context, target string) (*Entry, error)

	SetVisibility(ctx context.Context, id uuid.UUID, visibility Visibility) error

	// Delete removes the entry; visit events cascade with it.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteBatch removes all matching entries at once and reports how many
	// were actually deleted. Unknown ids are skipped, not an error.
	DeleteBatch(ctx context.Context, ids []uuid.UUID) (int64, error)

	// ListByOwner returns entries ordered by creation time descending.
	ListByOwner(ctx context.Context, owner uuid.UUID, offset, limit int) ([]Entry, error)
	CountByOwner(ctx context.Context, owner uuid.UUID) (int64, error)
}
