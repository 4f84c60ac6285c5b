package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// CodeGenerator generates unique short codes.
type CodeGenerator func() string

// maxCodeAttempts bounds the insert retry loop on short-code collisions.
const maxCodeAttempts = 5

// Service implements the identifier registry operations on top of a
// Repository. The store's unique constraints are the actual correctness
// mechanism for both code uniqueness and target deduplication; the lookups
// here are optimizations against the common case.
type Service struct {
	repo         Repository
	generateCode CodeGenerator
}

// NewService creates a new registry service.
func NewService(repo Repository, generator CodeGenerator) *Service {
	return &Service{
		repo:         repo,
		generateCode: generator,
	}
}

// Create shortens a target URL for the given owner. Creating the same target
// twice returns the existing entry unchanged; the second return value reports
// whether a new entry was created.
func (s *Service) Create(ctx context.Context, target string, owner uuid.UUID) (*Entry, bool, error) {
	target, err := ValidateTarget(target)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.repo.GetByTarget(ctx, target)
	if err == nil {
		return existing, false, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		entry := &Entry{
			ID:         uuid.New(),
			ShortCode:  s.generateCode(),
			Target:     target,
			OwnerID:    owner,
			Visibility: VisibilityPublic,
		}

		err = s.repo.Insert(ctx, entry)
		if err == nil {
			return entry, true, nil
		}

		if errors.Is(err, ErrCodeTaken) {
			continue
		}

		// A concurrent creator won the race on the same target.
		if errors.Is(err, ErrTargetExists) {
			existing, getErr := s.repo.GetByTarget(ctx, target)
			if getErr != nil {
				return nil, false, getErr
			}

			return existing, false, nil
		}

		return nil, false, err
	}

	return nil, false, fmt.Errorf("%w: %d attempts", ErrCodeSpaceExhausted, maxCodeAttempts)
}

// Get resolves a short code to its entry.
func (s *Service) Get(ctx context.Context, code string) (*Entry, error) {
	return s.repo.GetByCode(ctx, code)
}

// GetByID fetches an entry by its id.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetByID(ctx, id)
}

// ToggleVisibility flips the entry between public and private and returns the
// new visibility.
func (s *Service) ToggleVisibility(ctx context.Context, id uuid.UUID) (Visibility, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	next := entry.Visibility.Toggled()
	if err := s.repo.SetVisibility(ctx, id, next); err != nil {
		return "", err
	}

	return next, nil
}

// Delete removes an entry and, through the store, its visit events.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ListByOwner returns one page of the owner's entries, newest first, plus the
// owner's total entry count. Page and limit are 1-based and clamped to 1.
func (s *Service) ListByOwner(ctx context.Context, owner uuid.UUID, page, limit int) ([]Entry, int64, error) {
	page = max(page, 1)
	limit = max(limit, 1)

	entries, err := s.repo.ListByOwner(ctx, owner, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.CountByOwner(ctx, owner)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
