// Package moderation implements the privileged account and entry mutations.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/trimly/trimly/internal/accounts"
	"github.com/trimly/trimly/internal/audit"
	"github.com/trimly/trimly/internal/registry"
)

var (
	ErrInvalidInput = errors.New("invalid moderation input")

	// ErrRoleUnchanged and ErrStateUnchanged reject redundant mutations.
	ErrRoleUnchanged  = errors.New("account already has that role")
	ErrStateUnchanged = errors.New("account already has that status")
)

// Store defines the storage operations moderation needs. The Update methods
// persist the mutation and the audit drafts in one transaction, so the
// activity entries on both sides cannot diverge from the change itself.
type Store interface {
	GetAccount(ctx context.Context, id uuid.UUID) (*accounts.Account, error)

	UpdateRole(ctx context.Context, id uuid.UUID, role accounts.Role, logs []audit.Draft) error
	UpdateModerationState(ctx context.Context, id uuid.UUID, state accounts.ModerationState, logs []audit.Draft) error
}

// Service gates and audits privileged mutations. Callers are responsible for
// ensuring the actor holds the admin role before invoking it. Entry deletion
// goes through the entry repository so cached resolutions are invalidated
// with the rows.
type Service struct {
	store    Store
	entries  registry.Repository
	activity *audit.Log
}

// NewService creates a new moderation service.
func NewService(store Store, entries registry.Repository, activity *audit.Log) *Service {
	return &Service{
		store:    store,
		entries:  entries,
		activity: activity,
	}
}

// SetRole changes the target account's role and writes an activity entry on
// both the actor's and the target's log, atomically with the mutation.
func (s *Service) SetRole(ctx context.Context, actor *accounts.Account, targetID uuid.UUID, newRole accounts.Role) (*accounts.Account, error) {
	target, err := s.store.GetAccount(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if target.Role == newRole {
		return nil, ErrRoleUnchanged
	}

	logs := []audit.Draft{
		{
			AccountID: actor.ID,
			Text: fmt.Sprintf("Admin with email: %s updated the role of user with ID: %s to: %s",
				actor.Email, targetID, newRole),
		},
		{
			AccountID: targetID,
			Text:      fmt.Sprintf("Your role has been updated to: %s by an admin", newRole),
		},
	}

	if err := s.store.UpdateRole(ctx, targetID, newRole, logs); err != nil {
		return nil, err
	}

	target.Role = newRole

	return target, nil
}

// SetModerationState changes the target account's standing, with the same
// dual-sided audit guarantee as SetRole. Existing tokens are not revoked; the
// token authority refuses new issuance for blocked and suspended accounts.
func (s *Service) SetModerationState(ctx context.Context, actor *accounts.Account, targetID uuid.UUID, newState accounts.ModerationState) (*accounts.Account, error) {
	target, err := s.store.GetAccount(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if target.ModerationState == newState {
		return nil, ErrStateUnchanged
	}

	logs := []audit.Draft{
		{
			AccountID: actor.ID,
			Text: fmt.Sprintf("Admin with email: %s updated the status of user with ID: %s to: %s",
				actor.Email, targetID, newState),
		},
		{
			AccountID: targetID,
			Text:      fmt.Sprintf("Your account status has been updated to: %s by an admin", newState),
		},
	}

	if err := s.store.UpdateModerationState(ctx, targetID, newState, logs); err != nil {
		return nil, err
	}

	target.ModerationState = newState

	return target, nil
}

// BatchDeleteEntries deletes all listed entries in one operation. It fails
// with registry.ErrNotFound when nothing was deleted, and only audits the
// actor after a successful delete.
func (s *Service) BatchDeleteEntries(ctx context.Context, actor *accounts.Account, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrInvalidInput
	}

	for _, id := range ids {
		if id == uuid.Nil {
			return 0, ErrInvalidInput
		}
	}

	deleted, err := s.entries.DeleteBatch(ctx, ids)
	if err != nil {
		return 0, err
	}

	if deleted == 0 {
		return 0, registry.ErrNotFound
	}

	s.activity.Record(ctx, actor.ID, fmt.Sprintf("Admin with email: %s deleted %d URLs. Deleted URL IDs: [%s]",
		actor.Email, deleted, joinIDs(ids)))

	return deleted, nil
}

// ListActivity returns one page of the target account's activity log, oldest
// first.
func (s *Service) ListActivity(ctx context.Context, actor *accounts.Account, targetID uuid.UUID, page, limit int) ([]audit.Entry, error) {
	if _, err := s.store.GetAccount(ctx, targetID); err != nil {
		return nil, err
	}

	entries, err := s.activity.List(ctx, targetID, page, limit)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actor.ID, fmt.Sprintf("Admin with email: %s viewed activity logs of user with ID: %s",
		actor.Email, targetID))

	return entries, nil
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}

	return strings.Join(parts, ", ")
}
