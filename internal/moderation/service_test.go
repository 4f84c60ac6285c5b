package moderation_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trimly/trimly/internal/accounts"
	"github.com/trimly/trimly/internal/audit"
	"github.com/trimly/trimly/internal/moderation"
	"github.com/trimly/trimly/internal/registry"
	"github.com/trimly/trimly/internal/store"
)

func newTestService(mem *store.Memory) *moderation.Service {
	return moderation.NewService(mem, mem, audit.NewLog(mem.Audit(), zap.NewNop()))
}

func seedAccount(t *testing.T, mem *store.Memory, email string, role accounts.Role) *accounts.Account {
	t.Helper()

	account := &accounts.Account{
		ID:              uuid.New(),
		Email:           email,
		PasswordHash:    "x",
		FullName:        "Test User",
		Role:            role,
		Status:          accounts.StatusInactive,
		ModerationState: accounts.ModerationNormal,
	}
	require.NoError(t, mem.InsertAccount(context.Background(), account))

	return account
}

func seedEntry(t *testing.T, mem *store.Memory, owner uuid.UUID) *registry.Entry {
	t.Helper()

	entry := &registry.Entry{
		ID:         uuid.New(),
		ShortCode:  uuid.NewString()[:8],
		Target:     fmt.Sprintf("https://example.com/%s", uuid.NewString()),
		OwnerID:    owner,
		Visibility: registry.VisibilityPublic,
	}
	require.NoError(t, mem.Insert(context.Background(), entry))

	return entry
}

func TestService_SetRole(t *testing.T) {
	t.Run("promotes a user and audits both sides", func(t *testing.T) {
		mem := store.NewMemory()
		svc := newTestService(mem)
		admin := seedAccount(t, mem, "admin@example.com", accounts.RoleAdmin)
		target := seedAccount(t, mem, "user@example.com", accounts.RoleUser)

		updated, err := svc.SetRole(context.Background(), admin, target.ID, accounts.RoleAdmin)

		require.NoError(t, err)
		assert.Equal(t, accounts.RoleAdmin, updated.Role)

		stored, err := mem.GetAccountByID(context.Background(), target.ID)
		require.NoError(t, err)
		assert.Equal(t, accounts.RoleAdmin, stored.Role)

		adminLog, err := mem.ListActivity(context.Background(), admin.ID, 0, 10)
		require.NoError(t, err)
		require.Len(t, adminLog, 1)
		assert.Equal(t,
			fmt.Sprintf("Admin with email: admin@example.com updated the role of user with ID: %s to: admin", target.ID),
			adminLog[0].Text)

		targetLog, err := mem.ListActivity(context.Background(), target.ID, 0, 10)
		require.NoError(t, err)
		require.Len(t, targetLog, 1)
		assert.Equal(t, "Your role has been updated to: admin by an admin", targetLog[0].Text)
	})

	t.Run("rejects a no-op role change", func(t *testing.T) {
		mem := store.NewMemory()
		svc := newTestService(mem)
		admin := seedAccount(t, mem, "admin@example.com", accounts.RoleAdmin)
		target := seedAccount(t, mem, "user@example.com", accounts.RoleUser)

		_, err := svc.SetRole(context.Background(), admin, target.ID, accounts.RoleUser)

		assert.ErrorIs(t, err, moderation.ErrRoleUnchanged)

		adminLog, err := mem.ListActivity(context.Background(), admin.ID, 0, 10)
		require.NoError(t, err)
		assert.Empty(t, adminLog)
	})

	t.Run("returns ErrNotFound for unknown target", func(t *testing.T) {
		mem := store.NewMemory()
		svc := newTestService(mem)
		admin := seedAccount(t, mem, "admin@example.com", accounts.RoleAdmin)

		_, err := svc.SetRole(context.Background(), admin, uuid.New(), accounts.RoleAdmin)

		assert.ErrorIs(t, err, accounts.ErrNotFound)
	})
}

func TestService_SetModerationState(t *testing.T) {
	t.Run("blocks a user and audits both sides", func(t *testing.T) {
		mem := store.NewMemory()
		svc := newTestService(mem)
		admin := seedAccount(t, mem, "admin@example.com", accounts.RoleAdmin)
		target := seedAccount(t, mem, "user@example.com", accounts.RoleUser)

		updated, err := svc.SetModerationState(context.Background(), admin, target.ID, accounts.ModerationBlocked)

		require.NoError(t, err)
		assert.Equal(t, accounts.ModerationBlocked, updated.ModerationState)

		targetLog, err := mem.ListActivity(context.Background(), target.ID, 0, 10)
		require.NoError(t, err)
		require.Len(t, targetLog, 1)
		assert.Equal(t, "Your account status has been updated to: blocked by an admin", targetLog[0].Text)
	})

	t.Run("rejects a no-op state change", func(t *testing.T) {
		mem := store.NewMemory()
		svc := newTestService(mem)
		admin := seedAccount(t, mem, "admin@example.com", accounts.RoleAdmin)
		target := seedAccount(t, mem, "user@example.com", accounts.RoleUser)

		_, err := svc.SetModerationState(context.Background(), admin, target.ID, accounts.ModerationNormal)

		assert.ErrorIs(t, err, moderation.ErrStateUnchanged)
	})
}

func TestService_BatchDeleteEntries(t *testing.T) {
	t.Run("deletes the listed entries and reports the count", func(t *testing.T) {
		mem := store.NewMemory()
		svc := newTestService(mem)
		admin := seedAccount(t, mem, "admin@example.com", accounts.RoleAdmin)
		owner := seedAccount(t, mem, "user@example.com", accounts.RoleUser)

		e1 := seedEntry(t, mem, owner.ID)
		e2 := seedEntry(t, mem, owner.ID)
		kept := seedEntry(t, mem, owner.ID)

		deleted, err := svc.BatchDeleteEntries(context.Background(), admin, []uuid.UUID{e1.ID, e2.ID})

		require.NoError(t, err)
		assert.EqualValues(t, 2, deleted)

		_, err = mem.GetByID(context.Background(), e1.ID)
		assert.ErrorIs(t, err, registry.ErrNotFound)

		_, err = mem.GetByID(context.Background(), kept.ID)
		assert.NoError(t, err)
	})

	t.Run("deleted codes stop resolving", func(t *testing.T) {
		mem := store.NewMemory()
		svc := newTestService(mem)
		admin := seedAccount(t, mem, "admin@example.com", accounts.RoleAdmin)
		owner := seedAccount(t, mem, "user@example.com", accounts.RoleUser)
		entry := seedEntry(t, mem, owner.ID)

		_, err := mem.GetByCode(context.Background(), entry.ShortCode)
		require.NoError(t, err)

		_, err = svc.BatchDeleteEntries(context.Background(), admin, []uuid.UUID{entry.ID})
		require.NoError(t, err)

		_, err = mem.GetByCode(context.Background(), entry.ShortCode)
		assert.ErrorIs(t, err, registry.ErrNotFound)
	})

	t.Run("counts only entries that existed", func(t *testing.T) {
		mem := store.NewMemory()
		svc := newTestService(mem)
		admin := seedAccount(t, mem, "admin@example.com", accounts.RoleAdmin)
		owner := seedAccount(t, mem, "user@example.com", accounts.RoleUser)

		entry := seedEntry(t, mem, owner.ID)

		deleted, err := svc.BatchDeleteEntries(context.Background(), admin, []uuid.UUID{entry.ID, uuid.New()})

		require.NoError(t, err)
		assert.EqualValues(t, 1, deleted)
	})

	t.Run("fails when nothing was deleted", func(t *testing.T) {
		mem := store.NewMemory()
		svc := newTestService(mem)
		admin := seedAccount(t, mem, "admin@example.com", accounts.RoleAdmin)

		_, err := svc.BatchDeleteEntries(context.Background(), admin, []uuid.UUID{uuid.New()})

		assert.ErrorIs(t, err, registry.ErrNotFound)

		adminLog, listErr := mem.ListActivity(context.Background(), admin.ID, 0, 10)
		require.NoError(t, listErr)
		assert.Empty(t, adminLog)
	})

	t.Run("rejects empty and nil ids", func(t *testing.T) {
		mem := store.NewMemory()
		svc := newTestService(mem)
		admin := seedAccount(t, mem, "admin@example.com", accounts.RoleAdmin)

		_, err := svc.BatchDeleteEntries(context.Background(), admin, nil)
		assert.ErrorIs(t, err, moderation.ErrInvalidInput)

		_, err = svc.BatchDeleteEntries(context.Background(), admin, []uuid.UUID{uuid.Nil})
		assert.ErrorIs(t, err, moderation.ErrInvalidInput)
	})

	t.Run("audits the actor after a successful delete", func(t *testing.T) {
		mem := store.NewMemory()
		svc := newTestService(mem)
		admin := seedAccount(t, mem, "admin@example.com", accounts.RoleAdmin)
		owner := seedAccount(t, mem, "user@example.com", accounts.RoleUser)
		entry := seedEntry(t, mem, owner.ID)

		_, err := svc.BatchDeleteEntries(context.Background(), admin, []uuid.UUID{entry.ID})
		require.NoError(t, err)

		adminLog, err := mem.ListActivity(context.Background(), admin.ID, 0, 10)
		require.NoError(t, err)
		require.Len(t, adminLog, 1)
		assert.Equal(t,
			fmt.Sprintf("Admin with email: admin@example.com deleted 1 URLs. Deleted URL IDs: [%s]", entry.ID),
			adminLog[0].Text)
	})
}

func TestService_ListActivity(t *testing.T) {
	t.Run("returns the target's log and audits the actor", func(t *testing.T) {
		mem := store.NewMemory()
		svc := newTestService(mem)
		admin := seedAccount(t, mem, "admin@example.com", accounts.RoleAdmin)
		target := seedAccount(t, mem, "user@example.com", accounts.RoleUser)

		require.NoError(t, mem.AppendActivity(context.Background(),
			audit.Draft{AccountID: target.ID, Text: "User with email: user@example.com logged in"}))

		entries, err := svc.ListActivity(context.Background(), admin, target.ID, 1, 10)

		require.NoError(t, err)
		require.Len(t, entries, 1)

		adminLog, err := mem.ListActivity(context.Background(), admin.ID, 0, 10)
		require.NoError(t, err)
		require.Len(t, adminLog, 1)
		assert.Equal(t,
			fmt.Sprintf("Admin with email: admin@example.com viewed activity logs of user with ID: %s", target.ID),
			adminLog[0].Text)
	})

	t.Run("returns ErrNotFound for unknown target", func(t *testing.T) {
		mem := store.NewMemory()
		svc := newTestService(mem)
		admin := seedAccount(t, mem, "admin@example.com", accounts.RoleAdmin)

		_, err := svc.ListActivity(context.Background(), admin, uuid.New(), 1, 10)

		assert.ErrorIs(t, err, accounts.ErrNotFound)
	})
}
