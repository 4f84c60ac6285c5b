package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trimly/trimly/internal/accounts"
	"github.com/trimly/trimly/internal/ledger"
	"github.com/trimly/trimly/internal/registry"
	"github.com/trimly/trimly/internal/store"
)

func entry(code, target string, owner uuid.UUID) *registry.Entry {
	return &registry.Entry{
		ID:         uuid.New(),
		ShortCode:  code,
		Target:     target,
		OwnerID:    owner,
		Visibility: registry.VisibilityPublic,
	}
}

func TestMemory_Insert(t *testing.T) {
	owner := uuid.New()

	t.Run("inserts and stamps timestamps", func(t *testing.T) {
		mem := store.NewMemory()
		e := entry("abc123", "https://example.com", owner)

		require.NoError(t, mem.Insert(context.Background(), e))
		assert.False(t, e.CreatedAt.IsZero())

		got, err := mem.GetByCode(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, e.ID, got.ID)
	})

	t.Run("enforces the short code constraint", func(t *testing.T) {
		mem := store.NewMemory()
		require.NoError(t, mem.Insert(context.Background(), entry("abc123", "https://example.com/1", owner)))

		err := mem.Insert(context.Background(), entry("abc123", "https://example.com/2", owner))

		assert.ErrorIs(t, err, registry.ErrCodeTaken)
	})

	t.Run("enforces the target constraint", func(t *testing.T) {
		mem := store.NewMemory()
		require.NoError(t, mem.Insert(context.Background(), entry("abc123", "https://example.com", owner)))

		err := mem.Insert(context.Background(), entry("xyz789", "https://example.com", owner))

		assert.ErrorIs(t, err, registry.ErrTargetExists)
	})
}

func TestMemory_Delete(t *testing.T) {
	owner := uuid.New()

	t.Run("cascades visit events", func(t *testing.T) {
		mem := store.NewMemory()
		e := entry("abc123", "https://example.com", owner)
		require.NoError(t, mem.Insert(context.Background(), e))
		require.NoError(t, mem.Append(context.Background(), &ledger.VisitEvent{EntryID: e.ID}))

		require.NoError(t, mem.Delete(context.Background(), e.ID))

		count, err := mem.CountFor(context.Background(), e.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("frees the code and target for reuse", func(t *testing.T) {
		mem := store.NewMemory()
		e := entry("abc123", "https://example.com", owner)
		require.NoError(t, mem.Insert(context.Background(), e))
		require.NoError(t, mem.Delete(context.Background(), e.ID))

		require.NoError(t, mem.Insert(context.Background(), entry("abc123", "https://example.com", owner)))
	})
}

func TestMemory_DeleteBatch(t *testing.T) {
	owner := uuid.New()

	t.Run("reports only rows that existed", func(t *testing.T) {
		mem := store.NewMemory()
		first := entry("aaa", "https://example.com/a", owner)
		second := entry("bbb", "https://example.com/b", owner)
		require.NoError(t, mem.Insert(context.Background(), first))
		require.NoError(t, mem.Insert(context.Background(), second))

		deleted, err := mem.DeleteBatch(context.Background(), []uuid.UUID{first.ID, second.ID, uuid.New()})

		require.NoError(t, err)
		assert.EqualValues(t, 2, deleted)

		_, err = mem.GetByCode(context.Background(), "aaa")
		assert.ErrorIs(t, err, registry.ErrNotFound)
	})
}

func TestMemory_ListByOwner(t *testing.T) {
	owner := uuid.New()

	t.Run("returns newest first", func(t *testing.T) {
		mem := store.NewMemory()
		first := entry("aaa", "https://example.com/a", owner)
		second := entry("bbb", "https://example.com/b", owner)
		require.NoError(t, mem.Insert(context.Background(), first))
		require.NoError(t, mem.Insert(context.Background(), second))

		entries, err := mem.ListByOwner(context.Background(), owner, 0, 10)

		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, second.ID, entries[0].ID)
		assert.Equal(t, first.ID, entries[1].ID)
	})
}

func TestMemory_Accounts(t *testing.T) {
	t.Run("enforces the email constraint", func(t *testing.T) {
		mem := store.NewMemory()
		repo := mem.Accounts()

		require.NoError(t, repo.Insert(context.Background(), &accounts.Account{
			ID:    uuid.New(),
			Email: "ada@example.com",
		}))

		err := repo.Insert(context.Background(), &accounts.Account{
			ID:    uuid.New(),
			Email: "ada@example.com",
		})

		assert.ErrorIs(t, err, accounts.ErrEmailTaken)
	})

	t.Run("lookups return copies", func(t *testing.T) {
		mem := store.NewMemory()
		repo := mem.Accounts()
		id := uuid.New()

		require.NoError(t, repo.Insert(context.Background(), &accounts.Account{
			ID:    id,
			Email: "ada@example.com",
			Role:  accounts.RoleUser,
		}))

		got, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err)

		got.Role = accounts.RoleAdmin

		stored, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, accounts.RoleUser, stored.Role)
	})
}
