package registry_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trimly/trimly/internal/registry"
	"github.com/trimly/trimly/internal/store"
)

func newTestService(repo registry.Repository) *registry.Service {
	gen, _ := nanoid.Standard(8)

	return registry.NewService(repo, gen)
}

func TestService_Create(t *testing.T) {
	owner := uuid.New()

	t.Run("creates entry with public visibility", func(t *testing.T) {
		svc := newTestService(store.NewMemory())

		entry, created, err := svc.Create(context.Background(), "https://example.com/page", owner)

		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEmpty(t, entry.ShortCode)
		assert.Equal(t, "https://example.com/page", entry.Target)
		assert.Equal(t, owner, entry.OwnerID)
		assert.Equal(t, registry.VisibilityPublic, entry.Visibility)
	})

	t.Run("same target returns existing entry", func(t *testing.T) {
		svc := newTestService(store.NewMemory())

		first, created1, err1 := svc.Create(context.Background(), "https://example.com/page", owner)
		second, created2, err2 := svc.Create(context.Background(), "https://example.com/page", owner)

		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.True(t, created1)
		assert.False(t, created2)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.ShortCode, second.ShortCode)
	})

	t.Run("rejects invalid target", func(t *testing.T) {
		svc := newTestService(store.NewMemory())

		_, _, err := svc.Create(context.Background(), "not a url", owner)

		assert.ErrorIs(t, err, registry.ErrInvalidTarget)
	})

	t.Run("retries on short code collision", func(t *testing.T) {
		mem := store.NewMemory()

		codes := []string{"clash", "clash", "fresh"}
		i := 0
		svc := registry.NewService(mem, func() string {
			code := codes[i%len(codes)]
			i++

			return code
		})

		_, _, err := svc.Create(context.Background(), "https://example.com/first", owner)
		require.NoError(t, err)

		entry, created, err := svc.Create(context.Background(), "https://example.com/second", owner)

		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "fresh", entry.ShortCode)
	})

	t.Run("fails when code generation keeps colliding", func(t *testing.T) {
		mem := store.NewMemory()
		svc := registry.NewService(mem, func() string { return "only" })

		_, _, err := svc.Create(context.Background(), "https://example.com/first", owner)
		require.NoError(t, err)

		_, _, err = svc.Create(context.Background(), "https://example.com/second", owner)

		assert.ErrorIs(t, err, registry.ErrCodeSpaceExhausted)
	})
}

func TestService_Get(t *testing.T) {
	owner := uuid.New()

	t.Run("resolves code to entry", func(t *testing.T) {
		svc := newTestService(store.NewMemory())
		entry, _, err := svc.Create(context.Background(), "https://example.com", owner)
		require.NoError(t, err)

		got, err := svc.Get(context.Background(), entry.ShortCode)

		require.NoError(t, err)
		assert.Equal(t, entry.ID, got.ID)
	})

	t.Run("returns ErrNotFound for unknown code", func(t *testing.T) {
		svc := newTestService(store.NewMemory())

		_, err := svc.Get(context.Background(), "missing")

		assert.ErrorIs(t, err, registry.ErrNotFound)
	})
}

func TestService_ToggleVisibility(t *testing.T) {
	owner := uuid.New()

	t.Run("flips public to private and back", func(t *testing.T) {
		svc := newTestService(store.NewMemory())
		entry, _, err := svc.Create(context.Background(), "https://example.com", owner)
		require.NoError(t, err)

		visibility, err := svc.ToggleVisibility(context.Background(), entry.ID)
		require.NoError(t, err)
		assert.Equal(t, registry.VisibilityPrivate, visibility)

		visibility, err = svc.ToggleVisibility(context.Background(), entry.ID)
		require.NoError(t, err)
		assert.Equal(t, registry.VisibilityPublic, visibility)
	})

	t.Run("returns ErrNotFound for unknown entry", func(t *testing.T) {
		svc := newTestService(store.NewMemory())

		_, err := svc.ToggleVisibility(context.Background(), uuid.New())

		assert.ErrorIs(t, err, registry.ErrNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	owner := uuid.New()

	t.Run("deleted entry can no longer be resolved", func(t *testing.T) {
		svc := newTestService(store.NewMemory())
		entry, _, err := svc.Create(context.Background(), "https://example.com", owner)
		require.NoError(t, err)

		require.NoError(t, svc.Delete(context.Background(), entry.ID))

		_, err = svc.Get(context.Background(), entry.ShortCode)
		assert.ErrorIs(t, err, registry.ErrNotFound)
	})

	t.Run("deleting twice returns ErrNotFound", func(t *testing.T) {
		svc := newTestService(store.NewMemory())
		entry, _, err := svc.Create(context.Background(), "https://example.com", owner)
		require.NoError(t, err)

		require.NoError(t, svc.Delete(context.Background(), entry.ID))

		assert.ErrorIs(t, svc.Delete(context.Background(), entry.ID), registry.ErrNotFound)
	})
}

func TestService_ListByOwner(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	seed := func(t *testing.T, svc *registry.Service, n int, who uuid.UUID) {
		t.Helper()

		for i := 0; i < n; i++ {
			_, _, err := svc.Create(context.Background(), fmt.Sprintf("https://example.com/%s/%d", who, i), who)
			require.NoError(t, err)
		}
	}

	t.Run("returns only the owner's entries", func(t *testing.T) {
		svc := newTestService(store.NewMemory())
		seed(t, svc, 3, owner)
		seed(t, svc, 2, other)

		entries, total, err := svc.ListByOwner(context.Background(), owner, 1, 10)

		require.NoError(t, err)
		assert.Len(t, entries, 3)
		assert.EqualValues(t, 3, total)
	})

	t.Run("pages do not overlap", func(t *testing.T) {
		svc := newTestService(store.NewMemory())
		seed(t, svc, 5, owner)

		page1, total, err := svc.ListByOwner(context.Background(), owner, 1, 2)
		require.NoError(t, err)
		page2, _, err := svc.ListByOwner(context.Background(), owner, 2, 2)
		require.NoError(t, err)

		assert.EqualValues(t, 5, total)
		assert.Len(t, page1, 2)
		assert.Len(t, page2, 2)

		seen := map[uuid.UUID]bool{}
		for _, e := range append(page1, page2...) {
			assert.False(t, seen[e.ID])
			seen[e.ID] = true
		}
	})

	t.Run("clamps page and limit to one", func(t *testing.T) {
		svc := newTestService(store.NewMemory())
		seed(t, svc, 2, owner)

		entries, total, err := svc.ListByOwner(context.Background(), owner, 0, 0)

		require.NoError(t, err)
		assert.Len(t, entries, 1)
		assert.EqualValues(t, 2, total)
	})
}
