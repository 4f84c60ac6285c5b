package stats_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trimly/trimly/internal/ledger"
	"github.com/trimly/trimly/internal/registry"
	"github.com/trimly/trimly/internal/stats"
	"github.com/trimly/trimly/internal/store"
)

func seedEntry(t *testing.T, mem *store.Memory, owner uuid.UUID, visibility registry.Visibility) *registry.Entry {
	t.Helper()

	entry := &registry.Entry{
		ID:         uuid.New(),
		ShortCode:  uuid.NewString()[:8],
		Target:     fmt.Sprintf("https://example.com/%s", uuid.NewString()),
		OwnerID:    owner,
		Visibility: visibility,
	}
	require.NoError(t, mem.Insert(context.Background(), entry))

	return entry
}

func seedVisit(t *testing.T, mem *store.Memory, entryID uuid.UUID, visitor *uuid.UUID) {
	t.Helper()

	require.NoError(t, mem.Append(context.Background(), &ledger.VisitEvent{
		EntryID:   entryID,
		VisitorID: visitor,
	}))
}

func TestEngine_Aggregate(t *testing.T) {
	t.Run("aggregates clicks and unique visitors per entry", func(t *testing.T) {
		mem := store.NewMemory()
		engine := stats.NewEngine(mem)
		owner := uuid.New()

		entry := seedEntry(t, mem, owner, registry.VisibilityPublic)

		alice := uuid.New()
		seedVisit(t, mem, entry.ID, &alice)
		seedVisit(t, mem, entry.ID, &alice)
		seedVisit(t, mem, entry.ID, nil)

		rows, pagination, err := engine.Aggregate(context.Background(), stats.Filter{OwnerID: &owner}, 1, 10)

		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, entry.ID, rows[0].EntryID)
		assert.EqualValues(t, 3, rows[0].TotalClicks)
		assert.EqualValues(t, 1, rows[0].UniqueVisitors)
		assert.EqualValues(t, 1, pagination.TotalRecords)
	})

	t.Run("filters by owner and visibility", func(t *testing.T) {
		mem := store.NewMemory()
		engine := stats.NewEngine(mem)
		owner := uuid.New()
		other := uuid.New()

		seedEntry(t, mem, owner, registry.VisibilityPublic)
		seedEntry(t, mem, owner, registry.VisibilityPrivate)
		seedEntry(t, mem, other, registry.VisibilityPublic)

		private := registry.VisibilityPrivate
		rows, pagination, err := engine.Aggregate(context.Background(),
			stats.Filter{OwnerID: &owner, Visibility: &private}, 1, 10)

		require.NoError(t, err)
		assert.Len(t, rows, 1)
		assert.EqualValues(t, 1, pagination.TotalRecords)
	})

	t.Run("computes total pages from the unfiltered count", func(t *testing.T) {
		mem := store.NewMemory()
		engine := stats.NewEngine(mem)
		owner := uuid.New()

		for i := 0; i < 5; i++ {
			seedEntry(t, mem, owner, registry.VisibilityPublic)
		}

		rows, pagination, err := engine.Aggregate(context.Background(), stats.Filter{OwnerID: &owner}, 2, 2)

		require.NoError(t, err)
		assert.Len(t, rows, 2)
		assert.Equal(t, 2, pagination.CurrentPage)
		assert.Equal(t, 3, pagination.TotalPages)
		assert.EqualValues(t, 5, pagination.TotalRecords)
		assert.Equal(t, 2, pagination.Limit)
	})

	t.Run("returns ErrNoResults when nothing matches", func(t *testing.T) {
		mem := store.NewMemory()
		engine := stats.NewEngine(mem)
		owner := uuid.New()

		_, _, err := engine.Aggregate(context.Background(), stats.Filter{OwnerID: &owner}, 1, 10)

		assert.ErrorIs(t, err, stats.ErrNoResults)
	})

	t.Run("returns ErrNoResults past the last page", func(t *testing.T) {
		mem := store.NewMemory()
		engine := stats.NewEngine(mem)
		owner := uuid.New()

		seedEntry(t, mem, owner, registry.VisibilityPublic)

		_, _, err := engine.Aggregate(context.Background(), stats.Filter{OwnerID: &owner}, 5, 10)

		assert.ErrorIs(t, err, stats.ErrNoResults)
	})

	t.Run("clamps page and limit to one", func(t *testing.T) {
		mem := store.NewMemory()
		engine := stats.NewEngine(mem)
		owner := uuid.New()

		seedEntry(t, mem, owner, registry.VisibilityPublic)
		seedEntry(t, mem, owner, registry.VisibilityPublic)

		rows, pagination, err := engine.Aggregate(context.Background(), stats.Filter{OwnerID: &owner}, 0, -3)

		require.NoError(t, err)
		assert.Len(t, rows, 1)
		assert.Equal(t, 1, pagination.CurrentPage)
		assert.Equal(t, 1, pagination.Limit)
	})
}

func TestEngine_EntryStats(t *testing.T) {
	t.Run("returns the row for one entry", func(t *testing.T) {
		mem := store.NewMemory()
		engine := stats.NewEngine(mem)
		owner := uuid.New()

		entry := seedEntry(t, mem, owner, registry.VisibilityPublic)
		seedVisit(t, mem, entry.ID, nil)

		row, err := engine.EntryStats(context.Background(), entry.ID)

		require.NoError(t, err)
		assert.Equal(t, entry.ShortCode, row.ShortCode)
		assert.EqualValues(t, 1, row.TotalClicks)
		assert.Zero(t, row.UniqueVisitors)
	})

	t.Run("returns ErrNotFound for unknown entry", func(t *testing.T) {
		mem := store.NewMemory()
		engine := stats.NewEngine(mem)

		_, err := engine.EntryStats(context.Background(), uuid.New())

		assert.ErrorIs(t, err, registry.ErrNotFound)
	})
}
