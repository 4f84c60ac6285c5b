package ledger_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trimly/trimly/internal/ledger"
	"github.com/trimly/trimly/internal/store"
)

func TestLedger_Record(t *testing.T) {
	t.Run("counts every visit", func(t *testing.T) {
		mem := store.NewMemory()
		l := ledger.New(mem)
		entryID := uuid.New()

		visitor := uuid.New()
		require.NoError(t, l.Record(context.Background(), entryID, &visitor))
		require.NoError(t, l.Record(context.Background(), entryID, &visitor))
		require.NoError(t, l.Record(context.Background(), entryID, nil))

		count, err := l.CountFor(context.Background(), entryID)

		require.NoError(t, err)
		assert.EqualValues(t, 3, count)
	})

	t.Run("anonymous visits never count as unique visitors", func(t *testing.T) {
		mem := store.NewMemory()
		l := ledger.New(mem)
		entryID := uuid.New()

		alice := uuid.New()
		bob := uuid.New()

		require.NoError(t, l.Record(context.Background(), entryID, &alice))
		require.NoError(t, l.Record(context.Background(), entryID, &alice))
		require.NoError(t, l.Record(context.Background(), entryID, &bob))
		require.NoError(t, l.Record(context.Background(), entryID, nil))
		require.NoError(t, l.Record(context.Background(), entryID, nil))

		count, err := l.CountFor(context.Background(), entryID)
		require.NoError(t, err)
		assert.EqualValues(t, 5, count)

		unique, err := l.UniqueVisitorsFor(context.Background(), entryID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, unique)
	})

	t.Run("entry without visits counts zero", func(t *testing.T) {
		mem := store.NewMemory()
		l := ledger.New(mem)

		count, err := l.CountFor(context.Background(), uuid.New())

		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
