package audit_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trimly/trimly/internal/audit"
	"github.com/trimly/trimly/internal/store"
)

type failingRepo struct{}

func (failingRepo) Append(context.Context, audit.Draft) error {
	return errors.New("append failed")
}

func (failingRepo) List(context.Context, uuid.UUID, int, int) ([]audit.Entry, error) {
	return nil, errors.New("list failed")
}

func TestLog_Record(t *testing.T) {
	t.Run("appends an entry for the account", func(t *testing.T) {
		mem := store.NewMemory()
		log := audit.NewLog(mem.Audit(), zap.NewNop())
		accountID := uuid.New()

		log.Record(context.Background(), accountID, "User with email: a@example.com logged in")

		entries, err := log.List(context.Background(), accountID, 1, 10)

		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, accountID, entries[0].AccountID)
		assert.Equal(t, "User with email: a@example.com logged in", entries[0].Text)
		assert.False(t, entries[0].CreatedAt.IsZero())
	})

	t.Run("swallows append failures", func(t *testing.T) {
		log := audit.NewLog(failingRepo{}, zap.NewNop())

		// must not panic or surface the error
		log.Record(context.Background(), uuid.New(), "anything")
	})
}

func TestLog_List(t *testing.T) {
	t.Run("returns entries oldest first, paginated", func(t *testing.T) {
		mem := store.NewMemory()
		log := audit.NewLog(mem.Audit(), zap.NewNop())
		accountID := uuid.New()

		for i := 0; i < 5; i++ {
			log.Record(context.Background(), accountID, fmt.Sprintf("event %d", i))
		}

		page1, err := log.List(context.Background(), accountID, 1, 2)
		require.NoError(t, err)
		page2, err := log.List(context.Background(), accountID, 2, 2)
		require.NoError(t, err)

		require.Len(t, page1, 2)
		require.Len(t, page2, 2)
		assert.Equal(t, "event 0", page1[0].Text)
		assert.Equal(t, "event 1", page1[1].Text)
		assert.Equal(t, "event 2", page2[0].Text)
	})

	t.Run("clamps page and limit to one", func(t *testing.T) {
		mem := store.NewMemory()
		log := audit.NewLog(mem.Audit(), zap.NewNop())
		accountID := uuid.New()

		log.Record(context.Background(), accountID, "first")
		log.Record(context.Background(), accountID, "second")

		entries, err := log.List(context.Background(), accountID, 0, 0)

		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "first", entries[0].Text)
	})

	t.Run("empty log yields no entries", func(t *testing.T) {
		mem := store.NewMemory()
		log := audit.NewLog(mem.Audit(), zap.NewNop())

		entries, err := log.List(context.Background(), uuid.New(), 1, 10)

		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
