package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/trimly/trimly/internal/registry"
)

// CachedEntryStore wraps a registry.Repository with Redis caching for the
// resolution hot path (code -> entry). Mutations invalidate the cached code;
// cache failures fall through to the underlying store.
type CachedEntryStore struct {
	store  registry.Repository
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCachedEntryStore creates a Redis-cached decorator around an entry store.
func NewCachedEntryStore(store registry.Repository, client *redis.Client, ttl time.Duration) *CachedEntryStore {
	return &CachedEntryStore{
		store:  store,
		client: client,
		prefix: "entry:",
		ttl:    ttl,
	}
}

func (c *CachedEntryStore) Insert(ctx context.Context, entry *registry.Entry) error {
	if err := c.store.Insert(ctx, entry); err != nil {
		return err
	}

	c.cache(ctx, entry)

	return nil
}

func (c *CachedEntryStore) GetByCode(ctx context.Context, code string) (*registry.Entry, error) {
	if payload, err := c.client.Get(ctx, c.prefix+code).Bytes(); err == nil {
		var entry registry.Entry
		if err := json.Unmarshal(payload, &entry); err == nil {
			return &entry, nil
		}
	}

	entry, err := c.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	c.cache(ctx, entry)

	return entry, nil
}

func (c *CachedEntryStore) GetByID(ctx context.Context, id uuid.UUID) (*registry.Entry, error) {
	return c.store.GetByID(ctx, id)
}

func (c *CachedEntryStore) GetByTarget(ctx context.Context, target string) (*registry.Entry, error) {
	return c.store.GetByTarget(ctx, target)
}

func (c *CachedEntryStore) SetVisibility(ctx context.Context, id uuid.UUID, visibility registry.Visibility) error {
	if err := c.store.SetVisibility(ctx, id, visibility); err != nil {
		return err
	}

	c.invalidateByID(ctx, id)

	return nil
}

func (c *CachedEntryStore) Delete(ctx context.Context, id uuid.UUID) error {
	// Look up the code before the row disappears, but only drop the key
	// after the delete: invalidating first leaves a window where a
	// concurrent resolution re-caches the doomed entry.
	entry, err := c.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}

	c.client.Del(ctx, c.prefix+entry.ShortCode)

	return nil
}

func (c *CachedEntryStore) DeleteBatch(ctx context.Context, ids []uuid.UUID) (int64, error) {
	keys := make([]string, 0, len(ids))

	for _, id := range ids {
		if entry, err := c.store.GetByID(ctx, id); err == nil {
			keys = append(keys, c.prefix+entry.ShortCode)
		}
	}

	deleted, err := c.store.DeleteBatch(ctx, ids)
	if err != nil {
		return 0, err
	}

	if len(keys) > 0 {
		c.client.Del(ctx, keys...)
	}

	return deleted, nil
}

func (c *CachedEntryStore) ListByOwner(ctx context.Context, owner uuid.UUID, offset, limit int) ([]registry.Entry, error) {
	return c.store.ListByOwner(ctx, owner, offset, limit)
}

func (c *CachedEntryStore) CountByOwner(ctx context.Context, owner uuid.UUID) (int64, error) {
	return c.store.CountByOwner(ctx, owner)
}

func (c *CachedEntryStore) cache(ctx context.Context, entry *registry.Entry) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return
	}

	c.client.Set(ctx, c.prefix+entry.ShortCode, payload, c.ttl)
}

func (c *CachedEntryStore) invalidateByID(ctx context.Context, id uuid.UUID) {
	entry, err := c.store.GetByID(ctx, id)
	if err != nil {
		return
	}

	c.client.Del(ctx, c.prefix+entry.ShortCode)
}
