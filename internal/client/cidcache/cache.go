// Package cidcache keeps the ordered list of CIDs published from this
// device. It is the fallback source of "which entries exist" when the
// pinning service listing is unavailable.
//
// The list lives under a single key of an injected Store as a JSON array of
// strings, most recent first. Reads never fail: a missing, unreadable or
// corrupt value is an empty cache. Processes sharing one store are not
// coordinated unless the store implements Updater; otherwise the last write
// wins.
package cidcache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/dediary/internal/client/models"
	"github.com/dmitrijs2005/dediary/internal/common"
	"github.com/dmitrijs2005/dediary/internal/logging"
)

// Store is the durable key/value backend of the cache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Updater is an optional Store extension that performs an atomic
// read-modify-write of one key.
type Updater interface {
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
}

// Cache is the Local Identifier Cache.
type Cache struct {
	store  Store
	key    string
	logger logging.Logger

	mu sync.Mutex
}

// New returns a cache stored under common.CIDCacheKey.
func New(store Store, logger logging.Logger) *Cache {
	return &Cache{store: store, key: common.CIDCacheKey, logger: logger.With("module", "cidcache")}
}

// List returns the cached CIDs, most recently added first.
func (c *Cache) List(ctx context.Context) []models.CID {
	raw, err := c.store.Get(ctx, c.key)
	if err != nil {
		c.logger.Warn(ctx, "local cache unreadable, treating as empty", "error", err)
		return []models.CID{}
	}
	cids, err := decode(raw)
	if err != nil {
		c.logger.Warn(ctx, "local cache corrupt, treating as empty", "error", err)
		return []models.CID{}
	}
	return cids
}

// Contains reports whether cid is cached.
func (c *Cache) Contains(ctx context.Context, cid models.CID) bool {
	for _, x := range c.List(ctx) {
		if x == cid {
			return true
		}
	}
	return false
}

// Add puts cid at the front of the list. Adding a cached CID is a no-op.
func (c *Cache) Add(ctx context.Context, cid models.CID) error {
	if _, err := models.ParseCID(string(cid)); err != nil {
		return err
	}
	return c.mutate(ctx, func(cids []models.CID) ([]models.CID, bool) {
		for _, x := range cids {
			if x == cid {
				return cids, false
			}
		}
		return append([]models.CID{cid}, cids...), true
	})
}

// Remove drops every occurrence of cid. Removing an unknown CID is a no-op.
func (c *Cache) Remove(ctx context.Context, cid models.CID) error {
	return c.mutate(ctx, func(cids []models.CID) ([]models.CID, bool) {
		out := cids[:0:0]
		for _, x := range cids {
			if x != cid {
				out = append(out, x)
			}
		}
		return out, len(out) != len(cids)
	})
}

// Clear empties the cache.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("clear local cache: %w", err)
	}
	return nil
}

// mutate applies fn to the current list and persists the result when fn
// reports a change.
func (c *Cache) mutate(ctx context.Context, fn func([]models.CID) ([]models.CID, bool)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if u, ok := c.store.(Updater); ok {
		return u.Update(ctx, c.key, func(current []byte) ([]byte, error) {
			next, changed := fn(c.decodeOrEmpty(ctx, current))
			if !changed {
				return current, nil
			}
			return encode(next)
		})
	}

	raw, err := c.store.Get(ctx, c.key)
	if err != nil {
		c.logger.Warn(ctx, "local cache unreadable, overwriting", "error", err)
		raw = nil
	}
	next, changed := fn(c.decodeOrEmpty(ctx, raw))
	if !changed {
		return nil
	}
	b, err := encode(next)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, c.key, b); err != nil {
		return fmt.Errorf("write local cache: %w", err)
	}
	return nil
}

func (c *Cache) decodeOrEmpty(ctx context.Context, raw []byte) []models.CID {
	cids, err := decode(raw)
	if err != nil {
		c.logger.Warn(ctx, "local cache corrupt, overwriting", "error", err)
		return []models.CID{}
	}
	return cids
}

// decode parses the stored JSON array, dropping duplicates (first wins).
func decode(raw []byte) ([]models.CID, error) {
	if len(raw) == 0 {
		return []models.CID{}, nil
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrLocalCacheCorrupt, err)
	}
	if items == nil {
		return nil, fmt.Errorf("%w: null value", common.ErrLocalCacheCorrupt)
	}

	seen := make(map[models.CID]struct{}, len(items))
	out := make([]models.CID, 0, len(items))
	for _, s := range items {
		cid, err := models.ParseCID(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrLocalCacheCorrupt, err)
		}
		if _, ok := seen[cid]; ok {
			continue
		}
		seen[cid] = struct{}{}
		out = append(out, cid)
	}
	return out, nil
}

func encode(cids []models.CID) ([]byte, error) {
	items := make([]string, len(cids))
	for i, c := range cids {
		items[i] = string(c)
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode local cache: %w", err)
	}
	return b, nil
}
