// Package novelty remembers which ruling keys were seen in the previous
// poll cycle.
//
// The committed set is always exactly the keys fetched in the last cycle.
// Keys that drop out of the fetch window are forgotten and count as new
// again if they come back.
package novelty

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrPersist = errors.New("failed to persist novelty cache")

type Store interface {
	LoadKeys(ctx context.Context) ([]string, error)
	ReplaceKeys(ctx context.Context, keys []string) error
}

type Cache struct {
	store Store
	mu    sync.RWMutex
	known map[string]struct{}
}

// Open loads the persisted snapshot.
func Open(ctx context.Context, store Store) (*Cache, error) {
	keys, err := store.LoadKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load novelty cache: %w", err)
	}

	return &Cache{
		store: store,
		known: toSet(keys),
	}, nil
}

// Diff returns the fetched keys absent from the current snapshot, in fetch
// order and without repeats. It does not modify the cache.
func (c *Cache) Diff(fetched []string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fresh := make([]string, 0)
	seen := make(map[string]struct{}, len(fetched))
	for _, key := range fetched {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		if _, ok := c.known[key]; !ok {
			fresh = append(fresh, key)
		}
	}
	return fresh
}

// Commit replaces the snapshot with fetched. The in-memory snapshot is
// replaced even when persisting fails; that failure wraps ErrPersist.
func (c *Cache) Commit(ctx context.Context, fetched []string) error {
	keys := make([]string, 0, len(fetched))
	next := make(map[string]struct{}, len(fetched))
	for _, key := range fetched {
		if _, ok := next[key]; ok {
			continue
		}
		next[key] = struct{}{}
		keys = append(keys, key)
	}

	c.mu.Lock()
	c.known = next
	c.mu.Unlock()

	if err := c.store.ReplaceKeys(ctx, keys); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (c *Cache) Contains(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.known[key]
	return ok
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.known)
}

func toSet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	return set
}
