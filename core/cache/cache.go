package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// entry holds one loaded value.
type entry[T any] struct {
	value T
	built time.Time
}

// Cache memoizes loaded values per key for a fixed TTL.
// Concurrent misses for the same key share a single load.
//
// Every key carries a generation bumped by Invalidate and Purge. A load only
// stores its result if the generation it started under is still current, so a
// load that overlaps an invalidation never brings the old value back.
type Cache[T any] struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]entry[T]
	gens    map[string]uint64
	epoch   uint64
	sf      singleflight.Group
}

// New creates a cache. A zero TTL disables caching: every Get loads.
func New[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry[T]),
		gens:    make(map[string]uint64),
	}
}

// TTL returns the configured time-to-live.
func (c *Cache[T]) TTL() time.Duration {
	return c.ttl
}

func (c *Cache[T]) fresh(key string) (T, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.ttl <= 0 || c.now().Sub(e.built) > c.ttl {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Get returns the cached value for key, or loads and stores a new one if it is
// absent or expired. Load errors are returned and never cached.
func (c *Cache[T]) Get(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	// Fast path
	if v, ok := c.fresh(key); ok {
		return v, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		gen, epoch := c.generation(key)

		// Double-check after acquiring the singleflight slot
		if v, ok := c.fresh(key); ok {
			return v, nil
		}

		v, err := load(ctx)
		if err != nil {
			return nil, err
		}

		if c.ttl > 0 {
			c.mu.Lock()
			if c.gens[key] == gen && c.epoch == epoch {
				c.entries[key] = entry[T]{value: v, built: c.now()}
			}
			c.mu.Unlock()
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return result.(T), nil
}

func (c *Cache[T]) generation(key string) (uint64, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gens[key], c.epoch
}

// Invalidate removes key from the cache. A load already in flight for key
// still returns to its callers but is not stored, and later calls start a
// new load instead of joining it.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.gens[key]++
	c.mu.Unlock()
	c.sf.Forget(key)
}

// Purge removes every entry and discards the results of in-flight loads.
func (c *Cache[T]) Purge() {
	c.mu.Lock()
	c.entries = make(map[string]entry[T])
	c.epoch++
	c.mu.Unlock()
}
