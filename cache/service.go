package cache

import (
	"sync"

	"github.com/goliatone/go-kaizen/internal/cacheinfra"
)

// ListKey is the reserved key holding the snapshot of the whole collection.
// Every other key is a record identifier.
const ListKey = "allKaizens"

// EntryStore is the raw key/value storage behind a RecordCache.
type EntryStore interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Delete(key string)
	Len() int
}

// UpdateFn computes a replacement for the entry under a key. It receives the
// current value and whether it exists, and returns the new value and whether
// to store it. Returning false leaves the entry as it was.
type UpdateFn func(current any, ok bool) (any, bool)

// RecordCache is a process-scoped cache with no expiry and no eviction.
// Entries change only through Set, Update, Fill and Invalidate.
//
// Every write bumps a generation counter. Readers that populate the cache
// after a store round trip use Fill with the generation they observed before
// the round trip, so a stale snapshot is dropped instead of overwriting a
// newer write.
type RecordCache struct {
	mu         sync.Mutex
	entries    EntryStore
	generation uint64
}

// NewRecordCache builds a RecordCache over entries.
func NewRecordCache(entries EntryStore) *RecordCache {
	return &RecordCache{entries: entries}
}

// Get is a pure lookup. It never touches the store.
func (c *RecordCache) Get(key string) (any, bool) {
	return c.entries.Get(key)
}

// Set unconditionally overwrites the entry under key.
func (c *RecordCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.entries.Set(key, value)
}

// Invalidate removes the entry under key.
func (c *RecordCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.entries.Delete(key)
}

// Update atomically replaces the entry under key with the result of fn.
// fn must not mutate current; it should build and return a new value.
func (c *RecordCache) Update(key string, fn UpdateFn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, ok := c.entries.Get(key)
	next, store := fn(current, ok)
	if !store {
		return false
	}
	c.generation++
	c.entries.Set(key, next)
	return true
}

// Generation returns the current write generation.
func (c *RecordCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Fill stores value under key only if no write happened since gen was read.
func (c *RecordCache) Fill(key string, value any, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return false
	}
	c.entries.Set(key, value)
	return true
}

// Len returns the number of cached entries, list entry included.
func (c *RecordCache) Len() int {
	return c.entries.Len()
}

// Lookup is a type-safe wrapper around Get. A value of a different type is
// reported as absent.
func Lookup[T any](c *RecordCache, key string) (T, bool) {
	v, ok := c.Get(key)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// NewCacheService constructs the default sturdyc-backed RecordCache.
func NewCacheService(cfg Config) (*RecordCache, error) {
	store, err := cacheinfra.NewSturdycStore(cfg.toInternal())
	if err != nil {
		return nil, err
	}
	return NewRecordCache(store), nil
}
