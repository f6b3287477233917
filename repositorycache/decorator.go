package repositorycache

import (
	"context"
	"log/slog"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-kaizen/cache"
	"github.com/goliatone/go-kaizen/kaizen"
	"github.com/puzpuzpuz/xsync/v3"
)

// Interface assertion to ensure CachedRepository implements kaizen.Repository
var _ kaizen.Repository = (*CachedRepository)(nil)

// Entry labels passed to an Observer.
const (
	EntryList = "list"
	EntryItem = "item"
)

// Observer receives cache lookup outcomes. It is optional.
type Observer interface {
	CacheHit(entry string)
	CacheMiss(entry string)
}

type noopObserver struct{}

func (noopObserver) CacheHit(string)  {}
func (noopObserver) CacheMiss(string) {}

// Option configures a CachedRepository.
type Option func(*CachedRepository)

// WithObserver reports cache hits and misses to o.
func WithObserver(o Observer) Option {
	return func(c *CachedRepository) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithLogger sets the logger used for cache bookkeeping messages.
func WithLogger(l *slog.Logger) Option {
	return func(c *CachedRepository) {
		if l != nil {
			c.logger = l
		}
	}
}

// CachedRepository decorates a base repository with a write-through record cache.
type CachedRepository struct {
	base     kaizen.Repository
	cache    *cache.RecordCache
	locks    *xsync.MapOf[string, *sync.Mutex] // per-id write serialization
	observer Observer
	logger   *slog.Logger
}

// New creates a new CachedRepository that wraps the base repository with caching
func New(base kaizen.Repository, recordCache *cache.RecordCache, opts ...Option) *CachedRepository {
	c := &CachedRepository{
		base:     base,
		cache:    recordCache,
		locks:    xsync.NewMapOf[string, *sync.Mutex](),
		observer: noopObserver{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create writes the record to the store, then caches it under its id and
// adds it to the list entry when one is present. A list entry that already
// holds the id gets the element replaced instead of a second copy.
func (c *CachedRepository) Create(ctx context.Context, record kaizen.Kaizen) (kaizen.Kaizen, error) {
	created, err := c.base.Create(ctx, record)
	if err != nil {
		return kaizen.Kaizen{}, err
	}

	c.cache.Set(created.ID, created.Clone())
	c.cache.Update(cache.ListKey, func(current any, ok bool) (any, bool) {
		list, isList := current.([]kaizen.Kaizen)
		if !ok || !isList {
			return nil, false
		}
		// a List that read the store after our insert may already hold it
		if idx := indexOf(list, created.ID); idx >= 0 {
			next := make([]kaizen.Kaizen, len(list))
			copy(next, list)
			next[idx] = created.Clone()
			return next, true
		}
		next := make([]kaizen.Kaizen, 0, len(list)+1)
		next = append(next, list...)
		return append(next, created.Clone()), true
	})

	return created, nil
}

// List serves the list entry when present; otherwise it loads the whole
// collection from the store and populates the entry.
func (c *CachedRepository) List(ctx context.Context) ([]kaizen.Kaizen, error) {
	if list, ok := cache.Lookup[[]kaizen.Kaizen](c.cache, cache.ListKey); ok {
		c.observer.CacheHit(EntryList)
		return kaizen.CloneAll(list), nil
	}
	c.observer.CacheMiss(EntryList)

	gen := c.cache.Generation()
	records, err := c.base.List(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []kaizen.Kaizen{}
	}

	if !c.cache.Fill(cache.ListKey, kaizen.CloneAll(records), gen) {
		c.logger.Debug("list snapshot superseded by concurrent write, not cached")
	}
	return records, nil
}

// GetByID serves the item entry when present; otherwise it loads the record
// from the store and caches it. Misses are never cached.
func (c *CachedRepository) GetByID(ctx context.Context, id string) (kaizen.Kaizen, error) {
	if record, ok := cache.Lookup[kaizen.Kaizen](c.cache, id); ok {
		c.observer.CacheHit(EntryItem)
		return record.Clone(), nil
	}
	c.observer.CacheMiss(EntryItem)

	gen := c.cache.Generation()
	record, err := c.base.GetByID(ctx, id)
	if err != nil {
		return kaizen.Kaizen{}, err
	}

	if !c.cache.Fill(id, record.Clone(), gen) {
		c.logger.Debug("record superseded by concurrent write, not cached", slog.String("id", id))
	}
	return record, nil
}

// Update applies patch in the store, then mirrors the returned state into
// the item entry and, when present, the matching element of the list entry.
func (c *CachedRepository) Update(ctx context.Context, id string, patch kaizen.Patch) (kaizen.Kaizen, error) {
	if id == "" {
		return kaizen.Kaizen{}, goerrors.New("id is required", goerrors.CategoryValidation).
			WithCode(400).
			WithTextCode("ID_REQUIRED")
	}
	return c.patchAndSync(ctx, id, patch)
}

// patchAndSync holds the id lock across the store write and the cache
// update so the cache applies writes for one id in store order.
func (c *CachedRepository) patchAndSync(ctx context.Context, id string, patch kaizen.Patch) (kaizen.Kaizen, error) {
	mu := c.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	updated, err := c.base.Update(ctx, id, patch)
	if err != nil {
		return kaizen.Kaizen{}, err
	}

	c.cache.Set(updated.ID, updated.Clone())
	c.cache.Update(cache.ListKey, func(current any, ok bool) (any, bool) {
		list, isList := current.([]kaizen.Kaizen)
		if !ok || !isList {
			return nil, false
		}
		idx := indexOf(list, updated.ID)
		if idx < 0 {
			// the snapshot predates this record; leave it for the next refresh
			return nil, false
		}
		next := make([]kaizen.Kaizen, len(list))
		copy(next, list)
		next[idx] = updated.Clone()
		return next, true
	})

	return updated, nil
}

func (c *CachedRepository) lockFor(id string) *sync.Mutex {
	mu, _ := c.locks.LoadOrCompute(id, func() *sync.Mutex {
		return &sync.Mutex{}
	})
	return mu
}

func indexOf(list []kaizen.Kaizen, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
