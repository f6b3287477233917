// Package cache provides the in-process record cache that sits between request
// handlers and the persistent store.
//
// # Overview
//
// A RecordCache is a single mapping from string key to cached value:
//
//   - ListKey holds an ordered snapshot of the whole collection
//   - every other key is a record identifier holding one record
//
// There is no TTL, no capacity eviction and no background expiry. An entry is
// absent only because the process restarted, it was never populated, or it was
// removed with Invalidate. Correctness rests on callers updating the cache
// after every confirmed store write; see the repositorycache package for the
// write-through policy built on top of it.
//
// # Basic Usage
//
//	c, err := cache.NewCacheService(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//
//	c.Set("65f0c2", record)
//	rec, ok := cache.Lookup[kaizen.Kaizen](c, "65f0c2")
//
// # Populating After A Store Read
//
// Reads that miss go to the store and then populate the cache. Because the
// store call can race with a write on another goroutine, readers capture the
// write generation first and populate with Fill:
//
//	gen := c.Generation()
//	list, err := store.List(ctx)
//	if err == nil {
//		c.Fill(cache.ListKey, list, gen) // dropped if a write landed meanwhile
//	}
//
// # Atomic List Changes
//
// Update runs a read-modify-write of one entry under the cache lock. The
// callback must return a new value rather than mutate the current one, so a
// reader never observes a half-applied change.
//
// # Storage
//
// NewCacheService backs the cache with a sturdyc client configured so that
// nothing expires and nothing is evicted. Any EntryStore can be used through
// NewRecordCache.
package cache
