// Package repositorycache provides the write-through cached decorator for a
// kaizen.Repository.
//
// # Overview
//
// CachedRepository wraps a store implementation and keeps a cache.RecordCache
// in step with it. Reads are read-through; writes go to the store first and
// are mirrored into the cache only after the store confirmed them.
//
// # Basic Usage
//
//	store := bunstore.New(db)
//	recordCache, err := cache.NewCacheService(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//
//	cached := repositorycache.New(store, recordCache)
//
//	// Use exactly like the store
//	record, err := cached.GetByID(ctx, id)
//	all, err := cached.List(ctx)
//
// # Caching Behavior
//
// Create
//
//  1. Write to the store
//  2. Cache the new record under its id
//  3. If the list entry exists, append the record to a copy and swap it in
//
// List
//
//  1. Return the list entry when present
//  2. Otherwise load every record, populate the list entry, return it
//
// GetByID
//
//  1. Return the item entry when present
//  2. Otherwise load from the store; not-found is returned and never cached
//  3. Populate the item entry
//
// Update
//
//  1. Apply the patch in the store and receive the post-update record
//  2. Overwrite the item entry
//  3. If the list entry exists, replace the matching element in a copy and swap it in
//
// A failed store call leaves the cache exactly as it was.
//
// # Concurrency
//
// Writes to one id are serialized across the store call and the cache update,
// so the cache applies them in the order the store did. Population after a
// miss is guarded by the cache write generation: a snapshot that was read
// before a concurrent write completed is returned to its caller but not
// cached. Two writes on different ids never block each other.
//
// # Error Handling
//
// Errors from the base repository are propagated unchanged. Not-found errors
// carry the go-errors not_found category; see kaizen.IsNotFound.
package repositorycache
