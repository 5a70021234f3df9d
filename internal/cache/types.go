package cache

import "context"

// Key identifies a cached blob. Size is part of the key so an object that
// was replaced under the same name is not served stale.
type Key struct {
	Name string
	Size int64
}

// BlobCache is a byte-oriented cache for immutable blobs.
// Returned slices must be treated as read-only.
type BlobCache interface {
	// Get returns a cached blob. ok=false if missing.
	Get(ctx context.Context, key Key) (b []byte, ok bool)
	// Set caches a blob. The caller must treat b as immutable afterwards.
	Set(ctx context.Context, key Key, b []byte)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key Key) bool)
	// Close waits for pending writes.
	Close() error
	// Stats returns cache statistics.
	Stats() (hits, misses int64)
}
