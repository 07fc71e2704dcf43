// Package cache provides byte-level caching for pipeline outputs.
//
// Layouts and rendered artifacts are content-addressed by the canonical
// CDC text they were produced from, so entries never go stale; TTLs exist
// only to bound disk or memory usage. Three backends are provided: a
// file cache for CLI use, a Redis cache for the serve mode, and a null
// cache that disables caching entirely.
package cache

import (
	"context"
	"time"
)

// NoExpiry disables expiration for an entry. Content-addressed entries
// are immutable, so this is the default for pipeline writes.
const NoExpiry time.Duration = 0

// Cache stores opaque byte blobs under string keys.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of NoExpiry keeps the entry until it is
	// deleted or evicted by the backend.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
