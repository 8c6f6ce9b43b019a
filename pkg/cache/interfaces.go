package cache

import (
	"context"
)

// Store is a keyed value store whose entries are invalidated once they
// outlive the store's TTL. A TTL of zero or less disables expiration.
//
// Expiry is lazy: an expired entry is detected and evicted at read time.
// Entries that are never read again are not reclaimed; there is no
// background sweep. The store is deliberately not iterable and exposes
// no count.
type Store[V any] interface {
	// Set stores value under key with the current timestamp, overwriting
	// any existing entry unconditionally.
	Set(ctx context.Context, key string, value V) error

	// Get returns the value for key if present and unexpired. An expired
	// entry is evicted as a side effect and reported as absent.
	Get(ctx context.Context, key string) (V, bool, error)

	// Contains reports whether key is present and unexpired.
	Contains(ctx context.Context, key string) (bool, error)

	// Delete removes key unconditionally and reports whether a live entry
	// was removed. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) (bool, error)
}
