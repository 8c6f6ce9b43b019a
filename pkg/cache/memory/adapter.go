package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/authgate/authgate/pkg/cache"
)

var ErrEmptyKey = errors.New("memory cache: key is required")

type entry[V any] struct {
	value   V
	created time.Time
}

// Adapter is an in-process cache.Store guarded by a RWMutex. No I/O is
// performed under the lock, so all operations complete in bounded time.
type Adapter[V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry[V]

	// now is swappable for expiry tests.
	now func() time.Time
}

var _ cache.Store[string] = (*Adapter[string])(nil)

// NewAdapter creates an in-memory store with the given TTL. A ttl of zero
// or less means entries never expire.
func NewAdapter[V any](ttl time.Duration) *Adapter[V] {
	return &Adapter[V]{
		ttl:     ttl,
		entries: map[string]entry[V]{},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (a *Adapter[V]) Set(ctx context.Context, key string, value V) error {
	if key == "" {
		return ErrEmptyKey
	}

	a.mu.Lock()
	a.entries[key] = entry[V]{
		value:   value,
		created: a.now(),
	}
	a.mu.Unlock()
	return nil
}

func (a *Adapter[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V

	a.mu.RLock()
	e, ok := a.entries[key]
	a.mu.RUnlock()
	if !ok {
		return zero, false, nil
	}

	if a.expired(e) {
		a.evictStale(key, e.created)
		return zero, false, nil
	}

	return e.value, true, nil
}

func (a *Adapter[V]) Contains(ctx context.Context, key string) (bool, error) {
	a.mu.RLock()
	e, ok := a.entries[key]
	a.mu.RUnlock()
	if !ok {
		return false, nil
	}

	if a.expired(e) {
		a.evictStale(key, e.created)
		return false, nil
	}

	return true, nil
}

func (a *Adapter[V]) Delete(ctx context.Context, key string) (bool, error) {
	a.mu.Lock()
	e, ok := a.entries[key]
	if ok {
		delete(a.entries, key)
	}
	a.mu.Unlock()

	if !ok {
		return false, nil
	}
	return !a.expired(e), nil
}

// evictStale removes key only if the stored entry still carries the
// timestamp the expiry decision was made against. A concurrent Set between
// the read and this eviction replaces the timestamp, and the fresh entry
// must survive.
func (a *Adapter[V]) evictStale(key string, created time.Time) {
	a.mu.Lock()
	if e, ok := a.entries[key]; ok && e.created.Equal(created) {
		delete(a.entries, key)
	}
	a.mu.Unlock()
}

func (a *Adapter[V]) expired(e entry[V]) bool {
	if a.ttl <= 0 {
		return false
	}
	return a.now().Sub(e.created) > a.ttl
}
