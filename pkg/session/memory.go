package session

import (
	"context"

	"github.com/authgate/authgate/pkg/cache"
)

// MemoryStore keeps session mappings in a cache.Store. Expiration policy is
// whatever the injected cache enforces: an infinite-TTL cache gives plain
// sessions, a TTL-bound cache gives expiring ones. Sessions are lost on
// restart.
type MemoryStore struct {
	entries cache.Store[string]
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(entries cache.Store[string]) (*MemoryStore, error) {
	if entries == nil {
		return nil, ErrNilBacking
	}
	return &MemoryStore{entries: entries}, nil
}

func (s *MemoryStore) Create(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", ErrEmptyUserID
	}

	id, err := NewID()
	if err != nil {
		return "", err
	}

	if err := s.entries.Set(ctx, id, userID); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MemoryStore) Resolve(ctx context.Context, sessionID string) (string, bool, error) {
	if sessionID == "" {
		return "", false, nil
	}
	return s.entries.Get(ctx, sessionID)
}

func (s *MemoryStore) Destroy(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	return s.entries.Delete(ctx, sessionID)
}
