package session

import (
	"context"
	"errors"
	"time"

	"github.com/authgate/authgate/pkg/storage"
)

// DurableStore persists session mappings through a storage.SessionStore
// collaborator, so they survive restarts and can be shared by multiple
// instances pointing at the same backend. TTL checks happen here, against
// the record's creation time; the backend stores records verbatim.
//
// Storage failures surface to the caller unchanged. There are no retries
// and no fallback to a weaker backing.
type DurableStore struct {
	sessions storage.SessionStore
	ttl      time.Duration

	now func() time.Time
}

var _ Store = (*DurableStore)(nil)

// NewDurableStore creates a durable session store. A ttl of zero or less
// means sessions never expire.
func NewDurableStore(sessions storage.SessionStore, ttl time.Duration) (*DurableStore, error) {
	if sessions == nil {
		return nil, ErrNilBacking
	}
	return &DurableStore{
		sessions: sessions,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *DurableStore) Create(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", ErrEmptyUserID
	}

	id, err := NewID()
	if err != nil {
		return "", err
	}

	record := storage.SessionRecord{
		ID:        id,
		Subject:   userID,
		CreatedAt: s.now(),
	}
	if err := s.sessions.PutSession(ctx, record); err != nil {
		return "", err
	}
	return id, nil
}

func (s *DurableStore) Resolve(ctx context.Context, sessionID string) (string, bool, error) {
	if sessionID == "" {
		return "", false, nil
	}

	record, err := s.sessions.GetSession(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	if s.ttl > 0 && s.now().Sub(record.CreatedAt) > s.ttl {
		// Expired records are removed from backing storage, not just
		// hidden from the caller.
		if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
			return "", false, err
		}
		return "", false, nil
	}

	return record.Subject, true, nil
}

func (s *DurableStore) Destroy(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}

	_, err := s.sessions.GetSession(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		return false, err
	}
	return true, nil
}
