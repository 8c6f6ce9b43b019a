package memory

import (
	"context"
	"sync"

	"github.com/authgate/authgate/pkg/storage"
)

// Store is an in-process storage.Store. It exists for tests and for
// single-node setups that do not need sessions to survive a restart.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]storage.SessionRecord
	users    map[string]storage.UserRecord
	byEmail  map[string]string
}

var _ storage.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		sessions: map[string]storage.SessionRecord{},
		users:    map[string]storage.UserRecord{},
		byEmail:  map[string]string{},
	}
}

func (s *Store) PutSession(ctx context.Context, record storage.SessionRecord) error {
	s.mu.Lock()
	s.sessions[record.ID] = record
	s.mu.Unlock()
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (storage.SessionRecord, error) {
	s.mu.RLock()
	record, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return storage.SessionRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

func (s *Store) PutUser(ctx context.Context, record storage.UserRecord) error {
	s.mu.Lock()
	if previous, ok := s.users[record.ID]; ok && previous.Email != record.Email {
		delete(s.byEmail, previous.Email)
	}
	s.users[record.ID] = record
	s.byEmail[record.Email] = record.ID
	s.mu.Unlock()
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (storage.UserRecord, error) {
	s.mu.RLock()
	record, ok := s.users[id]
	s.mu.RUnlock()
	if !ok {
		return storage.UserRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (storage.UserRecord, error) {
	s.mu.RLock()
	id, ok := s.byEmail[email]
	var record storage.UserRecord
	if ok {
		record, ok = s.users[id]
	}
	s.mu.RUnlock()
	if !ok {
		return storage.UserRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (s *Store) GetUserByResetToken(ctx context.Context, token string) (storage.UserRecord, error) {
	if token == "" {
		return storage.UserRecord{}, storage.ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.users {
		if record.ResetToken != nil && *record.ResetToken == token {
			return record, nil
		}
	}
	return storage.UserRecord{}, storage.ErrNotFound
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	if record, ok := s.users[id]; ok {
		delete(s.byEmail, record.Email)
		delete(s.users, id)
	}
	s.mu.Unlock()
	return nil
}
