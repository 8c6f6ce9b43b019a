// Package bbolt provides a single-file storage.Store backed by a bbolt
// database. Sessions and users written here survive process restarts.
package bbolt

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/authgate/authgate/pkg/storage"
)

var (
	bucketSessions     = []byte("sessions")
	bucketUsers        = []byte("users")
	bucketUsersByEmail = []byte("users_by_email")
	bucketUsersByReset = []byte("users_by_reset_token")
)

type Store struct {
	db *bbolt.DB
}

var _ storage.Store = (*Store)(nil)

// NewStore wraps an already-open bbolt database and creates the buckets it
// needs.
func NewStore(db *bbolt.DB) (*Store, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketSessions, bucketUsers, bucketUsersByEmail, bucketUsersByReset} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bbolt store: create buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStoreFromFile opens (or creates) a bbolt database at path.
func NewStoreFromFile(path string, options *bbolt.Options) (*Store, error) {
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("bbolt store: open %s: %w", path, err)
	}

	store, err := NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) PutSession(ctx context.Context, record storage.SessionRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketSessions).Put([]byte(record.ID), data)
	})
}

func (s *Store) GetSession(ctx context.Context, id string) (storage.SessionRecord, error) {
	var record storage.SessionRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSessions).Get([]byte(id))
		if data == nil {
			return storage.ErrNotFound
		}
		return json.Unmarshal(data, &record)
	})
	if err != nil {
		return storage.SessionRecord{}, err
	}
	return record, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSessions).Delete([]byte(id))
	})
}

func (s *Store) PutUser(ctx context.Context, record storage.UserRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		users := tx.Bucket(bucketUsers)
		byEmail := tx.Bucket(bucketUsersByEmail)
		byReset := tx.Bucket(bucketUsersByReset)

		// Drop stale index entries when the record is being replaced.
		if previous := users.Get([]byte(record.ID)); previous != nil {
			var old storage.UserRecord
			if err := json.Unmarshal(previous, &old); err == nil {
				if old.Email != record.Email {
					if err := byEmail.Delete([]byte(old.Email)); err != nil {
						return err
					}
				}
				if old.ResetToken != nil {
					if err := byReset.Delete([]byte(*old.ResetToken)); err != nil {
						return err
					}
				}
			}
		}

		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		if err := users.Put([]byte(record.ID), data); err != nil {
			return err
		}
		if err := byEmail.Put([]byte(record.Email), []byte(record.ID)); err != nil {
			return err
		}
		if record.ResetToken != nil {
			return byReset.Put([]byte(*record.ResetToken), []byte(record.ID))
		}
		return nil
	})
}

func (s *Store) GetUser(ctx context.Context, id string) (storage.UserRecord, error) {
	var record storage.UserRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		return getUserInTx(tx, []byte(id), &record)
	})
	if err != nil {
		return storage.UserRecord{}, err
	}
	return record, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (storage.UserRecord, error) {
	var record storage.UserRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket(bucketUsersByEmail).Get([]byte(email))
		if id == nil {
			return storage.ErrNotFound
		}
		return getUserInTx(tx, id, &record)
	})
	if err != nil {
		return storage.UserRecord{}, err
	}
	return record, nil
}

func (s *Store) GetUserByResetToken(ctx context.Context, token string) (storage.UserRecord, error) {
	if token == "" {
		return storage.UserRecord{}, storage.ErrNotFound
	}

	var record storage.UserRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket(bucketUsersByReset).Get([]byte(token))
		if id == nil {
			return storage.ErrNotFound
		}
		return getUserInTx(tx, id, &record)
	})
	if err != nil {
		return storage.UserRecord{}, err
	}
	return record, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		users := tx.Bucket(bucketUsers)
		data := users.Get([]byte(id))
		if data == nil {
			return nil
		}

		var record storage.UserRecord
		if err := json.Unmarshal(data, &record); err == nil {
			if err := tx.Bucket(bucketUsersByEmail).Delete([]byte(record.Email)); err != nil {
				return err
			}
			if record.ResetToken != nil {
				if err := tx.Bucket(bucketUsersByReset).Delete([]byte(*record.ResetToken)); err != nil {
					return err
				}
			}
		}
		return users.Delete([]byte(id))
	})
}

func getUserInTx(tx *bbolt.Tx, id []byte, record *storage.UserRecord) error {
	data := tx.Bucket(bucketUsers).Get(id)
	if data == nil {
		return storage.ErrNotFound
	}
	return json.Unmarshal(data, record)
}
