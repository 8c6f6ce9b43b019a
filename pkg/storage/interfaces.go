package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by all backends when a record does not exist.
var ErrNotFound = errors.New("storage: record not found")

// SessionRecord maps a session identifier to the subject it was issued to.
// CreatedAt drives TTL checks in the session layer; the stores themselves
// do not interpret it.
type SessionRecord struct {
	ID        string
	Subject   string
	CreatedAt time.Time
}

type UserRecord struct {
	ID           string
	DateAdded    time.Time
	DateModified *time.Time
	Email        string
	PasswordHash string
	ResetToken   *string
}

type SessionStore interface {
	PutSession(ctx context.Context, record SessionRecord) error
	GetSession(ctx context.Context, id string) (SessionRecord, error)
	DeleteSession(ctx context.Context, id string) error
}

type UserStore interface {
	// PutUser inserts or replaces the record keyed by ID.
	PutUser(ctx context.Context, record UserRecord) error
	GetUser(ctx context.Context, id string) (UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)
	GetUserByResetToken(ctx context.Context, token string) (UserRecord, error)
	DeleteUser(ctx context.Context, id string) error
}

type Store interface {
	SessionStore
	UserStore
}
