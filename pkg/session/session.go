package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	ErrEmptyUserID = errors.New("session: user id is required")
	ErrNilBacking  = errors.New("session: backing store is required")
)

// Store maps session identifiers to user identifiers. The in-memory
// (process lifetime) and durable (survives restart) backings share this
// contract, so callers never learn which one is active.
type Store interface {
	// Create generates a fresh random session id for userID, persists the
	// mapping, and returns the id. An empty userID is a validation error.
	Create(ctx context.Context, userID string) (string, error)

	// Resolve returns the user id for a session id, or absent. An expired
	// session is absent and is evicted on detection.
	Resolve(ctx context.Context, sessionID string) (string, bool, error)

	// Destroy removes the mapping. It reports false, not an error, when
	// the session did not exist.
	Destroy(ctx context.Context, sessionID string) (bool, error)
}

// NewID returns a 256-bit random session identifier in base64url form.
func NewID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: generate id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
