package auth

import (
	"context"
	"net/http"

	"github.com/authgate/authgate/pkg/identity"
	"github.com/authgate/authgate/pkg/session"
)

// SessionAuth authenticates requests from a session cookie resolved through
// a session.Store. It serves the session, session_exp, and session_db modes:
// the only difference between them is the store backing injected at
// construction, which this type never inspects.
type SessionAuth struct {
	directory  identity.Directory
	sessions   session.Store
	cookieName string
}

var _ Authenticator = (*SessionAuth)(nil)

func NewSessionAuth(directory identity.Directory, sessions session.Store, cookieName string) (*SessionAuth, error) {
	if directory == nil {
		return nil, ErrNilDirectory
	}
	if sessions == nil {
		return nil, ErrNilSessionStore
	}
	if cookieName == "" {
		cookieName = DefaultCookieName
	}

	return &SessionAuth{
		directory:  directory,
		sessions:   sessions,
		cookieName: cookieName,
	}, nil
}

// CookieName returns the name of the session cookie this authenticator
// consumes.
func (s *SessionAuth) CookieName() string {
	return s.cookieName
}

func (s *SessionAuth) RequiresAuth(path string, excluded []string) bool {
	return RequiresAuth(path, excluded)
}

func (s *SessionAuth) CurrentUser(ctx context.Context, r *http.Request) (identity.User, bool, error) {
	sessionID := sessionCookie(r, s.cookieName)
	if sessionID == "" {
		return identity.User{}, false, nil
	}

	userID, ok, err := s.sessions.Resolve(ctx, sessionID)
	if err != nil {
		return identity.User{}, false, err
	}
	if !ok {
		return identity.User{}, false, nil
	}

	return s.directory.FindUserByID(ctx, userID)
}

func (s *SessionAuth) CreateSession(ctx context.Context, userID string) (string, error) {
	return s.sessions.Create(ctx, userID)
}

func (s *SessionAuth) DestroySession(ctx context.Context, r *http.Request) (bool, error) {
	sessionID := sessionCookie(r, s.cookieName)
	if sessionID == "" {
		return false, nil
	}
	return s.sessions.Destroy(ctx, sessionID)
}
