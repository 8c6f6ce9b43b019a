package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cachememory "github.com/authgate/authgate/pkg/cache/memory"
	"github.com/authgate/authgate/pkg/session"
)

func newSessionAuthenticator(t *testing.T) *SessionAuth {
	t.Helper()

	sessions, err := session.NewMemoryStore(cachememory.NewAdapter[string](0))
	require.NoError(t, err)

	authenticator, err := NewSessionAuth(newStubDirectory(), sessions, "")
	require.NoError(t, err)
	return authenticator
}

func cookieRequest(cookieName string, sessionID string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/users/", nil)
	if sessionID != "" {
		r.AddCookie(&http.Cookie{Name: cookieName, Value: sessionID})
	}
	return r
}

func TestSessionAuthDefaultsCookieName(t *testing.T) {
	authenticator := newSessionAuthenticator(t)
	assert.Equal(t, DefaultCookieName, authenticator.CookieName())
}

func TestSessionAuthRoundTrip(t *testing.T) {
	ctx := context.Background()
	authenticator := newSessionAuthenticator(t)

	sessionID, err := authenticator.CreateSession(ctx, "user-42")
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	user, ok, err := authenticator.CurrentUser(ctx, cookieRequest(authenticator.CookieName(), sessionID))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "bob@example.com", user.Email)
}

func TestSessionAuthRejections(t *testing.T) {
	ctx := context.Background()
	authenticator := newSessionAuthenticator(t)

	t.Run("no cookie", func(t *testing.T) {
		_, ok, err := authenticator.CurrentUser(ctx, cookieRequest(authenticator.CookieName(), ""))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("nil request", func(t *testing.T) {
		_, ok, err := authenticator.CurrentUser(ctx, nil)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown session id", func(t *testing.T) {
		_, ok, err := authenticator.CurrentUser(ctx, cookieRequest(authenticator.CookieName(), "not-a-session"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("session for unknown user", func(t *testing.T) {
		sessionID, err := authenticator.CreateSession(ctx, "gone-user")
		require.NoError(t, err)

		_, ok, err := authenticator.CurrentUser(ctx, cookieRequest(authenticator.CookieName(), sessionID))
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestSessionAuthDestroySession(t *testing.T) {
	ctx := context.Background()
	authenticator := newSessionAuthenticator(t)

	sessionID, err := authenticator.CreateSession(ctx, "user-42")
	require.NoError(t, err)

	removed, err := authenticator.DestroySession(ctx, cookieRequest(authenticator.CookieName(), sessionID))
	require.NoError(t, err)
	assert.True(t, removed)

	_, ok, err := authenticator.CurrentUser(ctx, cookieRequest(authenticator.CookieName(), sessionID))
	require.NoError(t, err)
	assert.False(t, ok)

	removed, err = authenticator.DestroySession(ctx, cookieRequest(authenticator.CookieName(), sessionID))
	require.NoError(t, err)
	assert.False(t, removed, "second destroy reports nothing removed")

	removed, err = authenticator.DestroySession(ctx, nil)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestNewSessionAuthValidation(t *testing.T) {
	sessions, err := session.NewMemoryStore(cachememory.NewAdapter[string](0))
	require.NoError(t, err)

	_, err = NewSessionAuth(nil, sessions, "")
	require.ErrorIs(t, err, ErrNilDirectory)

	_, err = NewSessionAuth(newStubDirectory(), nil, "")
	require.ErrorIs(t, err, ErrNilSessionStore)
}
