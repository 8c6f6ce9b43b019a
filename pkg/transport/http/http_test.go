package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/pkg/auth"
	cachememory "github.com/authgate/authgate/pkg/cache/memory"
	"github.com/authgate/authgate/pkg/identity"
	"github.com/authgate/authgate/pkg/session"
)

type fixedDirectory struct {
	user     identity.User
	password string
	err      error
}

func (d *fixedDirectory) FindUserByEmail(ctx context.Context, email string) (identity.User, bool, error) {
	if d.err != nil {
		return identity.User{}, false, d.err
	}
	return d.user, email == d.user.Email, nil
}

func (d *fixedDirectory) FindUserByID(ctx context.Context, id string) (identity.User, bool, error) {
	if d.err != nil {
		return identity.User{}, false, d.err
	}
	return d.user, id == d.user.ID, nil
}

func (d *fixedDirectory) VerifyPassword(ctx context.Context, user identity.User, password string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	return password == d.password, nil
}

func newFixture(t *testing.T) (*fixedDirectory, *auth.SessionAuth, *Handlers) {
	t.Helper()

	directory := &fixedDirectory{
		user:     identity.User{ID: "user-42", Email: "bob@example.com"},
		password: "hunter2",
	}

	sessions, err := session.NewMemoryStore(cachememory.NewAdapter[string](0))
	require.NoError(t, err)

	authenticator, err := auth.NewSessionAuth(directory, sessions, "")
	require.NoError(t, err)

	handlers := &Handlers{
		Directory:     directory,
		Authenticator: authenticator,
		Logger:        logr.Discard(),
	}
	return directory, authenticator, handlers
}

func echoUser(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		require.True(t, ok, "middleware must attach the user")
		writeJSON(w, http.StatusOK, map[string]string{"email": user.Email})
	})
}

func TestMiddlewareExcludedPathPassesThrough(t *testing.T) {
	_, authenticator, _ := newFixture(t)

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, ok := UserFromContext(r.Context())
		assert.False(t, ok, "excluded requests carry no user")
	})

	handler := Authenticate(authenticator, []string{"/api/v1/status/"}, logr.Discard())(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewareRejectsAnonymous(t *testing.T) {
	_, authenticator, _ := newFixture(t)

	handler := Authenticate(authenticator, nil, logr.Discard())(echoUser(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareReportsBackendFailure(t *testing.T) {
	directory, authenticator, _ := newFixture(t)

	sessionID, err := authenticator.CreateSession(context.Background(), "user-42")
	require.NoError(t, err)
	directory.err = assert.AnError

	handler := Authenticate(authenticator, nil, logr.Discard())(echoUser(t))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/users/", nil)
	r.AddCookie(&http.Cookie{Name: auth.DefaultCookieName, Value: sessionID})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLoginLogoutFlow(t *testing.T) {
	_, authenticator, handlers := newFixture(t)

	// Login issues a cookie.
	rec := httptest.NewRecorder()
	handlers.Login(rec, httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"email":"bob@example.com","password":"hunter2"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "user-42", resp.UserID)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, auth.DefaultCookieName, cookie.Name)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	// The cookie authenticates subsequent requests.
	handler := Authenticate(authenticator, nil, logr.Discard())(echoUser(t))
	authed := httptest.NewRequest(http.MethodGet, "/api/v1/users/", nil)
	authed.AddCookie(cookie)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, authed)
	require.Equal(t, http.StatusOK, rec.Code)

	// Logout expires it.
	logout := httptest.NewRequest(http.MethodPost, "/logout", nil)
	logout.AddCookie(cookie)

	rec = httptest.NewRecorder()
	handlers.Logout(rec, logout)
	require.Equal(t, http.StatusNoContent, rec.Code)

	expired := rec.Result().Cookies()
	require.Len(t, expired, 1)
	assert.Negative(t, expired[0].MaxAge)

	// The destroyed session no longer authenticates.
	stale := httptest.NewRequest(http.MethodGet, "/api/v1/users/", nil)
	stale.AddCookie(cookie)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, stale)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejections(t *testing.T) {
	_, _, handlers := newFixture(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"wrong password", `{"email":"bob@example.com","password":"nope"}`, http.StatusUnauthorized},
		{"unknown email", `{"email":"eve@example.com","password":"hunter2"}`, http.StatusUnauthorized},
		{"malformed body", `{`, http.StatusBadRequest},
		{"missing password", `{"email":"bob@example.com"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handlers.Login(rec, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestLoginStatelessModeNotImplemented(t *testing.T) {
	directory, _, handlers := newFixture(t)

	basic, err := auth.NewBasic(directory)
	require.NoError(t, err)
	handlers.Authenticator = basic

	rec := httptest.NewRecorder()
	handlers.Login(rec, httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"email":"bob@example.com","password":"hunter2"}`)))

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestLogoutWithoutSessionSucceeds(t *testing.T) {
	_, _, handlers := newFixture(t)

	rec := httptest.NewRecorder()
	handlers.Logout(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
