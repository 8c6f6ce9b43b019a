// Package auth implements the authenticator strategy family. Every variant
// satisfies Authenticator; callers select one by mode at startup and never
// switch at request time.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/authgate/authgate/pkg/identity"
)

// DefaultCookieName is the session cookie consulted when no name is
// configured.
const DefaultCookieName = "_session_id"

var (
	ErrNilDirectory         = errors.New("auth: identity directory is required")
	ErrNilSessionStore      = errors.New("auth: session store is required")
	ErrSessionsNotSupported = errors.New("auth: sessions are not supported in stateless mode")
)

// Authenticator is the contract shared by all variants. Validation problems
// (missing or malformed headers, cookies, credentials) yield an absent user,
// never an error; errors are reserved for collaborator failures.
type Authenticator interface {
	RequiresAuth(path string, excluded []string) bool
	CurrentUser(ctx context.Context, r *http.Request) (identity.User, bool, error)
	CreateSession(ctx context.Context, userID string) (string, error)
	DestroySession(ctx context.Context, r *http.Request) (bool, error)
}

// RequiresAuth reports whether path needs authentication given a list of
// excluded patterns. Paths are compared with a normalized trailing slash.
// A pattern ending in "*" excludes everything under its literal prefix.
// An empty path or empty exclusion list requires auth: the default fails
// secure.
func RequiresAuth(path string, excluded []string) bool {
	if path == "" || len(excluded) == 0 {
		return true
	}

	normalized := ensureTrailingSlash(path)

	for _, pattern := range excluded {
		if pattern == "" {
			continue
		}

		if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
			if strings.HasPrefix(normalized, prefix) {
				return false
			}
			continue
		}

		if normalized == ensureTrailingSlash(pattern) {
			return false
		}
	}

	return true
}

func ensureTrailingSlash(path string) string {
	if strings.HasSuffix(path, "/") {
		return path
	}
	return path + "/"
}

// authorizationHeader extracts the Authorization header, empty when the
// request or header is missing.
func authorizationHeader(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.Header.Get("Authorization")
}

// sessionCookie extracts the named session cookie value, empty when absent.
func sessionCookie(r *http.Request, cookieName string) string {
	if r == nil {
		return ""
	}
	if cookieName == "" {
		cookieName = DefaultCookieName
	}

	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
