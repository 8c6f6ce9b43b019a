package authgate

import (
	"github.com/authgate/authgate/pkg/auth"
	"github.com/authgate/authgate/pkg/identity"
)

// User is the authenticated principal resolved by an authenticator.
type User = identity.User

// Mode selects the authentication strategy at startup.
type Mode = auth.Mode

const (
	ModeBasic      = auth.ModeBasic
	ModeSession    = auth.ModeSession
	ModeSessionExp = auth.ModeSessionExp
	ModeSessionDB  = auth.ModeSessionDB
)

// DefaultCookieName is the session cookie used when none is configured.
const DefaultCookieName = auth.DefaultCookieName

// RequiresAuth reports whether path falls outside the excluded set.
// An empty path or an empty exclusion list requires authentication.
func RequiresAuth(path string, excluded []string) bool {
	return auth.RequiresAuth(path, excluded)
}
