package auth

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/authgate/authgate/pkg/identity"
)

const basicScheme = "Basic "

// Basic authenticates every request from its Authorization header. It keeps
// no per-user state, so the session operations report ErrSessionsNotSupported.
type Basic struct {
	directory identity.Directory
}

var _ Authenticator = (*Basic)(nil)

func NewBasic(directory identity.Directory) (*Basic, error) {
	if directory == nil {
		return nil, ErrNilDirectory
	}
	return &Basic{directory: directory}, nil
}

func (b *Basic) RequiresAuth(path string, excluded []string) bool {
	return RequiresAuth(path, excluded)
}

func (b *Basic) CurrentUser(ctx context.Context, r *http.Request) (identity.User, bool, error) {
	email, password, ok := decodeBasicHeader(authorizationHeader(r))
	if !ok {
		return identity.User{}, false, nil
	}

	user, found, err := b.directory.FindUserByEmail(ctx, email)
	if err != nil {
		return identity.User{}, false, err
	}
	if !found {
		return identity.User{}, false, nil
	}

	valid, err := b.directory.VerifyPassword(ctx, user, password)
	if err != nil {
		return identity.User{}, false, err
	}
	if !valid {
		return identity.User{}, false, nil
	}

	return user, true, nil
}

func (b *Basic) CreateSession(ctx context.Context, userID string) (string, error) {
	return "", ErrSessionsNotSupported
}

func (b *Basic) DestroySession(ctx context.Context, r *http.Request) (bool, error) {
	return false, ErrSessionsNotSupported
}

// decodeBasicHeader parses "Basic <base64(email:password)>". Any malformed
// input is reported as not-ok rather than an error.
func decodeBasicHeader(header string) (email string, password string, ok bool) {
	payload, found := strings.CutPrefix(header, basicScheme)
	if !found {
		return "", "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", "", false
	}

	email, password, found = strings.Cut(string(decoded), ":")
	if !found || email == "" {
		return "", "", false
	}

	return email, password, true
}
