// Package httptransport translates authentication results into HTTP
// semantics: middleware, login/logout handlers, and cookie plumbing.
// Status-code decisions live here and nowhere else.
package httptransport

import (
	"context"

	"github.com/authgate/authgate/pkg/identity"
)

type contextKey struct{}

var userContextKey contextKey

func withUser(ctx context.Context, user identity.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user attached by the
// middleware, if any.
func UserFromContext(ctx context.Context) (identity.User, bool) {
	user, ok := ctx.Value(userContextKey).(identity.User)
	return user, ok
}
