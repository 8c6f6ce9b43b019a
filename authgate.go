// Package authgate assembles the authentication strategies, session
// stores, and storage backends in this module into a single client that
// applications embed in front of their HTTP handlers.
package authgate

import (
	"context"
	"net/http"
	"time"

	"github.com/go-logr/logr"

	"github.com/authgate/authgate/pkg/auth"
	"github.com/authgate/authgate/pkg/crypto"
	"github.com/authgate/authgate/pkg/errors"
	"github.com/authgate/authgate/pkg/identity"
	"github.com/authgate/authgate/pkg/storage"
	httptransport "github.com/authgate/authgate/pkg/transport/http"
)

// StoreDependencies lets callers inject their own storage collaborators.
// Anything left nil is filled in from the configured runtime backend.
type StoreDependencies struct {
	Sessions storage.SessionStore
	Users    storage.UserStore
}

type Config struct {
	Directory identity.Directory
	Hasher    crypto.Hasher
	Stores    StoreDependencies
	Logger    logr.Logger
	Runtime   RuntimeConfig
}

// Client is the assembled authentication facade. Construction is
// all-or-nothing: an unrecognized mode or backend fails New, there is
// no degraded fallback.
type Client struct {
	auth          auth.Authenticator
	directory     identity.Directory
	excluded      []string
	cookieName    string
	sessionTTL    time.Duration
	logger        logr.Logger
	closeResource func() error
}

func New(config Config) (*Client, error) {
	closeResource, resolved, err := config.initialize(context.Background())
	if err != nil {
		return nil, err
	}

	mode := resolved.config.Runtime.Auth.Mode
	if mode == "" {
		_ = closeResource()
		return nil, errors.New(errors.CodeConfiguration, "authgate config: runtime.auth.mode is required")
	}

	authenticator, err := auth.NewRegistry().Build(mode, auth.Deps{
		Directory:      resolved.config.Directory,
		CookieName:     resolved.config.Runtime.Auth.CookieName,
		SessionTTL:     resolved.config.Runtime.Auth.SessionTTL,
		NewCache:       resolved.newCache,
		SessionBackend: resolved.config.Stores.Sessions,
	})
	if err != nil {
		_ = closeResource()
		return nil, errors.Wrap(errors.CodeConfiguration, "authgate config: failed to build authenticator", err)
	}

	cookieName := resolved.config.Runtime.Auth.CookieName
	if cookieName == "" {
		cookieName = DefaultCookieName
	}

	// Plain sessions never expire server-side, so the cookie must not
	// outlive or undercut them: issue a browser-session cookie instead.
	sessionTTL := resolved.config.Runtime.Auth.SessionTTL
	if mode == ModeSession {
		sessionTTL = 0
	}

	return &Client{
		auth:          authenticator,
		directory:     resolved.config.Directory,
		excluded:      resolved.config.Runtime.Auth.ExcludedPaths,
		cookieName:    cookieName,
		sessionTTL:    sessionTTL,
		logger:        resolved.config.Logger,
		closeResource: closeResource,
	}, nil
}

// RequiresAuth reports whether path is guarded under the configured
// exclusions.
func (c *Client) RequiresAuth(path string) bool {
	if c == nil || c.auth == nil {
		return true
	}
	return c.auth.RequiresAuth(path, c.excluded)
}

// CurrentUser resolves the request's credential to a user. A missing or
// invalid credential is (User{}, false, nil); errors mean a collaborator
// failed and the request must not be treated as anonymous.
func (c *Client) CurrentUser(ctx context.Context, r *http.Request) (User, bool, error) {
	if c == nil || c.auth == nil {
		return User{}, false, errors.ErrMissingAuthenticator
	}

	user, ok, err := c.auth.CurrentUser(ctx, r)
	if err != nil {
		return User{}, false, errors.Wrap(errors.CodeStorageUnavailable, "failed to resolve current user", err)
	}
	return user, ok, nil
}

// CreateSession opens a session for userID and returns its id.
func (c *Client) CreateSession(ctx context.Context, userID string) (string, error) {
	if c == nil || c.auth == nil {
		return "", errors.ErrMissingAuthenticator
	}

	id, err := c.auth.CreateSession(ctx, userID)
	if err != nil {
		return "", errors.Wrap(errors.CodeInvalidSession, "failed to create session", err)
	}
	return id, nil
}

// DestroySession invalidates the request's session, reporting whether
// one existed.
func (c *Client) DestroySession(ctx context.Context, r *http.Request) (bool, error) {
	if c == nil || c.auth == nil {
		return false, errors.ErrMissingAuthenticator
	}

	removed, err := c.auth.DestroySession(ctx, r)
	if err != nil {
		return false, errors.Wrap(errors.CodeInvalidSession, "failed to destroy session", err)
	}
	return removed, nil
}

// Directory exposes the resolved identity directory, for account
// management endpoints built on top of the client.
func (c *Client) Directory() identity.Directory {
	if c == nil {
		return nil
	}
	return c.directory
}

// Middleware guards an http.Handler with the configured authenticator
// and exclusions.
func (c *Client) Middleware() func(http.Handler) http.Handler {
	return httptransport.Authenticate(c.auth, c.excluded, c.logger)
}

// Handlers returns login/logout handlers bound to this client.
func (c *Client) Handlers() *httptransport.Handlers {
	return &httptransport.Handlers{
		Directory:     c.directory,
		Authenticator: c.auth,
		CookieName:    c.cookieName,
		CookieTTL:     c.sessionTTL,
		Logger:        c.logger,
	}
}

func (c *Client) Close() error {
	if c == nil || c.closeResource == nil {
		return nil
	}

	err := c.closeResource()
	if err != nil {
		return errors.Wrap(errors.CodeUnknown, "failed to close client resources", err)
	}
	c.closeResource = nil
	c.auth = nil
	return nil
}
