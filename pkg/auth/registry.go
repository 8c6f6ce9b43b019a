package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/authgate/authgate/pkg/cache"
	"github.com/authgate/authgate/pkg/identity"
	"github.com/authgate/authgate/pkg/session"
	"github.com/authgate/authgate/pkg/storage"
)

// Mode selects an authenticator variant at startup.
type Mode string

const (
	ModeBasic      Mode = "basic"
	ModeSession    Mode = "session"
	ModeSessionExp Mode = "session_exp"
	ModeSessionDB  Mode = "session_db"
)

var (
	ErrNilBuilder       = errors.New("auth: builder is nil")
	ErrEmptyMode        = errors.New("auth: mode is empty")
	ErrDuplicateMode    = errors.New("auth: mode already registered")
	ErrNilCacheFactory  = errors.New("auth: cache factory is required for in-memory session modes")
	ErrNoDurableBackend = errors.New("auth: durable session backend is required for session_db mode")
)

// Deps carries everything a builder may need. NewCache constructs the
// keyed TTL store backing the in-memory session modes; SessionBackend is
// the durable collaborator for session_db.
type Deps struct {
	Directory      identity.Directory
	CookieName     string
	SessionTTL     time.Duration
	NewCache       func(ttl time.Duration) (cache.Store[string], error)
	SessionBackend storage.SessionStore
}

// Builder constructs a fully wired authenticator for one mode.
type Builder func(deps Deps) (Authenticator, error)

// Registry maps modes to builders. A lookup miss is a configuration error
// surfaced to the caller at startup; there is no fallback mode.
type Registry struct {
	builders map[Mode]Builder
}

// NewRegistry returns a registry with the four built-in modes registered.
func NewRegistry() *Registry {
	r := &Registry{
		builders: map[Mode]Builder{},
	}

	// Built-in registrations cannot collide.
	_ = r.Register(ModeBasic, buildBasic)
	_ = r.Register(ModeSession, buildSession)
	_ = r.Register(ModeSessionExp, buildSessionExp)
	_ = r.Register(ModeSessionDB, buildSessionDB)

	return r
}

func (r *Registry) Register(mode Mode, builder Builder) error {
	if builder == nil {
		return ErrNilBuilder
	}
	if mode == "" {
		return ErrEmptyMode
	}
	if _, exists := r.builders[mode]; exists {
		return ErrDuplicateMode
	}

	r.builders[mode] = builder
	return nil
}

// Build constructs the authenticator for mode, or fails with an
// unrecognized-mode error.
func (r *Registry) Build(mode Mode, deps Deps) (Authenticator, error) {
	builder, ok := r.builders[mode]
	if !ok {
		return nil, fmt.Errorf("auth: unsupported mode %q", mode)
	}
	return builder(deps)
}

func buildBasic(deps Deps) (Authenticator, error) {
	return NewBasic(deps.Directory)
}

func buildSession(deps Deps) (Authenticator, error) {
	// Plain sessions never expire; the TTL configuration is ignored.
	return buildMemorySession(deps, 0)
}

func buildSessionExp(deps Deps) (Authenticator, error) {
	return buildMemorySession(deps, deps.SessionTTL)
}

func buildMemorySession(deps Deps, ttl time.Duration) (Authenticator, error) {
	if deps.NewCache == nil {
		return nil, ErrNilCacheFactory
	}

	entries, err := deps.NewCache(ttl)
	if err != nil {
		return nil, err
	}

	store, err := session.NewMemoryStore(entries)
	if err != nil {
		return nil, err
	}
	return NewSessionAuth(deps.Directory, store, deps.CookieName)
}

func buildSessionDB(deps Deps) (Authenticator, error) {
	if deps.SessionBackend == nil {
		return nil, ErrNoDurableBackend
	}

	store, err := session.NewDurableStore(deps.SessionBackend, deps.SessionTTL)
	if err != nil {
		return nil, err
	}
	return NewSessionAuth(deps.Directory, store, deps.CookieName)
}
