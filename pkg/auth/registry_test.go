package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/pkg/cache"
	cachememory "github.com/authgate/authgate/pkg/cache/memory"
	storagememory "github.com/authgate/authgate/pkg/storage/memory"
)

func registryDeps() Deps {
	return Deps{
		Directory:  newStubDirectory(),
		SessionTTL: time.Minute,
		NewCache: func(ttl time.Duration) (cache.Store[string], error) {
			return cachememory.NewAdapter[string](ttl), nil
		},
		SessionBackend: storagememory.NewStore(),
	}
}

func TestRegistryBuildsEveryMode(t *testing.T) {
	registry := NewRegistry()

	for _, mode := range []Mode{ModeBasic, ModeSession, ModeSessionExp, ModeSessionDB} {
		t.Run(string(mode), func(t *testing.T) {
			authenticator, err := registry.Build(mode, registryDeps())
			require.NoError(t, err)
			require.NotNil(t, authenticator)
		})
	}
}

func TestRegistryUnknownModeFails(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Build(Mode("ldap"), registryDeps())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported mode")
}

func TestRegistryRegisterValidation(t *testing.T) {
	registry := NewRegistry()

	err := registry.Register(ModeBasic, buildBasic)
	require.ErrorIs(t, err, ErrDuplicateMode)

	err = registry.Register(Mode("custom"), nil)
	require.ErrorIs(t, err, ErrNilBuilder)

	err = registry.Register(Mode(""), buildBasic)
	require.ErrorIs(t, err, ErrEmptyMode)

	err = registry.Register(Mode("custom"), buildBasic)
	require.NoError(t, err)
}

func TestRegistryMissingCollaborators(t *testing.T) {
	registry := NewRegistry()

	noCache := registryDeps()
	noCache.NewCache = nil
	_, err := registry.Build(ModeSession, noCache)
	require.ErrorIs(t, err, ErrNilCacheFactory)

	noBackend := registryDeps()
	noBackend.SessionBackend = nil
	_, err = registry.Build(ModeSessionDB, noBackend)
	require.ErrorIs(t, err, ErrNoDurableBackend)
}

// Session mode never expires entries even when a TTL is configured;
// session_exp expires them after the configured TTL.
func TestRegistryModeTTLWiring(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry()

	deps := registryDeps()
	deps.SessionTTL = time.Nanosecond

	plain, err := registry.Build(ModeSession, deps)
	require.NoError(t, err)

	expiring, err := registry.Build(ModeSessionExp, deps)
	require.NoError(t, err)

	plainID, err := plain.CreateSession(ctx, "user-42")
	require.NoError(t, err)
	expiringID, err := expiring.CreateSession(ctx, "user-42")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, ok, err := plain.CurrentUser(ctx, cookieRequest(DefaultCookieName, plainID))
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = expiring.CurrentUser(ctx, cookieRequest(DefaultCookieName, expiringID))
	require.NoError(t, err)
	assert.False(t, ok)
}
