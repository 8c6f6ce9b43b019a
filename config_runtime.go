package authgate

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/authgate/authgate/pkg/cache"
	memorycache "github.com/authgate/authgate/pkg/cache/memory"
	rediscache "github.com/authgate/authgate/pkg/cache/redis"
	"github.com/authgate/authgate/pkg/crypto"
	"github.com/authgate/authgate/pkg/errors"
	"github.com/authgate/authgate/pkg/identity"
	boltstorage "github.com/authgate/authgate/pkg/storage/bbolt"
	memorystorage "github.com/authgate/authgate/pkg/storage/memory"
	"github.com/authgate/authgate/pkg/storage/postgres"
)

type StorageBackend string

const (
	StorageBackendNone     StorageBackend = "none"
	StorageBackendMemory   StorageBackend = "memory"
	StorageBackendPostgres StorageBackend = "postgres"
	StorageBackendBolt     StorageBackend = "bbolt"
)

type CacheBackend string

const (
	CacheBackendMemory CacheBackend = "memory"
	CacheBackendRedis  CacheBackend = "redis"
)

type RuntimeConfig struct {
	Auth    AuthConfig
	Storage StorageConfig
	Cache   CacheConfig
}

type AuthConfig struct {
	Mode          Mode
	SessionTTL    time.Duration
	CookieName    string
	ExcludedPaths []string
}

type StorageConfig struct {
	Backend  StorageBackend
	Postgres PostgresConfig
	Bolt     BoltConfig
}

type PostgresConfig struct {
	DriverName      string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	OpenDB          func(driverName string, dsn string) (*sql.DB, error)
}

type BoltConfig struct {
	Path string
}

type CacheConfig struct {
	Backend CacheBackend
	Redis   RedisCacheConfig
}

type RedisCacheConfig struct {
	Address     string
	Username    string
	Password    string
	Database    int
	Namespace   string
	DialTimeout time.Duration
}

// runtime is the fully resolved dependency set produced by initialize.
type runtime struct {
	config   Config
	newCache func(ttl time.Duration) (cache.Store[string], error)
}

func (c Config) initialize(ctx context.Context) (func() error, runtime, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	config := c
	config.Logger = resolveLogger(config.Logger)
	if config.Hasher == nil {
		config.Hasher = crypto.NewBcryptHasher(0)
	}

	closeStorage, config, err := initializeStorage(ctx, config)
	if err != nil {
		return nil, runtime{}, err
	}

	closeCache, newCache, err := initializeCache(ctx, config)
	if err != nil {
		_ = closeStorage()
		return nil, runtime{}, err
	}

	config, err = resolveDirectory(config)
	if err != nil {
		_ = closeCache()
		_ = closeStorage()
		return nil, runtime{}, err
	}

	resolved := runtime{
		config:   config,
		newCache: newCache,
	}
	return joinClosers(closeStorage, closeCache), resolved, nil
}

func initializeStorage(ctx context.Context, config Config) (func() error, Config, error) {
	backend := config.Runtime.Storage.Backend
	if backend == "" {
		backend = StorageBackendNone
	}

	switch backend {
	case StorageBackendNone:
		return noopCloser, config, nil
	case StorageBackendMemory:
		return initializeMemoryStorage(config)
	case StorageBackendPostgres:
		return initializePostgres(ctx, config)
	case StorageBackendBolt:
		return initializeBolt(config)
	default:
		return nil, Config{}, errors.New(errors.CodeConfiguration,
			fmt.Sprintf("authgate config: unsupported runtime.storage.backend %q", backend))
	}
}

func initializeMemoryStorage(config Config) (func() error, Config, error) {
	store := memorystorage.NewStore()

	if config.Stores.Sessions == nil {
		config.Stores.Sessions = store
	}
	if config.Stores.Users == nil {
		config.Stores.Users = store
	}

	config.Logger.V(1).Info("initialized memory storage backend")
	return noopCloser, config, nil
}

func initializePostgres(ctx context.Context, config Config) (func() error, Config, error) {
	pgConfig := config.Runtime.Storage.Postgres
	if pgConfig.DSN == "" {
		return nil, Config{}, errors.New(errors.CodeConfiguration,
			"authgate config: runtime.storage.postgres.dsn is required")
	}

	if pgConfig.DriverName == "" {
		pgConfig.DriverName = "pgx"
	}
	if pgConfig.PingTimeout <= 0 {
		pgConfig.PingTimeout = 5 * time.Second
	}
	if pgConfig.OpenDB == nil {
		pgConfig.OpenDB = sql.Open
	}

	db, err := pgConfig.OpenDB(pgConfig.DriverName, pgConfig.DSN)
	if err != nil {
		return nil, Config{}, errors.Wrap(errors.CodeStorageUnavailable,
			"authgate config: failed to open postgres database", err)
	}

	if pgConfig.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pgConfig.MaxOpenConns)
	}
	if pgConfig.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pgConfig.MaxIdleConns)
	}
	if pgConfig.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pgConfig.ConnMaxLifetime)
	}
	if pgConfig.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(pgConfig.ConnMaxIdleTime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pgConfig.PingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, Config{}, errors.Wrap(errors.CodeStorageUnavailable,
			"authgate config: failed to ping postgres database", err)
	}

	adapter, err := postgres.NewAdapter(db)
	if err != nil {
		_ = db.Close()
		return nil, Config{}, errors.Wrap(errors.CodeStorageUnavailable,
			"authgate config: failed to initialize postgres adapter", err)
	}

	if config.Stores.Sessions == nil {
		config.Stores.Sessions = adapter
	}
	if config.Stores.Users == nil {
		config.Stores.Users = adapter
	}

	closeResource := func() error {
		return stderrors.Join(adapter.Close(), db.Close())
	}

	config.Runtime.Storage.Postgres = pgConfig
	config.Logger.V(1).Info("initialized postgres storage backend",
		"driver", pgConfig.DriverName, "max_open_conns", pgConfig.MaxOpenConns, "max_idle_conns", pgConfig.MaxIdleConns)
	return closeResource, config, nil
}

func initializeBolt(config Config) (func() error, Config, error) {
	boltConfig := config.Runtime.Storage.Bolt
	if boltConfig.Path == "" {
		return nil, Config{}, errors.New(errors.CodeConfiguration,
			"authgate config: runtime.storage.bolt.path is required")
	}

	store, err := boltstorage.NewStoreFromFile(boltConfig.Path, nil)
	if err != nil {
		return nil, Config{}, errors.Wrap(errors.CodeStorageUnavailable,
			"authgate config: failed to open bbolt database", err)
	}

	if config.Stores.Sessions == nil {
		config.Stores.Sessions = store
	}
	if config.Stores.Users == nil {
		config.Stores.Users = store
	}

	config.Logger.V(1).Info("initialized bbolt storage backend", "path", boltConfig.Path)
	return store.Close, config, nil
}

func initializeCache(ctx context.Context, config Config) (func() error, func(ttl time.Duration) (cache.Store[string], error), error) {
	backend := config.Runtime.Cache.Backend
	if backend == "" {
		backend = CacheBackendMemory
	}

	switch backend {
	case CacheBackendMemory:
		config.Logger.V(1).Info("initialized memory cache backend")
		newCache := func(ttl time.Duration) (cache.Store[string], error) {
			return memorycache.NewAdapter[string](ttl), nil
		}
		return noopCloser, newCache, nil
	case CacheBackendRedis:
		return initializeRedisCache(ctx, config)
	default:
		return nil, nil, errors.New(errors.CodeConfiguration,
			fmt.Sprintf("authgate config: unsupported runtime.cache.backend %q", backend))
	}
}

func initializeRedisCache(ctx context.Context, config Config) (func() error, func(ttl time.Duration) (cache.Store[string], error), error) {
	redisConfig := config.Runtime.Cache.Redis
	if redisConfig.Address == "" {
		return nil, nil, errors.New(errors.CodeConfiguration,
			"authgate config: runtime.cache.redis.address is required")
	}
	if redisConfig.DialTimeout <= 0 {
		redisConfig.DialTimeout = 5 * time.Second
	}

	// Each cache gets its own connection so the joined closer below can
	// track every adapter that was actually built.
	var adapters []*rediscache.Adapter
	newCache := func(ttl time.Duration) (cache.Store[string], error) {
		adapter, err := rediscache.NewAdapter(ctx, rediscache.Config{
			Address:     redisConfig.Address,
			Username:    redisConfig.Username,
			Password:    redisConfig.Password,
			Database:    redisConfig.Database,
			Namespace:   redisConfig.Namespace,
			DialTimeout: redisConfig.DialTimeout,
		}, ttl)
		if err != nil {
			return nil, errors.Wrap(errors.CodeStorageUnavailable,
				"authgate config: failed to connect to redis", err)
		}
		adapters = append(adapters, adapter)
		return adapter, nil
	}

	closeResource := func() error {
		var errs []error
		for _, adapter := range adapters {
			if err := adapter.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		return stderrors.Join(errs...)
	}

	config.Logger.V(1).Info("initialized redis cache backend",
		"address", redisConfig.Address, "database", redisConfig.Database, "namespace", redisConfig.Namespace)
	return closeResource, newCache, nil
}

func resolveDirectory(config Config) (Config, error) {
	if config.Directory != nil {
		return config, nil
	}
	if config.Stores.Users == nil {
		return Config{}, errors.New(errors.CodeConfiguration,
			"authgate config: a directory or a user storage backend is required")
	}

	service, err := identity.NewService(config.Stores.Users, config.Hasher, config.Logger)
	if err != nil {
		return Config{}, errors.Wrap(errors.CodeConfiguration,
			"authgate config: failed to build identity service", err)
	}

	config.Directory = service
	return config, nil
}

func joinClosers(closers ...func() error) func() error {
	return func() error {
		var errs []error

		for i := len(closers) - 1; i >= 0; i-- {
			if closers[i] == nil {
				continue
			}
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}

		return stderrors.Join(errs...)
	}
}

func noopCloser() error {
	return nil
}
