package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/authgate/authgate/pkg/cache"
)

var ErrEmptyKey = errors.New("redis cache: key is required")

type Config struct {
	Address     string
	Username    string
	Password    string
	Database    int
	Namespace   string
	DialTimeout time.Duration
}

// Adapter is a cache.Store over a shared Redis instance. Expiration is
// enforced server side, so expired entries are reclaimed without a read,
// unlike the in-memory adapter.
type Adapter struct {
	client    *goredis.Client
	namespace string
	ttl       time.Duration
}

var _ cache.Store[string] = (*Adapter)(nil)

// NewAdapter connects to Redis and verifies the connection. A ttl of zero
// or less stores entries without expiration.
func NewAdapter(ctx context.Context, config Config, ttl time.Duration) (*Adapter, error) {
	if config.DialTimeout <= 0 {
		config.DialTimeout = 5 * time.Second
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:        config.Address,
		Username:    config.Username,
		Password:    config.Password,
		DB:          config.Database,
		DialTimeout: config.DialTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Adapter{
		client:    client,
		namespace: config.Namespace,
		ttl:       ttl,
	}, nil
}

func (a *Adapter) Set(ctx context.Context, key string, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	ttl := a.ttl
	if ttl < 0 {
		ttl = 0
	}
	return a.client.Set(ctx, a.key(key), value, ttl).Err()
}

func (a *Adapter) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := a.client.Get(ctx, a.key(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (a *Adapter) Contains(ctx context.Context, key string) (bool, error) {
	count, err := a.client.Exists(ctx, a.key(key)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (a *Adapter) Delete(ctx context.Context, key string) (bool, error) {
	count, err := a.client.Del(ctx, a.key(key)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (a *Adapter) Close() error {
	return a.client.Close()
}

func (a *Adapter) key(key string) string {
	if a.namespace == "" {
		return key
	}
	return a.namespace + ":" + key
}
