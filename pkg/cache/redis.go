package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	backend "github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "sankey:"
	redisAttempts      = 3
	redisRetryDelay    = 50 * time.Millisecond
)

// RedisOption configures a [RedisCache].
type RedisOption func(*RedisCache)

// WithRedisPrefix sets the prefix prepended to every key.
func WithRedisPrefix(prefix string) RedisOption {
	return func(c *RedisCache) { c.prefix = prefix }
}

// RedisCache stores entries in Redis, for servers that share a cache.
type RedisCache struct {
	client *backend.Client
	prefix string
}

// NewRedisCache connects to the Redis server at addr and checks that it
// answers.
func NewRedisCache(ctx context.Context, addr string, opts ...RedisOption) (*RedisCache, error) {
	client := backend.NewClient(&backend.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: redis %s: %v", ErrUnavailable, addr, err)
	}
	return NewRedisCacheFromClient(client, opts...), nil
}

// NewRedisCacheFromClient wraps an existing client. Close closes it.
func NewRedisCacheFromClient(client *backend.Client, opts ...RedisOption) *RedisCache {
	c := &RedisCache{client: client, prefix: defaultRedisPrefix}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a value from the cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := c.retry(ctx, func() error {
		var err error
		data, err = c.client.Get(ctx, c.prefix+key).Bytes()
		return classify(err)
	})
	if errors.Is(err, backend.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value in the cache. A zero ttl never expires.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.retry(ctx, func() error {
		return classify(c.client.Set(ctx, c.prefix+key, data, ttl).Err())
	})
}

// Delete removes a value from the cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.retry(ctx, func() error {
		return classify(c.client.Del(ctx, c.prefix+key).Err())
	})
}

// Close closes the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) retry(ctx context.Context, fn func() error) error {
	err := RetryWithBackoff(ctx, redisAttempts, redisRetryDelay, fn)
	var re *RetryableError
	if errors.As(err, &re) {
		return fmt.Errorf("%w: %v", ErrUnavailable, re.Err)
	}
	return err
}

// classify marks connection failures as retryable.
func classify(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Retryable(err)
	}
	return err
}

// Ensure RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)
