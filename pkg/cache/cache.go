// Package cache stores pipeline intermediates and rendered artifacts.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for servers sharing one cache, and [NullCache] when caching is disabled.
// Keys are built by a [Keyer] so that every backend sees the same key
// layout; [ScopedKeyer] adds a namespace prefix.
package cache

import (
	"context"
	"time"
)

// Default lifetimes per entry kind. Layouts and artifacts are pure
// functions of their key, so they only expire to bound disk usage.
const (
	TTLTable    = 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiration. Implementations must be
// safe for concurrent use. A miss is reported as (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
