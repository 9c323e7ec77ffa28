// Package cache stores rendered badge artifacts.
//
// # Backends
//
//   - [FileCache]: JSON entries under a directory, for the CLI
//   - [RedisCache]: shared cache for multi-instance servers
//   - [NullCache]: caching disabled
//
// All backends implement [Cache]. Entries carry an optional TTL; an expired
// entry reads as a miss.
//
// # Keys
//
// A [Keyer] derives keys from the content hash of a badge document plus the
// options that change the encoded output. [NewScopedKeyer] prefixes every key,
// which lets a deployment invalidate old entries by bumping the prefix.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the data for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
