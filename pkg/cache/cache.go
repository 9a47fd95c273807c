// Package cache provides content-addressed caching for computed layouts and
// rendered exports.
//
// Three backends implement the same interface:
//   - FileCache: files under a directory, for CLI usage
//   - RedisCache: shared cache for long-running serve deployments
//   - NullCache: disabled caching
//
// Keys are derived from SHA-256 hashes of the inputs, so identical topology
// and options always hit the same entry.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by helpers that treat a miss as an error.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the interface for cache backends.
type Cache interface {
	// Get retrieves a value. The boolean reports whether the key was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with an optional TTL (zero means no expiration).
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKey builds the cache key for a computed layout: the topology hash
// plus the geometry that shaped it.
func LayoutKey(graphHash string, geometry any) string {
	return hashKey("layout", graphHash, geometry)
}

// ExportKey builds the cache key for a rendered export artifact.
func ExportKey(graphHash, format string, geometry any) string {
	return hashKey("export", graphHash, format, geometry)
}
