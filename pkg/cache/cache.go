// Package cache provides pluggable response caching for the harvester.
//
// The [Cache] interface abstracts over backends so the GitLab client can
// cache tree pages and blob batches between runs without knowing where the
// bytes live. Four backends are provided:
//
//   - [NullCache]: no-op, caching disabled
//   - [FileCache]: JSON files on disk, for CLI usage
//   - [RedisCache]: shared cache for the API server
//   - [MongoCache]: persistent cache with TTL indexes
//
// Keys are plain strings; use [Hash] to derive stable keys from request
// payloads.
package cache

import (
	"context"
	"errors"
	"time"
)

// Cache is the interface all cache backends implement.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by backends that can drop all entries at once.
// The "cache clear" command uses it against whichever backend is
// configured.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Default TTLs for the cached request types.
const (
	// TTLTree is how long repository tree listings are cached.
	// Trees change with every push, so keep this short.
	TTLTree = 15 * time.Minute

	// TTLBlobs is how long blob content batches are cached.
	TTLBlobs = 1 * time.Hour

	// TTLLanguages is how long per-project language shares are cached.
	TTLLanguages = 24 * time.Hour
)

// ErrCacheMiss is returned by helpers that treat a miss as an error.
var ErrCacheMiss = errors.New("cache miss")
