// Package cache stores rendered export artifacts so repeated exports of an
// unchanged diagram skip rendering.
//
// Three backends implement [Cache]:
//   - [FileCache]: one file per entry under a directory, used by the CLI
//   - [RedisCache]: shared cache for several server instances
//   - [NullCache]: stores nothing, used with --no-cache and in tests
//
// Keys are derived by a [Keyer] from the SHA-256 of the serialized document
// plus the render options, so any edit to the diagram or the rates yields a
// new key and stale artifacts are never served.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ArtifactTTL is how long rendered exports are kept.
const ArtifactTTL = 7 * 24 * time.Hour
