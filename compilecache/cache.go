// Package compilecache adapts the teacher's root-level Cache interface
// (cache.go) to the compiler pipeline: a CLI rerun over an unchanged source
// file can skip re-lexing/parsing/analysis by keying on the file's content
// hash (spec SPEC_FULL.md §4, "Compile cache").
package compilecache

import (
	"context"
	"time"
)

// Cache is the teacher's Cache interface (cache.go), kept verbatim in
// shape: callers bring their own backend (in-memory, Redis, etc.); this
// package only changes what gets stored under a key.
type Cache interface {
	// Get retrieves a value from the cache. Returns nil, nil if the key
	// doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL. If ttl is 0,
	// the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes all values with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}
