// Package assetcache maps asset identities to cache slots on durable
// storage and invokes the minification pipeline exactly once per missing
// identity. Storage backends are pluggable: per-entry files, Redis and
// SQLite all satisfy the same interface.
package assetcache

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store.Get when no entry exists for a key.
var ErrNotFound = errors.New("assetcache: entry not found")

// Stats is read-only introspection over a store.
type Stats struct {
	EntryCount int64 `json:"entry_count"`
	TotalBytes int64 `json:"total_bytes"`
}

// Store is a byte-keyed durable store for cache entries.
//
// Contract:
//   - Implementations must be safe for concurrent use.
//   - Put must publish atomically: a concurrent Get sees either the whole
//     entry or ErrNotFound, never a torn write.
//   - Get returns ErrNotFound on miss; any other error is a read failure
//     the caller treats as a miss.
//   - Delete is idempotent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
	Close() error
}
