package assetcache

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Identity describes one version of one asset. It is immutable and exists
// only to derive a cache key: changing the source content or its mtime
// yields a different identity and therefore a different key, which is the
// whole invalidation mechanism. There is no explicit expiry.
type Identity struct {
	Handle      string
	ContentHash [sha256.Size]byte
	SourceMtime int64
}

// NewIdentity builds an identity from an asset handle, its raw bytes and
// the source file's modification time.
func NewIdentity(handle string, raw []byte, mtime int64) Identity {
	return Identity{
		Handle:      handle,
		ContentHash: sha256.Sum256(raw),
		SourceMtime: mtime,
	}
}

// Key derives the storage key. The derivation depends only on the identity
// fields, never on wall-clock time, so the same identity maps to the same
// key across process restarts. A short hash of the handle prefixes the key
// to spread entries across shard directories on filesystem backends.
func (id Identity) Key() string {
	shard := xxhash.Sum64String(id.Handle) & 0xff
	return fmt.Sprintf("%02x/%s-%d-%x", shard, sanitizeHandle(id.Handle), id.SourceMtime, id.ContentHash)
}

// sanitizeHandle maps a handle to a filesystem- and redis-safe token.
// Collisions between sanitized handles are harmless: the content hash in
// the key keeps distinct assets apart.
func sanitizeHandle(handle string) string {
	var b strings.Builder
	b.Grow(len(handle))
	for i := 0; i < len(handle); i++ {
		c := handle[i]
		switch {
		case c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-' || c == '_':
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + 'a' - 'A')
		default:
			b.WriteByte('-')
		}
	}
	const maxHandle = 80
	s := b.String()
	if len(s) > maxHandle {
		s = s[:maxHandle]
	}
	return s
}
