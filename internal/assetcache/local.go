package assetcache

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
)

const (
	plainExt      = ".min"
	compressedExt = ".min.br"
)

// LocalStore keeps one file per entry under a dedicated directory. This is
// the reference medium. Writes go to a uuid-suffixed temporary file that is
// renamed into place, so a concurrent reader never observes a torn entry
// and concurrent writers never clobber each other's temporary file.
type LocalStore struct {
	dir      string
	compress bool
}

// NewLocalStore creates the cache directory if needed. With compress set,
// entries are stored brotli-compressed; sites that serve the cache
// directory directly can hand the .br files to clients as-is.
func NewLocalStore(dir string, compress bool) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &LocalStore{dir: dir, compress: compress}, nil
}

func (s *LocalStore) ext() string {
	if s.compress {
		return compressedExt
	}
	return plainExt
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key)) + s.ext()
}

func (s *LocalStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	if !s.compress {
		return data, nil
	}
	out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress cache entry: %w", err)
	}
	return out, nil
}

func (s *LocalStore) Put(_ context.Context, key string, data []byte) error {
	target := s.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create shard directory: %w", err)
	}
	if s.compress {
		var buf bytes.Buffer
		w := brotli.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to compress cache entry: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("failed to compress cache entry: %w", err)
		}
		data = buf.Bytes()
	}
	tmp := target + ".tmp-" + uuid.NewString()
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to publish cache entry: %w", err)
	}
	return nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

func (s *LocalStore) Clear(_ context.Context) error {
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to clear cache directory: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to recreate cache directory: %w", err)
	}
	return nil
}

func (s *LocalStore) Stats(_ context.Context) (Stats, error) {
	var st Stats
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if !strings.HasSuffix(path, plainExt) && !strings.HasSuffix(path, compressedExt) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil // entry removed mid-walk
		}
		st.EntryCount++
		st.TotalBytes += info.Size()
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("failed to walk cache directory: %w", err)
	}
	return st, nil
}

func (s *LocalStore) Close() error { return nil }

var _ Store = (*LocalStore)(nil)
