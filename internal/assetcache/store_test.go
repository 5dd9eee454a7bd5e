package assetcache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// storeConformance runs the Store contract against any backend.
func storeConformance(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("miss returns ErrNotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "00/absent")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		want := []byte(".a{color:red}")
		if err := store.Put(ctx, "00/entry-1", want); err != nil {
			t.Fatalf("put failed: %v", err)
		}
		got, err := store.Get(ctx, "00/entry-1")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if string(got) != string(want) {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("overwrite is last writer wins", func(t *testing.T) {
		if err := store.Put(ctx, "00/entry-1", []byte("second")); err != nil {
			t.Fatalf("put failed: %v", err)
		}
		got, err := store.Get(ctx, "00/entry-1")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if string(got) != "second" {
			t.Errorf("got %q, want %q", got, "second")
		}
	})

	t.Run("stats", func(t *testing.T) {
		if err := store.Put(ctx, "01/entry-2", []byte("abc")); err != nil {
			t.Fatalf("put failed: %v", err)
		}
		st, err := store.Stats(ctx)
		if err != nil {
			t.Fatalf("stats failed: %v", err)
		}
		if st.EntryCount != 2 {
			t.Errorf("expected 2 entries, got %d", st.EntryCount)
		}
		if st.TotalBytes <= 0 {
			t.Errorf("expected positive total bytes, got %d", st.TotalBytes)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		if err := store.Delete(ctx, "01/entry-2"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if err := store.Delete(ctx, "01/entry-2"); err != nil {
			t.Fatalf("second delete failed: %v", err)
		}
		if _, err := store.Get(ctx, "01/entry-2"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("clear removes everything", func(t *testing.T) {
		if err := store.Clear(ctx); err != nil {
			t.Fatalf("clear failed: %v", err)
		}
		st, err := store.Stats(ctx)
		if err != nil {
			t.Fatalf("stats failed: %v", err)
		}
		if st.EntryCount != 0 {
			t.Errorf("expected empty store, got %d entries", st.EntryCount)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	storeConformance(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), false)
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	storeConformance(t, store)
}

func TestLocalStoreCompressed(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), true)
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	storeConformance(t, store)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()
	storeConformance(t, store)
}

func TestLocalStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, false)
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if err := store.Put(ctx, "aa/same-key", []byte(strings.Repeat("x", i+1))); err != nil {
			t.Fatalf("put failed: %v", err)
		}
	}
	var files int
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		files++
		if strings.Contains(path, ".tmp-") {
			t.Errorf("temporary file left behind: %s", path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	if files != 1 {
		t.Errorf("expected exactly one entry file, found %d", files)
	}
}

func TestLocalStoreCompressedRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), true)
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	ctx := context.Background()
	payload := []byte(strings.Repeat(".a{color:red}", 200))
	if err := store.Put(ctx, "bb/entry", payload); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	got, err := store.Get(ctx, "bb/entry")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != string(payload) {
		t.Error("compressed round trip mismatch")
	}
	// the stored file must actually be smaller than the payload
	st, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if st.TotalBytes >= int64(len(payload)) {
		t.Errorf("expected compression, stored %d bytes for a %d byte payload", st.TotalBytes, len(payload))
	}
}
