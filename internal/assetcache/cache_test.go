package assetcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"pressmin/internal/minify"
)

func newTestCache(t *testing.T, store Store) *AssetCache {
	t.Helper()
	return New(Config{
		Store:    store,
		Minifier: minify.New(minify.Options{}),
		Logger:   slog.New(slog.DiscardHandler),
	})
}

func TestPutIfAbsentMissThenHit(t *testing.T) {
	store := NewMemoryStore()
	cache := newTestCache(t, store)
	ctx := context.Background()

	raw := "  .a  {  color : red ;  }"
	id := NewIdentity("theme-style", []byte(raw), 1700000000)

	first := cache.PutIfAbsent(ctx, id, raw, minify.LangCSS)
	if first.CacheHit {
		t.Error("first request should be a miss")
	}
	if string(first.Bytes) != ".a{color:red}" {
		t.Errorf("unexpected minified output %q", first.Bytes)
	}

	second := cache.PutIfAbsent(ctx, id, raw, minify.LangCSS)
	if !second.CacheHit {
		t.Error("second request should be a hit")
	}
	if string(second.Bytes) != string(first.Bytes) {
		t.Errorf("hit returned %q, want %q", second.Bytes, first.Bytes)
	}

	st, err := cache.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if st.EntryCount != 1 {
		t.Errorf("expected 1 entry, got %d", st.EntryCount)
	}
}

func TestPutIfAbsentConcurrent(t *testing.T) {
	store := NewMemoryStore()
	cache := newTestCache(t, store)
	ctx := context.Background()

	raw := "var x = 1;\nvar y = 2;"
	id := NewIdentity("site-script", []byte(raw), 1700000000)

	const callers = 16
	outcomes := make([]Outcome, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = cache.PutIfAbsent(ctx, id, raw, minify.LangJS)
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		if string(outcomes[i].Bytes) != string(outcomes[0].Bytes) {
			t.Fatalf("caller %d got %q, caller 0 got %q", i, outcomes[i].Bytes, outcomes[0].Bytes)
		}
	}
	st, err := cache.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if st.EntryCount != 1 {
		t.Errorf("expected exactly one stored entry, got %d", st.EntryCount)
	}
}

// failingStore accepts reads but rejects every write.
type failingStore struct {
	*MemoryStore
}

func (s *failingStore) Put(context.Context, string, []byte) error {
	return fmt.Errorf("disk full")
}

func TestPutIfAbsentWriteFailureStillServes(t *testing.T) {
	cache := newTestCache(t, &failingStore{NewMemoryStore()})
	ctx := context.Background()

	raw := ".a{margin:0px}"
	id := NewIdentity("broken-disk", []byte(raw), 1)

	out := cache.PutIfAbsent(ctx, id, raw, minify.LangCSS)
	if out.CacheHit {
		t.Error("write-failing store can never produce a hit")
	}
	if string(out.Bytes) != ".a{margin:0}" {
		t.Errorf("computed bytes not served, got %q", out.Bytes)
	}

	// next request recomputes instead of erroring
	again := cache.PutIfAbsent(ctx, id, raw, minify.LangCSS)
	if string(again.Bytes) != string(out.Bytes) {
		t.Errorf("recompute returned %q, want %q", again.Bytes, out.Bytes)
	}
}

// brokenReadStore fails reads with a non-NotFound error.
type brokenReadStore struct {
	*MemoryStore
}

func (s *brokenReadStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("io error")
}

func TestReadFailureTreatedAsMiss(t *testing.T) {
	cache := newTestCache(t, &brokenReadStore{NewMemoryStore()})
	ctx := context.Background()

	raw := ".a{color:red}"
	id := NewIdentity("flaky-read", []byte(raw), 1)

	if _, ok := cache.Get(ctx, id); ok {
		t.Error("read failure must surface as a miss")
	}
	out := cache.PutIfAbsent(ctx, id, raw, minify.LangCSS)
	if out.CacheHit {
		t.Error("expected recompute, not a hit")
	}
	if string(out.Bytes) != ".a{color:red}" {
		t.Errorf("got %q", out.Bytes)
	}
}

func TestPutIfAbsentFallback(t *testing.T) {
	cache := newTestCache(t, NewMemoryStore())
	ctx := context.Background()

	raw := "var s = 'unterminated"
	id := NewIdentity("bad-script", []byte(raw), 1)

	out := cache.PutIfAbsent(ctx, id, raw, minify.LangJS)
	if !out.Fallback {
		t.Error("unterminated string literal should fall back")
	}
	if string(out.Bytes) != raw {
		t.Errorf("fallback must serve the original text, got %q", out.Bytes)
	}
}

func TestDeleteAndClear(t *testing.T) {
	cache := newTestCache(t, NewMemoryStore())
	ctx := context.Background()

	raw := ".a{color:red}"
	id := NewIdentity("purge-me", []byte(raw), 1)
	cache.PutIfAbsent(ctx, id, raw, minify.LangCSS)

	if err := cache.Delete(ctx, id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok := cache.Get(ctx, id); ok {
		t.Error("entry still present after delete")
	}

	cache.PutIfAbsent(ctx, id, raw, minify.LangCSS)
	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	st, err := cache.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if st.EntryCount != 0 {
		t.Errorf("expected empty cache after clear, got %d entries", st.EntryCount)
	}
}
