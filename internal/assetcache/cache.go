package assetcache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"pressmin/internal/minify"
)

// Hooks receives cache and pipeline events. Implementations must be safe
// for concurrent use; the Prometheus metrics in internal/observability
// implement this interface.
type Hooks interface {
	ObserveHit(lang minify.Language)
	ObserveMiss(lang minify.Language)
	ObserveMinify(lang minify.Language, res minify.Result, elapsed time.Duration)
}

type noopHooks struct{}

func (noopHooks) ObserveHit(minify.Language)                                 {}
func (noopHooks) ObserveMiss(minify.Language)                                {}
func (noopHooks) ObserveMinify(minify.Language, minify.Result, time.Duration) {}

// Config holds the collaborators for an AssetCache.
type Config struct {
	Store    Store
	Minifier *minify.Minifier
	Logger   *slog.Logger
	Hooks    Hooks
}

// AssetCache is the content-addressed cache over minified assets. It is
// the only component that invokes the pipeline, and it never surfaces a
// pipeline or storage error to the serving path: the worst outcome of any
// failure is an asset served unminified.
type AssetCache struct {
	store    Store
	minifier *minify.Minifier
	logger   *slog.Logger
	hooks    Hooks
	group    singleflight.Group
}

// New creates an AssetCache.
func New(cfg Config) *AssetCache {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	hooks := cfg.Hooks
	if hooks == nil {
		hooks = noopHooks{}
	}
	return &AssetCache{
		store:    cfg.Store,
		minifier: cfg.Minifier,
		logger:   logger,
		hooks:    hooks,
	}
}

// Outcome reports how PutIfAbsent satisfied a request.
type Outcome struct {
	Bytes    []byte
	CacheHit bool
	// Fallback is true when the bytes are the unmodified original because
	// the pipeline fell back. Callers should serve the source as-is.
	Fallback bool
}

// Get returns the stored bytes for an identity, or false on a miss. A
// storage read failure is treated as a miss; the caller will recompute.
func (c *AssetCache) Get(ctx context.Context, id Identity) ([]byte, bool) {
	data, err := c.store.Get(ctx, id.Key())
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn("cache read failed, treating as miss", "handle", id.Handle, "error", err)
		}
		return nil, false
	}
	return data, true
}

// PutIfAbsent returns the cached bytes for the identity, computing and
// storing them on a miss. Concurrent callers missing on the same key share
// a single pipeline run. A storage write failure is logged and the
// computed bytes are still returned; the next request simply recomputes.
func (c *AssetCache) PutIfAbsent(ctx context.Context, id Identity, rawText string, lang minify.Language) Outcome {
	key := id.Key()
	if data, ok := c.Get(ctx, id); ok {
		c.hooks.ObserveHit(lang)
		return Outcome{Bytes: data, CacheHit: true}
	}
	c.hooks.ObserveMiss(lang)

	v, _, _ := c.group.Do(key, func() (any, error) {
		// another caller may have published while this one queued
		if data, err := c.store.Get(ctx, key); err == nil {
			return Outcome{Bytes: data, CacheHit: true}, nil
		}

		start := time.Now()
		res := c.minifier.Minify(minify.Request{Language: lang, Handle: id.Handle, RawText: rawText})
		c.hooks.ObserveMinify(lang, res, time.Since(start))
		if !res.Succeeded {
			c.logger.Debug("pipeline fell back to original text",
				"handle", id.Handle, "language", lang, "cause", res.Cause)
		}

		if err := c.store.Put(ctx, key, []byte(res.OutputText)); err != nil {
			// the transform still succeeded; serve it and recompute next time
			c.logger.Warn("cache write failed, serving computed result",
				"handle", id.Handle, "error", err)
		}
		return Outcome{Bytes: []byte(res.OutputText), Fallback: !res.Succeeded}, nil
	})
	return v.(Outcome)
}

// Delete removes the entry for one identity.
func (c *AssetCache) Delete(ctx context.Context, id Identity) error {
	return c.store.Delete(ctx, id.Key())
}

// Clear removes all entries. Invoked on cache-flush events like theme
// switches or a manual purge; the cache never calls it itself.
func (c *AssetCache) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// Stats reports entry count and total stored bytes.
func (c *AssetCache) Stats(ctx context.Context) (Stats, error) {
	return c.store.Stats(ctx)
}
