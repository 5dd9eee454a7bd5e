// Package app provides the main application struct for centralized dependency
// management and lifecycle control of the pressmin server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"pressmin/config"
	"pressmin/internal/assetcache"
	"pressmin/internal/minify"
	"pressmin/internal/observability"
	"pressmin/internal/server"
)

// App represents the main application with all its dependencies.
// It provides centralized lifecycle management for all components.
type App struct {
	config *config.Config
	logger *slog.Logger
	store  assetcache.Store
	cache  *assetcache.AssetCache
	server *server.Server

	shutdownMu sync.Mutex
	shutdown   bool
}

// Config holds the options for creating an App.
type Config struct {
	// AppConfig is the loaded configuration produced by config.Load.
	AppConfig *config.Config

	// Logger is the application logger. Defaults to slog.Default.
	Logger *slog.Logger

	// AdminKey optionally protects mutating endpoints with a bearer token.
	AdminKey string

	// MetricsEnabled exposes Prometheus metrics at /metrics and registers
	// the cache collectors.
	MetricsEnabled bool

	// Registerer receives the metric collectors when metrics are enabled.
	// Defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// New creates a new App with all dependencies initialized.
// The caller must call Shutdown to release resources.
func New(ctx context.Context, cfg Config) (*App, error) {
	if cfg.AppConfig == nil {
		return nil, fmt.Errorf("app config is required")
	}
	appCfg := cfg.AppConfig

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app := &App{
		config: appCfg,
		logger: logger,
	}

	store, err := NewStore(ctx, appCfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache storage: %w", err)
	}
	app.store = store

	var hooks assetcache.Hooks
	if cfg.MetricsEnabled {
		reg := cfg.Registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		hooks = observability.NewMetrics(reg)
	}

	minifier := minify.New(minify.Options{
		MaxInputBytes: appCfg.Minify.MaxInputBytes,
		Exclude:       appCfg.Minify.Exclude,
	})

	app.cache = assetcache.New(assetcache.Config{
		Store:    store,
		Minifier: minifier,
		Logger:   logger,
		Hooks:    hooks,
	})

	app.logStartupInfo(cfg)

	app.server = server.New(app.cache, &server.Config{
		AdminKey:       cfg.AdminKey,
		MetricsEnabled: cfg.MetricsEnabled,
		BodyLimit:      appCfg.Server.BodyLimit,
		Logger:         logger,
	})

	return app, nil
}

// Cache returns the asset cache, for callers embedding the app without
// going through HTTP.
func (a *App) Cache() *assetcache.AssetCache {
	return a.cache
}

// Start starts the HTTP server on the given address.
// This is a blocking call that returns when the server stops.
func (a *App) Start(addr string) error {
	if a.server == nil {
		return fmt.Errorf("server is not initialized")
	}
	a.logger.Info("starting server", "address", addr)
	if err := a.server.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			a.logger.Info("server stopped gracefully")
			return nil
		}
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully tears down app components in dependency order: the
// HTTP server stops accepting requests first, then the storage backend is
// closed. Shutdown is idempotent; after the first call, subsequent calls
// are no-ops.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownMu.Lock()
	if a.shutdown {
		a.shutdownMu.Unlock()
		return nil
	}
	a.shutdown = true
	a.shutdownMu.Unlock()

	a.logger.Info("shutting down application...")

	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Error("server shutdown error", "error", err)
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error("storage close error", "error", err)
			errs = append(errs, fmt.Errorf("storage close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	a.logger.Info("application shutdown complete")
	return nil
}

// logStartupInfo logs the application configuration on startup.
func (a *App) logStartupInfo(cfg Config) {
	if cfg.AdminKey == "" {
		a.logger.Warn("PRESSMIN_ADMIN_KEY not set, mutating endpoints are unauthenticated")
	} else {
		a.logger.Info("authentication enabled", "mode", "admin_key")
	}

	if cfg.MetricsEnabled {
		a.logger.Info("prometheus metrics enabled", "endpoint", "/metrics")
	} else {
		a.logger.Info("prometheus metrics disabled")
	}

	a.logger.Info("cache storage configured", "backend", a.config.Cache.Backend)
	if len(a.config.Minify.Exclude) > 0 {
		a.logger.Info("exclusion patterns active", "count", len(a.config.Minify.Exclude))
	}
}

// NewStore builds the storage backend selected by the configuration. The
// CLI uses it directly to inspect and purge the cache without starting a
// server.
func NewStore(_ context.Context, cfg config.CacheConfig) (assetcache.Store, error) {
	switch cfg.Backend {
	case "memory":
		return assetcache.NewMemoryStore(), nil
	case "local":
		return assetcache.NewLocalStore(cfg.Dir, cfg.Compress)
	case "redis":
		var ttl time.Duration
		if cfg.RedisTTL != "" {
			var err error
			ttl, err = time.ParseDuration(cfg.RedisTTL)
			if err != nil {
				return nil, fmt.Errorf("invalid redis TTL %q: %w", cfg.RedisTTL, err)
			}
		}
		return assetcache.NewRedisStore(assetcache.RedisConfig{
			URL: cfg.RedisURL,
			TTL: ttl,
		})
	case "sqlite":
		return assetcache.NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
