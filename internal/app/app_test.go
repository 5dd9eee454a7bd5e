package app

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"pressmin/config"
)

func testConfig(backend string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "0", BodyLimit: "4M"},
		Cache:  config.CacheConfig{Backend: backend},
		Log:    config.LogConfig{Level: "info", Format: "text"},
	}
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestNewWithMemoryBackend(t *testing.T) {
	a, err := New(context.Background(), Config{
		AppConfig: testConfig("memory"),
		Logger:    slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if a.Cache() == nil {
		t.Error("expected initialized cache")
	}
	if err := a.Shutdown(context.Background()); err != nil {
		t.Errorf("shutdown failed: %v", err)
	}
	// second shutdown is a no-op
	if err := a.Shutdown(context.Background()); err != nil {
		t.Errorf("repeated shutdown failed: %v", err)
	}
}

func TestNewWithLocalBackend(t *testing.T) {
	cfg := testConfig("local")
	cfg.Cache.Dir = t.TempDir()

	a, err := New(context.Background(), Config{
		AppConfig: cfg,
		Logger:    slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Shutdown(context.Background())
}

func TestNewWithSQLiteBackend(t *testing.T) {
	cfg := testConfig("sqlite")
	cfg.Cache.SQLitePath = filepath.Join(t.TempDir(), "cache.db")

	a, err := New(context.Background(), Config{
		AppConfig: cfg,
		Logger:    slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Shutdown(context.Background())
}

func TestNewWithMetrics(t *testing.T) {
	a, err := New(context.Background(), Config{
		AppConfig:      testConfig("memory"),
		Logger:         slog.New(slog.DiscardHandler),
		MetricsEnabled: true,
		Registerer:     prometheus.NewRegistry(),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Shutdown(context.Background())
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), Config{
		AppConfig: testConfig("carrier-pigeon"),
		Logger:    slog.New(slog.DiscardHandler),
	})
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
