// Package main is the entry point for the pressmin minification server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"pressmin/config"
	"pressmin/internal/app"
	"pressmin/internal/version"
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version information")
	devFlag := flag.Bool("dev", false, "Pretty, colorized logs for local development")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log, *devFlag)
	slog.SetDefault(logger)

	logger.Info("starting pressmind",
		"version", version.Version,
		"commit", version.Commit,
		"build_date", version.Date,
	)

	a, err := app.New(context.Background(), app.Config{
		AppConfig:      cfg,
		Logger:         logger,
		AdminKey:       os.Getenv("PRESSMIN_ADMIN_KEY"),
		MetricsEnabled: os.Getenv("PRESSMIN_METRICS_ENABLED") == "true",
	})
	if err != nil {
		logger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	// Handle graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := a.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	if err := a.Start(":" + cfg.Server.Port); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger from the logging configuration.
// The text format uses tint for readable local output; json is for
// log collectors. The --dev flag forces the tint handler.
func newLogger(cfg config.LogConfig, dev bool) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if cfg.Format == "json" && !dev {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}
