package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	clockimpl "github.com/foxseedlab/kaigolog/external/clock"
	configloader "github.com/foxseedlab/kaigolog/external/config"
	"github.com/foxseedlab/kaigolog/external/exportfile"
	storageimpl "github.com/foxseedlab/kaigolog/external/storage"
	"github.com/foxseedlab/kaigolog/internal/config"
	"github.com/foxseedlab/kaigolog/internal/tracker"
	"github.com/samber/do/v2"
)

func main() {
	cfg := mustLoadConfig()
	initLogger(cfg)

	injector := setupDI(cfg)

	t, err := do.Invoke[*tracker.Tracker](injector)
	if err != nil {
		slog.Error("failed to build dependency graph", "error", err)
		os.Exit(1)
	}
	ctx := context.Background()
	if err := t.Load(ctx); err != nil {
		slog.Error("failed to load persisted state", "error", err)
		os.Exit(1)
	}

	if err := dispatch(ctx, injector, cfg, t, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelWarn
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	// stdout belongs to command output; logs go to stderr.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	clockimpl.RegisterDI(injector)
	storageimpl.RegisterDI(injector)
	exportfile.RegisterDI(injector)
	tracker.RegisterDI(injector)

	return injector
}
