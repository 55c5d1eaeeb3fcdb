package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/simbi/simbi-seller/internal/app"
	"github.com/simbi/simbi-seller/internal/platform/cache"
	"github.com/simbi/simbi-seller/internal/platform/db"
	"github.com/simbi/simbi-seller/internal/store"
)

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.PGDSN == "" || cfg.SeedPath == "" {
		return errors.New("seed: PG_DSN and SEED_PATH are required")
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		return err
	}
	defer pool.Close()

	repo := store.NewRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := app.SeedRepository(ctx, repo, cfg.SeedPath); err != nil {
		return err
	}
	client, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err != nil {
		logger.Warn("redis unavailable, cached snapshots expire on their own", slog.Any("error", err))
	}
	if client != nil {
		defer func() { _ = client.Close() }()
		if err := store.NewSnapshotCache(client, cfg.SnapshotCacheTTL).Bump(ctx); err != nil {
			logger.Warn("bump snapshot cache", slog.Any("error", err))
		}
	}
	logger.Info("seed complete", slog.String("path", cfg.SeedPath))
	return nil
}
