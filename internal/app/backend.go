package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/simbi/simbi-seller/internal/commerce"
	"github.com/simbi/simbi-seller/internal/orders"
	"github.com/simbi/simbi-seller/internal/platform/cache"
	"github.com/simbi/simbi-seller/internal/platform/db"
	"github.com/simbi/simbi-seller/internal/store"
)

// Backend bundles the catalog and order collaborators selected by Config.
type Backend struct {
	Source   *store.CachedSource
	Statuses orders.Repository
	Cache    *store.SnapshotCache
	Pool     *pgxpool.Pool
	Redis    *redis.Client
}

// OpenBackend connects Postgres when PG_DSN is set and falls back to the
// static seed file otherwise. Redis is optional and only backs the
// Postgres mode: the static seed lives in one process, so snapshots shared
// through Redis would let another process overwrite its status updates.
func OpenBackend(ctx context.Context, cfg *Config, logger *slog.Logger) (*Backend, error) {
	b := &Backend{}
	var products commerce.ProductSource
	var orderSource commerce.OrderSource

	if cfg.PGDSN != "" {
		pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
		if err != nil {
			return nil, err
		}
		b.Pool = pool
		repo := store.NewRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			b.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		if cfg.SeedDatabase {
			if err := SeedRepository(ctx, repo, cfg.SeedPath); err != nil {
				b.Close()
				return nil, err
			}
			logger.Info("seeded database", slog.String("path", cfg.SeedPath))
		}
		products, orderSource, b.Statuses = repo, repo, repo
	} else {
		static, err := commerce.LoadStaticSource(cfg.SeedPath)
		if err != nil {
			return nil, err
		}
		logger.Info("serving static seed", slog.String("path", cfg.SeedPath))
		products, orderSource, b.Statuses = static, static, static
	}

	if b.Pool != nil {
		client, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err != nil {
			// Cache is an accelerator; serve uncached rather than fail.
			logger.Warn("redis unavailable, snapshot cache disabled", slog.Any("error", err))
		}
		b.Redis = client
	} else if cfg.RedisAddr != "" {
		logger.Info("static seed keeps its own state, snapshot cache disabled")
	}
	b.Cache = store.NewSnapshotCache(b.Redis, cfg.SnapshotCacheTTL)
	b.Source = store.NewCachedSource(products, orderSource, b.Cache)
	return b, nil
}

// Readiness returns checks for the connected dependencies.
func (b *Backend) Readiness() map[string]ReadinessCheck {
	checks := map[string]ReadinessCheck{}
	if b.Pool != nil {
		checks["postgres"] = b.Pool.Ping
	}
	if b.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return b.Redis.Ping(ctx).Err() }
	}
	return checks
}

// Close releases pooled connections.
func (b *Backend) Close() {
	if b == nil {
		return
	}
	if b.Redis != nil {
		_ = b.Redis.Close()
	}
	if b.Pool != nil {
		b.Pool.Close()
	}
}

// SeedRepository loads the JSON seed document and upserts it.
func SeedRepository(ctx context.Context, repo *store.Repository, path string) error {
	static, err := commerce.LoadStaticSource(path)
	if err != nil {
		return err
	}
	var snap commerce.Snapshot
	if snap.Products, err = static.ListProducts(ctx); err != nil {
		return err
	}
	if snap.Orders, err = static.ListOrders(ctx); err != nil {
		return err
	}
	return repo.Seed(ctx, snap)
}
