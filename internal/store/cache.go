package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/simbi/simbi-seller/internal/commerce"
)

const (
	cacheVersionKey = "snapshot:version"
	// BumpChannel carries version bumps between service instances.
	BumpChannel = "orders.bump"
)

// Snapshot kinds used in cache keys.
const (
	KindProducts = "products"
	KindOrders   = "orders"
)

// SnapshotCache keeps raw product and order snapshots in Redis under a
// global version. A nil client degrades to a pass-through.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotCache instantiates the cache helper.
func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *SnapshotCache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, cacheVersionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// Key composes snapshot:<kind>:<version>.
func (c *SnapshotCache) Key(ctx context.Context, kind string) (string, error) {
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("snapshot:%s:%d", kind, ver), nil
}

// FetchJSON loads a cached value or populates it using the loader.
func (c *SnapshotCache) FetchJSON(ctx context.Context, kind string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("store: loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		return roundTrip(value, dest)
	}
	key, err := c.Key(ctx, kind)
	if err != nil {
		return err
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates every snapshot by incrementing the version and
// publishing it on BumpChannel.
func (c *SnapshotCache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, BumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation follows version bumps published by other instances
// until ctx is done.
func (c *SnapshotCache) ListenForInvalidation(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, BumpChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ver, err := strconv.ParseInt(msg.Payload, 10, 64)
				if err != nil {
					_ = c.client.Incr(ctx, cacheVersionKey).Err()
					continue
				}
				current, err := c.client.Get(ctx, cacheVersionKey).Int64()
				if err == nil && current >= ver {
					continue
				}
				_ = c.client.Set(ctx, cacheVersionKey, ver, 0).Err()
			}
		}
	}()
	return nil
}

func roundTrip(value, dest interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// sharedLoadTimeout bounds one coalesced snapshot load.
var sharedLoadTimeout = 10 * time.Second

// CachedSource serves product and order snapshots through a SnapshotCache.
// Concurrent loads of the same kind share one fetch; callers must treat the
// returned slices as read-only.
type CachedSource struct {
	products commerce.ProductSource
	orders   commerce.OrderSource
	cache    *SnapshotCache
	group    singleflight.Group
}

// NewCachedSource wraps the underlying sources.
func NewCachedSource(products commerce.ProductSource, orders commerce.OrderSource, cache *SnapshotCache) *CachedSource {
	return &CachedSource{products: products, orders: orders, cache: cache}
}

// ListProducts implements commerce.ProductSource.
func (s *CachedSource) ListProducts(ctx context.Context) ([]commerce.Product, error) {
	v, err := s.shared(ctx, KindProducts, func(ctx context.Context) (interface{}, error) {
		var products []commerce.Product
		err := s.cache.FetchJSON(ctx, KindProducts, &products, func(ctx context.Context) (interface{}, error) {
			return s.products.ListProducts(ctx)
		})
		if products == nil {
			products = []commerce.Product{}
		}
		return products, err
	})
	if err != nil {
		return nil, err
	}
	return v.([]commerce.Product), nil
}

// ListOrders implements commerce.OrderSource.
func (s *CachedSource) ListOrders(ctx context.Context) ([]commerce.Order, error) {
	v, err := s.shared(ctx, KindOrders, func(ctx context.Context) (interface{}, error) {
		var orders []commerce.Order
		err := s.cache.FetchJSON(ctx, KindOrders, &orders, func(ctx context.Context) (interface{}, error) {
			return s.orders.ListOrders(ctx)
		})
		if orders == nil {
			orders = []commerce.Order{}
		}
		return orders, err
	})
	if err != nil {
		return nil, err
	}
	return v.([]commerce.Order), nil
}

// shared collapses concurrent loads of one kind. The fetch is detached from
// any single caller and bounded by sharedLoadTimeout; each waiter stops
// waiting only when its own ctx ends.
func (s *CachedSource) shared(ctx context.Context, kind string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	ch := s.group.DoChan(kind, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()
		return fn(loadCtx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// Invalidate bumps the cache version.
func (s *CachedSource) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}
