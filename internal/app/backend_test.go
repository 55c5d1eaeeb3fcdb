package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simbi/simbi-seller/internal/commerce"
)

func TestOpenBackendStaticSeed(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b, err := OpenBackend(ctx, &Config{SeedPath: "testdata/seed.json"}, logger)
	require.NoError(t, err)
	defer b.Close()

	assert.Nil(t, b.Pool)
	assert.Nil(t, b.Redis)
	assert.Empty(t, b.Readiness())

	products, err := b.Source.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 5)

	require.NoError(t, b.Statuses.UpdateOrderStatus(ctx, "ORD-1006", commerce.OrderStatusProcessing))
	orders, err := b.Source.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 7)
	assert.Equal(t, commerce.OrderStatusProcessing, orders[5].Status)
}

func TestOpenBackendStaticSeedSkipsRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b, err := OpenBackend(ctx, &Config{SeedPath: "testdata/seed.json", RedisAddr: mr.Addr()}, logger)
	require.NoError(t, err)
	defer b.Close()

	assert.Nil(t, b.Redis)
	assert.NotContains(t, b.Readiness(), "redis")

	_, err = b.Source.ListOrders(ctx)
	require.NoError(t, err)
	require.NoError(t, b.Statuses.UpdateOrderStatus(ctx, "ORD-1006", commerce.OrderStatusProcessing))
	orders, err := b.Source.ListOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, commerce.OrderStatusProcessing, orders[5].Status)
	assert.Empty(t, mr.Keys())
}

func TestOpenBackendMissingSeed(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := OpenBackend(context.Background(), &Config{SeedPath: "testdata/missing.json"}, logger)
	assert.Error(t, err)
}
