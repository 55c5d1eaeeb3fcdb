package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simbi/simbi-seller/internal/commerce"
)

type failingOrders struct{ err error }

func (f failingOrders) ListOrders(context.Context) ([]commerce.Order, error) {
	return nil, f.err
}

func newStaticService() *Service {
	src := commerce.NewStaticSource(commerce.Snapshot{
		Products: []commerce.Product{
			{ID: "A", Name: "Brake Pad", Price: ptrFloat(10), Stock: ptrInt(4), Images: []string{"a.png"}, Views: 8},
		},
		Orders: []commerce.Order{
			{ID: "o1", Total: 30, Status: commerce.OrderStatusCompleted, CreatedAt: "2024-03-15T09:00:00Z",
				Items: []commerce.OrderItem{{ProductID: "A", Quantity: 3, Price: 10}}, FulfillmentHours: ptrFloat(4)},
			{ID: "o2", Total: 12, Status: commerce.OrderStatusCancelled, CreatedAt: "2024-03-10T09:00:00Z",
				Items: []commerce.OrderItem{{ProductID: "B", Quantity: 6, Price: 2}}},
		},
	})
	return NewService(src, src)
}

func TestServiceSnapshotAndKPIs(t *testing.T) {
	svc := newStaticService()
	ctx := context.Background()

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Products, 1)
	assert.Len(t, snap.Orders, 2)

	kpis, err := svc.KPIs(ctx, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 42.0, kpis.TotalRevenue)
	assert.Equal(t, 30.0, kpis.TodaysSales)
	assert.Equal(t, int64(8), kpis.ProductViews)

	rankings, err := svc.Rankings(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "B", rankings.ByQty[0].ProductID)
	assert.Equal(t, "A", rankings.ByValue[0].ProductID)

	series, err := svc.Sales(ctx, WindowWeek, fixedNow)
	require.NoError(t, err)
	assert.Len(t, series, WindowWeek)

	summary, err := svc.Summary(ctx, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 42.0, summary.Weekly)

	score, err := svc.Score(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, score.Timeliness)
}

func TestServicePropagatesSourceErrors(t *testing.T) {
	boom := errors.New("boom")
	src := commerce.NewStaticSource(commerce.Snapshot{})
	svc := NewService(src, failingOrders{err: boom})

	_, err := svc.KPIs(context.Background(), fixedNow)
	require.ErrorIs(t, err, boom)

	_, err = NewService(nil, nil).Snapshot(context.Background())
	require.Error(t, err)
}
