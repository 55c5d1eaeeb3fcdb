package perf

import (
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/simbi/simbi-seller/internal/analytics"
	analytichttp "github.com/simbi/simbi-seller/internal/analytics/http"
	"github.com/simbi/simbi-seller/internal/commerce"
	"github.com/simbi/simbi-seller/internal/insights"
)

var benchNow = time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

var statuses = []commerce.OrderStatus{
	commerce.OrderStatusPending, commerce.OrderStatusProcessing, commerce.OrderStatusShipped,
	commerce.OrderStatusCompleted, commerce.OrderStatusCompleted, commerce.OrderStatusCancelled,
	commerce.OrderStatusRefunded,
}

// syntheticSnapshot spreads orders over the four years before benchNow.
func syntheticSnapshot(products, orders int) commerce.Snapshot {
	rng := rand.New(rand.NewSource(42))
	snap := commerce.Snapshot{
		Products: make([]commerce.Product, products),
		Orders:   make([]commerce.Order, orders),
	}
	for i := range snap.Products {
		price := float64(5 + rng.Intn(200))
		stock := rng.Intn(50)
		snap.Products[i] = commerce.Product{
			ID:     fmt.Sprintf("P-%04d", i),
			Name:   fmt.Sprintf("Product %d", i),
			Price:  &price,
			Stock:  &stock,
			Images: []string{"a.jpg"},
			Status: commerce.ProductStatusLive,
			Views:  int64(rng.Intn(5000)),
		}
	}
	span := int(benchNow.Sub(benchNow.AddDate(-4, 0, 0)).Hours())
	for i := range snap.Orders {
		created := benchNow.Add(-time.Duration(rng.Intn(span)) * time.Hour)
		qty := 1 + rng.Intn(4)
		price := float64(5 + rng.Intn(200))
		hours := float64(rng.Intn(72))
		snap.Orders[i] = commerce.Order{
			ID:               fmt.Sprintf("ORD-%06d", i),
			Items:            []commerce.OrderItem{{ProductID: fmt.Sprintf("P-%04d", rng.Intn(products)), Quantity: qty, Price: price}},
			Total:            float64(qty) * price,
			Status:           statuses[rng.Intn(len(statuses))],
			CreatedAt:        created.Format(time.RFC3339),
			FulfillmentHours: &hours,
		}
	}
	return snap
}

func BenchmarkComputeKPIs(b *testing.B) {
	snap := syntheticSnapshot(500, 20000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		analytics.ComputeKPIs(snap.Products, snap.Orders, benchNow)
	}
}

func BenchmarkSalesSummary(b *testing.B) {
	snap := syntheticSnapshot(500, 20000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		analytics.ComputeSalesSummary(snap.Orders, benchNow)
	}
}

func BenchmarkTopProducts(b *testing.B) {
	snap := syntheticSnapshot(500, 20000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		analytics.TopNProductsByQuantity(snap.Orders, 20)
	}
}

func BenchmarkYearComparison(b *testing.B) {
	snap := syntheticSnapshot(500, 20000)
	builder := insights.NewBuilder(time.UTC, 2023, insights.MaxSelectedYears)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := builder.Build(snap.Orders, insights.Request{Mode: insights.ModeYearly, Chart: insights.ChartMixed}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDashboardHTTP(b *testing.B) {
	router := newRouter(syntheticSnapshot(500, 20000))
	paths := []string{"/analytics/kpis", "/analytics/summary", "/analytics/score", "/reports/comparison?mode=month&month=2"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, paths[i%len(paths)], nil))
		if rr.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rr.Code)
		}
	}
}

func newRouter(snap commerce.Snapshot) http.Handler {
	src := commerce.NewStaticSource(snap)
	h := analytichttp.NewHandler(nil, analytics.NewService(src, src), insights.NewBuilder(time.UTC, 2023, 4), nil)
	h.WithNow(func() time.Time { return benchNow })
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func TestPercentile95(t *testing.T) {
	samples := make([]time.Duration, 0, 20)
	for i := 20; i >= 1; i-- {
		samples = append(samples, time.Duration(i)*time.Millisecond)
	}
	assert.Equal(t, 19*time.Millisecond, percentile95(samples))
	assert.Zero(t, percentile95(nil))
}

func percentile95(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	index := int(float64(len(sorted)-1) * 0.95)
	return sorted[index]
}
