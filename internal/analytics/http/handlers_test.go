package analytichttp

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simbi/simbi-seller/internal/analytics"
	"github.com/simbi/simbi-seller/internal/commerce"
	"github.com/simbi/simbi-seller/internal/insights"
	"github.com/simbi/simbi-seller/internal/orders"
)

type failingLoader struct{}

func (failingLoader) Snapshot(context.Context) (commerce.Snapshot, error) {
	return commerce.Snapshot{}, errors.New("db unavailable")
}

func fptr(v float64) *float64 { return &v }

func iptr(v int) *int { return &v }

func fixture() commerce.Snapshot {
	return commerce.Snapshot{
		Products: []commerce.Product{
			{ID: "A", Name: `Brake Pad, "Heavy Duty"`, Price: fptr(10), Stock: iptr(5), Images: []string{"a.png"}, Views: 10},
			{ID: "B", Name: "Oil Filter", Price: fptr(2), Stock: iptr(0)},
		},
		Orders: []commerce.Order{
			{ID: "o1", Total: 100, Status: commerce.OrderStatusCompleted, CreatedAt: "2025-02-15T08:00:00Z",
				Items: []commerce.OrderItem{{ProductID: "A", Quantity: 3, Price: 10}}, FulfillmentHours: fptr(6)},
			{ID: "o2", Total: 50, Status: commerce.OrderStatusPending, CreatedAt: "2025-02-14T08:00:00Z",
				Items: []commerce.OrderItem{{ProductID: "B", Quantity: 5, Price: 2}}},
			{ID: "o3", Total: 70, Status: commerce.OrderStatusRefunded, CreatedAt: "2024-02-10T08:00:00Z",
				Items: []commerce.OrderItem{{ProductID: "A", Quantity: 1, Price: 10}}},
			{ID: "o4", Total: 30, Status: commerce.OrderStatusCancelled, CreatedAt: "2023-07-01T08:00:00Z"},
		},
	}
}

func newTestRouter(t *testing.T) (http.Handler, *commerce.StaticSource) {
	t.Helper()
	src := commerce.NewStaticSource(fixture())
	svc := analytics.NewService(src, src)
	handler := NewHandler(nil, svc, insights.NewBuilder(time.UTC, 2023, 4), orders.NewService(src, src, nil, nil))
	handler.WithNow(func() time.Time { return time.Date(2025, 2, 15, 12, 0, 0, 0, time.UTC) })
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r, src
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dest))
}

func TestKPIsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	rr := do(t, router, http.MethodGet, "/analytics/kpis", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		TotalRevenue      float64           `json:"totalRevenue"`
		TodaysSales       float64           `json:"todaysSales"`
		TotalOrders       int               `json:"totalOrders"`
		UnfulfilledOrders int               `json:"unfulfilledOrders"`
		Formatted         map[string]string `json:"formatted"`
	}
	decode(t, rr, &body)
	assert.Equal(t, 250.0, body.TotalRevenue)
	assert.Equal(t, 100.0, body.TodaysSales)
	assert.Equal(t, 4, body.TotalOrders)
	assert.Equal(t, 3, body.UnfulfilledOrders)
	assert.Equal(t, "$250.00", body.Formatted["totalRevenue"])
}

func TestSalesEndpointValidatesDays(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := do(t, router, http.MethodGet, "/analytics/sales?days=7", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Series []analytics.DailySales `json:"series"`
	}
	decode(t, rr, &body)
	require.Len(t, body.Series, 7)
	assert.Equal(t, analytics.DailySales{Date: "2025-02-15", Sales: 100}, body.Series[6])

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/analytics/sales?days=0", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/analytics/sales?days=abc", "").Code)
}

func TestScoreEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	rr := do(t, router, http.MethodGet, "/analytics/score", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var score analytics.SellerScore
	decode(t, rr, &score)
	assert.Equal(t, 50, score.Completeness)
	assert.Equal(t, 25, score.Timeliness)
	assert.Equal(t, 50, score.StockAvailability)
	assert.GreaterOrEqual(t, score.Score, 0)
	assert.LessOrEqual(t, score.Score, 100)
}

func TestReportTopProducts(t *testing.T) {
	router, _ := newTestRouter(t)
	rr := do(t, router, http.MethodGet, "/reports/top-products?n=2", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		ByQty   []rankedProduct `json:"byQty"`
		ByValue []rankedProduct `json:"byValue"`
	}
	decode(t, rr, &body)
	require.Len(t, body.ByQty, 2)
	assert.Equal(t, "B", body.ByQty[0].ProductID)
	assert.Equal(t, "Oil Filter", body.ByQty[0].Name)
	assert.Equal(t, "A", body.ByValue[0].ProductID)
	assert.Equal(t, 40.0, body.ByValue[0].Revenue)
}

func TestTopProductsCSVRoundTripsQuotedNames(t *testing.T) {
	router, _ := newTestRouter(t)
	rr := do(t, router, http.MethodGet, "/reports/top-products.csv", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "top_products.csv")

	records, err := csv.NewReader(bytes.NewReader(rr.Body.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"1", "B", "Oil Filter", "5", "10"}, records[1])
	assert.Equal(t, []string{"2", "A", `Brake Pad, "Heavy Duty"`, "4", "40"}, records[2])
}

func TestComparisonEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	rr := do(t, router, http.MethodGet, "/reports/comparison?years=2025,2024,2023&chart=mixed", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var res insights.Result
	decode(t, rr, &res)
	assert.Equal(t, []int{2025, 2024, 2023}, res.Years)
	require.Len(t, res.Table.Rows, 12)
	assert.Equal(t, []float64{150, 70, 0}, res.Table.Rows[1].Values)
	assert.Equal(t, insights.RenderBar, res.RenderModes[2023])
	assert.Equal(t, insights.RenderLine, res.RenderModes[2025])
}

func TestComparisonRejectsBadSelection(t *testing.T) {
	router, _ := newTestRouter(t)
	for _, target := range []string{
		"/reports/comparison?years=2025,2025",
		"/reports/comparison?years=2021,2022,2023,2024,2025",
		"/reports/comparison?years=abc",
		"/reports/comparison?mode=weekly",
		"/reports/comparison?mode=month&month=13",
		"/reports/comparison?chart=pie",
	} {
		rr := do(t, router, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, target)
	}
}

func TestComparisonCSVMonthMode(t *testing.T) {
	router, _ := newTestRouter(t)
	rr := do(t, router, http.MethodGet, "/reports/comparison.csv?mode=month&month=2&years=2024,2025", "")
	require.Equal(t, http.StatusOK, rr.Code)
	records, err := csv.NewReader(bytes.NewReader(rr.Body.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 30)
	assert.Equal(t, []string{"Day", "2024", "2025"}, records[0])
	assert.Equal(t, []string{"29", "0", "0"}, records[29])
}

func TestMonthTotalsCSV(t *testing.T) {
	router, _ := newTestRouter(t)
	rr := do(t, router, http.MethodGet, "/reports/month-totals.csv?month=2&years=2025,2024", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Year,Month,Revenue\n2025,February,150\n2024,February,70\n", rr.Body.String())
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "month_comparison_February_2025_2024.csv")
}

func TestBestSellerAndLostSales(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := do(t, router, http.MethodGet, "/reports/best-seller", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var best struct {
		BestSeller rankedProduct `json:"bestSeller"`
	}
	decode(t, rr, &best)
	assert.Equal(t, "B", best.BestSeller.ProductID)

	rr = do(t, router, http.MethodGet, "/reports/lost-sales", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var lost struct {
		Count  int              `json:"count"`
		Value  float64          `json:"value"`
		Orders []commerce.Order `json:"orders"`
	}
	decode(t, rr, &lost)
	assert.Equal(t, 2, lost.Count)
	assert.Equal(t, 100.0, lost.Value)
	assert.Equal(t, "o3", lost.Orders[0].ID)
}

func TestOrdersListingAndStatusUpdate(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := do(t, router, http.MethodGet, "/orders?sort=total&order=asc&limit=2", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var page orders.Page
	decode(t, rr, &page)
	assert.Equal(t, 4, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "o4", page.Items[0].ID)

	rr = do(t, router, http.MethodPost, "/orders/o2/status", `{"status":"Shipped"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"Shipped"`)

	rr = do(t, router, http.MethodGet, "/orders?q=o2", "")
	decode(t, rr, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, commerce.OrderStatusShipped, page.Items[0].Status)

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/orders/o2/status", `{"status":"shipped"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/orders/o2/status", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodPost, "/orders/zzz/status", `{"status":"Shipped"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/orders?sort=name", "").Code)
}

func TestSnapshotFailureReturnsServerError(t *testing.T) {
	handler := NewHandler(nil, failingLoader{}, nil, nil)
	r := chi.NewRouter()
	handler.MountRoutes(r)

	rr := do(t, r, http.MethodGet, "/analytics/kpis", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, http.StatusNotImplemented, do(t, r, http.MethodGet, "/orders", "").Code)
}

func TestExportRateLimit(t *testing.T) {
	router, _ := newTestRouter(t)
	var last int
	for i := 0; i < 11; i++ {
		req := httptest.NewRequest(http.MethodGet, "/analytics/kpis.csv", nil)
		req.Header.Set("X-Seller-ID", "seller-1")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		last = rr.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

type countingExports map[string]int

func (c countingExports) ObserveExport(kind string) { c[kind]++ }

func TestExportObserverCountsServedFiles(t *testing.T) {
	src := commerce.NewStaticSource(fixture())
	handler := NewHandler(nil, analytics.NewService(src, src), nil, nil)
	exports := countingExports{}
	handler.WithExportObserver(exports)
	r := chi.NewRouter()
	handler.MountRoutes(r)

	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/reports/lost-sales.csv", "").Code)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/analytics/kpis.csv", "").Code)
	require.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/analytics/sales.csv?days=0", "").Code)

	assert.Equal(t, countingExports{"lost_sales": 1, "kpis": 1}, exports)
}

func TestLostSalesValueRoundsToCents(t *testing.T) {
	src := commerce.NewStaticSource(commerce.Snapshot{
		Orders: []commerce.Order{
			{ID: "c1", Total: 0.1, Status: commerce.OrderStatusCancelled, CreatedAt: "2025-01-02T08:00:00Z"},
			{ID: "c2", Total: 0.2, Status: commerce.OrderStatusCancelled, CreatedAt: "2025-01-03T08:00:00Z"},
		},
	})
	r := chi.NewRouter()
	NewHandler(nil, analytics.NewService(src, src), nil, nil).MountRoutes(r)

	rr := do(t, r, http.MethodGet, "/reports/lost-sales", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]any
	decode(t, rr, &body)
	assert.Equal(t, 0.3, body["value"])
	assert.Equal(t, 2.0, body["count"])
}
