package analytichttp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/simbi/simbi-seller/internal/analytics"
	"github.com/simbi/simbi-seller/internal/analytics/export"
	"github.com/simbi/simbi-seller/internal/commerce"
	"github.com/simbi/simbi-seller/internal/insights"
	"github.com/simbi/simbi-seller/internal/orders"
	"github.com/simbi/simbi-seller/internal/platform/httpx"
)

const (
	requestTimeout     = 2 * time.Second
	defaultTopProducts = 5
	defaultReportTopN  = 20
)

// SnapshotLoader supplies a fresh products/orders snapshot per request.
type SnapshotLoader interface {
	Snapshot(ctx context.Context) (commerce.Snapshot, error)
}

// OrderService exposes the order listing and status use cases.
type OrderService interface {
	List(ctx context.Context, params orders.ListParams) (orders.Page, error)
	UpdateStatus(ctx context.Context, id string, status commerce.OrderStatus) error
}

// ExportObserver is notified after each CSV export is written.
type ExportObserver interface {
	ObserveExport(kind string)
}

// Handler serves the seller analytics, reports and order endpoints.
type Handler struct {
	logger   *slog.Logger
	snapshot SnapshotLoader
	builder  *insights.Builder
	orders   OrderService
	validate *validator.Validate
	exports  ExportObserver
	now      func() time.Time
}

// NewHandler constructs the analytics HTTP handler.
func NewHandler(logger *slog.Logger, snapshot SnapshotLoader, builder *insights.Builder, orderSvc OrderService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if builder == nil {
		builder = insights.NewBuilder(time.UTC, 0, insights.MaxSelectedYears)
	}
	return &Handler{
		logger:   logger,
		snapshot: snapshot,
		builder:  builder,
		orders:   orderSvc,
		validate: validator.New(),
		now:      time.Now,
	}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// WithExportObserver installs a counter for served CSV exports.
func (h *Handler) WithExportObserver(obs ExportObserver) {
	h.exports = obs
}

func (h *Handler) clock() time.Time {
	return h.now().In(h.builder.Location())
}

type kpiResponse struct {
	analytics.KPISummary
	Formatted map[string]string `json:"formatted"`
}

func (h *Handler) handleKPIs(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	kpis := analytics.ComputeKPIs(snap.Products, snap.Orders, h.clock())
	httpx.JSON(w, http.StatusOK, kpiResponse{
		KPISummary: kpis,
		Formatted: map[string]string{
			"totalRevenue": analytics.FormatUSD(kpis.TotalRevenue),
			"todaysSales":  analytics.FormatUSD(kpis.TodaysSales),
			"aov":          analytics.FormatUSD(kpis.AOV),
		},
	})
}

func (h *Handler) handleKPICSV(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	now := h.clock()
	kpis := analytics.ComputeKPIs(snap.Products, snap.Orders, now)
	asOf := now.Format(commerce.DateLayout)
	h.writeCSV(w, "kpis", "kpis_"+asOf+".csv", func(out io.Writer) error {
		return export.WriteKPICSV(out, kpis, asOf)
	})
}

type salesQuery struct {
	Days int `validate:"min=1,max=366"`
}

func (h *Handler) parseSales(r *http.Request) (salesQuery, error) {
	q := salesQuery{Days: analytics.WindowMonth}
	if err := intParam(r, "days", &q.Days); err != nil {
		return q, err
	}
	return q, h.check(q)
}

func (h *Handler) handleSales(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseSales(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"days":   q.Days,
		"series": analytics.SalesOverTime(snap.Orders, q.Days, h.clock()),
	})
}

func (h *Handler) handleSalesCSV(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseSales(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	series := analytics.SalesOverTime(snap.Orders, q.Days, h.clock())
	h.writeCSV(w, "sales", fmt.Sprintf("sales_%dd.csv", q.Days), func(out io.Writer) error {
		return export.WriteSalesSeriesCSV(out, series)
	})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, analytics.ComputeSalesSummary(snap.Orders, h.clock()))
}

func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, analytics.ComputeSellerScore(snap.Products, snap.Orders))
}

type topQuery struct {
	N int `validate:"min=1,max=100"`
}

func (h *Handler) parseTop(r *http.Request, fallback int) (topQuery, error) {
	q := topQuery{N: fallback}
	if err := intParam(r, "n", &q.N); err != nil {
		return q, err
	}
	return q, h.check(q)
}

// rankedProduct decorates a ranking row with the catalog name.
type rankedProduct struct {
	Rank int `json:"rank"`
	analytics.ProductSales
	Name string `json:"name"`
}

func decorate(rows []analytics.ProductSales, products []commerce.Product) []rankedProduct {
	names := commerce.ProductsByID(products)
	out := make([]rankedProduct, 0, len(rows))
	for i, row := range rows {
		name := row.ProductID
		if p, ok := names[row.ProductID]; ok && p.Name != "" {
			name = p.Name
		}
		out = append(out, rankedProduct{Rank: i + 1, ProductSales: row, Name: name})
	}
	return out
}

func (h *Handler) handleTopProducts(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseTop(r, defaultTopProducts)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items": decorate(analytics.TopProducts(snap.Orders, q.N), snap.Products),
	})
}

func (h *Handler) handleReportTopProducts(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseTop(r, defaultReportTopN)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	rankings := analytics.TopNProductsByQuantity(snap.Orders, q.N)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"byQty":   decorate(rankings.ByQty, snap.Products),
		"byValue": decorate(rankings.ByValue, snap.Products),
	})
}

func (h *Handler) handleTopProductsCSV(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseTop(r, defaultReportTopN)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	rankings := analytics.TopNProductsByQuantity(snap.Orders, q.N)
	h.writeCSV(w, "top_products", "top_products.csv", func(out io.Writer) error {
		return export.WriteTopProductsCSV(out, rankings.ByQty, snap.Products)
	})
}

func (h *Handler) handleBestSeller(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	best, found := analytics.BestSeller(snap.Orders)
	if !found {
		httpx.JSON(w, http.StatusOK, map[string]any{"bestSeller": nil})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"bestSeller": decorate([]analytics.ProductSales{best}, snap.Products)[0],
	})
}

func (h *Handler) handleLostSales(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	lost := analytics.LostSales(snap.Orders)
	var value float64
	for _, o := range lost {
		value += o.Total
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"count":  len(lost),
		"value":  analytics.RoundCents(value),
		"orders": lost,
	})
}

func (h *Handler) handleLostSalesCSV(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	lost := analytics.LostSales(snap.Orders)
	h.writeCSV(w, "lost_sales", "lost_sales.csv", func(out io.Writer) error {
		return export.WriteLostSalesCSV(out, lost)
	})
}

type comparisonQuery struct {
	Mode  string `validate:"omitempty,oneof=yearly month"`
	Years []int  `validate:"max=4,unique,dive,min=1970,max=9999"`
	Month int    `validate:"omitempty,min=1,max=12"`
	Chart string `validate:"omitempty,oneof=line bar mixed"`
}

func (h *Handler) parseComparison(r *http.Request) (insights.Request, error) {
	values := r.URL.Query()
	q := comparisonQuery{
		Mode:  strings.TrimSpace(values.Get("mode")),
		Chart: strings.TrimSpace(values.Get("chart")),
	}
	if raw := strings.TrimSpace(values.Get("years")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			year, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return insights.Request{}, fmt.Errorf("%w: years", httpx.ErrValidation)
			}
			q.Years = append(q.Years, year)
		}
	}
	if err := intParam(r, "month", &q.Month); err != nil {
		return insights.Request{}, err
	}
	if err := h.check(q); err != nil {
		return insights.Request{}, err
	}
	req := insights.Request{
		Mode:  insights.Mode(q.Mode),
		Years: q.Years,
		Month: q.Month,
		Chart: insights.ChartType(q.Chart),
	}
	if req.Mode == insights.ModeMonth && req.Month == 0 {
		req.Month = int(h.clock().Month())
	}
	return req, nil
}

func (h *Handler) buildComparison(w http.ResponseWriter, r *http.Request, forceMonth bool) (insights.Result, []commerce.Order, bool) {
	req, err := h.parseComparison(r)
	if err != nil {
		httpx.RespondError(w, err)
		return insights.Result{}, nil, false
	}
	if forceMonth {
		req.Mode = insights.ModeMonth
		if req.Month == 0 {
			req.Month = int(h.clock().Month())
		}
	}
	snap, ok := h.load(w, r)
	if !ok {
		return insights.Result{}, nil, false
	}
	res, err := h.builder.Build(snap.Orders, req)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return insights.Result{}, nil, false
	}
	return res, snap.Orders, true
}

func (h *Handler) handleComparison(w http.ResponseWriter, r *http.Request) {
	res, _, ok := h.buildComparison(w, r, false)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) handleComparisonCSV(w http.ResponseWriter, r *http.Request) {
	res, _, ok := h.buildComparison(w, r, false)
	if !ok {
		return
	}
	prefix := "year_comparison_"
	if res.Mode == insights.ModeMonth {
		prefix = "day_comparison_" + insights.MonthNames[res.Month-1] + "_"
	}
	h.writeCSV(w, "comparison", prefix+joinYears(res.Years)+".csv", func(out io.Writer) error {
		return export.WriteComparisonCSV(out, res.Table)
	})
}

func (h *Handler) handleMonthTotalsCSV(w http.ResponseWriter, r *http.Request) {
	res, all, ok := h.buildComparison(w, r, true)
	if !ok {
		return
	}
	rows, err := h.builder.MonthTotals(all, res.Years, res.Month)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	name := fmt.Sprintf("month_comparison_%s_%s.csv", insights.MonthNames[res.Month-1], joinYears(res.Years))
	h.writeCSV(w, "month_totals", name, func(out io.Writer) error {
		return export.WriteMonthTotalsCSV(out, rows)
	})
}

func (h *Handler) handleOrders(w http.ResponseWriter, r *http.Request) {
	if h.orders == nil {
		http.Error(w, http.StatusText(http.StatusNotImplemented), http.StatusNotImplemented)
		return
	}
	values := r.URL.Query()
	params := orders.ListParams{
		Q:     values.Get("q"),
		Sort:  strings.TrimSpace(values.Get("sort")),
		Order: strings.TrimSpace(values.Get("order")),
	}
	if err := intParam(r, "page", &params.Page); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := intParam(r, "limit", &params.Limit); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.check(params); err != nil {
		httpx.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	page, err := h.orders.List(ctx, params)
	if err != nil {
		h.handleServerError(w, "list orders", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

type statusForm struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	if h.orders == nil {
		http.Error(w, http.StatusText(http.StatusNotImplemented), http.StatusNotImplemented)
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	var form statusForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.check(form); err != nil {
		httpx.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	status := commerce.OrderStatus(form.Status)
	err := h.orders.UpdateStatus(ctx, id, status)
	switch {
	case err == nil:
	case errors.Is(err, commerce.ErrOrderNotFound):
		httpx.RespondError(w, fmt.Errorf("%w: order %s", httpx.ErrNotFound, id))
		return
	case errors.Is(err, commerce.ErrInvalidStatus), errors.Is(err, orders.ErrMissingID):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	default:
		h.handleServerError(w, "update order status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"order": map[string]any{
			"id":        id,
			"status":    status,
			"updatedAt": h.now().UTC().Format(time.RFC3339),
		},
	})
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (commerce.Snapshot, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	snap, err := h.snapshot.Snapshot(ctx)
	if err != nil {
		h.handleServerError(w, "load snapshot", err)
		return commerce.Snapshot{}, false
	}
	return snap, true
}

func (h *Handler) writeCSV(w http.ResponseWriter, kind, filename string, write func(io.Writer) error) {
	if err := httpx.CSV(w, filename, write); err != nil {
		h.handleServerError(w, "write csv", err)
		return
	}
	if h.exports != nil {
		h.exports.ObserveExport(kind)
	}
}

func (h *Handler) check(v any) error {
	if err := h.validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fmt.Errorf("%w: %s failed %s", httpx.ErrValidation, strings.ToLower(fieldErrs[0].Field()), fieldErrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return nil
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logger.Error(context, slog.Any("error", err))
	httpx.RespondError(w, err)
}

// intParam overwrites dest only when the query parameter is present.
func intParam(r *http.Request, name string, dest *int) error {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: %s must be an integer", httpx.ErrValidation, name)
	}
	*dest = v
	return nil
}

func joinYears(years []int) string {
	parts := make([]string, 0, len(years))
	for _, y := range years {
		parts = append(parts, strconv.Itoa(y))
	}
	return strings.Join(parts, "_")
}
