package analytichttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/simbi/simbi-seller/internal/platform/httpx"
)

// MountRoutes registers the analytics, reports and order endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "export rate limit exceeded")
		}),
	)

	r.Route("/analytics", func(r chi.Router) {
		r.Get("/kpis", h.handleKPIs)
		r.Get("/sales", h.handleSales)
		r.Get("/summary", h.handleSummary)
		r.Get("/score", h.handleScore)
		r.Get("/top-products", h.handleTopProducts)
		r.Group(func(gr chi.Router) {
			gr.Use(limiter)
			gr.Get("/kpis.csv", h.handleKPICSV)
			gr.Get("/sales.csv", h.handleSalesCSV)
		})
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/comparison", h.handleComparison)
		r.Get("/top-products", h.handleReportTopProducts)
		r.Get("/best-seller", h.handleBestSeller)
		r.Get("/lost-sales", h.handleLostSales)
		r.Group(func(gr chi.Router) {
			gr.Use(limiter)
			gr.Get("/comparison.csv", h.handleComparisonCSV)
			gr.Get("/top-products.csv", h.handleTopProductsCSV)
			gr.Get("/month-totals.csv", h.handleMonthTotalsCSV)
			gr.Get("/lost-sales.csv", h.handleLostSalesCSV)
		})
	})

	r.Get("/orders", h.handleOrders)
	r.Post("/orders/{id}/status", h.handleOrderStatus)
}

func rateLimitKey(r *http.Request) (string, error) {
	if seller := r.Header.Get("X-Seller-ID"); seller != "" {
		return "seller:" + seller, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
