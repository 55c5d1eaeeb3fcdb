package analytics

import (
	"time"

	"github.com/simbi/simbi-seller/internal/commerce"
)

// KPISummary contains the scalar indicators surfaced on the dashboard cards.
type KPISummary struct {
	TotalRevenue      float64 `json:"totalRevenue"`
	TodaysSales       float64 `json:"todaysSales"`
	TotalOrders       int     `json:"totalOrders"`
	AOV               float64 `json:"aov"`
	ProductViews      int64   `json:"productViews"`
	UnfulfilledOrders int     `json:"unfulfilledOrders"`
}

// ComputeKPIs derives the dashboard cards from a snapshot. Revenue is taken
// from order totals; today's sales match the YYYY-MM-DD prefix of createdAt
// against now's calendar date. Every status other than Completed, including
// Cancelled, counts as unfulfilled.
func ComputeKPIs(products []commerce.Product, orders []commerce.Order, now time.Time) KPISummary {
	today := now.Format(commerce.DateLayout)

	var summary KPISummary
	for _, o := range orders {
		summary.TotalRevenue += o.Total
		if commerce.DateKey(o.CreatedAt) == today {
			summary.TodaysSales += o.Total
		}
		if o.Status != commerce.OrderStatusCompleted {
			summary.UnfulfilledOrders++
		}
	}
	summary.TotalOrders = len(orders)
	if summary.TotalOrders > 0 {
		summary.AOV = summary.TotalRevenue / float64(summary.TotalOrders)
	}
	for _, p := range products {
		summary.ProductViews += p.Views
	}
	return summary
}

// SalesSummary mirrors the daily, weekly and monthly totals card.
type SalesSummary struct {
	Daily   float64      `json:"daily"`
	Weekly  float64      `json:"weekly"`
	Monthly float64      `json:"monthly"`
	Series  []DailySales `json:"series"`
}

// ComputeSalesSummary totals today, the trailing seven days and the current
// month, plus a 30-day daily series. Ranges are inclusive and evaluated in
// now's location.
func ComputeSalesSummary(orders []commerce.Order, now time.Time) SalesSummary {
	loc := now.Location()
	startDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	endDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, loc)
	startWeek := startDay.AddDate(0, 0, -6)
	startMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	return SalesSummary{
		Daily:   RevenueForPeriod(orders, startDay, endDay),
		Weekly:  RevenueForPeriod(orders, startWeek, endDay),
		Monthly: RevenueForPeriod(orders, startMonth, endDay),
		Series:  SalesOverTime(orders, WindowMonth, now),
	}
}

// RevenueForPeriod sums order totals whose parsed timestamp lies within
// [start, end]. Orders with unparseable timestamps are skipped.
func RevenueForPeriod(orders []commerce.Order, start, end time.Time) float64 {
	var total float64
	for _, o := range orders {
		ts, ok := commerce.ParseTimestamp(o.CreatedAt, start.Location())
		if !ok {
			continue
		}
		if ts.Before(start) || ts.After(end) {
			continue
		}
		total += o.Total
	}
	return total
}
