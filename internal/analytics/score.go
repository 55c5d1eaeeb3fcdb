package analytics

import (
	"math"

	"github.com/simbi/simbi-seller/internal/commerce"
)

// Score weights and thresholds.
const (
	weightCompleteness = 0.35
	weightTimeliness   = 0.25
	weightPricing      = 0.20
	weightStock        = 0.20

	fulfillmentSLAHours = 24

	completenessTipBelow = 80
	timelinessTipBelow   = 80
	stockTipBelow        = 70
	pricingTipAbove      = 85
)

// Improvement tips, appended in this order.
const (
	TipCompleteness = "Add more product details and images to improve listing completeness."
	TipTimeliness   = "Fulfill orders faster: aim for under 24 hours."
	TipRestock      = "Restock top-selling items to avoid lost sales."
	TipPricing      = "Consider reviewing prices to be more competitive."
)

// pricingHeuristic is a placeholder until competitive pricing data exists.
var pricingHeuristic float64 = 70

// SellerScore is the composite seller health estimate.
type SellerScore struct {
	Score             int      `json:"score"`
	Completeness      int      `json:"completeness"`
	Timeliness        int      `json:"timeliness"`
	Pricing           int      `json:"pricing"`
	StockAvailability int      `json:"stockAvailability"`
	Tips              []string `json:"tips"`
}

// ComputeSellerScore weighs listing completeness, fulfilment timeliness,
// pricing and stock availability into a 0..100 score. With no products,
// completeness and stock availability are 0; with no orders, timeliness is
// 100.
func ComputeSellerScore(products []commerce.Product, orders []commerce.Order) SellerScore {
	productBase := float64(max(len(products), 1))

	var complete, inStock int
	for _, p := range products {
		if p.Price != nil && p.Stock != nil && len(p.Images) > 0 {
			complete++
		}
		if p.InStock() {
			inStock++
		}
	}
	completeness := float64(complete) / productBase * 100
	stockAvailability := float64(inStock) / productBase * 100

	timeliness := 100.0
	if len(orders) > 0 {
		var onTime int
		for _, o := range orders {
			if o.FulfillmentHours != nil && *o.FulfillmentHours <= fulfillmentSLAHours {
				onTime++
			}
		}
		timeliness = float64(onTime) / float64(len(orders)) * 100
	}

	pricing := pricingHeuristic
	raw := completeness*weightCompleteness +
		timeliness*weightTimeliness +
		pricing*weightPricing +
		stockAvailability*weightStock
	score := int(math.Round(raw))
	score = max(0, min(100, score))

	tips := make([]string, 0, 4)
	if completeness < completenessTipBelow {
		tips = append(tips, TipCompleteness)
	}
	if timeliness < timelinessTipBelow {
		tips = append(tips, TipTimeliness)
	}
	if stockAvailability < stockTipBelow {
		tips = append(tips, TipRestock)
	}
	if pricing > pricingTipAbove {
		tips = append(tips, TipPricing)
	}

	return SellerScore{
		Score:             score,
		Completeness:      int(math.Round(completeness)),
		Timeliness:        int(math.Round(timeliness)),
		Pricing:           int(math.Round(pricing)),
		StockAvailability: int(math.Round(stockAvailability)),
		Tips:              tips,
	}
}
