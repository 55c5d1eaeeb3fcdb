package analytics

import (
	"sort"

	"github.com/simbi/simbi-seller/internal/commerce"
)

// ProductSales accumulates line items for a single product.
type ProductSales struct {
	ProductID string  `json:"productId"`
	Qty       int     `json:"qty"`
	Revenue   float64 `json:"revenue"`
}

// Rankings holds the same accumulators ordered two ways.
type Rankings struct {
	ByQty   []ProductSales `json:"byQty"`
	ByValue []ProductSales `json:"byValue"`
}

// aggregateItems folds every line item into per-product accumulators in
// first-seen order. Revenue is quantity times the captured unit price, not
// the order total.
func aggregateItems(orders []commerce.Order) []ProductSales {
	index := make(map[string]int)
	var acc []ProductSales
	for _, o := range orders {
		for _, item := range o.Items {
			i, ok := index[item.ProductID]
			if !ok {
				i = len(acc)
				index[item.ProductID] = i
				acc = append(acc, ProductSales{ProductID: item.ProductID})
			}
			acc[i].Qty += item.Quantity
			acc[i].Revenue += float64(item.Quantity) * item.Price
		}
	}
	return acc
}

// TopNProductsByQuantity ranks products by units sold and by line-item
// revenue. Ties keep first-seen order. n < 1 yields empty rankings.
func TopNProductsByQuantity(orders []commerce.Order, n int) Rankings {
	if n < 1 {
		return Rankings{ByQty: []ProductSales{}, ByValue: []ProductSales{}}
	}
	acc := aggregateItems(orders)

	byQty := append([]ProductSales(nil), acc...)
	sort.SliceStable(byQty, func(i, j int) bool { return byQty[i].Qty > byQty[j].Qty })
	byValue := append([]ProductSales(nil), acc...)
	sort.SliceStable(byValue, func(i, j int) bool { return byValue[i].Revenue > byValue[j].Revenue })

	return Rankings{ByQty: truncate(byQty, n), ByValue: truncate(byValue, n)}
}

// TopProducts returns the quantity ranking alone.
func TopProducts(orders []commerce.Order, n int) []ProductSales {
	return TopNProductsByQuantity(orders, n).ByQty
}

// BestSeller reports the product with the most units sold. The boolean is
// false when no order carries a line item.
func BestSeller(orders []commerce.Order) (ProductSales, bool) {
	top := TopProducts(orders, 1)
	if len(top) == 0 {
		return ProductSales{}, false
	}
	return top[0], true
}

// LostSales keeps orders whose status is exactly Cancelled or Refunded.
func LostSales(orders []commerce.Order) []commerce.Order {
	lost := make([]commerce.Order, 0)
	for _, o := range orders {
		switch o.Status {
		case commerce.OrderStatusCancelled, commerce.OrderStatusRefunded:
			lost = append(lost, o)
		}
	}
	return lost
}

func truncate(rows []ProductSales, n int) []ProductSales {
	if rows == nil {
		return []ProductSales{}
	}
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}
