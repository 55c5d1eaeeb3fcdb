package orders

import (
	"sort"
	"strings"
	"time"

	"github.com/simbi/simbi-seller/internal/commerce"
)

// Listing defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 200
)

// Sort keys and directions accepted by Query.
const (
	SortDate  = "date"
	SortTotal = "total"
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ListParams is the listing request. Zero values take the defaults.
type ListParams struct {
	Q     string `validate:"omitempty,max=100"`
	Sort  string `validate:"omitempty,oneof=date total"`
	Order string `validate:"omitempty,oneof=asc desc"`
	Page  int    `validate:"omitempty,min=1"`
	Limit int    `validate:"omitempty,min=1,max=200"`
}

// Page is one page of the filtered, sorted order list.
type Page struct {
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
	Items []commerce.Order `json:"items"`
}

func (p ListParams) normalized() ListParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Sort == "" {
		p.Sort = SortDate
	}
	if p.Order == "" {
		p.Order = OrderDesc
	}
	p.Q = strings.ToLower(strings.TrimSpace(p.Q))
	return p
}

// Query filters orders by a case-insensitive match on the order id or any
// line item product id, sorts them and returns the requested page. The input
// slice is not modified; unparseable timestamps sort as the oldest.
func Query(orders []commerce.Order, params ListParams) Page {
	params = params.normalized()

	items := make([]commerce.Order, 0, len(orders))
	for _, o := range orders {
		if params.Q == "" || matches(o, params.Q) {
			items = append(items, o)
		}
	}

	asc := params.Order == OrderAsc
	switch params.Sort {
	case SortTotal:
		sort.SliceStable(items, func(i, j int) bool {
			if asc {
				return items[i].Total < items[j].Total
			}
			return items[i].Total > items[j].Total
		})
	default:
		stamps := make(map[string]time.Time, len(items))
		for _, o := range items {
			ts, _ := commerce.ParseTimestamp(o.CreatedAt, time.UTC)
			stamps[o.CreatedAt] = ts
		}
		sort.SliceStable(items, func(i, j int) bool {
			a, b := stamps[items[i].CreatedAt], stamps[items[j].CreatedAt]
			if asc {
				return a.Before(b)
			}
			return a.After(b)
		})
	}

	total := len(items)
	start := (params.Page - 1) * params.Limit
	end := start + params.Limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return Page{Total: total, Page: params.Page, Limit: params.Limit, Items: items[start:end]}
}

func matches(o commerce.Order, q string) bool {
	if strings.Contains(strings.ToLower(o.ID), q) {
		return true
	}
	for _, item := range o.Items {
		if strings.Contains(strings.ToLower(item.ProductID), q) {
			return true
		}
	}
	return false
}
