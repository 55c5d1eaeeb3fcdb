package commerce

// ProductStatus governs catalog visibility only; analytics ignores it.
type ProductStatus string

const (
	ProductStatusLive   ProductStatus = "Live"
	ProductStatusHidden ProductStatus = "Hidden"
	ProductStatusDraft  ProductStatus = "Draft"
)

// Valid reports whether the status is one of the known literals.
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusLive, ProductStatusHidden, ProductStatusDraft:
		return true
	}
	return false
}

// OrderStatus is matched by exact, case-sensitive literal everywhere.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusCompleted  OrderStatus = "Completed"
	OrderStatusCancelled  OrderStatus = "Cancelled"
	OrderStatusRefunded   OrderStatus = "Refunded"
)

// Valid reports whether the status is one of the known literals.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// Product is a catalog entry as handed over by the catalog store.
// Price and Stock are pointers so that an undefined value stays observable.
type Product struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	SKU       string        `json:"sku,omitempty"`
	Price     *float64      `json:"price,omitempty"`
	Stock     *int          `json:"stock,omitempty"`
	Images    []string      `json:"images,omitempty"`
	Status    ProductStatus `json:"status,omitempty"`
	CreatedAt string        `json:"createdAt,omitempty"`
	Views     int64         `json:"views,omitempty"`
}

// InStock reports whether at least one unit is on hand.
func (p Product) InStock() bool {
	return p.Stock != nil && *p.Stock > 0
}

// OrderItem captures the unit price at the time of sale.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Order is a placed order. Total is not reconciled with the line items.
type Order struct {
	ID               string      `json:"id"`
	Items            []OrderItem `json:"items"`
	Total            float64     `json:"total"`
	Status           OrderStatus `json:"status"`
	CreatedAt        string      `json:"createdAt"`
	FulfillmentHours *float64    `json:"fulfillmentHours,omitempty"`
}

// Snapshot is the read-only pair of collections the engine works on.
type Snapshot struct {
	Products []Product `json:"products"`
	Orders   []Order   `json:"orders"`
}

// ProductsByID indexes products by id. Later duplicates win.
func ProductsByID(products []Product) map[string]Product {
	index := make(map[string]Product, len(products))
	for _, p := range products {
		index[p.ID] = p
	}
	return index
}
