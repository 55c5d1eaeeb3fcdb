package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// ProductSource supplies the catalog snapshot on demand.
type ProductSource interface {
	ListProducts(ctx context.Context) ([]Product, error)
}

// OrderSource supplies the order snapshot on demand.
type OrderSource interface {
	ListOrders(ctx context.Context) ([]Order, error)
}

// StaticSource serves a fixed snapshot, typically loaded from a seed file.
type StaticSource struct {
	mu       sync.RWMutex
	products []Product
	orders   []Order
}

// NewStaticSource wraps an in-memory snapshot.
func NewStaticSource(snapshot Snapshot) *StaticSource {
	return &StaticSource{products: snapshot.Products, orders: snapshot.Orders}
}

// LoadStaticSource reads a JSON document shaped like Snapshot.
func LoadStaticSource(path string) (*StaticSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("commerce: read seed: %w", err)
	}
	var snapshot Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("commerce: decode seed: %w", err)
	}
	return NewStaticSource(snapshot), nil
}

// ListProducts returns a copy of the catalog.
func (s *StaticSource) ListProducts(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

// ListOrders returns a copy of the orders.
func (s *StaticSource) ListOrders(ctx context.Context) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Order, len(s.orders))
	copy(out, s.orders)
	return out, nil
}

// UpdateOrderStatus changes the status of a single order in place.
func (s *StaticSource) UpdateOrderStatus(ctx context.Context, id string, status OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = status
			return nil
		}
	}
	return ErrOrderNotFound
}
