package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/simbi/simbi-seller/internal/commerce"
)

// Service loads a fresh snapshot from the catalog and order collaborators
// on every call and runs the engine over it.
type Service struct {
	products commerce.ProductSource
	orders   commerce.OrderSource
}

// NewService wires the snapshot collaborators.
func NewService(products commerce.ProductSource, orders commerce.OrderSource) *Service {
	return &Service{products: products, orders: orders}
}

// Snapshot fetches products and orders concurrently.
func (s *Service) Snapshot(ctx context.Context) (commerce.Snapshot, error) {
	if s.products == nil || s.orders == nil {
		return commerce.Snapshot{}, fmt.Errorf("analytics: sources not configured")
	}
	var snap commerce.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		products, err := s.products.ListProducts(gctx)
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		snap.Products = products
		return nil
	})
	g.Go(func() error {
		orders, err := s.orders.ListOrders(gctx)
		if err != nil {
			return fmt.Errorf("list orders: %w", err)
		}
		snap.Orders = orders
		return nil
	})
	if err := g.Wait(); err != nil {
		return commerce.Snapshot{}, err
	}
	return snap, nil
}

// Orders fetches only the order collection.
func (s *Service) Orders(ctx context.Context) ([]commerce.Order, error) {
	if s.orders == nil {
		return nil, fmt.Errorf("analytics: order source not configured")
	}
	return s.orders.ListOrders(ctx)
}

// KPIs computes the dashboard cards as of now.
func (s *Service) KPIs(ctx context.Context, now time.Time) (KPISummary, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return KPISummary{}, err
	}
	return ComputeKPIs(snap.Products, snap.Orders, now), nil
}

// Sales returns the trailing daily series ending on now.
func (s *Service) Sales(ctx context.Context, days int, now time.Time) ([]DailySales, error) {
	orders, err := s.Orders(ctx)
	if err != nil {
		return nil, err
	}
	return SalesOverTime(orders, days, now), nil
}

// Summary returns the daily, weekly and monthly totals.
func (s *Service) Summary(ctx context.Context, now time.Time) (SalesSummary, error) {
	orders, err := s.Orders(ctx)
	if err != nil {
		return SalesSummary{}, err
	}
	return ComputeSalesSummary(orders, now), nil
}

// Score computes the seller score.
func (s *Service) Score(ctx context.Context) (SellerScore, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return SellerScore{}, err
	}
	return ComputeSellerScore(snap.Products, snap.Orders), nil
}

// Rankings computes the quantity and value rankings.
func (s *Service) Rankings(ctx context.Context, n int) (Rankings, error) {
	orders, err := s.Orders(ctx)
	if err != nil {
		return Rankings{}, err
	}
	return TopNProductsByQuantity(orders, n), nil
}
