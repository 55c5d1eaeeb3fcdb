package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/simbi/simbi-seller/internal/commerce"
)

// ErrMissingID is returned when a status update names no order.
var ErrMissingID = errors.New("orders: order id required")

// Repository persists order status changes.
type Repository interface {
	UpdateOrderStatus(ctx context.Context, id string, status commerce.OrderStatus) error
}

// Invalidator drops cached snapshots after a write.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Service implements the order use cases outside the analytics engine.
type Service struct {
	source commerce.OrderSource
	repo   Repository
	cache  Invalidator
	logger *slog.Logger
}

// NewService wires the order source, the status repository and an optional
// cache invalidator.
func NewService(source commerce.OrderSource, repo Repository, cache Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, repo: repo, cache: cache, logger: logger}
}

// List loads the current orders and applies Query.
func (s *Service) List(ctx context.Context, params ListParams) (Page, error) {
	all, err := s.source.ListOrders(ctx)
	if err != nil {
		return Page{}, fmt.Errorf("orders: list: %w", err)
	}
	return Query(all, params), nil
}

// UpdateStatus validates and persists a new status, then invalidates the
// snapshot cache. A failed invalidation is logged, not returned.
func (s *Service) UpdateStatus(ctx context.Context, id string, status commerce.OrderStatus) error {
	if id == "" {
		return ErrMissingID
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", commerce.ErrInvalidStatus, status)
	}
	if err := s.repo.UpdateOrderStatus(ctx, id, status); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("snapshot invalidation failed", slog.String("order_id", id), slog.Any("error", err))
		}
	}
	s.logger.Info("order status updated", slog.String("order_id", id), slog.String("status", string(status)))
	return nil
}
