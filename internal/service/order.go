package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/lib/export"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/repository"
)

type OrderService struct {
	orders     OrderStore
	notify     *OrderNotifier
	pendingTTL time.Duration
	logger     *zerolog.Logger
	now        func() time.Time
}

func NewOrderService(orders OrderStore, notify *OrderNotifier, pendingTTL time.Duration, logger *zerolog.Logger) *OrderService {
	return &OrderService{
		orders:     orders,
		notify:     notify,
		pendingTTL: pendingTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// GetOrderByReference is the public order tracking lookup. The email must
// match the order; any mismatch looks like an unknown order.
func (s *OrderService) GetOrderByReference(ctx context.Context, reference, email string) (*model.Order, error) {
	o, err := s.orders.GetByReference(ctx, reference)
	if err != nil {
		if isNotFound(err) {
			return nil, errOrderNotFound()
		}
		return nil, err
	}
	if !o.EmailMatches(email) {
		return nil, errOrderNotFound()
	}
	return o, nil
}

func (s *OrderService) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

func (s *OrderService) ListOrders(ctx context.Context, f model.OrderFilter) (*model.PaginatedResponse[model.Order], error) {
	orders, total, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, err
	}
	page := model.NewPaginatedResponse(orders, f.Page, f.Limit, total)
	return &page, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, errOrderNotFound()
		}
		return nil, err
	}
	return o, nil
}

// UpdateStatus moves an order along the fulfilment flow
// paid -> processing -> shipped -> delivered, or cancels it before shipping.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, next model.OrderStatus, trackingNumber *string) (*model.Order, error) {
	current, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, errs.NewBadRequestError(
			fmt.Sprintf("An order cannot move from %s to %s", current.Status, next),
			true, &codeInvalidTransition, nil, nil)
	}

	updated, err := s.orders.UpdateStatus(ctx, id, current.Status, next, trackingNumber)
	if err != nil {
		if errors.Is(err, repository.ErrOrderStatusChanged) {
			return nil, errs.NewBadRequestError("The order was updated by someone else, reload it and try again",
				true, &codeStatusChanged, nil, nil)
		}
		return nil, err
	}
	updated.Items = current.Items

	s.logger.Info().
		Str("reference", updated.Reference).
		Str("from", string(current.Status)).
		Str("to", string(next)).
		Msg("order status updated")

	switch next {
	case model.OrderStatusShipped:
		s.notify.Shipped(ctx, updated)
	case model.OrderStatusCancelled:
		s.notify.Cancelled(ctx, updated)
	}
	s.notify.StatusChanged(updated)
	return updated, nil
}

// ExportOrders renders the orders created in [from, to) as an xlsx workbook.
func (s *OrderService) ExportOrders(ctx context.Context, from, to time.Time) ([]byte, error) {
	orders, err := s.orders.ListCreatedBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list orders for export: %w", err)
	}

	var buf bytes.Buffer
	if err := export.Orders(&buf, orders); err != nil {
		return nil, fmt.Errorf("export orders: %w", err)
	}
	return buf.Bytes(), nil
}

// ExpireStalePending expires orders that waited for payment longer than the
// configured TTL. It runs from the scheduled orders:expire_pending task.
func (s *OrderService) ExpireStalePending(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.pendingTTL)
	refs, err := s.orders.ExpirePending(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if len(refs) > 0 {
		s.logger.Info().Strs("references", refs).Time("cutoff", cutoff).Msg("pending orders expired")
	}
	return len(refs), nil
}
