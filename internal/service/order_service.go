package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/goshop/internal/datamodels/order"
	"github.com/example/goshop/internal/datamodels/orderevent"
	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/errs"
)

// OrderService reads the order ledger and drives the status lifecycle.
// Orders themselves are created only by checkout.
type OrderService struct {
	orders   order.Repository
	products product.Repository
	events   *EventPublisher
}

// NewOrderService builds the order service.
func NewOrderService(orders order.Repository, products product.Repository, events *EventPublisher) *OrderService {
	return &OrderService{orders: orders, products: products, events: events}
}

// GetForUser returns one order, refusing access to another user's order.
func (s *OrderService) GetForUser(ctx context.Context, userID, orderID string) (*order.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, errs.ErrUnauthorized
	}
	return o, nil
}

// ListForUser returns the user's orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]*order.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListRecent returns the newest orders across all users (admin view).
func (s *OrderService) ListRecent(ctx context.Context, limit int) ([]*order.Order, error) {
	return s.orders.ListRecent(ctx, limit)
}

// UpdateStatus moves an order along the monotonic transition graph
// placed→shipped→delivered / placed→cancelled. Cancellation restores stock
// by exactly the order's line quantities; the conditional status write
// guarantees that happens at most once.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, newStatus string) (*order.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.CanTransition(o.Status, newStatus) {
		return nil, fmt.Errorf("%s -> %s: %w", o.Status, newStatus, errs.ErrInvalidTransition)
	}
	if err := s.orders.UpdateStatus(ctx, orderID, o.Status, newStatus); err != nil {
		return nil, err
	}
	prev := o.Status
	o.Status = newStatus

	kind := orderevent.KindStatusChanged
	if newStatus == order.StatusCancelled {
		kind = orderevent.KindCancelled
		GetMonitor().RecordCancellation()
		s.restock(ctx, o)
	}
	s.events.Publish(ctx, OrderEventMessage{
		OrderID: o.ID,
		UserID:  o.UserID,
		Kind:    kind,
		Detail:  fmt.Sprintf("%s -> %s", prev, newStatus),
	})
	return o, nil
}

// restock is the cancellation compensation: without it every cancellation
// silently shrinks inventory.
func (s *OrderService) restock(ctx context.Context, o *order.Order) {
	for _, l := range o.Lines {
		if err := s.products.RestoreStock(ctx, l.ProductID, l.Quantity); err != nil {
			GetMonitor().RecordDBError()
			zap.L().Error("cancellation restock failed",
				zap.String("order_id", o.ID),
				zap.String("product_id", l.ProductID),
				zap.Int64("quantity", l.Quantity),
				zap.Error(err))
		}
	}
}
