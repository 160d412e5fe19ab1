package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	radix "github.com/mediocregopher/radix/v3"
	"go.uber.org/zap"

	"github.com/example/goshop/internal/datamodels/cart"
	"github.com/example/goshop/internal/datamodels/order"
	"github.com/example/goshop/internal/datamodels/orderevent"
	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/errs"
)

const checkoutIdemKey = "checkout:idem:%s:%s" // userID, idempotency key

// CheckoutService turns a cart into a placed order. The operation is a saga
// across the cart, catalog and order stores: stock decrements are individual
// atomic units, and any failure after the first decrement is compensated
// before the error is reported. No lock is ever held across a store call.
type CheckoutService struct {
	products product.Repository
	carts    cart.Repository
	orders   order.Repository
	events   *EventPublisher
	redis    radix.Client

	callTimeout time.Duration
	idemTTLSecs int64
}

// NewCheckoutService builds the checkout service. events and redis may be
// nil; callTimeout bounds every store round trip inside PlaceOrder.
func NewCheckoutService(
	products product.Repository,
	carts cart.Repository,
	orders order.Repository,
	events *EventPublisher,
	redis radix.Client,
	callTimeout time.Duration,
	idemTTLSecs int64,
) *CheckoutService {
	if callTimeout <= 0 {
		callTimeout = 3 * time.Second
	}
	if idemTTLSecs <= 0 {
		idemTTLSecs = 86400
	}
	return &CheckoutService{
		products:    products,
		carts:       carts,
		orders:      orders,
		events:      events,
		redis:       redis,
		callTimeout: callTimeout,
		idemTTLSecs: idemTTLSecs,
	}
}

type checkoutItem struct {
	line    *cart.Line
	product *product.Product
}

// PlaceOrder validates the user's cart against live stock, decrements stock
// atomically per product, persists an immutable order and clears the cart.
// idemKey is the client-supplied idempotency token; a retry with the same
// key returns the already-placed order instead of charging again.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID, idemKey string) (*order.Order, error) {
	GetMonitor().RecordCheckoutRequest()

	if idemKey != "" {
		if prior := s.lookupPriorOrder(ctx, userID, idemKey); prior != nil {
			return prior, nil
		}
	}

	// 1. Read the cart.
	lines, err := s.listCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, errs.ErrEmptyCart
	}

	// 2. Resolve products. A product deleted between add-to-cart and
	// checkout drops its line; the rest of the order proceeds.
	items := make([]checkoutItem, 0, len(lines))
	for _, l := range lines {
		p, err := s.getProduct(ctx, l.ProductID)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				zap.L().Info("dropping cart line for missing product",
					zap.String("user_id", userID),
					zap.String("product_id", l.ProductID))
				continue
			}
			return nil, err
		}
		items = append(items, checkoutItem{line: l, product: p})
	}
	if len(items) == 0 {
		return nil, errs.ErrEmptyCart
	}

	// 3. Decrement in ascending product id order so overlapping concurrent
	// checkouts contend in the same sequence.
	sort.Slice(items, func(i, j int) bool {
		return items[i].product.ID < items[j].product.ID
	})

	applied := make([]checkoutItem, 0, len(items))
	for _, it := range items {
		if err := s.decrement(ctx, it.product.ID, it.line.Quantity); err != nil {
			s.rollback(ctx, applied)
			if _, ok := errs.AsInsufficientStock(err); ok {
				GetMonitor().RecordInsufficientStock()
			}
			return nil, err
		}
		applied = append(applied, it)
	}

	// 4. Snapshot and persist.
	o := buildOrder(userID, idemKey, items)
	if err := s.createOrder(ctx, o); err != nil {
		s.rollback(ctx, applied)
		if errors.Is(err, errs.ErrConcurrentModification) && idemKey != "" {
			// A concurrent retry with the same key won the unique index;
			// its order is the canonical result of this checkout.
			if prior := s.lookupPriorOrder(ctx, userID, idemKey); prior != nil {
				return prior, nil
			}
		}
		return nil, err
	}

	// 5. The order exists; failing to clear the cart must not undo it.
	if err := s.clearCart(ctx, userID); err != nil {
		GetMonitor().RecordDBError()
		zap.L().Error("order placed but cart clear failed",
			zap.String("order_id", o.ID),
			zap.String("user_id", userID),
			zap.Error(err))
	}

	s.cacheIdemKey(userID, idemKey, o.ID)
	s.events.Publish(ctx, OrderEventMessage{
		OrderID: o.ID,
		UserID:  userID,
		Kind:    orderevent.KindPlaced,
		Detail:  fmt.Sprintf("total %d cents, %d line(s)", o.TotalCents, len(o.Lines)),
	})
	GetMonitor().RecordOrderPlaced()
	return o, nil
}

func buildOrder(userID, idemKey string, items []checkoutItem) *order.Order {
	o := &order.Order{
		ID:     uuid.NewString(),
		UserID: userID,
		Status: order.StatusPlaced,
	}
	if idemKey != "" {
		o.IdempotencyKey = &idemKey
	}
	for _, it := range items {
		l := order.Line{
			OrderID:            o.ID,
			ProductID:          it.product.ID,
			NameSnapshot:       it.product.Name,
			PriceCentsSnapshot: it.product.PriceCents,
			ImageSnapshot:      it.product.ImageRef,
			Quantity:           it.line.Quantity,
		}
		o.Lines = append(o.Lines, l)
		o.TotalCents += l.Subtotal()
	}
	return o
}

// rollback compensates every decrement already applied in this attempt, in
// reverse order. A failed compensation is logged loudly; it cannot be
// retried here without risking a double restore.
func (s *CheckoutService) rollback(ctx context.Context, applied []checkoutItem) {
	if len(applied) == 0 {
		return
	}
	GetMonitor().RecordRollback()
	for i := len(applied) - 1; i >= 0; i-- {
		it := applied[i]
		if err := s.restore(ctx, it.product.ID, it.line.Quantity); err != nil {
			zap.L().Error("stock rollback failed",
				zap.String("product_id", it.product.ID),
				zap.Int64("quantity", it.line.Quantity),
				zap.Error(err))
		}
	}
}

func (s *CheckoutService) lookupPriorOrder(ctx context.Context, userID, idemKey string) *order.Order {
	if id, ok := s.cachedOrderID(userID, idemKey); ok {
		if o, err := s.orders.GetByID(ctx, id); err == nil {
			return o
		}
	}
	o, err := s.orders.GetByIdempotencyKey(ctx, userID, idemKey)
	if err != nil {
		return nil
	}
	return o
}

func (s *CheckoutService) cachedOrderID(userID, idemKey string) (string, bool) {
	if s.redis == nil {
		return "", false
	}
	var id string
	key := fmt.Sprintf(checkoutIdemKey, userID, idemKey)
	if err := s.redis.Do(radix.Cmd(&id, "GET", key)); err != nil || id == "" {
		return "", false
	}
	return id, true
}

func (s *CheckoutService) cacheIdemKey(userID, idemKey, orderID string) {
	if s.redis == nil || idemKey == "" {
		return
	}
	key := fmt.Sprintf(checkoutIdemKey, userID, idemKey)
	if err := s.redis.Do(radix.FlatCmd(nil, "SETEX", key, s.idemTTLSecs, orderID)); err != nil {
		zap.L().Warn("cache idempotency key failed", zap.Error(err))
	}
}

// Bounded store calls. Each wrapper runs one repository call under its own
// timeout; a deadline hit is a failure like any other and takes the same
// rollback path.

func (s *CheckoutService) listCart(ctx context.Context, userID string) ([]*cart.Line, error) {
	cctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	lines, err := s.carts.ListActive(cctx, userID)
	return lines, s.mapStoreErr(err)
}

func (s *CheckoutService) getProduct(ctx context.Context, id string) (*product.Product, error) {
	cctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	p, err := s.products.GetByID(cctx, id)
	return p, s.mapStoreErr(err)
}

func (s *CheckoutService) decrement(ctx context.Context, id string, qty int64) error {
	cctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return s.mapStoreErr(s.products.DecrementStock(cctx, id, qty))
}

func (s *CheckoutService) restore(ctx context.Context, id string, qty int64) error {
	// Compensation runs even when the parent context is already done.
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.callTimeout)
	defer cancel()
	return s.mapStoreErr(s.products.RestoreStock(cctx, id, qty))
}

func (s *CheckoutService) createOrder(ctx context.Context, o *order.Order) error {
	cctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return s.mapStoreErr(s.orders.Create(cctx, o))
}

func (s *CheckoutService) clearCart(ctx context.Context, userID string) error {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.callTimeout)
	defer cancel()
	return s.mapStoreErr(s.carts.Clear(cctx, userID))
}

func (s *CheckoutService) mapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", errs.ErrTimeout, err)
	}
	return err
}
