package service

import (
	"context"

	"github.com/example/goshop/internal/datamodels/cart"
	"github.com/example/goshop/internal/datamodels/product"
)

// CartService manages a user's staging cart. Quantities are advisory; stock
// is checked only at checkout.
type CartService struct {
	carts    cart.Repository
	products product.Repository
}

// NewCartService builds the cart service.
func NewCartService(carts cart.Repository, products product.Repository) *CartService {
	return &CartService{carts: carts, products: products}
}

// AddOrUpdate upserts a line for the user. Quantities below 1 are clamped
// to 1; a line for an unknown product is rejected.
func (s *CartService) AddOrUpdate(ctx context.Context, userID, productID string, quantity int64) (*cart.Line, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	if quantity < 1 {
		quantity = 1
	}
	line := &cart.Line{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		Active:    true,
	}
	if err := s.carts.Upsert(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

// Remove soft-removes the line so late client syncs cannot bring it back.
func (s *CartService) Remove(ctx context.Context, userID, productID string) error {
	return s.carts.Deactivate(ctx, userID, productID)
}

// List returns the user's active lines.
func (s *CartService) List(ctx context.Context, userID string) ([]*cart.Line, error) {
	return s.carts.ListActive(ctx, userID)
}
