package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/goshop/internal/datamodels/cart"
	"github.com/example/goshop/internal/datamodels/order"
	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/errs"
)

// CatalogService owns product records. Mutations come only from the admin
// surface; the role check happens at the HTTP boundary.
type CatalogService struct {
	products product.Repository
	carts    cart.Repository
	orders   order.Repository
	hints    *StockHintCache
}

// NewCatalogService builds the catalog service. carts and orders are needed
// for the delete reference check; hints may be nil.
func NewCatalogService(products product.Repository, carts cart.Repository, orders order.Repository, hints *StockHintCache) *CatalogService {
	return &CatalogService{
		products: products,
		carts:    carts,
		orders:   orders,
		hints:    hints,
	}
}

func (s *CatalogService) GetByID(ctx context.Context, id string) (*product.Product, error) {
	return s.products.GetByID(ctx, id)
}

// List returns the catalog, optionally filtered by a case-insensitive name
// keyword.
func (s *CatalogService) List(ctx context.Context, keyword string) ([]*product.Product, error) {
	list, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if keyword == "" {
		return list, nil
	}
	kw := strings.ToLower(keyword)
	filtered := make([]*product.Product, 0, len(list))
	for _, p := range list {
		if strings.Contains(strings.ToLower(p.Name), kw) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (s *CatalogService) Create(ctx context.Context, p *product.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.products.Create(ctx, p); err != nil {
		return err
	}
	s.refreshHint(p)
	return nil
}

func (s *CatalogService) Update(ctx context.Context, p *product.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	if err := s.products.Update(ctx, p); err != nil {
		return err
	}
	s.refreshHint(p)
	return nil
}

// Delete soft-deletes a product, refused while any active cart line or any
// non-terminal order still references it.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if n, err := s.carts.CountActiveByProduct(ctx, id); err != nil {
		return err
	} else if n > 0 {
		return fmt.Errorf("product %s held by %d cart line(s): %w", id, n, errs.ErrProductReferenced)
	}
	if n, err := s.orders.CountOpenByProduct(ctx, id); err != nil {
		return err
	} else if n > 0 {
		return fmt.Errorf("product %s held by %d open order(s): %w", id, n, errs.ErrProductReferenced)
	}
	return s.products.Delete(ctx, id)
}

// StockHint returns the cached availability hint for a product, if any.
func (s *CatalogService) StockHint(productID string) (int64, bool) {
	return s.hints.Get(productID)
}

func (s *CatalogService) refreshHint(p *product.Product) {
	if err := s.hints.Set(p.ID, p.Stock); err != nil {
		zap.L().Warn("refresh stock hint failed", zap.String("product_id", p.ID), zap.Error(err))
	}
}

func validateProduct(p *product.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name must not be empty")
	}
	if p.PriceCents < 0 {
		return fmt.Errorf("product price must not be negative")
	}
	if p.Stock < 0 {
		return fmt.Errorf("product stock must not be negative")
	}
	return nil
}
