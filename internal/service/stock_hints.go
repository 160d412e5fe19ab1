package service

import (
	"fmt"
	"strconv"

	radix "github.com/mediocregopher/radix/v3"

	"github.com/example/goshop/internal/datamodels/product"
)

const stockHintKey = "stock:hint:%s" // productID

// StockHintCache mirrors catalog stock counts into Redis so storefront
// listings can show availability without another DB round trip. Advisory
// only: the conditional UPDATE in the product repository stays the single
// source of truth for decrements.
type StockHintCache struct {
	redis radix.Client
}

// NewStockHintCache builds the cache; a nil client disables it.
func NewStockHintCache(redis radix.Client) *StockHintCache {
	return &StockHintCache{redis: redis}
}

// Set stores the hint for one product.
func (c *StockHintCache) Set(productID string, stock int64) error {
	if c == nil || c.redis == nil {
		return nil
	}
	key := fmt.Sprintf(stockHintKey, productID)
	return c.redis.Do(radix.FlatCmd(nil, "SET", key, stock))
}

// Get returns the cached hint, reporting whether one was present.
func (c *StockHintCache) Get(productID string) (int64, bool) {
	if c == nil || c.redis == nil {
		return 0, false
	}
	key := fmt.Sprintf(stockHintKey, productID)
	var raw string
	if err := c.redis.Do(radix.Cmd(&raw, "GET", key)); err != nil || raw == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Refresh rewrites hints for every product, used by the stock-sync tool.
func (c *StockHintCache) Refresh(products []*product.Product) error {
	if c == nil || c.redis == nil {
		return nil
	}
	for _, p := range products {
		if err := c.Set(p.ID, p.Stock); err != nil {
			return fmt.Errorf("refresh stock hint for %s: %w", p.ID, err)
		}
	}
	return nil
}
