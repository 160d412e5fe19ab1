package cart

import (
	"context"
	"time"
)

// Line is one user's desired quantity of one product. Removed lines are kept
// with Active=false so out-of-order client syncs cannot resurrect them.
type Line struct {
	ID        int64  `gorm:"primaryKey"`
	UserID    string `gorm:"size:64;not null;uniqueIndex:idx_cart_user_product"`
	ProductID string `gorm:"size:36;not null;uniqueIndex:idx_cart_user_product"`
	Quantity  int64  `gorm:"not null"`
	Active    bool   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Line) TableName() string { return "cart_lines" }

// Repository cart persistence interface. The cart is staging only; no stock
// checks happen at this layer.
type Repository interface {
	Upsert(ctx context.Context, line *Line) error
	Deactivate(ctx context.Context, userID, productID string) error
	ListActive(ctx context.Context, userID string) ([]*Line, error)
	// Clear removes every line for the user. Called by checkout after the
	// order is persisted.
	Clear(ctx context.Context, userID string) error
	// CountActiveByProduct reports how many active cart lines reference the
	// product, used by the catalog delete reference check.
	CountActiveByProduct(ctx context.Context, productID string) (int64, error)
}
