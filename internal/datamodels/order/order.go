package order

import (
	"context"
	"time"
)

// Order status lifecycle. Transitions are monotonic: placed→shipped→delivered,
// placed→cancelled. Delivered and cancelled are terminal.
const (
	StatusPlaced    = "placed"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// Line is an immutable snapshot of one cart line at checkout time. Name,
// price and image are frozen here so later catalog edits never rewrite
// order history.
type Line struct {
	ID                 int64  `gorm:"primaryKey"`
	OrderID            string `gorm:"size:36;index;not null"`
	ProductID          string `gorm:"size:36;not null"`
	NameSnapshot       string `gorm:"size:128;not null"`
	PriceCentsSnapshot int64  `gorm:"not null"`
	ImageSnapshot      string `gorm:"size:255"`
	Quantity           int64  `gorm:"not null"`
}

func (Line) TableName() string { return "order_lines" }

// Subtotal returns the frozen line amount in cents.
func (l Line) Subtotal() int64 {
	return l.PriceCentsSnapshot * l.Quantity
}

// Order is append-only: created once by checkout, afterwards only the status
// may change. TotalCents is computed once at creation and stored.
type Order struct {
	ID             string    `gorm:"primaryKey;size:36"`
	UserID         string    `gorm:"size:64;index;not null"`
	Lines          []Line    `gorm:"foreignKey:OrderID"`
	TotalCents     int64     `gorm:"not null"`
	Status         string    `gorm:"size:16;index;not null"`
	IdempotencyKey *string   `gorm:"size:64;uniqueIndex"`
	CreatedAt      time.Time `gorm:"index"`
	UpdatedAt      time.Time
}

// CanTransition reports whether from→to is a legal status change.
func CanTransition(from, to string) bool {
	switch from {
	case StatusPlaced:
		return to == StatusShipped || to == StatusCancelled
	case StatusShipped:
		return to == StatusDelivered
	default:
		// delivered and cancelled are terminal
		return false
	}
}

// Repository order persistence interface.
type Repository interface {
	// Create persists the order and its lines, write-once. A duplicate
	// idempotency key fails with errs.ErrConcurrentModification.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByIdempotencyKey(ctx context.Context, userID, key string) (*Order, error)
	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]*Order, error)
	ListRecent(ctx context.Context, limit int) ([]*Order, error)
	// UpdateStatus applies from→to as a conditional write; if the row no
	// longer holds status from it fails with errs.ErrConcurrentModification.
	UpdateStatus(ctx context.Context, id, from, to string) error
	// CountOpenByProduct reports how many non-terminal orders contain the
	// product, used by the catalog delete reference check.
	CountOpenByProduct(ctx context.Context, productID string) (int64, error)
}
