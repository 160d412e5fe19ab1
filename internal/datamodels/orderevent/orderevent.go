package orderevent

import (
	"context"
	"time"
)

// Event kinds recorded in the audit trail.
const (
	KindPlaced        = "placed"
	KindStatusChanged = "status_changed"
	KindCancelled     = "cancelled"
)

// Event is one row of the append-only order audit trail, written by the
// order-worker from queue messages.
type Event struct {
	ID        int64     `gorm:"primaryKey"`
	OrderID   string    `gorm:"size:36;index;not null"`
	UserID    string    `gorm:"size:64;index"`
	Kind      string    `gorm:"size:32;not null"`
	Detail    string    `gorm:"size:255"`
	CreatedAt time.Time `gorm:"index"`
}

func (Event) TableName() string { return "order_events" }

// Repository audit trail persistence interface.
type Repository interface {
	Create(ctx context.Context, e *Event) error
	ListByOrder(ctx context.Context, orderID string) ([]*Event, error)
}
