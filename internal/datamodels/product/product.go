package product

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Product catalog record. Prices are stored in cents.
type Product struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string `gorm:"size:128;not null"`
	Description string `gorm:"size:512"`
	PriceCents  int64  `gorm:"not null"`
	ImageRef    string `gorm:"size:255"` // opaque handle, resolved by the client
	Stock       int64  `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// Repository catalog persistence interface.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	ListAll(ctx context.Context) ([]*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error

	// DecrementStock subtracts qty as one atomic conditional write. It
	// fails with errs.ErrNotFound if the product is absent and with
	// *errs.InsufficientStockError if stock is below qty at write time.
	DecrementStock(ctx context.Context, id string, qty int64) error
	// RestoreStock adds qty back; used by checkout rollback and order
	// cancellation.
	RestoreStock(ctx context.Context, id string, qty int64) error
}
