package favorite

import (
	"context"
	"time"
)

// Entry marks a product as favorited by a user. Pure set membership,
// last writer wins.
type Entry struct {
	ID        int64  `gorm:"primaryKey"`
	UserID    string `gorm:"size:64;not null;uniqueIndex:idx_fav_user_product"`
	ProductID string `gorm:"size:36;not null;uniqueIndex:idx_fav_user_product"`
	CreatedAt time.Time
}

func (Entry) TableName() string { return "favorites" }

// Repository favorites persistence interface.
type Repository interface {
	Exists(ctx context.Context, userID, productID string) (bool, error)
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) error
	ListByUser(ctx context.Context, userID string) ([]*Entry, error)
}
