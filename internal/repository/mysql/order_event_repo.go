package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/orderevent"
)

type orderEventRepo struct {
	db *gorm.DB
}

// NewOrderEventRepository builds the order audit trail repository.
func NewOrderEventRepository(db *gorm.DB) orderevent.Repository {
	return &orderEventRepo{db: db}
}

func (r *orderEventRepo) Create(ctx context.Context, e *orderevent.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *orderEventRepo) ListByOrder(ctx context.Context, orderID string) ([]*orderevent.Event, error) {
	var list []*orderevent.Event
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
