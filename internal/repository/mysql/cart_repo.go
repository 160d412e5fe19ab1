package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/goshop/internal/datamodels/cart"
)

type cartRepo struct {
	db *gorm.DB
}

// NewCartRepository builds the cart repository.
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepo{db: db}
}

func (r *cartRepo) Upsert(ctx context.Context, line *cart.Line) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "active", "updated_at"}),
	}).Create(line).Error
}

func (r *cartRepo) Deactivate(ctx context.Context, userID, productID string) error {
	return r.db.WithContext(ctx).
		Model(&cart.Line{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("active", false).Error
}

func (r *cartRepo) ListActive(ctx context.Context, userID string) ([]*cart.Line, error) {
	var list []*cart.Line
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *cartRepo) Clear(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&cart.Line{}).Error
}

func (r *cartRepo) CountActiveByProduct(ctx context.Context, productID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&cart.Line{}).
		Where("product_id = ? AND active = ?", productID, true).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
