package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/goshop/internal/datamodels/favorite"
)

type favoriteRepo struct {
	db *gorm.DB
}

// NewFavoriteRepository builds the favorites repository.
func NewFavoriteRepository(db *gorm.DB) favorite.Repository {
	return &favoriteRepo{db: db}
}

func (r *favoriteRepo) Exists(ctx context.Context, userID, productID string) (bool, error) {
	var e favorite.Entry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *favoriteRepo) Add(ctx context.Context, userID, productID string) error {
	e := favorite.Entry{UserID: userID, ProductID: productID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(&e).Error
}

func (r *favoriteRepo) Remove(ctx context.Context, userID, productID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&favorite.Entry{}).Error
}

func (r *favoriteRepo) ListByUser(ctx context.Context, userID string) ([]*favorite.Entry, error) {
	var list []*favorite.Entry
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
