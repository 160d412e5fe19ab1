package service

import (
	"context"

	"github.com/example/goshop/internal/datamodels/favorite"
)

// FavoritesService is plain set membership per user; last writer wins.
type FavoritesService struct {
	favorites favorite.Repository
}

// NewFavoritesService builds the favorites service.
func NewFavoritesService(favorites favorite.Repository) *FavoritesService {
	return &FavoritesService{favorites: favorites}
}

// Toggle flips membership and returns the new state.
func (s *FavoritesService) Toggle(ctx context.Context, userID, productID string) (bool, error) {
	exists, err := s.favorites.Exists(ctx, userID, productID)
	if err != nil {
		return false, err
	}
	if exists {
		if err := s.favorites.Remove(ctx, userID, productID); err != nil {
			return false, err
		}
		return false, nil
	}
	if err := s.favorites.Add(ctx, userID, productID); err != nil {
		return false, err
	}
	return true, nil
}

// List returns the user's favorited product ids, newest first.
func (s *FavoritesService) List(ctx context.Context, userID string) ([]*favorite.Entry, error) {
	return s.favorites.ListByUser(ctx, userID)
}
