package service

import (
	"context"

	"github.com/motormania/motormania-go/internal/model"
	"github.com/motormania/motormania-go/internal/repository"
)

// FavoriteStore is the persistence surface FavoriteService depends on.
type FavoriteStore interface {
	Add(ctx context.Context, userID, productID int64) error
	Remove(ctx context.Context, userID, productID int64) error
	List(ctx context.Context, userID int64) ([]model.Product, error)
}

// FavoriteService manages the user's favorite products.
type FavoriteService struct {
	store   FavoriteStore
	catalog ProductChecker
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(store FavoriteStore, catalog ProductChecker) *FavoriteService {
	return &FavoriteService{store: store, catalog: catalog}
}

// Add marks a product as a favorite. Unknown products and double-adds are
// both rejected.
func (s *FavoriteService) Add(ctx context.Context, userID, productID int64) error {
	exists, err := s.catalog.ProductExists(ctx, productID)
	if err != nil {
		return err
	}
	if !exists {
		return repository.ErrProductNotFound
	}
	return s.store.Add(ctx, userID, productID)
}

// Remove unmarks a favorite.
func (s *FavoriteService) Remove(ctx context.Context, userID, productID int64) error {
	return s.store.Remove(ctx, userID, productID)
}

// List returns the user's favorite products.
func (s *FavoriteService) List(ctx context.Context, userID int64) ([]model.Product, error) {
	return s.store.List(ctx, userID)
}
