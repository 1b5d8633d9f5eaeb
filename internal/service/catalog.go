package service

import (
	"context"

	"github.com/motormania/motormania-go/internal/model"
)

// CatalogStore is the persistence surface CatalogService depends on.
type CatalogStore interface {
	ListProducts(ctx context.Context, carModelID *int64) ([]model.Product, error)
	GetProduct(ctx context.Context, productID int64) (model.Product, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListOffers(ctx context.Context) ([]model.Offer, error)
}

// CatalogService serves the product catalog, categories, and offers.
type CatalogService struct {
	store CatalogStore
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(store CatalogStore) *CatalogService {
	return &CatalogService{store: store}
}

// ListProducts returns the catalog, optionally filtered to products
// compatible with the given car model.
func (s *CatalogService) ListProducts(ctx context.Context, carModelID *int64) ([]model.Product, error) {
	return s.store.ListProducts(ctx, carModelID)
}

// GetProduct returns one product with its compatibility list.
func (s *CatalogService) GetProduct(ctx context.Context, productID int64) (model.Product, error) {
	return s.store.GetProduct(ctx, productID)
}

// ListCategories returns all product categories.
func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.store.ListCategories(ctx)
}

// ListOffers returns the active offers. Each offer carries both image
// variants; the client picks one based on its signed-in state.
func (s *CatalogService) ListOffers(ctx context.Context) ([]model.Offer, error) {
	return s.store.ListOffers(ctx)
}
