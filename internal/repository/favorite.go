package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/motormania/motormania-go/internal/model"
)

var (
	ErrAlreadyFavorite = errors.New("product already in favorites")
	ErrNotFavorite     = errors.New("product not found in favorites")
)

// FavoriteRepository handles the user_favorites table.
type FavoriteRepository struct {
	db *sql.DB
}

// NewFavoriteRepository creates a new FavoriteRepository.
func NewFavoriteRepository(db *sql.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Add records a product as a favorite. The UNIQUE (user_id, product_id) key
// turns a concurrent double-add into ErrAlreadyFavorite.
func (r *FavoriteRepository) Add(ctx context.Context, userID, productID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_favorites (user_id, product_id) VALUES (?, ?)`,
		userID, productID,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrAlreadyFavorite
		}
		return err
	}
	return nil
}

// Remove deletes a favorite.
func (r *FavoriteRepository) Remove(ctx context.Context, userID, productID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM user_favorites WHERE user_id = ? AND product_id = ?`,
		userID, productID,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFavorite
	}
	return nil
}

// List returns the user's favorite products, most recently added first.
func (r *FavoriteRepository) List(ctx context.Context, userID int64) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT`+productColumns+`
		 FROM user_favorites uf
		 JOIN products p ON uf.product_id = p.id
		 WHERE uf.user_id = ?
		 ORDER BY uf.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	catalog := &CatalogRepository{db: r.db}
	for i := range products {
		cars, err := catalog.compatibleCars(ctx, products[i].ID)
		if err != nil {
			return nil, err
		}
		products[i].CompatibleCars = cars
	}
	return products, nil
}
