package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/motormania/motormania-go/internal/model"
)

var ErrProductNotFound = errors.New("product not found")

// CatalogRepository handles products, categories, and offers.
type CatalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

const productColumns = `
	p.id, p.name, p.description, p.image_url,
	p.old_price, p.current_price, p.discount_percentage,
	p.amount, p.rating, p.reviews_count,
	p.new_product, p.free_delivery, p.shipping_information`

// ListProducts returns the catalog ordered by newest first. When carModelID
// is non-nil, only products compatible with that car model are returned.
func (r *CatalogRepository) ListProducts(ctx context.Context, carModelID *int64) ([]model.Product, error) {
	query := `SELECT` + productColumns + ` FROM products p`
	args := []any{}
	if carModelID != nil {
		query += ` WHERE EXISTS (
			SELECT 1 FROM product_compatibility pc
			WHERE pc.product_id = p.id AND pc.car_model_id = ?)`
		args = append(args, *carModelID)
	}
	query += ` ORDER BY p.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
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

	for i := range products {
		cars, err := r.compatibleCars(ctx, products[i].ID)
		if err != nil {
			return nil, err
		}
		products[i].CompatibleCars = cars
	}
	return products, nil
}

// GetProduct returns a single product with its compatibility list.
func (r *CatalogRepository) GetProduct(ctx context.Context, productID int64) (model.Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT`+productColumns+` FROM products p WHERE p.id = ? LIMIT 1`, productID,
	)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Product{}, ErrProductNotFound
		}
		return model.Product{}, err
	}

	p.CompatibleCars, err = r.compatibleCars(ctx, p.ID)
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// ProductExists reports whether a product ID is present in the catalog.
func (r *CatalogRepository) ProductExists(ctx context.Context, productID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM products WHERE id = ? LIMIT 1`, productID,
	).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *CatalogRepository) compatibleCars(ctx context.Context, productID int64) ([]model.CompatibleCar, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT cm.id, cb.name, cm.name, cm.year
		 FROM product_compatibility pc
		 JOIN car_models cm ON pc.car_model_id = cm.id
		 JOIN car_brands cb ON cm.brand_id = cb.id
		 WHERE pc.product_id = ?
		 ORDER BY cb.name, cm.name, cm.year`,
		productID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cars := []model.CompatibleCar{}
	for rows.Next() {
		var c model.CompatibleCar
		if err := rows.Scan(&c.ID, &c.Brand, &c.Model, &c.Year); err != nil {
			return nil, err
		}
		c.ImageURL = model.CarImageURL(c.Brand, c.Model, c.Year)
		cars = append(cars, c)
	}
	return cars, rows.Err()
}

func scanProduct(row rowScanner) (model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.ImageURL,
		&p.OldPrice, &p.Price, &p.DiscountPercentage,
		&p.Amount, &p.Rating, &p.ReviewsCount,
		&p.NewProduct, &p.FreeDelivery, &p.ShippingInformation,
	)
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// ListCategories returns all product categories ordered by name.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, image_url, dark_image_url FROM categories ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ImageURL, &c.DarkImageURL); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListOffers returns active promotional offers.
func (r *CatalogRepository) ListOffers(ctx context.Context) ([]model.Offer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, guest_image_url, user_image_url FROM offers WHERE is_active = TRUE`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offers := []model.Offer{}
	for rows.Next() {
		var o model.Offer
		if err := rows.Scan(&o.ID, &o.GuestImageURL, &o.UserImageURL); err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}
