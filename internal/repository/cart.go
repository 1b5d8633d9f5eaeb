package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/motormania/motormania-go/internal/model"
)

var (
	ErrCartItemNotFound = errors.New("product not found in cart")
	ErrCouponNotFound   = errors.New("coupon not found or not active")
)

// CartRepository handles the user_cart table and coupon lookups.
type CartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new CartRepository.
func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

// SetItem adds a product to the cart or, if it is already there, adds the
// requested quantity to the stored one. Reports whether the row existed.
func (r *CartRepository) SetItem(ctx context.Context, userID, productID int64, quantity int) (updated bool, err error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE user_cart SET quantity = quantity + ?, updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = ? AND product_id = ?`,
		quantity, userID, productID,
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO user_cart (user_id, product_id, quantity) VALUES (?, ?, ?)`,
		userID, productID, quantity,
	)
	return false, err
}

// ListItems returns the user's cart, most recently added first, each line
// carrying the full product with its compatibility list.
func (r *CartRepository) ListItems(ctx context.Context, userID int64) ([]model.CartItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT uc.quantity,`+productColumns+`
		 FROM user_cart uc
		 JOIN products p ON uc.product_id = p.id
		 WHERE uc.user_id = ?
		 ORDER BY uc.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		var item model.CartItem
		err := rows.Scan(
			&item.Quantity,
			&item.Product.ID, &item.Product.Name, &item.Product.Description, &item.Product.ImageURL,
			&item.Product.OldPrice, &item.Product.Price, &item.Product.DiscountPercentage,
			&item.Product.Amount, &item.Product.Rating, &item.Product.ReviewsCount,
			&item.Product.NewProduct, &item.Product.FreeDelivery, &item.Product.ShippingInformation,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	catalog := &CatalogRepository{db: r.db}
	for i := range items {
		cars, err := catalog.compatibleCars(ctx, items[i].Product.ID)
		if err != nil {
			return nil, err
		}
		items[i].Product.CompatibleCars = cars
	}
	return items, nil
}

// RemoveItem deletes a product from the user's cart.
func (r *CartRepository) RemoveItem(ctx context.Context, userID, productID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM user_cart WHERE user_id = ? AND product_id = ?`,
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
		return ErrCartItemNotFound
	}
	return nil
}

// ActiveCouponByCode looks up an active coupon by its code.
func (r *CartRepository) ActiveCouponByCode(ctx context.Context, code string) (*model.Coupon, error) {
	c := &model.Coupon{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, code, type, value, min_cart_value, max_discount_value,
		        usage_limit_per_coupon, usage_limit_per_user, is_active, expires_at
		 FROM coupons WHERE code = ? AND is_active = TRUE LIMIT 1`,
		code,
	).Scan(
		&c.ID, &c.Code, &c.Type, &c.Value, &c.MinCartValue, &c.MaxDiscountValue,
		&c.UsageLimitPerCoupon, &c.UsageLimitPerUser, &c.IsActive, &c.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	return c, nil
}

// TotalUsage returns how many times a coupon has been used across all users.
func (r *CartRepository) TotalUsage(ctx context.Context, couponID int64) (int, error) {
	var total sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(usage_count) FROM user_coupon_usage WHERE coupon_id = ?`, couponID,
	).Scan(&total)
	if err != nil {
		return 0, err
	}
	return int(total.Int64), nil
}

// UserUsage returns how many times one user has used a coupon.
func (r *CartRepository) UserUsage(ctx context.Context, userID, couponID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT usage_count FROM user_coupon_usage WHERE user_id = ? AND coupon_id = ? LIMIT 1`,
		userID, couponID,
	).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}
