package service

import (
	"context"
	"errors"
	"math"

	"github.com/motormania/motormania-go/internal/clock"
	"github.com/motormania/motormania-go/internal/model"
	"github.com/motormania/motormania-go/internal/repository"
)

var (
	ErrCouponExpired     = errors.New("coupon has expired")
	ErrCartBelowMinimum  = errors.New("cart total is below the coupon minimum")
	ErrCouponExhausted   = errors.New("coupon usage limit reached")
	ErrCouponUserLimit   = errors.New("coupon usage limit reached for this user")
	ErrUnknownCouponType = errors.New("unknown coupon type")
)

// CartStore is the persistence surface CartService depends on.
type CartStore interface {
	SetItem(ctx context.Context, userID, productID int64, quantity int) (bool, error)
	ListItems(ctx context.Context, userID int64) ([]model.CartItem, error)
	RemoveItem(ctx context.Context, userID, productID int64) error
	ActiveCouponByCode(ctx context.Context, code string) (*model.Coupon, error)
	TotalUsage(ctx context.Context, couponID int64) (int, error)
	UserUsage(ctx context.Context, userID, couponID int64) (int, error)
}

// ProductChecker reports whether a product exists in the catalog.
type ProductChecker interface {
	ProductExists(ctx context.Context, productID int64) (bool, error)
}

// CartService manages the user's cart and coupon pricing.
type CartService struct {
	store   CartStore
	catalog ProductChecker
	clock   clock.Clock
}

// NewCartService creates a new CartService.
func NewCartService(store CartStore, catalog ProductChecker, clk clock.Clock) *CartService {
	return &CartService{store: store, catalog: catalog, clock: clk}
}

// SetItem puts a product in the cart. Adding a product that is already in
// the cart increments its stored quantity by the requested amount. Reports
// whether an existing line was updated.
func (s *CartService) SetItem(ctx context.Context, userID int64, req model.AddCartItemRequest) (bool, error) {
	exists, err := s.catalog.ProductExists(ctx, req.ProductID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, repository.ErrProductNotFound
	}
	return s.store.SetItem(ctx, userID, req.ProductID, req.Quantity)
}

// ListItems returns the user's cart.
func (s *CartService) ListItems(ctx context.Context, userID int64) ([]model.CartItem, error) {
	return s.store.ListItems(ctx, userID)
}

// RemoveItem deletes a product from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID int64) error {
	return s.store.RemoveItem(ctx, userID, productID)
}

// ApplyCoupon prices a coupon against a cart total without recording usage.
// Eligibility is checked in order: the coupon must exist and be active, not
// be expired, meet the minimum cart value, and have headroom under both the
// global and the per-user usage limits.
func (s *CartService) ApplyCoupon(ctx context.Context, userID int64, req model.ApplyCouponRequest) (model.CouponResult, error) {
	coupon, err := s.store.ActiveCouponByCode(ctx, req.CouponCode)
	if err != nil {
		return model.CouponResult{}, err
	}

	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(s.clock.Now()) {
		return model.CouponResult{}, ErrCouponExpired
	}

	if coupon.MinCartValue != nil && req.CartTotal < *coupon.MinCartValue {
		return model.CouponResult{}, ErrCartBelowMinimum
	}

	if coupon.UsageLimitPerCoupon != nil {
		total, err := s.store.TotalUsage(ctx, coupon.ID)
		if err != nil {
			return model.CouponResult{}, err
		}
		if total >= *coupon.UsageLimitPerCoupon {
			return model.CouponResult{}, ErrCouponExhausted
		}
	}

	if coupon.UsageLimitPerUser != nil {
		used, err := s.store.UserUsage(ctx, userID, coupon.ID)
		if err != nil {
			return model.CouponResult{}, err
		}
		if used >= *coupon.UsageLimitPerUser {
			return model.CouponResult{}, ErrCouponUserLimit
		}
	}

	discount, freeShipping, err := couponDiscount(coupon, req.CartTotal)
	if err != nil {
		return model.CouponResult{}, err
	}

	return model.CouponResult{
		CouponCode:     coupon.Code,
		DiscountAmount: discount,
		CouponType:     coupon.Type,
		CouponValue:    coupon.Value,
		FreeShipping:   freeShipping,
	}, nil
}

// couponDiscount computes the money value of an eligible coupon. The
// discount never exceeds the cart total, and amounts are rounded to cents.
func couponDiscount(coupon *model.Coupon, cartTotal float64) (float64, bool, error) {
	var discount float64
	freeShipping := false

	switch coupon.Type {
	case model.CouponPercentage:
		discount = cartTotal * coupon.Value / 100
		if coupon.MaxDiscountValue != nil && discount > *coupon.MaxDiscountValue {
			discount = *coupon.MaxDiscountValue
		}
	case model.CouponFixedAmount:
		discount = coupon.Value
	case model.CouponFreeShipping:
		freeShipping = true
	default:
		return 0, false, ErrUnknownCouponType
	}

	if discount > cartTotal {
		discount = cartTotal
	}
	return math.Round(discount*100) / 100, freeShipping, nil
}
