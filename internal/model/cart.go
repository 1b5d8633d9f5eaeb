package model

import "time"

// CartItem pairs a catalog product with the quantity the user put in the cart.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// AddCartItemRequest represents a request to add a product to the cart or to
// change the quantity of a product already there.
type AddCartItemRequest struct {
	ProductID int64 `json:"id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// Coupon types.
const (
	CouponPercentage   = "percentage"
	CouponFixedAmount  = "fixed_amount"
	CouponFreeShipping = "free_shipping"
)

// Coupon is a discount code row. Nil limits mean "unlimited".
type Coupon struct {
	ID                  int64
	Code                string
	Type                string
	Value               float64
	MinCartValue        *float64
	MaxDiscountValue    *float64
	UsageLimitPerCoupon *int
	UsageLimitPerUser   *int
	IsActive            bool
	ExpiresAt           *time.Time
}

// ApplyCouponRequest represents a request to price a coupon against a cart total.
type ApplyCouponRequest struct {
	CouponCode string  `json:"coupon_code" validate:"required"`
	CartTotal  float64 `json:"cart_total" validate:"gte=0"`
}

// CouponResult is the priced outcome of applying a coupon.
type CouponResult struct {
	CouponCode     string  `json:"coupon_code"`
	DiscountAmount float64 `json:"discount_amount"`
	CouponType     string  `json:"coupon_type"`
	CouponValue    float64 `json:"coupon_value"`
	FreeShipping   bool    `json:"free_shipping"`
}
