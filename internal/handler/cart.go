package handler

import (
	"errors"
	"net/http"

	"github.com/motormania/motormania-go/internal/middleware"
	"github.com/motormania/motormania-go/internal/model"
	"github.com/motormania/motormania-go/internal/repository"
	"github.com/motormania/motormania-go/internal/service"
)

// CartHandler handles HTTP requests for the user's cart and coupons.
type CartHandler struct {
	service *service.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(svc *service.CartService) *CartHandler {
	return &CartHandler{service: svc}
}

// HandleListCart handles GET /api/v1/cart requests.
func (h *CartHandler) HandleListCart(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	items, err := h.service.ListItems(r.Context(), identity.ID)
	if err != nil {
		writeServerError(w, "An error occurred while retrieving cart products.", err)
		return
	}
	writeSuccess(w, http.StatusOK, "Cart products retrieved successfully.", items)
}

// HandleSetCartItem handles POST /api/v1/cart requests. Posting a product
// already in the cart overwrites its quantity.
func (h *CartHandler) HandleSetCartItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	var req model.AddCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.service.SetItem(r.Context(), identity.ID, req)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "Specified product does not exist.")
			return
		}
		writeServerError(w, "Failed to add product to cart.", err)
		return
	}

	if updated {
		writeSuccess(w, http.StatusOK, "Product quantity updated in cart.", nil)
		return
	}
	writeSuccess(w, http.StatusCreated, "Product added to cart successfully.", nil)
}

// HandleRemoveCartItem handles DELETE /api/v1/cart/{productID} requests.
func (h *CartHandler) HandleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	if err := h.service.RemoveItem(r.Context(), identity.ID, productID); err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			writeError(w, http.StatusNotFound, "Product not found in your cart.")
			return
		}
		writeServerError(w, "Failed to remove product from cart.", err)
		return
	}

	writeSuccess(w, http.StatusOK, "Product removed from cart successfully.", nil)
}

// HandleApplyCoupon handles POST /api/v1/cart/coupon requests. The coupon is
// priced against the submitted cart total; usage is not recorded here.
func (h *CartHandler) HandleApplyCoupon(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	var req model.ApplyCouponRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.ApplyCoupon(r.Context(), identity.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCouponNotFound):
			writeError(w, http.StatusNotFound, "Coupon not found or is not active.")
		case errors.Is(err, service.ErrCouponExpired):
			writeError(w, http.StatusBadRequest, "Coupon has expired.")
		case errors.Is(err, service.ErrCartBelowMinimum):
			writeError(w, http.StatusBadRequest, "Cart total does not meet the minimum requirement for this coupon.")
		case errors.Is(err, service.ErrCouponExhausted):
			writeError(w, http.StatusBadRequest, "Coupon has reached its total usage limit.")
		case errors.Is(err, service.ErrCouponUserLimit):
			writeError(w, http.StatusBadRequest, "You have already used this coupon the maximum number of times.")
		default:
			writeServerError(w, "An error occurred while applying the coupon.", err)
		}
		return
	}

	writeSuccess(w, http.StatusOK, "Coupon applied successfully.", result)
}
