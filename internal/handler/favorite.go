package handler

import (
	"errors"
	"net/http"

	"github.com/motormania/motormania-go/internal/middleware"
	"github.com/motormania/motormania-go/internal/repository"
	"github.com/motormania/motormania-go/internal/service"
)

// FavoriteHandler handles HTTP requests for the user's favorites.
type FavoriteHandler struct {
	service *service.FavoriteService
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(svc *service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{service: svc}
}

// HandleListFavorites handles GET /api/v1/favorites requests.
func (h *FavoriteHandler) HandleListFavorites(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	products, err := h.service.List(r.Context(), identity.ID)
	if err != nil {
		writeServerError(w, "An error occurred while retrieving favorites.", err)
		return
	}
	writeSuccess(w, http.StatusOK, "Favorites retrieved successfully.", products)
}

// HandleAddFavorite handles POST /api/v1/favorites/{productID} requests.
func (h *FavoriteHandler) HandleAddFavorite(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	if err := h.service.Add(r.Context(), identity.ID, productID); err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			writeError(w, http.StatusNotFound, "Specified product does not exist.")
		case errors.Is(err, repository.ErrAlreadyFavorite):
			writeError(w, http.StatusConflict, "This product is already in your favorites.")
		default:
			writeServerError(w, "Failed to add product to favorites.", err)
		}
		return
	}

	writeSuccess(w, http.StatusCreated, "Product added to favorites successfully.", nil)
}

// HandleRemoveFavorite handles DELETE /api/v1/favorites/{productID} requests.
func (h *FavoriteHandler) HandleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	if err := h.service.Remove(r.Context(), identity.ID, productID); err != nil {
		if errors.Is(err, repository.ErrNotFavorite) {
			writeError(w, http.StatusNotFound, "Product not found in your favorites.")
			return
		}
		writeServerError(w, "Failed to remove product from favorites.", err)
		return
	}

	writeSuccess(w, http.StatusOK, "Product removed from favorites successfully.", nil)
}
