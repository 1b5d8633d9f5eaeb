package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/motormania/motormania-go/internal/repository"
	"github.com/motormania/motormania-go/internal/service"
)

// CatalogHandler handles HTTP requests for products, categories, and offers.
type CatalogHandler struct {
	service *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// HandleListProducts handles GET /api/v1/products requests. An optional
// car_model_id query parameter filters to compatible products.
func (h *CatalogHandler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	var carModelID *int64
	if raw := r.URL.Query().Get("car_model_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid car_model_id query parameter. Please provide a positive integer.")
			return
		}
		carModelID = &id
	}

	products, err := h.service.ListProducts(r.Context(), carModelID)
	if err != nil {
		writeServerError(w, "An error occurred while retrieving products.", err)
		return
	}
	writeSuccess(w, http.StatusOK, "Products retrieved successfully.", products)
}

// HandleGetProduct handles GET /api/v1/products/{productID} requests.
func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "Product not found.")
			return
		}
		writeServerError(w, "An error occurred while retrieving the product.", err)
		return
	}
	writeSuccess(w, http.StatusOK, "Product retrieved successfully.", product)
}

// HandleListCategories handles GET /api/v1/categories requests.
func (h *CatalogHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeServerError(w, "An error occurred while retrieving categories.", err)
		return
	}
	writeSuccess(w, http.StatusOK, "Categories retrieved successfully.", categories)
}

// HandleListOffers handles GET /api/v1/offers requests. The endpoint is
// public; each offer carries both guest and signed-in image variants.
func (h *CatalogHandler) HandleListOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.service.ListOffers(r.Context())
	if err != nil {
		writeServerError(w, "An error occurred while retrieving offers.", err)
		return
	}
	writeSuccess(w, http.StatusOK, "Offers retrieved successfully.", offers)
}
