package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/motormania/motormania-go/internal/middleware"
	"github.com/motormania/motormania-go/internal/model"
	"github.com/motormania/motormania-go/internal/repository"
	"github.com/motormania/motormania-go/internal/service"
)

// GarageHandler handles HTTP requests for the user's garage.
type GarageHandler struct {
	service *service.GarageService
}

// NewGarageHandler creates a new GarageHandler.
func NewGarageHandler(svc *service.GarageService) *GarageHandler {
	return &GarageHandler{service: svc}
}

// HandleListGarage handles GET /api/v1/garage requests.
func (h *GarageHandler) HandleListGarage(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	cars, err := h.service.ListGarage(r.Context(), identity.ID)
	if err != nil {
		writeServerError(w, "An error occurred while retrieving the garage.", err)
		return
	}

	writeSuccess(w, http.StatusOK, "User garage retrieved successfully.", cars)
}

// HandleDefaultCar handles GET /api/v1/garage/default requests.
func (h *GarageHandler) HandleDefaultCar(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	car, err := h.service.DefaultCar(r.Context(), identity.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNoDefaultCar) {
			writeSuccess(w, http.StatusOK, "No default car set.", nil)
			return
		}
		writeServerError(w, "An error occurred while retrieving the default car.", err)
		return
	}

	writeSuccess(w, http.StatusOK, "Default car retrieved successfully.", car)
}

// HandleAddCar handles POST /api/v1/garage requests.
func (h *GarageHandler) HandleAddCar(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	var req model.AddCarRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Year > time.Now().Year()+1 {
		writeError(w, http.StatusBadRequest, "Invalid input. Please provide brand (string), model (string), and a valid year (integer).")
		return
	}

	resp, err := h.service.AddCar(r.Context(), identity.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCarModelNotFound):
			writeError(w, http.StatusNotFound, fmt.Sprintf(
				"The specified car (Brand: %s, Model: %s, Year: %d) was not found in our database.",
				req.Brand, req.Model, req.Year))
		case errors.Is(err, repository.ErrCarAlreadyOwned):
			writeError(w, http.StatusConflict, "This car model is already in your garage.")
		default:
			writeServerError(w, "Failed to add car to garage.", err)
		}
		return
	}

	writeSuccess(w, http.StatusCreated, "Car added to your garage successfully.", resp)
}

// HandleDeleteCar handles DELETE /api/v1/garage/{carID} requests.
func (h *GarageHandler) HandleDeleteCar(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	carID, ok := pathID(w, r, "carID")
	if !ok {
		return
	}

	if err := h.service.DeleteCar(r.Context(), identity.ID, carID); err != nil {
		switch {
		case errors.Is(err, repository.ErrCarNotFound):
			writeError(w, http.StatusNotFound, "Car not found in your garage or access denied.")
		case errors.Is(err, service.ErrLastCar):
			writeError(w, http.StatusBadRequest, "Cannot delete the only car in your garage.")
		default:
			writeServerError(w, "Failed to delete the specified car.", err)
		}
		return
	}

	writeSuccess(w, http.StatusOK, "Car deleted from garage successfully.", nil)
}

// HandleSetDefaultCar handles PUT /api/v1/garage/{carID}/default requests.
func (h *GarageHandler) HandleSetDefaultCar(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	carID, ok := pathID(w, r, "carID")
	if !ok {
		return
	}

	if err := h.service.SetDefaultCar(r.Context(), identity.ID, carID); err != nil {
		if errors.Is(err, repository.ErrCarNotFound) {
			writeError(w, http.StatusNotFound, "Car not found in your garage or access denied.")
			return
		}
		writeServerError(w, "Failed to update the specified car as default.", err)
		return
	}

	writeSuccess(w, http.StatusOK, "Default car updated successfully.", nil)
}

// HandleCycleDefaultCar handles POST /api/v1/garage/default/cycle requests.
// The next query parameter selects the direction: 1 moves forward, 0 moves
// back, both wrapping around the garage.
func (h *GarageHandler) HandleCycleDefaultCar(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	var direction int
	switch r.URL.Query().Get("next") {
	case "1":
		direction = 1
	case "0":
		direction = -1
	default:
		writeError(w, http.StatusBadRequest, "Invalid or missing 'next' query parameter. Must be 0 (previous) or 1 (next).")
		return
	}

	car, err := h.service.CycleDefaultCar(r.Context(), identity.ID, direction)
	if err != nil {
		if errors.Is(err, service.ErrEmptyGarage) {
			writeError(w, http.StatusNotFound, "No cars found in your garage.")
			return
		}
		writeServerError(w, "Failed to change the default car.", err)
		return
	}

	writeSuccess(w, http.StatusOK, "Default car changed successfully.", car)
}

// HandleListBrands handles GET /api/v1/cars/brands requests.
func (h *GarageHandler) HandleListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.service.ListBrands(r.Context())
	if err != nil {
		writeServerError(w, "An error occurred while retrieving car brands.", err)
		return
	}
	writeSuccess(w, http.StatusOK, "Car brands retrieved successfully.", brands)
}

// HandleListModels handles GET /api/v1/cars/brands/{brandID}/models requests.
func (h *GarageHandler) HandleListModels(w http.ResponseWriter, r *http.Request) {
	brandID, ok := pathID(w, r, "brandID")
	if !ok {
		return
	}

	models, err := h.service.ListModelsByBrand(r.Context(), brandID)
	if err != nil {
		writeServerError(w, "An error occurred while retrieving car models.", err)
		return
	}
	writeSuccess(w, http.StatusOK, "Car models retrieved successfully.", models)
}

// pathID parses a positive integer URL parameter. On failure it has already
// written the error response and returns false.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid or missing id. Please provide a positive integer.")
		return 0, false
	}
	return id, true
}
