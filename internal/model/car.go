package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// CarBrand is static reference data for a vehicle manufacturer.
type CarBrand struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logo_url"`
}

// CarModel is static reference data for a specific model year of a brand.
type CarModel struct {
	ID      int64  `json:"id"`
	BrandID int64  `json:"-"`
	Name    string `json:"name"`
	Year    int    `json:"year"`
}

// UserCar is a row of the user's garage. For a given user at most one row
// has IsDefault set, and a non-empty garage always has exactly one.
type UserCar struct {
	ID         int64
	UserID     int64
	CarModelID int64
	IsDefault  bool
	CreatedAt  time.Time
}

// GarageCar is the API representation of a car in the user's garage.
type GarageCar struct {
	ID       int64  `json:"id"`
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	Year     int    `json:"year"`
	ImageURL string `json:"imageUrl"`
}

// AddCarRequest represents a request to add a car to the garage.
type AddCarRequest struct {
	Brand string `json:"brand" validate:"required"`
	Model string `json:"model" validate:"required"`
	Year  int    `json:"year" validate:"required,gt=1900"`
}

// AddCarResponse reports the created garage row.
// The ID is serialized as a string because the mobile client models it that way.
type AddCarResponse struct {
	UserCarID string `json:"user_car_id"`
	IsDefault bool   `json:"is_default"`
}

var imageNameSanitizer = regexp.MustCompile(`[^a-z0-9]+`)

// CarImageURL builds the static image path for a car from its brand, model,
// and year, e.g. "images/cars/land_rover_defender_2020.png".
func CarImageURL(brand, model string, year int) string {
	return fmt.Sprintf("images/cars/%s_%s_%d.png",
		sanitizeForFilename(brand), sanitizeForFilename(model), year)
}

func sanitizeForFilename(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = imageNameSanitizer.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
