package model

// CompatibleCar identifies a car model a product fits.
type CompatibleCar struct {
	ID       int64  `json:"id"`
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	Year     int    `json:"year"`
	ImageURL string `json:"imageUrl"`
}

// Product is a catalog item together with the list of cars it fits.
type Product struct {
	ID                  int64           `json:"id"`
	Name                string          `json:"name"`
	Description         string          `json:"description"`
	ImageURL            string          `json:"imageUrl"`
	OldPrice            *float64        `json:"oldPrice"`
	Price               float64         `json:"price"`
	DiscountPercentage  float64         `json:"discountPercentage"`
	Amount              int             `json:"amount"`
	Rating              float64         `json:"rating"`
	ReviewsCount        int             `json:"reviewsCount"`
	NewProduct          bool            `json:"newProduct"`
	FreeDelivery        bool            `json:"freeDelivery"`
	ShippingInformation string          `json:"shippingInformation"`
	CompatibleCars      []CompatibleCar `json:"compatibleCars"`
}

// Category is static reference data for a product category.
type Category struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ImageURL     string `json:"image_url"`
	DarkImageURL string `json:"dark_image_url"`
}

// Offer is a promotional banner with guest and signed-in image variants.
type Offer struct {
	ID            int64  `json:"id"`
	GuestImageURL string `json:"guest_image_url"`
	UserImageURL  string `json:"user_image_url"`
}
