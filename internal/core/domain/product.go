package domain

import "time"

// Product is a read-only catalog item mirrored from the upstream API.
// The application never mutates products.
type Product struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Price              float64  `json:"price"`
	DiscountPercentage float64  `json:"discountPercentage"`
	Rating             float64  `json:"rating"`
	Stock              int      `json:"stock"`
	Brand              string   `json:"brand"`
	Category           string   `json:"category"`
	Thumbnail          string   `json:"thumbnail"`
	Images             []string `json:"images"`
}

// ProductPage is one page of the upstream catalog listing.
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}

// CatalogSnapshot is the cached product list together with the moment it was
// fetched. Consumers must not trust Products once the snapshot is older than
// the configured freshness window.
type CatalogSnapshot struct {
	Products    []Product `json:"products"`
	LastUpdated time.Time `json:"lastUpdated"`
	Error       string    `json:"error,omitempty"`
}

// Age reports how long ago the snapshot was fetched. A zero LastUpdated
// means the snapshot was never filled and Age returns a very large duration.
func (s CatalogSnapshot) Age(now time.Time) time.Duration {
	if s.LastUpdated.IsZero() {
		return 1<<63 - 1
	}
	return now.Sub(s.LastUpdated)
}
