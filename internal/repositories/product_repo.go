package repositories

import (
	"pasarhub/internal/models"
)

// Sort keys accepted by the catalog search.
const (
	SortBestSeller  = "best-seller"
	SortPriceAsc    = "price-asc"
	SortPriceDesc   = "price-desc"
	SortMostPopular = "most-popular"
	SortDefault     = "default"
)

// PriceRange filters on [Min, Max]. A product matches when its base
// price or any variant price falls in range.
type PriceRange struct {
	Min float64 `json:"min" validate:"gte=0"`
	Max float64 `json:"max" validate:"gtefield=Min"`
}

// ProductFilter is the validated catalog filter union. Specification
// entries AND across attributes and OR within an attribute's values.
// PopularityBuckets name score tiers ("rising", "popular", "hot"); a
// product matches when it clears the lowest selected tier.
type ProductFilter struct {
	Category          string              `json:"category"`
	Subcategories     []string            `json:"subcategories"`
	Specifications    map[string][]string `json:"specifications"`
	PriceRange        *PriceRange         `json:"priceRange"`
	PopularityBuckets []string            `json:"popularityBuckets" validate:"dive,oneof=rising popular hot"`
	MinRating         *float64            `json:"minRating" validate:"omitempty,gte=0,lte=5"`
	Sort              string              `json:"sort" validate:"omitempty,oneof=best-seller price-asc price-desc most-popular default"`
}

// ProductRepository defines the interface for catalog data access.
type ProductRepository interface {
	GetByID(id string) (*models.Product, error)
	GetBySlug(slug string) (*models.Product, error)
	Search(filter ProductFilter) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error

	// RecordView inserts a (product, ip) view-log row and reports
	// whether this was the first view from that address.
	RecordView(productID, ip string) (bool, error)
	IncrementPopularity(productID string) error
}
