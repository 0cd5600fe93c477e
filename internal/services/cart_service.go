package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pasarhub/internal/models"
	"pasarhub/internal/pricing"
	"pasarhub/internal/repositories"
)

// CartService quotes a client-held cart server-side: per-vendor
// subtotals, discounts, shipping, and the grand total, priced from the
// catalog at quote time.
type CartService struct {
	productRepo repositories.ProductRepository
	now         func() time.Time
}

// QuoteItem is one cart line to price.
type QuoteItem struct {
	ProductID string `json:"productId" validate:"required"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// QuoteRequest is the body of POST /api/v1/cart/summary.
type QuoteRequest struct {
	Items            []QuoteItem             `json:"items" validate:"required,min=1,dive"`
	VendorDeliveries []models.VendorDelivery `json:"vendorDeliveries"`
}

// Quote is the server-computed cart aggregate.
type Quote struct {
	Vendors []pricing.VendorGroup `json:"vendors"`
	Summary pricing.Summary       `json:"summary"`
}

// NewCartService creates a new CartService.
func NewCartService(productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		productRepo: productRepo,
		now:         time.Now,
	}
}

// QuoteCart prices every line against the current catalog and reduces
// the result into vendor groups and a summary.
func (s *CartService) QuoteCart(req *QuoteRequest) (*Quote, error) {
	lines := make([]pricing.CartLine, 0, len(req.Items))
	for _, item := range req.Items {
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("product %s: %w", item.ProductID, ErrProductNotFound)
			}
			return nil, err
		}

		base := unitBasePrice(product, item.VariantID)
		discounts := pricing.ActiveDiscounts(product, s.now())
		unit := pricing.Apply(base, discounts)

		lines = append(lines, pricing.CartLine{
			ProductID:    product.ID,
			VendorID:     product.VendorID,
			Quantity:     item.Quantity,
			UnitPrice:    unit,
			UnitDiscount: base.Sub(unit),
		})
	}

	fees := make(map[string]decimal.Decimal, len(req.VendorDeliveries))
	for _, d := range req.VendorDeliveries {
		fees[d.VendorID] = decimal.NewFromFloat(d.Fee)
	}

	vendors, summary := pricing.Aggregate(lines, fees)
	return &Quote{Vendors: vendors, Summary: summary}, nil
}

// unitBasePrice picks the selected variant's price, falling back to the
// display price (minimum variant, else base) when no variant is chosen.
func unitBasePrice(product *models.Product, variantID string) decimal.Decimal {
	if variantID != "" {
		for _, v := range product.Variants {
			if v.ID == variantID {
				return decimal.NewFromFloat(v.Price)
			}
		}
	}
	return pricing.DisplayPrice(product)
}
