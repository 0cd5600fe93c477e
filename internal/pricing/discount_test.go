package pricing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"pasarhub/internal/models"
	"pasarhub/internal/pricing"
)

func floatPtr(f float64) *float64 { return &f }

func timePtr(t time.Time) *time.Time { return &t }

func TestActiveDiscounts_WindowInclusive(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	product := &models.Product{
		Price: floatPtr(500),
		ProductDiscount: &models.ProductDiscount{
			ID:           "pd-1",
			Value:        20,
			DiscountType: models.DiscountTypePercentage,
			StartDate:    timePtr(now.Add(-24 * time.Hour)),
			EndDate:      timePtr(now.Add(24 * time.Hour)),
		},
	}

	discounts := pricing.ActiveDiscounts(product, now)
	assert.Len(t, discounts, 1)
	assert.Equal(t, pricing.SourceProduct, discounts[0].Source)

	// Inclusive at both boundaries.
	discounts = pricing.ActiveDiscounts(product, *product.ProductDiscount.StartDate)
	assert.Len(t, discounts, 1)
	discounts = pricing.ActiveDiscounts(product, *product.ProductDiscount.EndDate)
	assert.Len(t, discounts, 1)

	// Outside the window on either side.
	discounts = pricing.ActiveDiscounts(product, now.Add(-48*time.Hour))
	assert.Empty(t, discounts)
	discounts = pricing.ActiveDiscounts(product, now.Add(48*time.Hour))
	assert.Empty(t, discounts)
}

func TestActiveDiscounts_ProductBeforeNewArrival(t *testing.T) {
	now := time.Now()
	product := &models.Product{
		Price: floatPtr(100),
		ProductDiscount: &models.ProductDiscount{
			ID: "pd-1", Value: 10, DiscountType: models.DiscountTypePercentage,
		},
		NewArrivalDiscount: &models.NewArrivalDiscount{
			ID: "na-1", Value: 50, DiscountType: models.DiscountTypePercentage,
			StartDate: timePtr(now.Add(-time.Hour)),
			EndDate:   timePtr(now.Add(time.Hour)),
		},
	}

	discounts := pricing.ActiveDiscounts(product, now)
	assert.Len(t, discounts, 2)
	// First-found wins on application, so the product-level discount
	// (10%) applies even though the new-arrival one is larger.
	sale := pricing.Apply(decimal.NewFromInt(100), discounts)
	assert.True(t, sale.Equal(decimal.NewFromInt(90)), "expected 90, got %s", sale)
}

func TestApply_PercentageAndFixed(t *testing.T) {
	base := decimal.NewFromInt(500)

	sale := pricing.Apply(base, []pricing.Discount{{
		Value: decimal.NewFromInt(20), DiscountType: models.DiscountTypePercentage,
	}})
	assert.True(t, sale.Equal(decimal.NewFromInt(400)), "expected 400, got %s", sale)

	sale = pricing.Apply(base, []pricing.Discount{{
		Value: decimal.NewFromInt(150), DiscountType: models.DiscountTypeFixed,
	}})
	assert.True(t, sale.Equal(decimal.NewFromInt(350)), "expected 350, got %s", sale)

	// Fixed discounts floor at zero.
	sale = pricing.Apply(decimal.NewFromInt(100), []pricing.Discount{{
		Value: decimal.NewFromInt(250), DiscountType: models.DiscountTypeFixed,
	}})
	assert.True(t, sale.Equal(decimal.Zero), "expected 0, got %s", sale)

	// No discounts leaves the price unchanged.
	sale = pricing.Apply(base, nil)
	assert.True(t, sale.Equal(base))
}

func TestDisplayPrice_VariantMinimum(t *testing.T) {
	product := &models.Product{
		Price: floatPtr(999),
		Variants: []models.ProductVariant{
			{ID: "v-1", Price: 120},
			{ID: "v-2", Price: 80},
			{ID: "v-3", Price: 150},
		},
	}
	price := pricing.DisplayPrice(product)
	assert.True(t, price.Equal(decimal.NewFromInt(80)), "expected 80, got %s", price)

	// Without variants the base price is used.
	product.Variants = nil
	price = pricing.DisplayPrice(product)
	assert.True(t, price.Equal(decimal.NewFromInt(999)))

	// Neither variants nor base price.
	product.Price = nil
	assert.True(t, pricing.DisplayPrice(product).Equal(decimal.Zero))
}

func TestSalePrice_OutsideWindowUnchanged(t *testing.T) {
	now := time.Now()
	product := &models.Product{
		Price: floatPtr(500),
		ProductDiscount: &models.ProductDiscount{
			Value:        20,
			DiscountType: models.DiscountTypePercentage,
			StartDate:    timePtr(now.Add(24 * time.Hour)),
			EndDate:      timePtr(now.Add(48 * time.Hour)),
		},
	}
	assert.True(t, pricing.SalePrice(product, now).Equal(decimal.NewFromInt(500)))
}
