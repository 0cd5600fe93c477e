package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"pasarhub/internal/models"
)

// Discount sources.
const (
	SourceProduct    = "product"
	SourceNewArrival = "new_arrival"
)

// Discount is one currently-active discount on a product.
type Discount struct {
	ID           string
	Source       string // product | new_arrival
	Value        decimal.Decimal
	DiscountType string // percentage | fixed
}

// windowActive reports whether now falls inside [start, end], inclusive
// at both ends. A nil start means already running; a nil end means no
// expiry.
func windowActive(start, end *time.Time, now time.Time) bool {
	if start != nil && now.Before(*start) {
		return false
	}
	if end != nil && now.After(*end) {
		return false
	}
	return true
}

// ActiveDiscounts returns every discount on the product whose validity
// window contains now, product-level first, then new-arrival. Order
// matters: Apply uses the first entry.
func ActiveDiscounts(p *models.Product, now time.Time) []Discount {
	var out []Discount
	if d := p.ProductDiscount; d != nil && windowActive(d.StartDate, d.EndDate, now) {
		out = append(out, Discount{
			ID:           d.ID,
			Source:       SourceProduct,
			Value:        decimal.NewFromFloat(d.Value),
			DiscountType: d.DiscountType,
		})
	}
	if d := p.NewArrivalDiscount; d != nil && windowActive(d.StartDate, d.EndDate, now) {
		out = append(out, Discount{
			ID:           d.ID,
			Source:       SourceNewArrival,
			Value:        decimal.NewFromFloat(d.Value),
			DiscountType: d.DiscountType,
		})
	}
	return out
}

// Apply discounts a base price by the first discount in the list.
// Percentage discounts compute price * (1 - value/100); fixed discounts
// subtract the value, floored at zero. An empty list returns the price
// unchanged.
func Apply(price decimal.Decimal, discounts []Discount) decimal.Decimal {
	if len(discounts) == 0 {
		return price
	}
	d := discounts[0]
	switch d.DiscountType {
	case models.DiscountTypePercentage:
		factor := decimal.NewFromInt(1).Sub(d.Value.Div(decimal.NewFromInt(100)))
		return price.Mul(factor)
	case models.DiscountTypeFixed:
		result := price.Sub(d.Value)
		if result.IsNegative() {
			return decimal.Zero
		}
		return result
	default:
		return price
	}
}

// DisplayPrice is the price shown in listings: the minimum variant
// price when variants exist, else the base price. Products with
// neither price zero out rather than erroring; the catalog treats them
// as unsellable.
func DisplayPrice(p *models.Product) decimal.Decimal {
	if len(p.Variants) > 0 {
		min := decimal.NewFromFloat(p.Variants[0].Price)
		for _, v := range p.Variants[1:] {
			if vp := decimal.NewFromFloat(v.Price); vp.LessThan(min) {
				min = vp
			}
		}
		return min
	}
	if p.Price != nil {
		return decimal.NewFromFloat(*p.Price)
	}
	return decimal.Zero
}

// SalePrice is the display price with the first active discount applied.
func SalePrice(p *models.Product, now time.Time) decimal.Decimal {
	return Apply(DisplayPrice(p), ActiveDiscounts(p, now))
}
