package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CartLine is one cart entry at quote time. UnitPrice is the already
// discounted unit price; UnitDiscount is how much was taken off one
// unit by the product-level/new-arrival discount.
type CartLine struct {
	ProductID    string
	VendorID     string
	Quantity     int
	UnitPrice    decimal.Decimal
	UnitDiscount decimal.Decimal
}

// VendorGroup aggregates a vendor's cart lines.
type VendorGroup struct {
	VendorID      string
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	ShippingFee   decimal.Decimal
	Total         decimal.Decimal
}

// Summary is the cart grand aggregate.
type Summary struct {
	Subtotal         decimal.Decimal
	TotalDiscount    decimal.Decimal
	TotalShippingFee decimal.Decimal
	Total            decimal.Decimal
}

// Aggregate reduces cart lines into per-vendor groups and a grand
// summary. shippingFees maps vendor id to that vendor's delivery fee;
// vendors absent from the map ship free. Groups come back sorted by
// vendor id so quotes are reproducible.
func Aggregate(lines []CartLine, shippingFees map[string]decimal.Decimal) ([]VendorGroup, Summary) {
	byVendor := make(map[string]*VendorGroup)
	for _, line := range lines {
		g, ok := byVendor[line.VendorID]
		if !ok {
			g = &VendorGroup{
				VendorID:      line.VendorID,
				Subtotal:      decimal.Zero,
				DiscountTotal: decimal.Zero,
				ShippingFee:   decimal.Zero,
				Total:         decimal.Zero,
			}
			byVendor[line.VendorID] = g
		}
		qty := decimal.NewFromInt(int64(line.Quantity))
		g.Subtotal = g.Subtotal.Add(line.UnitPrice.Mul(qty))
		g.DiscountTotal = g.DiscountTotal.Add(line.UnitDiscount.Mul(qty))
	}

	groups := make([]VendorGroup, 0, len(byVendor))
	summary := Summary{
		Subtotal:         decimal.Zero,
		TotalDiscount:    decimal.Zero,
		TotalShippingFee: decimal.Zero,
		Total:            decimal.Zero,
	}
	for vendorID, g := range byVendor {
		if fee, ok := shippingFees[vendorID]; ok {
			g.ShippingFee = fee
		}
		g.Total = g.Subtotal.Add(g.ShippingFee)
		groups = append(groups, *g)

		summary.Subtotal = summary.Subtotal.Add(g.Subtotal)
		summary.TotalDiscount = summary.TotalDiscount.Add(g.DiscountTotal)
		summary.TotalShippingFee = summary.TotalShippingFee.Add(g.ShippingFee)
	}
	summary.Total = summary.Subtotal.Add(summary.TotalShippingFee)

	sort.Slice(groups, func(i, j int) bool { return groups[i].VendorID < groups[j].VendorID })
	return groups, summary
}
