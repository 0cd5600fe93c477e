package models

// CheckoutItem is one purchase line as submitted by the client. The
// unit price is the client-computed price at purchase time; the server
// snapshots it as-is and only re-fetches name/image.
type CheckoutItem struct {
	ProductID            string  `json:"productId" validate:"required"`
	VendorID             string  `json:"vendorId" validate:"required"`
	Quantity             int     `json:"quantity" validate:"required,gt=0"`
	PriceAtPurchase      float64 `json:"priceAtPurchase" validate:"gte=0"`
	ProductDiscountID    *string `json:"productDiscountId"`
	NewArrivalDiscountID *string `json:"newArrivalDiscountId"`
	CouponID             *string `json:"couponId"`
	PromoCodeID          *string `json:"promoCodeId"`
}

// VendorTotal carries the per-vendor aggregate of the cart, including
// the voucher code (if any) redeemed against that vendor.
type VendorTotal struct {
	VendorID    string  `json:"vendorId" validate:"required"`
	VoucherCode string  `json:"voucherCode"`
	Subtotal    float64 `json:"subtotal"`
	Discount    float64 `json:"discount"`
	ShippingFee float64 `json:"shippingFee"`
	Total       float64 `json:"total"`
}

// VendorDelivery is the courier selection for one vendor's shipment.
type VendorDelivery struct {
	VendorID    string  `json:"vendorId"`
	CourierName string  `json:"courierName"`
	Fee         float64 `json:"fee"`
}

// CartSummary is the client-computed grand aggregate submitted with the
// checkout request.
type CartSummary struct {
	Subtotal         float64 `json:"subtotal"`
	TotalDiscount    float64 `json:"totalDiscount"`
	TotalShippingFee float64 `json:"totalShippingFee"`
	Total            float64 `json:"total"`
}

// CheckoutRequest is the body of POST /api/v1/orders.
type CheckoutRequest struct {
	ShippingAddressID string           `json:"shippingAddressId" validate:"required"`
	PaymentMethod     string           `json:"paymentMethod" validate:"required"`
	Remarks           string           `json:"remarks"`
	VendorDeliveries  []VendorDelivery `json:"vendorDeliveries"`
	Items             []CheckoutItem   `json:"items" validate:"required,min=1,dive"`
	VendorTotals      []VendorTotal    `json:"vendorTotals" validate:"required,min=1,dive"`
	CartSummary       *CartSummary     `json:"cartSummary" validate:"required"`
}
