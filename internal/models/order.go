package models

import "gorm.io/gorm"

// Payment methods accepted at checkout.
const (
	PaymentMethodCOD    = "Cash on Delivery"
	PaymentMethodOnline = "Online Transaction"
)

// Payment states written by the checkout flow. Later states (Paid,
// Delivered, ...) are set by the gateway webhook and fulfillment,
// outside this service.
const (
	PaymentStatusPending  = "Pending"
	PaymentStatusAwaiting = "Awaiting Payment"
	PaymentStatusFailed   = "Failed"
)

// Order represents one checkout submission. It is created once and is
// immutable afterwards except for the payment/status fields.
type Order struct {
	ID                string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID            string  `json:"user_id" gorm:"index;type:varchar(36)"`
	OrderNumber       string  `json:"order_number" gorm:"uniqueIndex;type:varchar(36)"`
	ShippingAddressID string  `json:"shipping_address_id" gorm:"type:varchar(36)"`
	PaymentMethod     string  `json:"payment_method"`
	PaymentStatus     string  `json:"payment_status" gorm:"default:'Pending'"`
	Remarks           string  `json:"remarks"`
	Subtotal          float64 `json:"subtotal"`
	DiscountAmount    float64 `json:"discount_amount"`
	DeliveryFee       float64 `json:"delivery_fee"`
	TotalAmount       float64 `json:"total_amount"`

	// Set only when the order is paid through the online gateway.
	GatewayInvoiceID  *string `json:"gateway_invoice_id"`
	GatewayInvoiceURL *string `json:"gateway_invoice_url"`

	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID"`

	gorm.Model
}

// OrderItem is one purchased line. Price is the unit price snapshotted
// at purchase time and is never recomputed.
type OrderItem struct {
	ID        string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string  `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID string  `json:"product_id" gorm:"type:varchar(36)"`
	VendorID  string  `json:"vendor_id" gorm:"index;type:varchar(36)"`
	Name      string  `json:"name"`
	ImageURL  string  `json:"image_url"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`

	// References to the discount instruments actually applied.
	ProductDiscountID    *string `json:"product_discount_id" gorm:"type:varchar(36)"`
	NewArrivalDiscountID *string `json:"new_arrival_discount_id" gorm:"type:varchar(36)"`
	CouponID             *string `json:"coupon_id" gorm:"type:varchar(36)"`
	PromoCodeID          *string `json:"promo_code_id" gorm:"type:varchar(36)"`
}

// Coupon is a vendor-issued discount code with a finite claimable stock.
// ClaimableQuantity is decremented once per order that redeems the code
// and must never go below zero.
type Coupon struct {
	ID                string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	VendorID          string  `json:"vendor_id" gorm:"index;type:varchar(36)"`
	Code              string  `json:"code" gorm:"uniqueIndex;type:varchar(64)"`
	Value             float64 `json:"value"`
	DiscountType      string  `json:"discount_type"`
	MinOrderValue     float64 `json:"min_order_value"`
	ClaimableQuantity int     `json:"claimable_quantity"`

	gorm.Model
}
