package repositories

import (
	"errors"

	"pasarhub/internal/models"
)

// ErrCouponExhausted is returned when a coupon's claimable stock is
// already zero at redemption time. The whole checkout transaction rolls
// back when this happens.
var ErrCouponExhausted = errors.New("coupon claimable quantity exhausted")

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// CreateWithCoupons persists the order, its items, and one guarded
	// claimable-stock decrement per distinct coupon id, all inside a
	// single transaction.
	CreateWithCoupons(order *models.Order, couponIDs []string) error
	GetByID(id string) (*models.Order, error)
	GetAllByUser(userID string) ([]models.Order, error)
	SetGatewayInvoice(orderID, invoiceID, invoiceURL string) error
	SetPaymentStatus(orderID, status string) error
}

// CouponRepository resolves voucher codes to coupon records.
type CouponRepository interface {
	GetByCodes(codes []string) ([]models.Coupon, error)
}
