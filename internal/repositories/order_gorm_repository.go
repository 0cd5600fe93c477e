package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pasarhub/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// CreateWithCoupons writes the order, its items, and the coupon
// decrements atomically. The decrement is a conditional update guarded
// on claimable_quantity > 0; zero affected rows means the coupon ran
// out between quote and checkout, and the transaction rolls back with
// ErrCouponExhausted.
func (r *GORMOrderRepository) CreateWithCoupons(order *models.Order, couponIDs []string) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		for _, couponID := range couponIDs {
			res := tx.Model(&models.Coupon{}).
				Where("id = ? AND claimable_quantity > 0", couponID).
				UpdateColumn("claimable_quantity", gorm.Expr("claimable_quantity - 1"))
			if res.Error != nil {
				return fmt.Errorf("failed to decrement coupon %s: %w", couponID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("coupon %s: %w", couponID, ErrCouponExhausted)
			}
		}
		return nil
	})
	return err
}

// GetByID retrieves a single order with its items.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetAllByUser retrieves a buyer's orders, newest first.
func (r *GORMOrderRepository) GetAllByUser(userID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// SetGatewayInvoice stores the gateway invoice reference and moves the
// order to Awaiting Payment.
func (r *GORMOrderRepository) SetGatewayInvoice(orderID, invoiceID, invoiceURL string) error {
	res := r.db.Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"gateway_invoice_id":  invoiceID,
			"gateway_invoice_url": invoiceURL,
			"payment_status":      models.PaymentStatusAwaiting,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to set gateway invoice for order %s: %w", orderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s not found for invoice update", orderID)
	}
	return nil
}

// SetPaymentStatus updates the payment status field only.
func (r *GORMOrderRepository) SetPaymentStatus(orderID, status string) error {
	res := r.db.Model(&models.Order{}).
		Where("id = ?", orderID).
		UpdateColumn("payment_status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to set payment status for order %s: %w", orderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s not found for status update", orderID)
	}
	return nil
}

// GORMCouponRepository is a GORM implementation of CouponRepository.
type GORMCouponRepository struct {
	db *gorm.DB
}

// NewGORMCouponRepository creates a new instance of GORMCouponRepository.
func NewGORMCouponRepository(db *gorm.DB) *GORMCouponRepository {
	return &GORMCouponRepository{
		db: db,
	}
}

// GetByCodes resolves voucher codes to coupon rows. Unknown codes are
// simply absent from the result.
func (r *GORMCouponRepository) GetByCodes(codes []string) ([]models.Coupon, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var coupons []models.Coupon
	if err := r.db.Where("code IN ?", codes).Find(&coupons).Error; err != nil {
		return nil, fmt.Errorf("failed to get coupons by codes: %w", err)
	}
	return coupons, nil
}
