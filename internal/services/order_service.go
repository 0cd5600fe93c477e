package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pasarhub/internal/models"
	"pasarhub/internal/repositories"
	"pasarhub/pkg/mail"
	"pasarhub/pkg/payment"
	"pasarhub/pkg/rabbitmq"
)

// OrderService orchestrates checkout: order + items + coupon decrement
// in one transaction, then the gateway invoice and the receipt email.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	couponRepo  repositories.CouponRepository
	addressRepo repositories.AddressRepository
	userRepo    repositories.UserRepository
	gateway     payment.Gateway
	mailer      mail.Mailer
	mqClient    *rabbitmq.Client
}

// NewOrderService creates a new OrderService. gateway, mailer, and
// mqClient may be nil, which disables online payment, receipt mail,
// and event publishing respectively.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	couponRepo repositories.CouponRepository,
	addressRepo repositories.AddressRepository,
	userRepo repositories.UserRepository,
	gateway payment.Gateway,
	mailer mail.Mailer,
	mqClient *rabbitmq.Client,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		addressRepo: addressRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		mailer:      mailer,
		mqClient:    mqClient,
	}
}

// CheckoutResult is what the client needs after a successful checkout.
type CheckoutResult struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	InvoiceURL  string `json:"invoiceUrl,omitempty"`
}

// PlaceOrder runs the checkout flow for an authenticated user.
//
// The order, its items, and the coupon decrements commit in a single
// transaction. The gateway call happens after commit because it cannot
// join the transaction; when it fails, the order is marked Failed and
// kept for reconciliation rather than silently left pending.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, req *models.CheckoutRequest) (*CheckoutResult, error) {
	if req.PaymentMethod != models.PaymentMethodCOD && req.PaymentMethod != models.PaymentMethodOnline {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, req.PaymentMethod)
	}

	address, err := s.addressRepo.GetByID(req.ShippingAddressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("shipping address %s: %w", req.ShippingAddressID, ErrAddressNotFound)
		}
		return nil, err
	}
	if address.UserID != userID {
		return nil, fmt.Errorf("shipping address %s: %w", req.ShippingAddressID, ErrAddressNotFound)
	}

	// Enrich each line with the product's current name and image. The
	// unit price is NOT re-fetched: the client-computed price at
	// purchase time is the snapshot the order keeps.
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		product, err := s.productRepo.GetByID(line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("product %s: %w", line.ProductID, ErrProductNotFound)
			}
			return nil, err
		}
		items = append(items, models.OrderItem{
			ProductID:            line.ProductID,
			VendorID:             line.VendorID,
			Name:                 product.Name,
			ImageURL:             product.ImageURL,
			Price:                line.PriceAtPurchase,
			Quantity:             line.Quantity,
			ProductDiscountID:    line.ProductDiscountID,
			NewArrivalDiscountID: line.NewArrivalDiscountID,
			CouponID:             line.CouponID,
			PromoCodeID:          line.PromoCodeID,
		})
	}

	couponIDs, err := s.resolveCouponIDs(req.VendorTotals)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:                uuid.New().String(),
		UserID:            userID,
		OrderNumber:       uuid.New().String(),
		ShippingAddressID: address.ID,
		PaymentMethod:     req.PaymentMethod,
		PaymentStatus:     models.PaymentStatusPending,
		Remarks:           req.Remarks,
		Subtotal:          req.CartSummary.Subtotal,
		DiscountAmount:    req.CartSummary.TotalDiscount,
		DeliveryFee:       req.CartSummary.TotalShippingFee,
		TotalAmount:       req.CartSummary.Total,
		Items:             items,
	}

	if err := s.orderRepo.CreateWithCoupons(order, couponIDs); err != nil {
		return nil, err
	}

	result := &CheckoutResult{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
	}

	if req.PaymentMethod == models.PaymentMethodOnline {
		invoiceURL, err := s.createInvoice(ctx, order)
		if err != nil {
			// The order and its items are already committed. Mark the
			// order Failed so reconciliation can pick it up instead of
			// leaving it silently pending.
			if markErr := s.orderRepo.SetPaymentStatus(order.ID, models.PaymentStatusFailed); markErr != nil {
				log.Printf("Failed to mark order %s as failed: %v", order.ID, markErr)
			}
			return nil, fmt.Errorf("%w: %v", ErrGatewayFailure, err)
		}
		result.InvoiceURL = invoiceURL
	}

	s.sendReceipt(order, address)
	s.publishOrderCreated(order)

	return result, nil
}

// GetOrdersByUser retrieves the caller's order history.
func (s *OrderService) GetOrdersByUser(userID string) ([]models.Order, error) {
	return s.orderRepo.GetAllByUser(userID)
}

// GetOrderForUser retrieves one order, refusing orders that belong to
// someone else.
func (s *OrderService) GetOrderForUser(orderID, userID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("order with ID %s: %w", orderID, gorm.ErrRecordNotFound)
	}
	return order, nil
}

// resolveCouponIDs maps redeemed voucher codes (one per vendor total at
// most) to coupon ids. The decrement downstream is once per distinct
// coupon id, not once per item referencing it.
func (s *OrderService) resolveCouponIDs(vendorTotals []models.VendorTotal) ([]string, error) {
	var codes []string
	for _, vt := range vendorTotals {
		if vt.VoucherCode != "" {
			codes = append(codes, vt.VoucherCode)
		}
	}
	if len(codes) == 0 {
		return nil, nil
	}
	coupons, err := s.couponRepo.GetByCodes(codes)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(coupons))
	var ids []string
	for _, c := range coupons {
		if !seen[c.ID] {
			seen[c.ID] = true
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

func (s *OrderService) createInvoice(ctx context.Context, order *models.Order) (string, error) {
	if s.gateway == nil {
		return "", fmt.Errorf("payment gateway is not configured")
	}

	payerEmail := ""
	if user, err := s.userRepo.GetByID(order.UserID); err == nil {
		payerEmail = user.Email
	}

	invoice, err := s.gateway.CreateInvoice(ctx, payment.InvoiceRequest{
		ExternalID:  order.OrderNumber,
		Amount:      order.TotalAmount,
		PayerEmail:  payerEmail,
		Description: fmt.Sprintf("Order %s", order.OrderNumber),
	})
	if err != nil {
		return "", err
	}
	if err := s.orderRepo.SetGatewayInvoice(order.ID, invoice.ID, invoice.InvoiceURL); err != nil {
		return "", err
	}
	return invoice.InvoiceURL, nil
}

// sendReceipt emails the buyer a receipt. Best effort: a mail failure
// never fails the checkout, it is only logged.
func (s *OrderService) sendReceipt(order *models.Order, address *models.Address) {
	if s.mailer == nil {
		return
	}
	user, err := s.userRepo.GetByID(order.UserID)
	if err != nil {
		log.Printf("Receipt skipped, could not load user %s: %v", order.UserID, err)
		return
	}
	body := fmt.Sprintf(
		"Thank you for your order!\n\nOrder number: %s\nTotal: %.2f\nPayment: %s\nShipping to: %s, %s, %s %s\n",
		order.OrderNumber, order.TotalAmount, order.PaymentMethod,
		address.Line1, address.City, address.Province, address.PostalCode,
	)
	if err := s.mailer.Send(user.Email, fmt.Sprintf("Your order %s", order.OrderNumber), body); err != nil {
		log.Printf("Failed to send receipt for order %s: %v", order.ID, err)
	}
}

func (s *OrderService) publishOrderCreated(order *models.Order) {
	if s.mqClient == nil {
		return
	}
	err := s.mqClient.PublishEvent("order.created", map[string]interface{}{
		"orderId":     order.ID,
		"orderNumber": order.OrderNumber,
		"userId":      order.UserID,
		"status":      order.PaymentStatus,
		"total":       order.TotalAmount,
	})
	if err != nil {
		log.Printf("Warning: failed to publish order created event for order %s: %v", order.ID, err)
	}
}
