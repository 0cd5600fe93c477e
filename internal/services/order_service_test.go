package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"pasarhub/internal/models"
	"pasarhub/internal/repositories"
	"pasarhub/internal/services"
	"pasarhub/pkg/payment"
)

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateWithCoupons(order *models.Order, couponIDs []string) error {
	args := m.Called(order, couponIDs)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAllByUser(userID string) ([]models.Order, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) SetGatewayInvoice(orderID, invoiceID, invoiceURL string) error {
	args := m.Called(orderID, invoiceID, invoiceURL)
	return args.Error(0)
}

func (m *MockOrderRepository) SetPaymentStatus(orderID, status string) error {
	args := m.Called(orderID, status)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetBySlug(slug string) (*models.Product, error) {
	args := m.Called(slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Search(filter repositories.ProductFilter) ([]models.Product, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockProductRepository) RecordView(productID, ip string) (bool, error) {
	args := m.Called(productID, ip)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) IncrementPopularity(productID string) error {
	args := m.Called(productID)
	return args.Error(0)
}

// MockCouponRepository is a mock implementation of repositories.CouponRepository
type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) GetByCodes(codes []string) ([]models.Coupon, error) {
	args := m.Called(codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Coupon), args.Error(1)
}

// MockAddressRepository is a mock implementation of repositories.AddressRepository
type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) ListByUser(userID string) ([]models.Address, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Address), args.Error(1)
}

func (m *MockAddressRepository) GetByID(id string) (*models.Address, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

func (m *MockAddressRepository) Create(address *models.Address) error {
	args := m.Called(address)
	return args.Error(0)
}

func (m *MockAddressRepository) Update(address *models.Address) error {
	args := m.Called(address)
	return args.Error(0)
}

func (m *MockAddressRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

// stubGateway records invoice calls and returns a canned response.
type stubGateway struct {
	invoice *payment.Invoice
	err     error
	calls   int
}

func (g *stubGateway) CreateInvoice(ctx context.Context, req payment.InvoiceRequest) (*payment.Invoice, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.invoice, nil
}

type checkoutFixture struct {
	orderRepo   *MockOrderRepository
	productRepo *MockProductRepository
	couponRepo  *MockCouponRepository
	addressRepo *MockAddressRepository
	userRepo    *MockUserRepository
	gateway     *stubGateway
	service     *services.OrderService
}

func newCheckoutFixture(gateway *stubGateway) *checkoutFixture {
	f := &checkoutFixture{
		orderRepo:   new(MockOrderRepository),
		productRepo: new(MockProductRepository),
		couponRepo:  new(MockCouponRepository),
		addressRepo: new(MockAddressRepository),
		userRepo:    new(MockUserRepository),
		gateway:     gateway,
	}
	var gw payment.Gateway
	if gateway != nil {
		gw = gateway
	}
	f.service = services.NewOrderService(
		f.orderRepo, f.productRepo, f.couponRepo, f.addressRepo, f.userRepo,
		gw, nil, nil,
	)
	return f
}

func validCheckoutRequest(paymentMethod string) *models.CheckoutRequest {
	return &models.CheckoutRequest{
		ShippingAddressID: "addr-1",
		PaymentMethod:     paymentMethod,
		Items: []models.CheckoutItem{
			{ProductID: "prod-1", VendorID: "vendor-1", Quantity: 2, PriceAtPurchase: 400},
		},
		VendorTotals: []models.VendorTotal{
			{VendorID: "vendor-1", Subtotal: 800, Total: 815, ShippingFee: 15},
		},
		CartSummary: &models.CartSummary{Subtotal: 800, TotalShippingFee: 15, Total: 815},
	}
}

func TestPlaceOrder_CashOnDeliveryNeverTouchesGateway(t *testing.T) {
	gateway := &stubGateway{invoice: &payment.Invoice{ID: "inv-1", InvoiceURL: "https://pay.example/inv-1"}}
	f := newCheckoutFixture(gateway)

	f.addressRepo.On("GetByID", "addr-1").
		Return(&models.Address{ID: "addr-1", UserID: "user-1"}, nil).Once()
	f.productRepo.On("GetByID", "prod-1").
		Return(&models.Product{ID: "prod-1", Name: "Rattan Chair", ImageURL: "chair.jpg"}, nil).Once()
	f.orderRepo.On("CreateWithCoupons", mock.AnythingOfType("*models.Order"), []string(nil)).
		Return(nil).Once()

	result, err := f.service.PlaceOrder(context.Background(), "user-1", validCheckoutRequest(models.PaymentMethodCOD))

	assert.NoError(t, err)
	assert.NotEmpty(t, result.OrderID)
	assert.NotEmpty(t, result.OrderNumber)
	assert.Empty(t, result.InvoiceURL)
	assert.Equal(t, 0, gateway.calls, "COD must never call the payment gateway")
	f.orderRepo.AssertExpectations(t)

	// The persisted order snapshots the client price and the enriched
	// name/image, and carries no gateway invoice.
	order := f.orderRepo.Calls[0].Arguments.Get(0).(*models.Order)
	assert.Nil(t, order.GatewayInvoiceID)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, "Rattan Chair", order.Items[0].Name)
	assert.Equal(t, 400.0, order.Items[0].Price)
}

func TestPlaceOrder_GatewayFailureKeepsOrderAndMarksFailed(t *testing.T) {
	gateway := &stubGateway{err: fmt.Errorf("gateway timeout")}
	f := newCheckoutFixture(gateway)

	f.addressRepo.On("GetByID", "addr-1").
		Return(&models.Address{ID: "addr-1", UserID: "user-1"}, nil).Once()
	f.productRepo.On("GetByID", "prod-1").
		Return(&models.Product{ID: "prod-1", Name: "Rattan Chair"}, nil).Once()
	f.orderRepo.On("CreateWithCoupons", mock.AnythingOfType("*models.Order"), []string(nil)).
		Return(nil).Once()
	f.userRepo.On("GetByID", "user-1").
		Return(&models.User{ID: "user-1", Email: "buyer@example.com"}, nil).Once()
	f.orderRepo.On("SetPaymentStatus", mock.AnythingOfType("string"), models.PaymentStatusFailed).
		Return(nil).Once()

	result, err := f.service.PlaceOrder(context.Background(), "user-1", validCheckoutRequest(models.PaymentMethodOnline))

	assert.Error(t, err)
	assert.ErrorIs(t, err, services.ErrGatewayFailure)
	assert.Nil(t, result)
	assert.Equal(t, 1, gateway.calls)
	// The order was committed before the gateway call and stays
	// persisted; only its status moves to Failed.
	f.orderRepo.AssertCalled(t, "CreateWithCoupons", mock.AnythingOfType("*models.Order"), []string(nil))
	f.orderRepo.AssertExpectations(t)
}

func TestPlaceOrder_OnlineSuccessStoresInvoice(t *testing.T) {
	gateway := &stubGateway{invoice: &payment.Invoice{ID: "inv-9", InvoiceURL: "https://pay.example/inv-9"}}
	f := newCheckoutFixture(gateway)

	f.addressRepo.On("GetByID", "addr-1").
		Return(&models.Address{ID: "addr-1", UserID: "user-1"}, nil).Once()
	f.productRepo.On("GetByID", "prod-1").
		Return(&models.Product{ID: "prod-1", Name: "Rattan Chair"}, nil).Once()
	f.orderRepo.On("CreateWithCoupons", mock.AnythingOfType("*models.Order"), []string(nil)).
		Return(nil).Once()
	f.userRepo.On("GetByID", "user-1").
		Return(&models.User{ID: "user-1", Email: "buyer@example.com"}, nil).Once()
	f.orderRepo.On("SetGatewayInvoice", mock.AnythingOfType("string"), "inv-9", "https://pay.example/inv-9").
		Return(nil).Once()

	result, err := f.service.PlaceOrder(context.Background(), "user-1", validCheckoutRequest(models.PaymentMethodOnline))

	assert.NoError(t, err)
	assert.Equal(t, "https://pay.example/inv-9", result.InvoiceURL)
	f.orderRepo.AssertExpectations(t)
}

func TestPlaceOrder_MissingProductIsCleanError(t *testing.T) {
	f := newCheckoutFixture(nil)

	f.addressRepo.On("GetByID", "addr-1").
		Return(&models.Address{ID: "addr-1", UserID: "user-1"}, nil).Once()
	f.productRepo.On("GetByID", "prod-1").
		Return(nil, fmt.Errorf("product with ID prod-1: %w", gorm.ErrRecordNotFound)).Once()

	result, err := f.service.PlaceOrder(context.Background(), "user-1", validCheckoutRequest(models.PaymentMethodCOD))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	f.orderRepo.AssertNotCalled(t, "CreateWithCoupons", mock.Anything, mock.Anything)
}

func TestPlaceOrder_ResolvesVouchersOncePerDistinctCoupon(t *testing.T) {
	f := newCheckoutFixture(nil)

	req := validCheckoutRequest(models.PaymentMethodCOD)
	req.VendorTotals = []models.VendorTotal{
		{VendorID: "vendor-1", VoucherCode: "HEMAT10"},
		{VendorID: "vendor-2", VoucherCode: "HEMAT10"},
		{VendorID: "vendor-3", VoucherCode: ""},
	}

	f.addressRepo.On("GetByID", "addr-1").
		Return(&models.Address{ID: "addr-1", UserID: "user-1"}, nil).Once()
	f.productRepo.On("GetByID", "prod-1").
		Return(&models.Product{ID: "prod-1", Name: "Rattan Chair"}, nil).Once()
	f.couponRepo.On("GetByCodes", []string{"HEMAT10", "HEMAT10"}).
		Return([]models.Coupon{
			{ID: "coupon-1", Code: "HEMAT10"},
			{ID: "coupon-1", Code: "HEMAT10"},
		}, nil).Once()
	f.orderRepo.On("CreateWithCoupons", mock.AnythingOfType("*models.Order"), []string{"coupon-1"}).
		Return(nil).Once()

	_, err := f.service.PlaceOrder(context.Background(), "user-1", req)

	assert.NoError(t, err)
	f.orderRepo.AssertExpectations(t)
	f.couponRepo.AssertExpectations(t)
}

func TestPlaceOrder_RejectsUnknownPaymentMethod(t *testing.T) {
	f := newCheckoutFixture(nil)

	result, err := f.service.PlaceOrder(context.Background(), "user-1", validCheckoutRequest("Barter"))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, services.ErrInvalidPaymentMethod)
}

func TestPlaceOrder_RejectsForeignAddress(t *testing.T) {
	f := newCheckoutFixture(nil)

	f.addressRepo.On("GetByID", "addr-1").
		Return(&models.Address{ID: "addr-1", UserID: "someone-else"}, nil).Once()

	result, err := f.service.PlaceOrder(context.Background(), "user-1", validCheckoutRequest(models.PaymentMethodCOD))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, services.ErrAddressNotFound)
}
