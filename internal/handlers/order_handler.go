package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"pasarhub/internal/middleware"
	"pasarhub/internal/models"
	"pasarhub/internal/repositories"
	"pasarhub/internal/services"
)

// OrderHandler handles HTTP requests for checkout and order history.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
}

// HandleCreateOrder runs checkout for the authenticated caller.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req models.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing checkout request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"code":    "VALIDATION_FAILED",
			"errors":  errorMessages,
		})
	}

	userID := middleware.UserID(c)
	result, err := h.service.PlaceOrder(c.Context(), userID, &req)
	if err != nil {
		log.Printf("Error placing order for user %s: %v", userID, err)
		switch {
		case errors.Is(err, services.ErrInvalidPaymentMethod):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Unsupported payment method",
				"code":    "INVALID_PAYMENT_METHOD",
			})
		case errors.Is(err, services.ErrAddressNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Shipping address not found",
				"code":    "ADDRESS_NOT_FOUND",
			})
		case errors.Is(err, services.ErrProductNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "One or more products no longer exist",
				"code":    "PRODUCT_NOT_FOUND",
			})
		case errors.Is(err, repositories.ErrCouponExhausted):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "A redeemed coupon is out of stock",
				"code":    "COUPON_EXHAUSTED",
			})
		case errors.Is(err, services.ErrGatewayFailure):
			// The order is committed and marked Failed; surface the
			// failure so the client can retry payment.
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Payment gateway error",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not place order",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message":     "Order placed successfully",
		"orderId":     result.OrderID,
		"orderNumber": result.OrderNumber,
		"invoiceUrl":  result.InvoiceURL,
	})
}

// HandleGetOrders retrieves the caller's order history.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	orders, err := h.service.GetOrdersByUser(userID)
	if err != nil {
		log.Printf("Error getting orders for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves one of the caller's orders.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.GetOrderForUser(orderID, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Order with ID %s not found", orderID),
			})
		}
		log.Printf("Error getting order by ID %s: %v", orderID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve order",
			"error":   err.Error(),
		})
	}
	return c.JSON(order)
}
