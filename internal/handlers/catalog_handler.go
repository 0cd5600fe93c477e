package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"pasarhub/internal/repositories"
	"pasarhub/internal/services"
)

// CatalogHandler handles product browsing: detail pages, search, and
// server-side cart quotes.
type CatalogHandler struct {
	catalogService *services.CatalogService
	cartService    *services.CartService
	validate       *validator.Validate
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService *services.CatalogService, cartService *services.CartService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		cartService:    cartService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the catalog routes with the Fiber app.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/product/:slug", h.HandleGetProduct)
	router.Post("/search", h.HandleSearch)
	router.Post("/cart/summary", h.HandleQuoteCart)
}

// HandleGetProduct returns an approved product's detail and counts the
// view once per (product, IP).
func (h *CatalogHandler) HandleGetProduct(c *fiber.Ctx) error {
	slug := c.Params("slug")
	product, err := h.catalogService.GetProductBySlug(c.Context(), slug, c.IP())
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Product %s not found", slug),
			})
		}
		log.Printf("Error getting product %s: %v", slug, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve product",
			"error":   err.Error(),
		})
	}
	return c.JSON(product)
}

// HandleSearch executes the catalog filter over approved products.
func (h *CatalogHandler) HandleSearch(c *fiber.Ctx) error {
	var filter repositories.ProductFilter
	if err := c.BodyParser(&filter); err != nil {
		log.Printf("Error parsing search filter: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid search filter",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(filter); err != nil {
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

	products, err := h.catalogService.Search(filter)
	if err != nil {
		log.Printf("Error searching products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not search products",
			"error":   err.Error(),
		})
	}
	return c.JSON(products)
}

// HandleQuoteCart prices the submitted cart server-side.
func (h *CatalogHandler) HandleQuoteCart(c *fiber.Ctx) error {
	var req services.QuoteRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing cart quote request: %v", err)
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

	quote, err := h.cartService.QuoteCart(&req)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "One or more products no longer exist",
				"code":    "PRODUCT_NOT_FOUND",
			})
		}
		log.Printf("Error quoting cart: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not quote cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(quote)
}
