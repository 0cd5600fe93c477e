package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"pasarhub/internal/middleware"
	"pasarhub/internal/models"
	"pasarhub/internal/services"
)

// AddressHandler handles HTTP requests for the customer's addresses.
type AddressHandler struct {
	service  *services.AddressService
	validate *validator.Validate
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(service *services.AddressService) *AddressHandler {
	return &AddressHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the address routes with the Fiber app.
func (h *AddressHandler) RegisterRoutes(router fiber.Router) {
	addressRoutes := router.Group("/customer/addresses")
	addressRoutes.Get("/", h.HandleListAddresses)
	addressRoutes.Post("/", h.HandleCreateAddress)
	addressRoutes.Put("/:id", h.HandleUpdateAddress)
	addressRoutes.Delete("/:id", h.HandleDeleteAddress)
	addressRoutes.Post("/:id/default", h.HandleSetDefault)
}

// HandleListAddresses returns the caller's addresses.
func (h *AddressHandler) HandleListAddresses(c *fiber.Ctx) error {
	addresses, err := h.service.ListAddresses(middleware.UserID(c))
	if err != nil {
		log.Printf("Error listing addresses: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve addresses",
			"error":   err.Error(),
		})
	}
	return c.JSON(addresses)
}

// HandleCreateAddress creates an address for the caller.
func (h *AddressHandler) HandleCreateAddress(c *fiber.Ctx) error {
	address, ok := h.parseAddress(c)
	if !ok {
		return nil
	}
	if err := h.service.CreateAddress(middleware.UserID(c), address); err != nil {
		log.Printf("Error creating address: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create address",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(address)
}

// HandleUpdateAddress updates an address the caller owns.
func (h *AddressHandler) HandleUpdateAddress(c *fiber.Ctx) error {
	address, ok := h.parseAddress(c)
	if !ok {
		return nil
	}
	address.ID = c.Params("id")
	err := h.service.UpdateAddress(middleware.UserID(c), address)
	if err != nil {
		return h.mapAddressError(c, err, "update")
	}
	return c.JSON(address)
}

// HandleDeleteAddress removes an address the caller owns.
func (h *AddressHandler) HandleDeleteAddress(c *fiber.Ctx) error {
	err := h.service.DeleteAddress(middleware.UserID(c), c.Params("id"))
	if err != nil {
		return h.mapAddressError(c, err, "delete")
	}
	return c.JSON(fiber.Map{
		"message": "Address deleted",
	})
}

// HandleSetDefault makes an address the caller's default.
func (h *AddressHandler) HandleSetDefault(c *fiber.Ctx) error {
	err := h.service.SetDefaultAddress(middleware.UserID(c), c.Params("id"))
	if err != nil {
		return h.mapAddressError(c, err, "set default on")
	}
	return c.JSON(fiber.Map{
		"message": "Default address updated",
	})
}

func (h *AddressHandler) parseAddress(c *fiber.Ctx) (*models.Address, bool) {
	var address models.Address
	if err := c.BodyParser(&address); err != nil {
		log.Printf("Error parsing address body: %v", err)
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return nil, false
	}
	if err := h.validate.StructExcept(address, "ID", "UserID"); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"code":    "VALIDATION_FAILED",
			"errors":  errorMessages,
		})
		return nil, false
	}
	return &address, true
}

func (h *AddressHandler) mapAddressError(c *fiber.Ctx, err error, action string) error {
	if errors.Is(err, services.ErrAddressNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Address not found",
		})
	}
	log.Printf("Error trying to %s address: %v", action, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": fmt.Sprintf("Could not %s address", action),
		"error":   err.Error(),
	})
}
