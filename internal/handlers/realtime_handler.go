package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"pasarhub/internal/middleware"
	"pasarhub/internal/services"
	"pasarhub/pkg/realtime"
)

// RealtimeHandler authorizes pub/sub channel subscriptions so message
// events can be pushed to connected clients.
type RealtimeHandler struct {
	authorizer  *realtime.Authorizer
	authService *services.AuthService
}

// NewRealtimeHandler creates a new RealtimeHandler.
func NewRealtimeHandler(authorizer *realtime.Authorizer, authService *services.AuthService) *RealtimeHandler {
	return &RealtimeHandler{
		authorizer:  authorizer,
		authService: authService,
	}
}

// RegisterRoutes registers the channel-auth route. The pub/sub client
// library POSTs here with a form-encoded body.
func (h *RealtimeHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/pusher", h.HandleChannelAuth)
}

// HandleChannelAuth verifies the caller's session, resolves their
// internal user id, and signs the subscription when the channel is
// theirs.
func (h *RealtimeHandler) HandleChannelAuth(c *fiber.Ctx) error {
	socketID := c.FormValue("socket_id")
	channelName := c.FormValue("channel_name")
	if socketID == "" || channelName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "socket_id and channel_name are required",
		})
	}

	userID := middleware.UserID(c)
	if _, err := h.authService.GetProfile(userID); err != nil {
		if errors.Is(err, services.ErrCustomerNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Customer not found",
				"code":    "CUSTOMER_NOT_FOUND",
			})
		}
		log.Printf("Error resolving user %s for channel auth: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not authorize channel",
			"error":   err.Error(),
		})
	}

	if !h.authorizer.CanSubscribe(channelName, userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Channel not allowed",
		})
	}

	response, err := h.authorizer.Authorize(socketID, channelName)
	if err != nil {
		log.Printf("Channel auth signing failed for socket %s: %v", socketID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not authorize channel",
		})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(response)
}
