package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"pasarhub/internal/middleware"
	"pasarhub/internal/models"
	"pasarhub/internal/repositories"
	"pasarhub/internal/services"
)

// MessagingHandler handles HTTP requests for buyer-vendor messaging.
type MessagingHandler struct {
	service *services.MessagingService
}

// NewMessagingHandler creates a new MessagingHandler.
func NewMessagingHandler(service *services.MessagingService) *MessagingHandler {
	return &MessagingHandler{
		service: service,
	}
}

// RegisterRoutes registers the messaging routes with the Fiber app.
func (h *MessagingHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/vendor/conversations/get-or-create", h.HandleGetOrCreateConversation)
	router.Post("/vendor/conversations/pin", h.flagHandler(repositories.FlagPinned))
	router.Post("/vendor/conversations/mute", h.flagHandler(repositories.FlagMuted))
	router.Post("/vendor/conversations/read", h.flagHandler(repositories.FlagUnread))

	router.Post("/vendor/messages/send-text", h.HandleSendText)
	router.Post("/vendor/messages/send-image", h.attachmentHandler(models.MessageKindImage))
	router.Post("/vendor/messages/send-file", h.attachmentHandler(models.MessageKindFile))
	router.Post("/vendor/messages/send-video", h.attachmentHandler(models.MessageKindVideo))
	router.Post("/vendor/messages/send-product", h.HandleSendProduct)

	router.Post("/messages/seen", h.HandleMarkSeen)
}

// HandleGetOrCreateConversation returns the caller's conversation with
// the seller, creating it on first contact.
func (h *MessagingHandler) HandleGetOrCreateConversation(c *fiber.Ctx) error {
	sellerID := c.Query("sellerId")
	if sellerID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "sellerId query parameter is required",
		})
	}

	conversation, err := h.service.GetOrCreateConversation(middleware.UserID(c), sellerID)
	if err != nil {
		if errors.Is(err, services.ErrVendorNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Seller not found",
			})
		}
		log.Printf("Error getting conversation with seller %s: %v", sellerID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not load conversation",
			"error":   err.Error(),
		})
	}
	return c.JSON(conversation)
}

// HandleSendText creates a text message, returning the auto-reply too
// when this was the conversation's first message.
func (h *MessagingHandler) HandleSendText(c *fiber.Ctx) error {
	var req struct {
		ConversationID string `json:"conversationId"`
		Body           string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.ConversationID == "" || req.Body == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "conversationId and body are required",
		})
	}

	result, err := h.service.SendText(middleware.UserID(c), req.ConversationID, req.Body)
	if err != nil {
		return h.mapMessagingError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// attachmentHandler builds the multipart upload handler for one
// message kind.
func (h *MessagingHandler) attachmentHandler(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		conversationID := c.FormValue("conversationId")
		if conversationID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "conversationId form field is required",
			})
		}

		header, err := c.FormFile("file")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "file form field is required",
				"error":   err.Error(),
			})
		}

		file, err := header.Open()
		if err != nil {
			log.Printf("Error opening uploaded file: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not read upload",
				"error":   err.Error(),
			})
		}
		defer file.Close()

		result, err := h.service.SendAttachment(
			c.Context(),
			middleware.UserID(c),
			conversationID,
			kind,
			header.Filename,
			header.Header.Get("Content-Type"),
			header.Size,
			file,
		)
		if err != nil {
			return h.mapMessagingError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(result)
	}
}

// HandleSendProduct creates a product-share message.
func (h *MessagingHandler) HandleSendProduct(c *fiber.Ctx) error {
	var req struct {
		ConversationID string `json:"conversationId"`
		ProductID      string `json:"productId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.ConversationID == "" || req.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "conversationId and productId are required",
		})
	}

	result, err := h.service.SendProduct(middleware.UserID(c), req.ConversationID, req.ProductID)
	if err != nil {
		return h.mapMessagingError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandleMarkSeen records a read receipt for the caller.
func (h *MessagingHandler) HandleMarkSeen(c *fiber.Ctx) error {
	var req struct {
		MessageID string `json:"messageId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.MessageID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "messageId is required",
		})
	}

	if err := h.service.MarkSeen(middleware.UserID(c), req.MessageID); err != nil {
		return h.mapMessagingError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Seen recorded",
	})
}

// flagHandler builds the pin/mute/read toggle handler for one flag.
func (h *MessagingHandler) flagHandler(flag string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			ConversationID string `json:"conversationId"`
			Value          bool   `json:"value"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid request body",
				"error":   err.Error(),
			})
		}
		if req.ConversationID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "conversationId is required",
			})
		}

		err := h.service.SetConversationFlag(middleware.UserID(c), req.ConversationID, flag, req.Value)
		if err != nil {
			return h.mapMessagingError(c, err)
		}
		return c.JSON(fiber.Map{
			"message": "Conversation updated",
		})
	}
}

func (h *MessagingHandler) mapMessagingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrConversationNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Conversation not found",
		})
	case errors.Is(err, services.ErrMessageNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Message not found",
		})
	case errors.Is(err, services.ErrNotConversationOwner):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Conversation does not belong to you",
		})
	case errors.Is(err, services.ErrProductNotFound):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Product not found",
			"code":    "PRODUCT_NOT_FOUND",
		})
	case errors.Is(err, services.ErrEmptyMessage):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Message body is empty",
		})
	case errors.Is(err, services.ErrAttachmentTooLarge):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Attachment exceeds the size limit",
			"code":    "ATTACHMENT_TOO_LARGE",
		})
	case errors.Is(err, services.ErrUnsupportedMediaType):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Attachment media type is not allowed",
			"code":    "UNSUPPORTED_MEDIA_TYPE",
		})
	}
	log.Printf("Messaging error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Messaging operation failed",
		"error":   err.Error(),
	})
}
