package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pasarhub/internal/models"
	"pasarhub/internal/repositories"
	"pasarhub/pkg/rabbitmq"
	"pasarhub/pkg/storage"
)

// attachmentRule is the upload policy for one message kind.
type attachmentRule struct {
	maxBytes     int64
	allowedMIMEs map[string]bool
}

var attachmentRules = map[string]attachmentRule{
	models.MessageKindImage: {
		maxBytes: 5 << 20,
		allowedMIMEs: map[string]bool{
			"image/jpeg": true,
			"image/png":  true,
			"image/webp": true,
		},
	},
	models.MessageKindFile: {
		maxBytes: 10 << 20,
		allowedMIMEs: map[string]bool{
			"image/jpeg":      true,
			"image/png":       true,
			"application/pdf": true,
			"video/mp4":       true,
		},
	},
	models.MessageKindVideo: {
		maxBytes: 50 << 20,
		allowedMIMEs: map[string]bool{
			"video/mp4":        true,
			"video/quicktime":  true,
			"video/webm":       true,
			"video/x-matroska": true,
		},
	},
}

// vendorSchedule is the outcome of checking a vendor's working hours.
type vendorSchedule int

const (
	scheduleInHours vendorSchedule = iota
	scheduleOffHours
	// The vendor configured no window for today. Treated as off-hours;
	// this used to be an implicit fallthrough to in-hours upstream and
	// is now an explicit case.
	scheduleNoHours
)

// MessagingService implements the buyer-vendor conversation flows.
type MessagingService struct {
	convRepo    repositories.ConversationRepository
	productRepo repositories.ProductRepository
	store       storage.BlobStore
	mqClient    *rabbitmq.Client
	now         func() time.Time
}

// NewMessagingService creates a new MessagingService. store and
// mqClient may be nil, disabling attachments and event publishing.
func NewMessagingService(
	convRepo repositories.ConversationRepository,
	productRepo repositories.ProductRepository,
	store storage.BlobStore,
	mqClient *rabbitmq.Client,
) *MessagingService {
	return &MessagingService{
		convRepo:    convRepo,
		productRepo: productRepo,
		store:       store,
		mqClient:    mqClient,
		now:         time.Now,
	}
}

// SendResult bundles the buyer's message with the auto-reply, when one
// was produced.
type SendResult struct {
	Message   *models.Message `json:"message"`
	AutoReply *models.Message `json:"autoReply,omitempty"`
}

// GetOrCreateConversation returns the caller's conversation with the
// vendor, creating it lazily on first contact.
func (s *MessagingService) GetOrCreateConversation(userID, vendorID string) (*models.Conversation, error) {
	exists, err := s.convRepo.VendorExists(vendorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("vendor %s: %w", vendorID, ErrVendorNotFound)
	}
	conversation, _, err := s.convRepo.GetOrCreate(userID, vendorID)
	return conversation, err
}

// SendText creates a text message. When it is the first message of the
// conversation, the vendor's auto-reply is evaluated against their
// working hours and, if configured, a second message attributed to the
// vendor is created and returned alongside.
func (s *MessagingService) SendText(userID, conversationID, body string) (*SendResult, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyMessage
	}
	conversation, err := s.ownedConversation(conversationID, userID)
	if err != nil {
		return nil, err
	}

	// The message count BEFORE this send decides auto-reply
	// eligibility: only the very first message triggers it.
	priorCount, err := s.convRepo.CountMessages(conversationID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderUserID:   &userID,
		Kind:           models.MessageKindText,
		Body:           body,
	}
	if err := s.convRepo.CreateMessage(message); err != nil {
		return nil, err
	}
	s.publishMessageCreated(conversation, message)

	result := &SendResult{Message: message}
	if priorCount == 0 {
		if reply := s.maybeAutoReply(conversation); reply != nil {
			result.AutoReply = reply
		}
	}
	return result, nil
}

// SendAttachment uploads the payload to the object store and creates an
// image/file/video message referencing it. The per-kind size ceiling
// and MIME allow-list are enforced before anything is stored.
func (s *MessagingService) SendAttachment(ctx context.Context, userID, conversationID, kind, filename, contentType string, size int64, r io.Reader) (*SendResult, error) {
	rule, ok := attachmentRules[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown message kind %q", ErrUnsupportedMediaType, kind)
	}
	if size > rule.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes over the %d limit for %s", ErrAttachmentTooLarge, size, rule.maxBytes, kind)
	}
	if !rule.allowedMIMEs[contentType] {
		return nil, fmt.Errorf("%w: %s not allowed for %s", ErrUnsupportedMediaType, contentType, kind)
	}

	conversation, err := s.ownedConversation(conversationID, userID)
	if err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, fmt.Errorf("attachment storage is not configured")
	}

	// The filename comes straight from the multipart header; keep only
	// its base so path segments in it cannot steer the object key.
	key := fmt.Sprintf("messages/%s/%s-%s", conversationID, uuid.New().String(), filepath.Base(filename))
	url, err := s.store.Save(ctx, key, io.LimitReader(r, rule.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}

	message := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderUserID:   &userID,
		Kind:           kind,
		AttachmentURL:  &url,
	}
	if err := s.convRepo.CreateMessage(message); err != nil {
		return nil, err
	}
	s.publishMessageCreated(conversation, message)
	return &SendResult{Message: message}, nil
}

// SendProduct creates a product-share message.
func (s *MessagingService) SendProduct(userID, conversationID, productID string) (*SendResult, error) {
	conversation, err := s.ownedConversation(conversationID, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.productRepo.GetByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", productID, ErrProductNotFound)
		}
		return nil, err
	}

	message := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderUserID:   &userID,
		Kind:           models.MessageKindProduct,
		ProductID:      &productID,
	}
	if err := s.convRepo.CreateMessage(message); err != nil {
		return nil, err
	}
	s.publishMessageCreated(conversation, message)
	return &SendResult{Message: message}, nil
}

// MarkSeen records that the caller has seen a message. Idempotent: the
// receipt is written at most once per (message, caller) pair.
func (s *MessagingService) MarkSeen(userID, messageID string) error {
	message, err := s.convRepo.GetMessageByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("message %s: %w", messageID, ErrMessageNotFound)
		}
		return err
	}
	if _, err := s.ownedConversation(message.ConversationID, userID); err != nil {
		return err
	}
	_, err = s.convRepo.MarkSeen(messageID, userID, s.now())
	return err
}

// SetConversationFlag flips pin/mute/unread on a conversation the
// caller owns.
func (s *MessagingService) SetConversationFlag(userID, conversationID, flag string, value bool) error {
	if _, err := s.ownedConversation(conversationID, userID); err != nil {
		return err
	}
	return s.convRepo.SetFlag(conversationID, flag, value)
}

// ownedConversation loads the conversation and verifies the caller is
// its buyer side.
func (s *MessagingService) ownedConversation(conversationID, userID string) (*models.Conversation, error) {
	conversation, err := s.convRepo.GetByID(conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("conversation %s: %w", conversationID, ErrConversationNotFound)
		}
		return nil, err
	}
	if conversation.UserID != userID {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, ErrNotConversationOwner)
	}
	return conversation, nil
}

// maybeAutoReply evaluates the vendor's automated response and, when a
// message resolves, creates the vendor-attributed reply. In-hours
// sends the default message; off-hours and days without configured
// hours send the off-work message. Vendors without a configuration
// never auto-reply. Failures only log; the buyer's send already
// succeeded.
func (s *MessagingService) maybeAutoReply(conversation *models.Conversation) *models.Message {
	ar, err := s.convRepo.GetAutomatedResponse(conversation.VendorID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Auto-reply lookup failed for vendor %s: %v", conversation.VendorID, err)
		}
		return nil
	}

	var body string
	switch evaluateSchedule(ar.WorkingHours, s.now()) {
	case scheduleInHours:
		body = ar.DefaultMessage
	case scheduleOffHours, scheduleNoHours:
		body = ar.OffWorkMessage
	}
	if strings.TrimSpace(body) == "" {
		return nil
	}

	vendorID := conversation.VendorID
	reply := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversation.ID,
		SenderVendorID: &vendorID,
		Kind:           models.MessageKindText,
		Body:           body,
		IsAutoReply:    true,
	}
	if err := s.convRepo.CreateMessage(reply); err != nil {
		log.Printf("Failed to create auto-reply in conversation %s: %v", conversation.ID, err)
		return nil
	}
	s.publishMessageCreated(conversation, reply)
	return reply
}

// evaluateSchedule resolves today's working window against now.
func evaluateSchedule(hours map[string]models.WorkingWindow, now time.Time) vendorSchedule {
	window, ok := hours[strings.ToLower(now.Weekday().String())]
	if !ok {
		return scheduleNoHours
	}
	start, okStart := parseHHMM(window.Start)
	end, okEnd := parseHHMM(window.End)
	if !okStart || !okEnd {
		return scheduleNoHours
	}
	current := now.Hour()*100 + now.Minute()
	if current >= start && current <= end {
		return scheduleInHours
	}
	return scheduleOffHours
}

// parseHHMM converts an "HH:MM" string to an HHMM integer.
func parseHHMM(v string) (int, bool) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, false
	}
	return t.Hour()*100 + t.Minute(), true
}

func (s *MessagingService) publishMessageCreated(conversation *models.Conversation, message *models.Message) {
	if s.mqClient == nil {
		return
	}
	err := s.mqClient.PublishEvent("message.created", map[string]interface{}{
		"conversationId": conversation.ID,
		"messageId":      message.ID,
		"userId":         conversation.UserID,
		"vendorId":       conversation.VendorID,
		"kind":           message.Kind,
		"isAutoReply":    message.IsAutoReply,
	})
	if err != nil {
		log.Printf("Warning: failed to publish message created event for %s: %v", message.ID, err)
	}
}
