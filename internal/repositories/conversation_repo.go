package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pasarhub/internal/models"
)

// ConversationRepository defines the interface for messaging data access.
type ConversationRepository interface {
	// GetOrCreate returns the (user, vendor) conversation, creating it
	// together with its two participant rows on first contact. The
	// bool reports whether a new conversation was created.
	GetOrCreate(userID, vendorID string) (*models.Conversation, bool, error)
	GetByID(id string) (*models.Conversation, error)
	CountMessages(conversationID string) (int64, error)
	CreateMessage(message *models.Message) error
	GetMessageByID(id string) (*models.Message, error)
	// MarkSeen records a read receipt, at most once per (message,
	// viewer) pair. The bool reports whether a new receipt was written.
	MarkSeen(messageID, userID string, at time.Time) (bool, error)
	SetFlag(conversationID, flag string, value bool) error
	GetAutomatedResponse(vendorID string) (*models.AutomatedResponse, error)
	VendorExists(vendorID string) (bool, error)
}

// Conversation flags toggled by the pin/mute/read endpoints.
const (
	FlagPinned = "is_pinned"
	FlagMuted  = "is_muted"
	FlagUnread = "is_unread"
)

// GORMConversationRepository is a GORM implementation of ConversationRepository.
type GORMConversationRepository struct {
	db *gorm.DB
}

// NewGORMConversationRepository creates a new instance of GORMConversationRepository.
func NewGORMConversationRepository(db *gorm.DB) *GORMConversationRepository {
	return &GORMConversationRepository{
		db: db,
	}
}

// GetOrCreate looks the conversation up by the (user, vendor) pair and
// lazily creates it with both participant rows when absent.
func (r *GORMConversationRepository) GetOrCreate(userID, vendorID string) (*models.Conversation, bool, error) {
	conversation, err := r.lookup(userID, vendorID)
	if err == nil {
		return conversation, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	return r.createOrRecover(userID, vendorID)
}

func (r *GORMConversationRepository) lookup(userID, vendorID string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Preload("Messages.SeenBy").
		Where("user_id = ? AND vendor_id = ?", userID, vendorID).
		First(&conversation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to look up conversation: %w", err)
	}
	return &conversation, nil
}

// createOrRecover inserts the conversation, falling back to a fresh
// lookup when the insert loses to a concurrent first contact. The
// unique index on (user_id, vendor_id) guarantees the loser's insert
// fails, so the retried lookup returns the winner's row.
func (r *GORMConversationRepository) createOrRecover(userID, vendorID string) (*models.Conversation, bool, error) {
	conversation := models.Conversation{
		ID:       uuid.New().String(),
		UserID:   userID,
		VendorID: vendorID,
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&conversation).Error; err != nil {
			return fmt.Errorf("failed to create conversation: %w", err)
		}
		participants := []models.ParticipantConversation{
			{ID: uuid.New().String(), ConversationID: conversation.ID, UserID: &userID},
			{ID: uuid.New().String(), ConversationID: conversation.ID, VendorID: &vendorID},
		}
		if err := tx.Create(&participants).Error; err != nil {
			return fmt.Errorf("failed to create conversation participants: %w", err)
		}
		return nil
	})
	if err != nil {
		existing, lookupErr := r.lookup(userID, vendorID)
		if lookupErr == nil {
			return existing, false, nil
		}
		return nil, false, err
	}
	return &conversation, true, nil
}

// GetByID retrieves a conversation with its ordered message history.
func (r *GORMConversationRepository) GetByID(id string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Preload("Messages.SeenBy").
		First(&conversation, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("conversation with ID %s: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get conversation by ID %s: %w", id, err)
	}
	return &conversation, nil
}

// CountMessages counts the messages already in a conversation.
func (r *GORMConversationRepository) CountMessages(conversationID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count messages for conversation %s: %w", conversationID, err)
	}
	return count, nil
}

// CreateMessage inserts the message and touches the conversation's
// last-message timestamp in one transaction.
func (r *GORMConversationRepository) CreateMessage(message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		err := tx.Model(&models.Conversation{}).
			Where("id = ?", message.ConversationID).
			Updates(map[string]interface{}{
				"last_message_at": message.CreatedAt,
				"is_unread":       true,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to touch conversation %s: %w", message.ConversationID, err)
		}
		return nil
	})
}

// GetMessageByID retrieves a single message.
func (r *GORMConversationRepository) GetMessageByID(id string) (*models.Message, error) {
	var message models.Message
	if err := r.db.Preload("SeenBy").First(&message, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("message with ID %s: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get message by ID %s: %w", id, err)
	}
	return &message, nil
}

// MarkSeen writes the read receipt idempotently: the receipt row is
// created only once per (message, viewer) pair, and SeenAt on the
// message is set on the first receipt only.
func (r *GORMConversationRepository) MarkSeen(messageID, userID string, at time.Time) (bool, error) {
	receipt := models.MessageSeen{
		ID:        uuid.New().String(),
		MessageID: messageID,
		UserID:    userID,
		SeenAt:    at,
	}
	var created bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where(models.MessageSeen{MessageID: messageID, UserID: userID}).
			FirstOrCreate(&receipt)
		if res.Error != nil {
			return fmt.Errorf("failed to record seen receipt: %w", res.Error)
		}
		created = res.RowsAffected > 0
		if !created {
			return nil
		}
		err := tx.Model(&models.Message{}).
			Where("id = ? AND seen_at IS NULL", messageID).
			UpdateColumn("seen_at", at).Error
		if err != nil {
			return fmt.Errorf("failed to set seen_at on message %s: %w", messageID, err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// SetFlag flips one of the pin/mute/read booleans on the conversation.
func (r *GORMConversationRepository) SetFlag(conversationID, flag string, value bool) error {
	switch flag {
	case FlagPinned, FlagMuted, FlagUnread:
	default:
		return fmt.Errorf("unknown conversation flag %q", flag)
	}
	res := r.db.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		UpdateColumn(flag, value)
	if res.Error != nil {
		return fmt.Errorf("failed to set %s on conversation %s: %w", flag, conversationID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("conversation with ID %s: %w", conversationID, gorm.ErrRecordNotFound)
	}
	return nil
}

// GetAutomatedResponse fetches a vendor's auto-reply configuration.
// Vendors without one have auto-reply disabled.
func (r *GORMConversationRepository) GetAutomatedResponse(vendorID string) (*models.AutomatedResponse, error) {
	var ar models.AutomatedResponse
	if err := r.db.First(&ar, "vendor_id = ?", vendorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("automated response for vendor %s: %w", vendorID, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get automated response for vendor %s: %w", vendorID, err)
	}
	return &ar, nil
}

// VendorExists reports whether the vendor id refers to a live vendor.
func (r *GORMConversationRepository) VendorExists(vendorID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Vendor{}).Where("id = ?", vendorID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check vendor %s: %w", vendorID, err)
	}
	return count > 0, nil
}
