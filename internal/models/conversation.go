package models

import (
	"time"

	"gorm.io/gorm"
)

// Message content kinds.
const (
	MessageKindText    = "text"
	MessageKindImage   = "image"
	MessageKindFile    = "file"
	MessageKindVideo   = "video"
	MessageKindProduct = "product"
)

// Conversation is the buyer-vendor messaging thread. There is at most
// one per (user, vendor) pair, enforced by the composite unique index.
type Conversation struct {
	ID            string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string     `json:"user_id" gorm:"uniqueIndex:idx_conversation_pair;type:varchar(36)"`
	VendorID      string     `json:"vendor_id" gorm:"uniqueIndex:idx_conversation_pair;type:varchar(36)"`
	IsPinned      bool       `json:"is_pinned"`
	IsMuted       bool       `json:"is_muted"`
	IsUnread      bool       `json:"is_unread"`
	LastMessageAt *time.Time `json:"last_message_at"`

	Messages []Message `json:"messages,omitempty" gorm:"foreignKey:ConversationID"`

	gorm.Model
}

// ParticipantConversation links a participant (user or vendor side) to
// a conversation. Exactly one of UserID/VendorID is set.
type ParticipantConversation struct {
	ID             string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ConversationID string  `json:"conversation_id" gorm:"index;type:varchar(36)"`
	UserID         *string `json:"user_id" gorm:"type:varchar(36)"`
	VendorID       *string `json:"vendor_id" gorm:"type:varchar(36)"`
}

// Message belongs to a conversation. The sender is a user XOR a vendor.
// Kind selects the payload: Body for text, AttachmentURL for
// image/file/video, ProductID for product shares. Immutable once
// created except for the seen-tracking fields.
type Message struct {
	ID             string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ConversationID string  `json:"conversation_id" gorm:"index;type:varchar(36)"`
	SenderUserID   *string `json:"sender_user_id" gorm:"type:varchar(36)"`
	SenderVendorID *string `json:"sender_vendor_id" gorm:"type:varchar(36)"`
	Kind           string  `json:"kind" gorm:"default:'text'"`
	Body           string  `json:"body" gorm:"type:text"`
	AttachmentURL  *string `json:"attachment_url"`
	ProductID      *string `json:"product_id" gorm:"type:varchar(36)"`
	IsAutoReply    bool    `json:"is_auto_reply"`

	SeenAt *time.Time    `json:"seen_at"`
	SeenBy []MessageSeen `json:"seen_by,omitempty" gorm:"foreignKey:MessageID"`

	CreatedAt time.Time `json:"created_at"`
}

// MessageSeen is one read receipt. The composite unique index makes
// repeated seen calls for the same (message, viewer) pair a no-op.
type MessageSeen struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	MessageID string    `json:"message_id" gorm:"uniqueIndex:idx_message_seen_viewer;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex:idx_message_seen_viewer;type:varchar(36)"`
	SeenAt    time.Time `json:"seen_at"`
}

// WorkingWindow is one day's configured hours in "HH:MM" 24h strings.
type WorkingWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AutomatedResponse is a vendor's auto-reply configuration. WorkingHours
// maps lowercase weekday names ("monday", ...) to that day's window; a
// day with no entry is treated as off-hours.
type AutomatedResponse struct {
	ID             string                   `json:"id" gorm:"primaryKey;type:varchar(36)"`
	VendorID       string                   `json:"vendor_id" gorm:"uniqueIndex;type:varchar(36)"`
	WorkingHours   map[string]WorkingWindow `json:"working_hours" gorm:"type:text;serializer:json"`
	DefaultMessage string                   `json:"default_message" gorm:"type:text"`
	OffWorkMessage string                   `json:"off_work_message" gorm:"type:text"`
}
