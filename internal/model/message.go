package model

import (
	"time"

	"github.com/google/uuid"
)

// Message is one row of a two-party conversation log. ConversationID is
// derived from the participant pair, never stored independently.
type Message struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ConversationID string    `db:"conversation_id" json:"conversation_id"`
	SenderID       uuid.UUID `db:"sender_id" json:"sender_id"`
	ReceiverID     uuid.UUID `db:"receiver_id" json:"receiver_id"`
	Content        string    `db:"content" json:"content"`
	Read           bool      `db:"read" json:"read"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type SendMessageRequest struct {
	ReceiverID uuid.UUID `json:"receiver_id" binding:"required"`
	Content    string    `json:"content" binding:"required,max=5000"`
}

// ConversationSummary is one entry of the caller's conversation list.
type ConversationSummary struct {
	ConversationID string    `db:"conversation_id" json:"conversation_id"`
	PeerID         uuid.UUID `db:"peer_id" json:"peer_id"`
	LastContent    string    `db:"last_content" json:"last_content"`
	LastSenderID   uuid.UUID `db:"last_sender_id" json:"last_sender_id"`
	LastAt         time.Time `db:"last_at" json:"last_at"`
	UnreadCount    int       `db:"unread_count" json:"unread_count"`
}

// MessageFilters page through one conversation.
type MessageFilters struct {
	ConversationID string
	Page           int
	PageSize       int
}
