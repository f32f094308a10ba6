package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/servipro/marketplace-api/internal/model"
)

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, sender_id, receiver_id, content, read, created_at)
		VALUES ($1, $2, $3, $4, $5, false, $6)
	`
	message.ID = uuid.New()
	message.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		message.ID, message.ConversationID, message.SenderID,
		message.ReceiverID, message.Content, message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *messageRepository) ListConversation(ctx context.Context, filters *model.MessageFilters) ([]*model.Message, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = $1`,
		filters.ConversationID); err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	query := `
		SELECT id, conversation_id, sender_id, receiver_id, content, read, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`
	var messages []*model.Message
	err := r.db.SelectContext(ctx, &messages, query,
		filters.ConversationID, filters.PageSize, (filters.Page-1)*filters.PageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, total, nil
}

func (r *messageRepository) ListConversations(ctx context.Context, userID uuid.UUID) ([]*model.ConversationSummary, error) {
	// One row per conversation: the latest message plus the caller's unread count.
	query := `
		SELECT DISTINCT ON (m.conversation_id)
			m.conversation_id,
			CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END AS peer_id,
			m.content AS last_content,
			m.sender_id AS last_sender_id,
			m.created_at AS last_at,
			(SELECT COUNT(*) FROM messages u
			 WHERE u.conversation_id = m.conversation_id
			   AND u.receiver_id = $1 AND u.read = false) AS unread_count
		FROM messages m
		WHERE m.sender_id = $1 OR m.receiver_id = $1
		ORDER BY m.conversation_id, m.created_at DESC
	`
	var summaries []*model.ConversationSummary
	if err := r.db.SelectContext(ctx, &summaries, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return summaries, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, conversationID string, receiverID uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE messages SET read = true
		 WHERE conversation_id = $1 AND receiver_id = $2 AND read = false`,
		conversationID, receiverID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
