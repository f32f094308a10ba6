package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/servipro/marketplace-api/internal/model"
)

type messageRepository struct {
	store *Store
}

func (r *messageRepository) Create(_ context.Context, message *model.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	message.ID = uuid.New()
	message.CreatedAt = time.Now()
	message.Read = false

	clone := *message
	r.store.messages = append(r.store.messages, &clone)
	return nil
}

func (r *messageRepository) ListConversation(_ context.Context, filters *model.MessageFilters) ([]*model.Message, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*model.Message
	for _, message := range r.store.messages {
		if message.ConversationID != filters.ConversationID {
			continue
		}
		clone := *message
		matched = append(matched, &clone)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	return paginate(matched, filters.Page, filters.PageSize), total, nil
}

func (r *messageRepository) ListConversations(_ context.Context, userID uuid.UUID) ([]*model.ConversationSummary, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	byConversation := make(map[string]*model.ConversationSummary)
	for _, message := range r.store.messages {
		if message.SenderID != userID && message.ReceiverID != userID {
			continue
		}
		peer := message.SenderID
		if peer == userID {
			peer = message.ReceiverID
		}
		summary, ok := byConversation[message.ConversationID]
		if !ok {
			summary = &model.ConversationSummary{
				ConversationID: message.ConversationID,
				PeerID:         peer,
			}
			byConversation[message.ConversationID] = summary
		}
		if message.CreatedAt.After(summary.LastAt) {
			summary.LastContent = message.Content
			summary.LastSenderID = message.SenderID
			summary.LastAt = message.CreatedAt
		}
		if message.ReceiverID == userID && !message.Read {
			summary.UnreadCount++
		}
	}

	summaries := make([]*model.ConversationSummary, 0, len(byConversation))
	for _, summary := range byConversation {
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastAt.After(summaries[j].LastAt)
	})
	return summaries, nil
}

func (r *messageRepository) MarkRead(_ context.Context, conversationID string, receiverID uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var count int64
	for _, message := range r.store.messages {
		if message.ConversationID == conversationID && message.ReceiverID == receiverID && !message.Read {
			message.Read = true
			count++
		}
	}
	return count, nil
}
