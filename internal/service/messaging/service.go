package messaging

import (
	"context"

	"github.com/google/uuid"

	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/repository"
	"github.com/servipro/marketplace-api/internal/service/event"
	apperrors "github.com/servipro/marketplace-api/pkg/errors"
)

// Service handles direct messages between two users of a conversation.
type Service struct {
	repo   repository.MessageRepository
	users  repository.UserRepository
	events *event.Service
}

func NewService(repo repository.MessageRepository, users repository.UserRepository, events *event.Service) *Service {
	return &Service{repo: repo, users: users, events: events}
}

// Send stores a message addressed to an existing user. Self-messaging is
// rejected, and the receiver must still be an active account.
func (s *Service) Send(ctx context.Context, sender *model.User, req *model.SendMessageRequest) (*model.Message, error) {
	if req.ReceiverID == sender.ID {
		return nil, apperrors.BadRequest("cannot send a message to yourself", nil)
	}

	receiver, err := s.users.Get(ctx, req.ReceiverID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("receiver", err)
		}
		return nil, apperrors.Internal(err)
	}
	if !receiver.IsActive {
		return nil, apperrors.BadRequest("receiver account is deactivated", nil)
	}

	message := &model.Message{
		ConversationID: ConversationID(sender.ID, req.ReceiverID),
		SenderID:       sender.ID,
		ReceiverID:     req.ReceiverID,
		Content:        req.Content,
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.events.Emit(ctx, model.EventMessageSent, message)
	return message, nil
}

// ListConversation returns the message history between the caller and a peer,
// oldest first, and marks messages addressed to the caller as read.
func (s *Service) ListConversation(ctx context.Context, callerID, peerID uuid.UUID, page, pageSize int) ([]*model.Message, int64, error) {
	filters := &model.MessageFilters{
		ConversationID: ConversationID(callerID, peerID),
		Page:           page,
		PageSize:       pageSize,
	}

	messages, total, err := s.repo.ListConversation(ctx, filters)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}

	if _, err := s.repo.MarkRead(ctx, filters.ConversationID, callerID); err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return messages, total, nil
}

// ListConversations summarizes every conversation the caller takes part in,
// most recently active first.
func (s *Service) ListConversations(ctx context.Context, callerID uuid.UUID) ([]*model.ConversationSummary, error) {
	summaries, err := s.repo.ListConversations(ctx, callerID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return summaries, nil
}

// MarkRead flags all messages addressed to the caller in one conversation and
// reports how many were newly read.
func (s *Service) MarkRead(ctx context.Context, callerID, peerID uuid.UUID) (int64, error) {
	n, err := s.repo.MarkRead(ctx, ConversationID(callerID, peerID), callerID)
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return n, nil
}
