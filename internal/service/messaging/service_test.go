package messaging

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/repository/memory"
	"github.com/servipro/marketplace-api/internal/service/event"
	apperrors "github.com/servipro/marketplace-api/pkg/errors"
	"github.com/servipro/marketplace-api/pkg/logger"
)

func newTestService(t *testing.T) (*Service, *memory.Store, *model.User, *model.User) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	log := logger.New(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})

	alice := &model.User{Email: "alice@example.com", Role: model.UserRoleClient, FirstName: "Alice"}
	require.NoError(t, store.Users().Create(ctx, alice))
	bob := &model.User{Email: "bob@example.com", Role: model.UserRoleProfessional, FirstName: "Bob"}
	require.NoError(t, store.Users().Create(ctx, bob))

	svc := NewService(store.Messages(), store.Users(), event.NewService(store.Outbox(), log))
	return svc, store, alice, bob
}

func TestSend(t *testing.T) {
	svc, store, alice, bob := newTestService(t)
	ctx := context.Background()

	msg, err := svc.Send(ctx, alice, &model.SendMessageRequest{ReceiverID: bob.ID, Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, ConversationID(alice.ID, bob.ID), msg.ConversationID)
	assert.Equal(t, alice.ID, msg.SenderID)
	assert.False(t, msg.Read)

	events, err := store.Outbox().GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.EventMessageSent, events[0].EventType)
}

func TestSendRejectsSelf(t *testing.T) {
	svc, _, alice, _ := newTestService(t)

	_, err := svc.Send(context.Background(), alice, &model.SendMessageRequest{ReceiverID: alice.ID, Content: "hi me"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeBadRequest, appErr.Code)
}

func TestSendRejectsUnknownReceiver(t *testing.T) {
	svc, _, alice, _ := newTestService(t)

	_, err := svc.Send(context.Background(), alice, &model.SendMessageRequest{ReceiverID: uuid.New(), Content: "anyone?"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestSendRejectsDeactivatedReceiver(t *testing.T) {
	svc, store, alice, bob := newTestService(t)
	ctx := context.Background()
	require.NoError(t, store.Users().Deactivate(ctx, bob.ID))

	_, err := svc.Send(ctx, alice, &model.SendMessageRequest{ReceiverID: bob.ID, Content: "hello?"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeBadRequest, appErr.Code)
}

func TestConversationFlow(t *testing.T) {
	svc, _, alice, bob := newTestService(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, alice, &model.SendMessageRequest{ReceiverID: bob.ID, Content: "hi bob"})
	require.NoError(t, err)
	_, err = svc.Send(ctx, bob, &model.SendMessageRequest{ReceiverID: alice.ID, Content: "hi alice"})
	require.NoError(t, err)
	_, err = svc.Send(ctx, bob, &model.SendMessageRequest{ReceiverID: alice.ID, Content: "are you there?"})
	require.NoError(t, err)

	// Bob's summary shows one unread from alice.
	summaries, err := svc.ListConversations(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, alice.ID, summaries[0].PeerID)
	assert.Equal(t, "are you there?", summaries[0].LastContent)
	assert.Equal(t, 1, summaries[0].UnreadCount)

	// Alice reads the thread; her two unread messages flip.
	messages, total, err := svc.ListConversation(ctx, alice.ID, bob.ID, 1, 50)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, messages, 3)
	assert.Equal(t, "hi bob", messages[0].Content)

	summaries, err = svc.ListConversations(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 0, summaries[0].UnreadCount)
}

func TestMarkRead(t *testing.T) {
	svc, _, alice, bob := newTestService(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, alice, &model.SendMessageRequest{ReceiverID: bob.ID, Content: "one"})
	require.NoError(t, err)
	_, err = svc.Send(ctx, alice, &model.SendMessageRequest{ReceiverID: bob.ID, Content: "two"})
	require.NoError(t, err)

	n, err := svc.MarkRead(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = svc.MarkRead(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}
