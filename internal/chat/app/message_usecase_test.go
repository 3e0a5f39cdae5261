package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 1, 23, 8, 30, 0, 0, time.UTC)

type messageFixture struct {
	msgRepo  *MockMessageRepository
	profiles *MockProfileRepository
	stream   *MockEventStream
	registry *PresenceRegistry
	uc       *MessageUseCase
}

func newMessageFixture() *messageFixture {
	logger.SetNewNop()
	f := &messageFixture{
		msgRepo:  new(MockMessageRepository),
		profiles: new(MockProfileRepository),
		stream:   new(MockEventStream),
		registry: NewPresenceRegistry(),
	}
	f.uc = NewMessageUseCase(f.msgRepo, f.profiles, f.registry, f.stream, time.Second)
	f.uc.now = func() time.Time { return fixedNow }
	f.uc.newID = func() string { return "msg-1" }
	return f
}

func (f *messageFixture) expectProfiles(ids ...string) {
	profiles := make([]domain.UserProfile, 0, len(ids))
	for _, id := range ids {
		profiles = append(profiles, profile(id))
	}
	f.profiles.On("FindByIDs", mock.Anything, []string{"alice", "bob"}).Return(profiles, nil)
}

func TestMessageUseCase_Send_ReceiverOnline(t *testing.T) {
	f := newMessageFixture()
	f.registry.Register("bob", newFakeConn("b1"))
	f.expectProfiles("alice", "bob")
	f.msgRepo.On("InsertMessage", mock.Anything, mock.MatchedBy(func(m *domain.Message) bool {
		return m.IsDelivered && !m.IsRead && m.Content == "hello" && m.ReadAt == nil
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Message).Seq = 7
	}).Return(nil)
	f.stream.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.MessageEvent) bool {
		return e.Type == domain.MessageEventSent && e.MessageID == "msg-1"
	})).Return(nil)

	view, events, err := f.uc.Send(context.Background(), "alice", "bob", "  hello ")
	require.NoError(t, err)
	assert.Equal(t, int64(7), view.Seq)
	assert.Equal(t, "bob", view.Receiver.Username)
	assert.Equal(t, fixedNow, view.CreatedAt)

	assert.Equal(t, []string{"bob:new-message", "alice:message-sent", "alice:message-delivered"}, actions(events))
	assert.Equal(t, map[string]interface{}{"messageId": "msg-1", "receiverId": "bob"}, events[2].Payload)

	f.msgRepo.AssertExpectations(t)
	f.stream.AssertExpectations(t)
}

func TestMessageUseCase_Send_ReceiverOffline(t *testing.T) {
	f := newMessageFixture()
	f.expectProfiles("alice", "bob")
	f.msgRepo.On("InsertMessage", mock.Anything, mock.MatchedBy(func(m *domain.Message) bool {
		return !m.IsDelivered
	})).Return(nil)
	f.stream.On("Publish", mock.Anything, mock.Anything).Return(nil)

	view, events, err := f.uc.Send(context.Background(), "alice", "bob", "hi")
	require.NoError(t, err)
	assert.False(t, view.IsDelivered)
	assert.Equal(t, []string{"alice:message-sent"}, actions(events))
}

func TestMessageUseCase_Send_Validation(t *testing.T) {
	tests := []struct {
		name     string
		receiver string
		content  string
		want     string
	}{
		{"empty content", "bob", "", "content is empty"},
		{"whitespace content", "bob", " \n\t ", "content is empty"},
		{"no receiver", "", "hi", "receiver is required"},
		{"self", "alice", "hi", "cannot send a message to yourself"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMessageFixture()

			view, events, err := f.uc.Send(context.Background(), "alice", tt.receiver, tt.content)
			assert.Nil(t, view)
			assert.ErrorIs(t, err, domain.ErrValidation)
			require.Len(t, events, 1)
			assert.Equal(t, "alice:message-error", actions(events)[0])
			assert.Equal(t, tt.want, events[0].Payload["error"])

			f.msgRepo.AssertNotCalled(t, "InsertMessage", mock.Anything, mock.Anything)
			f.stream.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
		})
	}
}

func TestMessageUseCase_Send_ReceiverNotFound(t *testing.T) {
	f := newMessageFixture()
	f.expectProfiles("alice")

	_, events, err := f.uc.Send(context.Background(), "alice", "bob", "hi")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "receiver not found", events[0].Payload["error"])
	f.msgRepo.AssertNotCalled(t, "InsertMessage", mock.Anything, mock.Anything)
}

func TestMessageUseCase_Send_PersistenceFailure(t *testing.T) {
	f := newMessageFixture()
	f.registry.Register("bob", newFakeConn("b1"))
	f.expectProfiles("alice", "bob")
	f.msgRepo.On("InsertMessage", mock.Anything, mock.Anything).Return(errors.New("mongo down"))

	_, events, err := f.uc.Send(context.Background(), "alice", "bob", "hi")
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, []string{"alice:message-error"}, actions(events), "receiver sees nothing")
	assert.Equal(t, "Failed to send message", events[0].Payload["error"])
	f.stream.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestMessageUseCase_Send_ProfileStoreFailure(t *testing.T) {
	f := newMessageFixture()
	f.profiles.On("FindByIDs", mock.Anything, mock.Anything).Return(nil, errors.New("pg down"))

	_, _, err := f.uc.Send(context.Background(), "alice", "bob", "hi")
	assert.ErrorIs(t, err, domain.ErrPersistence)
	f.msgRepo.AssertNotCalled(t, "InsertMessage", mock.Anything, mock.Anything)
}

func TestMessageUseCase_Send_StreamFailureIsIgnored(t *testing.T) {
	f := newMessageFixture()
	f.expectProfiles("alice", "bob")
	f.msgRepo.On("InsertMessage", mock.Anything, mock.Anything).Return(nil)
	f.stream.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	_, events, err := f.uc.Send(context.Background(), "alice", "bob", "hi")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice:message-sent"}, actions(events))
}

func TestMessageUseCase_Send_SurvivesCancelledConnection(t *testing.T) {
	f := newMessageFixture()
	f.expectProfiles("alice", "bob")
	f.msgRepo.On("InsertMessage", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), mock.Anything).Return(nil)
	f.stream.On("Publish", mock.Anything, mock.Anything).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := f.uc.Send(ctx, "alice", "bob", "hi")
	require.NoError(t, err)
	f.msgRepo.AssertExpectations(t)
}

func unreadMessage() *domain.Message {
	return &domain.Message{
		ID:          "msg-1",
		SenderID:    "alice",
		ReceiverID:  "bob",
		Content:     "hello",
		CreatedAt:   fixedNow.Add(-time.Minute),
		IsDelivered: true,
	}
}

func TestMessageUseCase_MarkRead(t *testing.T) {
	f := newMessageFixture()
	f.registry.Register("alice", newFakeConn("a1"))
	f.msgRepo.On("FindByID", mock.Anything, "msg-1").Return(unreadMessage(), nil)
	f.msgRepo.On("MarkRead", mock.Anything, "msg-1", fixedNow).Return(true, nil)
	f.stream.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.MessageEvent) bool {
		return e.Type == domain.MessageEventRead
	})).Return(nil)

	events, err := f.uc.MarkRead(context.Background(), "bob", "msg-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.OutboundEvent{
		RecipientID: "alice",
		Action:      domain.MessageReadReceipt,
		Payload: map[string]interface{}{
			"messageId": "msg-1",
			"readerId":  "bob",
			"readAt":    fixedNow,
		},
	}, events[0])
	f.msgRepo.AssertExpectations(t)
}

func TestMessageUseCase_MarkRead_SenderOffline(t *testing.T) {
	f := newMessageFixture()
	f.msgRepo.On("FindByID", mock.Anything, "msg-1").Return(unreadMessage(), nil)
	f.msgRepo.On("MarkRead", mock.Anything, "msg-1", fixedNow).Return(true, nil)
	f.stream.On("Publish", mock.Anything, mock.Anything).Return(nil)

	events, err := f.uc.MarkRead(context.Background(), "bob", "msg-1")
	require.NoError(t, err)
	assert.Empty(t, events)
	f.msgRepo.AssertExpectations(t)
}

func TestMessageUseCase_MarkRead_Idempotent(t *testing.T) {
	f := newMessageFixture()
	f.registry.Register("alice", newFakeConn("a1"))

	read := unreadMessage()
	read.IsRead = true
	readAt := fixedNow.Add(-time.Second)
	read.ReadAt = &readAt
	f.msgRepo.On("FindByID", mock.Anything, "msg-1").Return(read, nil)

	events, err := f.uc.MarkRead(context.Background(), "bob", "msg-1")
	require.NoError(t, err)
	assert.Empty(t, events)
	f.msgRepo.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything, mock.Anything)
	f.stream.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestMessageUseCase_MarkRead_LostRace(t *testing.T) {
	f := newMessageFixture()
	f.registry.Register("alice", newFakeConn("a1"))
	f.msgRepo.On("FindByID", mock.Anything, "msg-1").Return(unreadMessage(), nil)
	f.msgRepo.On("MarkRead", mock.Anything, "msg-1", fixedNow).Return(false, nil)

	events, err := f.uc.MarkRead(context.Background(), "bob", "msg-1")
	require.NoError(t, err)
	assert.Empty(t, events)
	f.stream.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestMessageUseCase_MarkRead_Errors(t *testing.T) {
	t.Run("not the receiver", func(t *testing.T) {
		f := newMessageFixture()
		f.msgRepo.On("FindByID", mock.Anything, "msg-1").Return(unreadMessage(), nil)

		events, err := f.uc.MarkRead(context.Background(), "carol", "msg-1")
		assert.ErrorIs(t, err, domain.ErrAuthorization)
		assert.Equal(t, []string{"carol:message-error"}, actions(events))
		f.msgRepo.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("sender cannot mark own message", func(t *testing.T) {
		f := newMessageFixture()
		f.msgRepo.On("FindByID", mock.Anything, "msg-1").Return(unreadMessage(), nil)

		_, err := f.uc.MarkRead(context.Background(), "alice", "msg-1")
		assert.ErrorIs(t, err, domain.ErrAuthorization)
	})

	t.Run("unknown message", func(t *testing.T) {
		f := newMessageFixture()
		f.msgRepo.On("FindByID", mock.Anything, "nope").Return(nil, nil)

		_, err := f.uc.MarkRead(context.Background(), "bob", "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newMessageFixture()
		f.msgRepo.On("FindByID", mock.Anything, "msg-1").Return(nil, errors.New("mongo down"))

		_, err := f.uc.MarkRead(context.Background(), "bob", "msg-1")
		assert.ErrorIs(t, err, domain.ErrPersistence)
	})

	t.Run("missing id", func(t *testing.T) {
		f := newMessageFixture()

		_, err := f.uc.MarkRead(context.Background(), "bob", "")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}
