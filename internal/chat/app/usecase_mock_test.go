package app

import (
	"context"
	"sync"
	"time"

	"realtime_chat_service/internal/chat/domain"

	"github.com/stretchr/testify/mock"
)

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) InsertMessage(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepository) FindByID(ctx context.Context, messageID string) (*domain.Message, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageRepository) MarkRead(ctx context.Context, messageID string, readAt time.Time) (bool, error) {
	args := m.Called(ctx, messageID, readAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockMessageRepository) FindBetween(ctx context.Context, userID, counterpartID string, q domain.HistoryQuery) ([]domain.Message, error) {
	args := m.Called(ctx, userID, counterpartID, q)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageRepository) FindLatestPerCounterpart(ctx context.Context, userID string) ([]domain.Message, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageRepository) EnsureIndexes(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockProfileRepository Mock ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByIDs(ctx context.Context, memberIDs []string) ([]domain.UserProfile, error) {
	args := m.Called(ctx, memberIDs)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.UserProfile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileRepository) ListExcept(ctx context.Context, memberID string) ([]domain.UserProfile, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.UserProfile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileRepository) UpdatePresence(ctx context.Context, memberID string, online bool, lastSeen time.Time) error {
	args := m.Called(ctx, memberID, online, lastSeen)
	return args.Error(0)
}

// MockEventStream Mock EventStream
type MockEventStream struct {
	mock.Mock
}

func (m *MockEventStream) Publish(ctx context.Context, event domain.MessageEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventStream) Close() error {
	return m.Called().Error(0)
}

// fakeConn records every frame written to it
type fakeConn struct {
	id string

	mu     sync.Mutex
	frames []domain.WSResponse
	err    error
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(resp domain.WSResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.frames = append(c.frames, resp)
	return nil
}

func (c *fakeConn) Actions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	actions := make([]string, 0, len(c.frames))
	for _, f := range c.frames {
		actions = append(actions, f.Action)
	}
	return actions
}

func (c *fakeConn) Last() domain.WSResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		return domain.WSResponse{}
	}
	return c.frames[len(c.frames)-1]
}

func (c *fakeConn) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}

func profile(id string) domain.UserProfile {
	return domain.UserProfile{ID: id, Username: id, FullName: id + " full"}
}

func actions(events []domain.OutboundEvent) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.RecipientID+":"+string(ev.Action))
	}
	return out
}
