package service

import (
	"context"

	"github.com/Rrens/collabhub/internal/domain"
	"github.com/Rrens/collabhub/internal/realtime"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockNotificationRepository mocks the NotificationRepository interface
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	args := m.Called(ctx, notification)
	if args.Error(0) == nil && notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockChatRepository mocks the ChatRepository interface
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) CreateMessage(ctx context.Context, message *domain.Message) error {
	args := m.Called(ctx, message)
	if args.Error(0) == nil && message.ID.IsZero() {
		message.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockChatRepository) GetMemberIDs(ctx context.Context, chatID primitive.ObjectID) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]primitive.ObjectID), args.Error(1)
}

func (m *MockChatRepository) GetChatName(ctx context.Context, chatID primitive.ObjectID) (string, error) {
	args := m.Called(ctx, chatID)
	return args.String(0), args.Error(1)
}

func (m *MockChatRepository) ListMessages(ctx context.Context, chatID primitive.ObjectID, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, chatID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

// MockCommentRepository mocks the CommentRepository interface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	if args.Error(0) == nil && comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockCommentRepository) ListByTask(ctx context.Context, taskID primitive.ObjectID) ([]domain.Comment, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

// MockPusher mocks UserPusher
type MockPusher struct {
	mock.Mock
}

func (m *MockPusher) SendTo(userID, event string, payload any) realtime.DeliveryReport {
	args := m.Called(userID, event, payload)
	return args.Get(0).(realtime.DeliveryReport)
}

// MockBroadcaster mocks RoomBroadcaster
type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Broadcast(room, event string, payload any) realtime.DeliveryReport {
	args := m.Called(room, event, payload)
	return args.Get(0).(realtime.DeliveryReport)
}

// MockDispatcher mocks NotificationDispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, recipientIDs []string, message string, notifType domain.NotificationType) ([]domain.Notification, error) {
	args := m.Called(ctx, recipientIDs, message, notifType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

// MockChatNameCache mocks ChatNameCache
type MockChatNameCache struct {
	mock.Mock
}

func (m *MockChatNameCache) GetName(ctx context.Context, chatID primitive.ObjectID) (string, bool, error) {
	args := m.Called(ctx, chatID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockChatNameCache) SetName(ctx context.Context, chatID primitive.ObjectID, name string) error {
	args := m.Called(ctx, chatID, name)
	return args.Error(0)
}
