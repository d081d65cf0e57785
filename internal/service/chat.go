package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/collabhub/internal/domain"
	"github.com/Rrens/collabhub/internal/realtime"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultMessageLimit = 50
	maxMessageLimit     = 200
)

// RoomBroadcaster delivers an event to every session joined to a room
type RoomBroadcaster interface {
	Broadcast(room, event string, payload any) realtime.DeliveryReport
}

// NotificationDispatcher fans a notification out to a set of users
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, recipientIDs []string, message string, notifType domain.NotificationType) ([]domain.Notification, error)
}

// ChatNameCache caches chat names. ok is false on a miss.
type ChatNameCache interface {
	GetName(ctx context.Context, chatID primitive.ObjectID) (name string, ok bool, err error)
	SetName(ctx context.Context, chatID primitive.ObjectID, name string) error
}

// ChatService persists chat messages, relays them to the chat room and
// notifies the chat's members
type ChatService struct {
	chatRepo    domain.ChatRepository
	broadcaster RoomBroadcaster
	dispatcher  NotificationDispatcher
	cache       ChatNameCache
	now         func() time.Time
}

// NewChatService creates a new chat service. cache may be nil.
func NewChatService(
	chatRepo domain.ChatRepository,
	broadcaster RoomBroadcaster,
	dispatcher NotificationDispatcher,
	cache ChatNameCache,
) *ChatService {
	return &ChatService{
		chatRepo:    chatRepo,
		broadcaster: broadcaster,
		dispatcher:  dispatcher,
		cache:       cache,
		now:         time.Now,
	}
}

// SendMessage stores a message, broadcasts it to the chat room and sends
// a chat notification to every member. Exactly one of content and fileURL
// must be set.
func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID, content, fileURL string) (*domain.Message, error) {
	chatOID, err := domain.ParseID(chatID)
	if err != nil {
		return nil, fmt.Errorf("%w: chat id: %w", domain.ErrValidation, err)
	}
	senderOID, err := domain.ParseID(senderID)
	if err != nil {
		return nil, fmt.Errorf("%w: sender id: %w", domain.ErrValidation, err)
	}

	hasContent := strings.TrimSpace(content) != ""
	hasFile := strings.TrimSpace(fileURL) != ""
	if hasContent == hasFile {
		return nil, fmt.Errorf("%w: exactly one of content and fileUrl is required", domain.ErrValidation)
	}

	message := &domain.Message{
		ChatID:    chatOID,
		SenderID:  senderOID,
		CreatedAt: s.now().UTC(),
	}
	if hasContent {
		message.Content = content
	} else {
		message.FileURL = fileURL
	}

	if err := s.chatRepo.CreateMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	s.broadcaster.Broadcast(realtime.ChatRoom(chatOID.Hex()), realtime.EventChatMessage, message)

	members, err := s.chatRepo.GetMemberIDs(ctx, chatOID)
	if err != nil {
		log.Error().
			Err(err).
			Str("chat_id", chatOID.Hex()).
			Str("message_id", message.ID.Hex()).
			Msg("failed to get chat members, skipping notifications")
		return message, nil
	}

	name, err := s.chatName(ctx, chatOID)
	if err != nil {
		log.Error().
			Err(err).
			Str("chat_id", chatOID.Hex()).
			Str("message_id", message.ID.Hex()).
			Msg("failed to get chat name, skipping notifications")
		return message, nil
	}

	if _, err := s.dispatcher.Dispatch(ctx, hexIDs(members), chatNotificationText(name), domain.NotificationTypeChat); err != nil {
		log.Error().
			Err(err).
			Str("chat_id", chatOID.Hex()).
			Msg("failed to dispatch chat notifications")
	}

	return message, nil
}

// ListMessages returns the latest messages of a chat in chronological order
func (s *ChatService) ListMessages(ctx context.Context, chatID string, limit int) ([]domain.Message, error) {
	chatOID, err := domain.ParseID(chatID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultMessageLimit
	}
	if limit > maxMessageLimit {
		limit = maxMessageLimit
	}

	messages, err := s.chatRepo.ListMessages(ctx, chatOID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// chatName reads the chat name through the cache. Cache errors are logged
// and fall through to the repository.
func (s *ChatService) chatName(ctx context.Context, chatID primitive.ObjectID) (string, error) {
	if s.cache != nil {
		name, ok, err := s.cache.GetName(ctx, chatID)
		if err != nil {
			log.Warn().Err(err).Str("chat_id", chatID.Hex()).Msg("chat cache read failed")
		} else if ok {
			return name, nil
		}
	}

	name, err := s.chatRepo.GetChatName(ctx, chatID)
	if err != nil {
		return "", fmt.Errorf("failed to get chat name: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetName(ctx, chatID, name); err != nil {
			log.Warn().Err(err).Str("chat_id", chatID.Hex()).Msg("chat cache write failed")
		}
	}
	return name, nil
}

func chatNotificationText(name string) string {
	if name == "" {
		return "New message in chat"
	}
	return "New message in " + name
}
