package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/collabhub/internal/domain"
	"github.com/Rrens/collabhub/internal/realtime"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserPusher delivers an event to every live session of a user
type UserPusher interface {
	SendTo(userID, event string, payload any) realtime.DeliveryReport
}

// NotificationService persists notifications and pushes them to online
// recipients
type NotificationService struct {
	repo   domain.NotificationRepository
	pusher UserPusher
	now    func() time.Time
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo domain.NotificationRepository, pusher UserPusher) *NotificationService {
	return &NotificationService{
		repo:   repo,
		pusher: pusher,
		now:    time.Now,
	}
}

// Dispatch creates one unread notification per valid recipient and pushes
// it to the recipient's live sessions. Invalid ids and per-recipient
// persistence failures are logged and left out of the result.
func (s *NotificationService) Dispatch(ctx context.Context, recipientIDs []string, message string, notifType domain.NotificationType) ([]domain.Notification, error) {
	if !notifType.Valid() {
		return nil, fmt.Errorf("%w: unknown notification type %q", domain.ErrValidation, notifType)
	}

	created := make([]domain.Notification, 0, len(recipientIDs))
	for _, rawID := range recipientIDs {
		recipientID, err := domain.ParseID(rawID)
		if err != nil {
			log.Warn().
				Str("recipient_id", rawID).
				Str("type", string(notifType)).
				Msg("skipping invalid notification recipient")
			continue
		}

		notification := domain.Notification{
			RecipientUserID: recipientID,
			Message:         message,
			Type:            notifType,
			Read:            false,
			CreatedAt:       s.now().UTC(),
		}

		if err := s.repo.Create(ctx, &notification); err != nil {
			log.Error().
				Err(err).
				Str("recipient_id", rawID).
				Str("type", string(notifType)).
				Msg("failed to persist notification")
			continue
		}

		s.pusher.SendTo(recipientID.Hex(), realtime.EventNotification, notification)
		created = append(created, notification)
	}

	log.Debug().
		Int("requested", len(recipientIDs)).
		Int("created", len(created)).
		Str("type", string(notifType)).
		Msg("notifications dispatched")

	return created, nil
}

// GetByUserID returns the user's notifications, newest first
func (s *NotificationService) GetByUserID(ctx context.Context, userID string) ([]domain.Notification, error) {
	oid, err := domain.ParseID(userID)
	if err != nil {
		return nil, err
	}

	notifications, err := s.repo.ListByUser(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	return notifications, nil
}

// MarkAsRead flags one of the user's notifications as read. Another
// user's notification reports ErrNotFound.
func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID, userID string) error {
	oid, err := domain.ParseID(notificationID)
	if err != nil {
		return err
	}
	userOID, err := domain.ParseID(userID)
	if err != nil {
		return err
	}

	if err := s.repo.MarkAsRead(ctx, oid, userOID); err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return nil
}

// MarkAllAsRead flags every notification of the user as read and returns
// how many changed
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	oid, err := domain.ParseID(userID)
	if err != nil {
		return 0, err
	}

	updated, err := s.repo.MarkAllAsRead(ctx, oid)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return updated, nil
}

// UnreadCount returns the number of unread notifications of the user
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	oid, err := domain.ParseID(userID)
	if err != nil {
		return 0, err
	}

	count, err := s.repo.CountUnread(ctx, oid)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}
