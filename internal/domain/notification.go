package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType categorises a notification
type NotificationType string

const (
	NotificationTypeProject NotificationType = "project"
	NotificationTypeTask    NotificationType = "task"
	NotificationTypeGeneral NotificationType = "general"
	NotificationTypeChat    NotificationType = "chat"
)

// Valid reports whether t is one of the known notification types
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeProject, NotificationTypeTask, NotificationTypeGeneral, NotificationTypeChat:
		return true
	}
	return false
}

// Notification is a persisted per-recipient notice. Only Read ever changes.
type Notification struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecipientUserID primitive.ObjectID `bson:"recipientUserId" json:"recipientUserId"`
	Message         string             `bson:"message" json:"message"`
	Type            NotificationType   `bson:"type" json:"type"`
	Read            bool               `bson:"read" json:"read"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}

// NotificationDispatch is the request body for an explicit fan-out
type NotificationDispatch struct {
	RecipientIDs []string         `json:"recipientIds" validate:"required,min=1,max=1000"`
	Message      string           `json:"message" validate:"required,max=2000"`
	Type         NotificationType `json:"type" validate:"required,oneof=project task general chat"`
}

// NotificationRepository defines the interface for notification storage
type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	// ListByUser returns the user's notifications newest first
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]Notification, error)
	// MarkAsRead returns ErrNotFound when the notification does not exist or
	// belongs to another user
	MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) error
	MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
}
