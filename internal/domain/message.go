package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is an append-only chat message. Exactly one of Content and
// FileURL is set.
type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ChatID    primitive.ObjectID `bson:"chatId" json:"chatId"`
	SenderID  primitive.ObjectID `bson:"senderId" json:"senderId"`
	Content   string             `bson:"content,omitempty" json:"content,omitempty"`
	FileURL   string             `bson:"fileUrl,omitempty" json:"fileUrl,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Chat is the read side of a chat document as the relay needs it
type Chat struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name       string               `bson:"name" json:"name"`
	MemberIDs  []primitive.ObjectID `bson:"members" json:"memberIds"`
	MessageIDs []primitive.ObjectID `bson:"messages" json:"messageIds"`
}

// MessageCreate represents message send data
type MessageCreate struct {
	Content string `json:"content" validate:"omitempty,max=10000"`
	FileURL string `json:"fileUrl" validate:"omitempty,url,max=2048"`
}

// ChatRepository defines the interface for chat and message storage
type ChatRepository interface {
	// CreateMessage persists the message and appends its id to the chat
	CreateMessage(ctx context.Context, message *Message) error
	GetMemberIDs(ctx context.Context, chatID primitive.ObjectID) ([]primitive.ObjectID, error)
	// GetChatName returns an empty string when the chat has no name
	GetChatName(ctx context.Context, chatID primitive.ObjectID) (string, error)
	ListMessages(ctx context.Context, chatID primitive.ObjectID, limit int) ([]Message, error)
}
