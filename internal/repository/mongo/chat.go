package mongo

import (
	"context"
	"fmt"

	"github.com/Rrens/collabhub/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChatRepository implements domain.ChatRepository
type ChatRepository struct {
	chats    *mongo.Collection
	messages *mongo.Collection
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *DB) *ChatRepository {
	return &ChatRepository{
		chats:    db.Database.Collection(chatsCollection),
		messages: db.Database.Collection(messagesCollection),
	}
}

// CreateMessage inserts the message and appends its id to the chat.
// A missing chat is reported before anything is written.
func (r *ChatRepository) CreateMessage(ctx context.Context, message *domain.Message) error {
	count, err := r.chats.CountDocuments(ctx, bson.M{"_id": message.ChatID}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("failed to look up chat: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("chat %s: %w", message.ChatID.Hex(), domain.ErrNotFound)
	}

	if message.ID.IsZero() {
		message.ID = primitive.NewObjectID()
	}
	if _, err := r.messages.InsertOne(ctx, message); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	_, err = r.chats.UpdateOne(ctx,
		bson.M{"_id": message.ChatID},
		bson.M{"$push": bson.M{"messages": message.ID}},
	)
	if err != nil {
		return fmt.Errorf("failed to append message to chat: %w", err)
	}
	return nil
}

// GetMemberIDs returns the chat's member ids
func (r *ChatRepository) GetMemberIDs(ctx context.Context, chatID primitive.ObjectID) ([]primitive.ObjectID, error) {
	var chat domain.Chat
	opts := options.FindOne().SetProjection(bson.M{"members": 1})
	if err := r.chats.FindOne(ctx, bson.M{"_id": chatID}, opts).Decode(&chat); err != nil {
		return nil, notFound(err, "chat")
	}
	return chat.MemberIDs, nil
}

// GetChatName returns the chat's display name, "" when unnamed
func (r *ChatRepository) GetChatName(ctx context.Context, chatID primitive.ObjectID) (string, error) {
	var chat domain.Chat
	opts := options.FindOne().SetProjection(bson.M{"name": 1})
	if err := r.chats.FindOne(ctx, bson.M{"_id": chatID}, opts).Decode(&chat); err != nil {
		return "", notFound(err, "chat")
	}
	return chat.Name, nil
}

// ListMessages returns the latest limit messages of a chat, oldest first
func (r *ChatRepository) ListMessages(ctx context.Context, chatID primitive.ObjectID, limit int) ([]domain.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.messages.Find(ctx, bson.M{"chatId": chatID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	messages := []domain.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	// Reverse to return chronological order (oldest first)
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
