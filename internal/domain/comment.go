package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is an append-only remark on a task
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TaskID    primitive.ObjectID `bson:"taskId" json:"taskId"`
	AuthorID  primitive.ObjectID `bson:"authorId" json:"authorId"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// CommentCreate represents comment creation data
type CommentCreate struct {
	Content string `json:"content" validate:"required,max=10000"`
}

// CommentRepository defines the interface for comment storage
type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	ListByTask(ctx context.Context, taskID primitive.ObjectID) ([]Comment, error)
}
