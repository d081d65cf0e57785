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

// CommentRepository implements domain.CommentRepository
type CommentRepository struct {
	coll *mongo.Collection
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *DB) *CommentRepository {
	return &CommentRepository{coll: db.Database.Collection(commentsCollection)}
}

// Create inserts a new comment
func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, comment); err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// ListByTask returns a task's comments oldest first
func (r *CommentRepository) ListByTask(ctx context.Context, taskID primitive.ObjectID) ([]domain.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.coll.Find(ctx, bson.M{"taskId": taskID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	comments := []domain.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return comments, nil
}
