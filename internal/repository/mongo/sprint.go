package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/collabhub/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SprintRepository implements domain.SprintRepository
type SprintRepository struct {
	sprints *mongo.Collection
	tasks   *mongo.Collection
}

// NewSprintRepository creates a new sprint repository
func NewSprintRepository(db *DB) *SprintRepository {
	return &SprintRepository{
		sprints: db.Database.Collection(sprintsCollection),
		tasks:   db.Database.Collection(tasksCollection),
	}
}

// GetExpiredSprints returns open sprints whose end date has passed
func (r *SprintRepository) GetExpiredSprints(ctx context.Context, now time.Time) ([]domain.Sprint, error) {
	filter := bson.M{
		"endDate": bson.M{"$lt": now},
		"status":  bson.M{"$ne": domain.SprintStatusCompleted},
	}

	cursor, err := r.sprints.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired sprints: %w", err)
	}

	sprints := []domain.Sprint{}
	if err := cursor.All(ctx, &sprints); err != nil {
		return nil, fmt.Errorf("failed to decode sprints: %w", err)
	}
	return sprints, nil
}

// MarkSprintCompleted moves the sprint to its terminal status. The status
// filter keeps the write a no-op for an already completed sprint.
func (r *SprintRepository) MarkSprintCompleted(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.sprints.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$ne": domain.SprintStatusCompleted}},
		bson.M{"$set": bson.M{"status": domain.SprintStatusCompleted}},
	)
	if err != nil {
		return fmt.Errorf("failed to complete sprint %s: %w", id.Hex(), err)
	}
	return nil
}

// MoveTasksToBacklog resets the sprint's unfinished tasks to backlog
func (r *SprintRepository) MoveTasksToBacklog(ctx context.Context, sprintID primitive.ObjectID) (int64, error) {
	res, err := r.tasks.UpdateMany(ctx,
		bson.M{"sprintId": sprintID, "status": bson.M{"$ne": domain.TaskStatusCompleted}},
		bson.M{"$set": bson.M{"status": domain.TaskStatusBacklog, "sprintId": nil}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to move tasks of sprint %s to backlog: %w", sprintID.Hex(), err)
	}
	return res.ModifiedCount, nil
}
