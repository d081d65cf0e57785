package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SprintStatus only moves forward: planning -> active -> completed
type SprintStatus string

const (
	SprintStatusPlanning  SprintStatus = "planning"
	SprintStatusActive    SprintStatus = "active"
	SprintStatusCompleted SprintStatus = "completed"
)

// TaskStatus represents the board column of a task
type TaskStatus string

const (
	TaskStatusBacklog    TaskStatus = "backlog"
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Sprint is a time-boxed iteration of a project
type Sprint struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name      string               `bson:"name" json:"name"`
	StartDate time.Time            `bson:"startDate" json:"startDate"`
	EndDate   time.Time            `bson:"endDate" json:"endDate"`
	Status    SprintStatus         `bson:"status" json:"status"`
	ProjectID primitive.ObjectID   `bson:"projectId" json:"projectId"`
	TaskIDs   []primitive.ObjectID `bson:"tasks" json:"taskIds"`
}

// Task holds the task fields the sprint sweep reads and writes
type Task struct {
	ID       primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Status   TaskStatus          `bson:"status" json:"status"`
	SprintID *primitive.ObjectID `bson:"sprintId" json:"sprintId"`
}

// SprintRepository defines the sprint and task mutations used by the
// expiry sweep
type SprintRepository interface {
	// GetExpiredSprints returns sprints with endDate before now that are
	// not completed
	GetExpiredSprints(ctx context.Context, now time.Time) ([]Sprint, error)
	MarkSprintCompleted(ctx context.Context, id primitive.ObjectID) error
	// MoveTasksToBacklog resets every non-completed task of the sprint to
	// backlog and clears its sprintId, returning the number moved
	MoveTasksToBacklog(ctx context.Context, sprintID primitive.ObjectID) (int64, error)
}
