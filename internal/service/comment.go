package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/collabhub/internal/domain"
	"github.com/Rrens/collabhub/internal/realtime"
)

// CommentService persists task comments and relays them to the task room
type CommentService struct {
	commentRepo domain.CommentRepository
	broadcaster RoomBroadcaster
	now         func() time.Time
}

// NewCommentService creates a new comment service
func NewCommentService(commentRepo domain.CommentRepository, broadcaster RoomBroadcaster) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		broadcaster: broadcaster,
		now:         time.Now,
	}
}

// AddComment stores a comment and broadcasts it to the task room
func (s *CommentService) AddComment(ctx context.Context, taskID, authorID, content string) (*domain.Comment, error) {
	taskOID, err := domain.ParseID(taskID)
	if err != nil {
		return nil, fmt.Errorf("%w: task id: %w", domain.ErrValidation, err)
	}
	authorOID, err := domain.ParseID(authorID)
	if err != nil {
		return nil, fmt.Errorf("%w: author id: %w", domain.ErrValidation, err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", domain.ErrValidation)
	}

	comment := &domain.Comment{
		TaskID:    taskOID,
		AuthorID:  authorOID,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.broadcaster.Broadcast(realtime.TaskRoom(taskOID.Hex()), realtime.EventNewComment, comment)

	return comment, nil
}

// ListComments returns a task's comments oldest first
func (s *CommentService) ListComments(ctx context.Context, taskID string) ([]domain.Comment, error) {
	taskOID, err := domain.ParseID(taskID)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByTask(ctx, taskOID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil
}
