package handler

import (
	"context"
	"net/http"

	"github.com/Rrens/collabhub/internal/api/response"
	"github.com/Rrens/collabhub/internal/domain"
	"github.com/go-chi/chi/v5"
)

// CommentService is the comment behaviour the handler exposes
type CommentService interface {
	AddComment(ctx context.Context, taskID, authorID, content string) (*domain.Comment, error)
	ListComments(ctx context.Context, taskID string) ([]domain.Comment, error)
}

// CommentHandler handles task comment endpoints
type CommentHandler struct {
	commentService CommentService
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentService CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// Add posts a comment on a task as the authenticated user
func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var input domain.CommentCreate
	if !decodeAndValidate(w, r, &input) {
		return
	}

	comment, err := h.commentService.AddComment(r.Context(), chi.URLParam(r, "taskID"), userID, input.Content)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, comment)
}

// List returns a task's comments
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	comments, err := h.commentService.ListComments(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, comments)
}
