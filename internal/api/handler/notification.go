package handler

import (
	"context"
	"net/http"

	"github.com/Rrens/collabhub/internal/api/response"
	"github.com/Rrens/collabhub/internal/domain"
	"github.com/go-chi/chi/v5"
)

// NotificationService is the notification behaviour the handler exposes
type NotificationService interface {
	Dispatch(ctx context.Context, recipientIDs []string, message string, notifType domain.NotificationType) ([]domain.Notification, error)
	GetByUserID(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID, userID string) error
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
}

// NotificationHandler handles notification endpoints
type NotificationHandler struct {
	notificationService NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List returns the caller's notifications, newest first
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	notifications, err := h.notificationService.GetByUserID(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, notifications)
}

// UnreadCount returns how many of the caller's notifications are unread
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	count, err := h.notificationService.UnreadCount(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, map[string]int64{"unread": count})
}

// MarkAsRead flags one of the caller's notifications as read
func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.notificationService.MarkAsRead(r.Context(), chi.URLParam(r, "notificationID"), userID); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}

// MarkAllAsRead flags every notification of the caller as read
func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	updated, err := h.notificationService.MarkAllAsRead(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, map[string]int64{"updated": updated})
}

// Dispatch creates notifications for a list of recipients and pushes them
// to whoever is online
func (h *NotificationHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	var input domain.NotificationDispatch
	if !decodeAndValidate(w, r, &input) {
		return
	}

	created, err := h.notificationService.Dispatch(r.Context(), input.RecipientIDs, input.Message, input.Type)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, created)
}
