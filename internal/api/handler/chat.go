package handler

import (
	"context"
	"net/http"

	"github.com/Rrens/collabhub/internal/api/response"
	"github.com/Rrens/collabhub/internal/domain"
	"github.com/go-chi/chi/v5"
)

// ChatService is the chat behaviour the handler exposes
type ChatService interface {
	SendMessage(ctx context.Context, chatID, senderID, content, fileURL string) (*domain.Message, error)
	ListMessages(ctx context.Context, chatID string, limit int) ([]domain.Message, error)
}

// ChatHandler handles chat message endpoints
type ChatHandler struct {
	chatService ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// SendMessage posts a message as the authenticated user
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var input domain.MessageCreate
	if !decodeAndValidate(w, r, &input) {
		return
	}

	message, err := h.chatService.SendMessage(r.Context(), chi.URLParam(r, "chatID"), userID, input.Content, input.FileURL)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, message)
}

// ListMessages returns the latest messages of a chat, oldest first
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	messages, err := h.chatService.ListMessages(r.Context(), chi.URLParam(r, "chatID"), queryInt(r, "limit"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, messages)
}
