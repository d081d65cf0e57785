package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Rrens/collabhub/internal/api/handler"
	"github.com/Rrens/collabhub/internal/api/middleware"
	"github.com/Rrens/collabhub/internal/config"
	"github.com/Rrens/collabhub/internal/domain"
	"github.com/Rrens/collabhub/internal/realtime"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

// asUser injects an authenticated user the way AuthMiddleware does
func asUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithUserID(r.Context(), userID)))
		})
	}
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response["success"] != true {
		t.Error("expected success to be true")
	}

	data, ok := response["data"].(map[string]any)
	if !ok {
		t.Fatal("expected data to be a map")
	}

	if data["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", data["status"])
	}
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReadyCheck(t *testing.T) {
	up := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("down") })

	tests := []struct {
		name  string
		db    handler.Pinger
		cache handler.Pinger
		want  int
	}{
		{"ready", up, up, http.StatusOK},
		{"database down", down, up, http.StatusServiceUnavailable},
		{"cache down", up, down, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ReadyCheck(tt.db, tt.cache)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRealtimeStats(t *testing.T) {
	registry := realtime.NewRegistry()
	rooms := realtime.NewRooms()

	rec := httptest.NewRecorder()
	handler.RealtimeStats(registry, rooms)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/realtime/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"users":0,"sessions":0,"rooms":0,"onlineUsers":[]}`, string(decode(t, rec).Data))
}

type fakeNotificationService struct {
	dispatched []string
	markedBy   string
	err        error
}

func (f *fakeNotificationService) Dispatch(ctx context.Context, recipientIDs []string, message string, notifType domain.NotificationType) ([]domain.Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.dispatched = append(f.dispatched, recipientIDs...)
	out := make([]domain.Notification, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		oid, err := domain.ParseID(id)
		if err != nil {
			continue
		}
		out = append(out, domain.Notification{ID: primitive.NewObjectID(), RecipientUserID: oid, Message: message, Type: notifType})
	}
	return out, nil
}

func (f *fakeNotificationService) GetByUserID(ctx context.Context, userID string) ([]domain.Notification, error) {
	return []domain.Notification{}, f.err
}

func (f *fakeNotificationService) MarkAsRead(ctx context.Context, notificationID, userID string) error {
	if !domain.IsValidID(notificationID) {
		return domain.ErrInvalidID
	}
	f.markedBy = userID
	return f.err
}

func (f *fakeNotificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	return 3, f.err
}

func (f *fakeNotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return 7, f.err
}

func notificationRouter(svc handler.NotificationService, userID string) http.Handler {
	h := handler.NewNotificationHandler(svc)
	r := chi.NewRouter()
	if userID != "" {
		r.Use(asUser(userID))
	}
	r.Get("/notifications", h.List)
	r.Get("/notifications/unread-count", h.UnreadCount)
	r.Patch("/notifications/read-all", h.MarkAllAsRead)
	r.Patch("/notifications/{notificationID}/read", h.MarkAsRead)
	r.Post("/notifications", h.Dispatch)
	return r
}

func TestNotificationHandler(t *testing.T) {
	userID := primitive.NewObjectID().Hex()

	t.Run("unauthenticated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		notificationRouter(&fakeNotificationService{}, "").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unread count", func(t *testing.T) {
		rec := httptest.NewRecorder()
		notificationRouter(&fakeNotificationService{}, userID).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications/unread-count", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"unread":7}`, string(decode(t, rec).Data))
	})

	t.Run("mark as read invalid id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		notificationRouter(&fakeNotificationService{}, userID).ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/notifications/nope/read", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("mark as read not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		path := "/notifications/" + primitive.NewObjectID().Hex() + "/read"
		notificationRouter(&fakeNotificationService{err: domain.ErrNotFound}, userID).ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("mark as read passes the caller", func(t *testing.T) {
		svc := &fakeNotificationService{}
		rec := httptest.NewRecorder()
		path := "/notifications/" + primitive.NewObjectID().Hex() + "/read"
		notificationRouter(svc, userID).ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, path, nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, userID, svc.markedBy)
	})

	t.Run("mark all as read", func(t *testing.T) {
		rec := httptest.NewRecorder()
		notificationRouter(&fakeNotificationService{}, userID).ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/notifications/read-all", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"updated":3}`, string(decode(t, rec).Data))
	})

	t.Run("dispatch", func(t *testing.T) {
		svc := &fakeNotificationService{}
		u2 := primitive.NewObjectID().Hex()
		body := `{"recipientIds":["bad-id","` + u2 + `"],"message":"hello","type":"task"}`

		rec := httptest.NewRecorder()
		notificationRouter(svc, userID).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notifications", strings.NewReader(body)))
		require.Equal(t, http.StatusCreated, rec.Code)

		var created []domain.Notification
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &created))
		require.Len(t, created, 1)
		assert.Equal(t, u2, created[0].RecipientUserID.Hex())
	})

	t.Run("dispatch rejects unknown type", func(t *testing.T) {
		svc := &fakeNotificationService{}
		body := `{"recipientIds":["` + userID + `"],"message":"hello","type":"billing"}`

		rec := httptest.NewRecorder()
		notificationRouter(svc, userID).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notifications", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, svc.dispatched)
	})

	t.Run("service failure is a 500", func(t *testing.T) {
		rec := httptest.NewRecorder()
		notificationRouter(&fakeNotificationService{err: errors.New("boom")}, userID).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "boom")
	})
}

type fakeChatService struct {
	sender string
	err    error
}

func (f *fakeChatService) SendMessage(ctx context.Context, chatID, senderID, content, fileURL string) (*domain.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sender = senderID
	return &domain.Message{ID: primitive.NewObjectID(), Content: content, FileURL: fileURL}, nil
}

func (f *fakeChatService) ListMessages(ctx context.Context, chatID string, limit int) ([]domain.Message, error) {
	return []domain.Message{}, f.err
}

func TestChatHandler_SendMessage(t *testing.T) {
	userID := primitive.NewObjectID().Hex()
	chatID := primitive.NewObjectID().Hex()

	newRouter := func(svc handler.ChatService) http.Handler {
		h := handler.NewChatHandler(svc)
		r := chi.NewRouter()
		r.Use(asUser(userID))
		r.Post("/chats/{chatID}/messages", h.SendMessage)
		return r
	}

	t.Run("sender is the authenticated user", func(t *testing.T) {
		svc := &fakeChatService{}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/chats/"+chatID+"/messages", bytes.NewBufferString(`{"content":"hi"}`))
		newRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, userID, svc.sender)
	})

	t.Run("invalid file url", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/chats/"+chatID+"/messages", bytes.NewBufferString(`{"fileUrl":"not a url"}`))
		newRouter(&fakeChatService{}).ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, string(decode(t, rec).Error), "FileURL")
	})

	t.Run("service validation error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/chats/"+chatID+"/messages", bytes.NewBufferString(`{}`))
		newRouter(&fakeChatService{err: domain.ErrValidation}).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/chats/"+chatID+"/messages", bytes.NewBufferString(`{`))
		newRouter(&fakeChatService{}).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

type fakeCommentService struct{}

func (fakeCommentService) AddComment(ctx context.Context, taskID, authorID, content string) (*domain.Comment, error) {
	return &domain.Comment{ID: primitive.NewObjectID(), Content: content}, nil
}

func (fakeCommentService) ListComments(ctx context.Context, taskID string) ([]domain.Comment, error) {
	return nil, domain.ErrInvalidID
}

func TestCommentHandler(t *testing.T) {
	h := handler.NewCommentHandler(fakeCommentService{})
	r := chi.NewRouter()
	r.Use(asUser(primitive.NewObjectID().Hex()))
	r.Post("/tasks/{taskID}/comments", h.Add)
	r.Get("/tasks/{taskID}/comments", h.List)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tasks/t1/comments", strings.NewReader(`{"content":""}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty content fails validation")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tasks/t1/comments", strings.NewReader(`{"content":"ship it"}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks/t1/comments", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func readEvent(t *testing.T, ws *websocket.Conn) realtime.Inbound {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var in realtime.Inbound
	require.NoError(t, ws.ReadJSON(&in))
	return in
}

func TestWSHandler_RegisterJoinAndReceive(t *testing.T) {
	userID := primitive.NewObjectID().Hex()
	chatID := primitive.NewObjectID().Hex()

	registry := realtime.NewRegistry()
	rooms := realtime.NewRooms()
	cfg := config.RealtimeConfig{
		SendBuffer:     16,
		WriteWait:      time.Second,
		PongWait:       10 * time.Second,
		PingPeriod:     9 * time.Second,
		MaxMessageSize: 4096,
		AllowedOrigins: []string{"*"},
	}
	h := handler.NewWSHandler(realtime.NewGateway(registry, rooms), cfg)

	srv := httptest.NewServer(asUser(userID)(http.HandlerFunc(h.Serve)))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, ws.WriteJSON(map[string]any{"event": "register", "data": map[string]string{"userId": userID}}))
	assert.Equal(t, realtime.EventRegistered, readEvent(t, ws).Event)
	assert.True(t, registry.IsOnline(userID))

	require.NoError(t, ws.WriteJSON(map[string]any{"event": "join-chat", "data": chatID}))
	require.Eventually(t, func() bool {
		return len(rooms.Members(realtime.ChatRoom(chatID))) == 1
	}, 2*time.Second, 10*time.Millisecond)

	rooms.Broadcast(realtime.ChatRoom(chatID), realtime.EventChatMessage, map[string]string{"content": "hi"})
	in := readEvent(t, ws)
	assert.Equal(t, realtime.EventChatMessage, in.Event)
	assert.JSONEq(t, `{"content":"hi"}`, string(in.Data))

	registry.SendTo(userID, realtime.EventNotification, map[string]string{"message": "ping"})
	assert.Equal(t, realtime.EventNotification, readEvent(t, ws).Event)

	ws.Close()
	require.Eventually(t, func() bool {
		return !registry.IsOnline(userID) && rooms.RoomCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWSHandler_RejectsImpersonation(t *testing.T) {
	userID := primitive.NewObjectID().Hex()
	registry := realtime.NewRegistry()
	cfg := config.RealtimeConfig{SendBuffer: 4, WriteWait: time.Second, PongWait: 10 * time.Second, PingPeriod: 9 * time.Second, MaxMessageSize: 4096}
	h := handler.NewWSHandler(realtime.NewGateway(registry, realtime.NewRooms()), cfg)

	srv := httptest.NewServer(asUser(userID)(http.HandlerFunc(h.Serve)))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer ws.Close()

	other := primitive.NewObjectID().Hex()
	require.NoError(t, ws.WriteJSON(map[string]any{"event": "register", "data": map[string]string{"userId": other}}))
	assert.Equal(t, realtime.EventError, readEvent(t, ws).Event)
	assert.False(t, registry.IsOnline(other))
}
