package realtime

import "encoding/json"

// Client to server events
const (
	EventRegister  = "register"
	EventJoinChat  = "join-chat"
	EventLeaveChat = "leave-chat"
	EventJoinTask  = "join-task"
	EventLeaveTask = "leave-task"
)

// Server to client events
const (
	EventNotification = "notification"
	EventChatMessage  = "chat-message"
	EventNewComment   = "new-comment"
	EventRegistered   = "registered"
	EventError        = "error"
)

// Envelope is the wire frame for outbound events
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Inbound is the wire frame for client events. Data is decoded lazily
// because its shape depends on the event.
type Inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// stringArg accepts either a bare JSON string or an object carrying the
// value under field.
func stringArg(raw json.RawMessage, field string) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		if v, ok := obj[field].(string); ok {
			return v
		}
	}
	return ""
}
