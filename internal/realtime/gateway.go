package realtime

import (
	"github.com/Rrens/collabhub/internal/domain"
	"github.com/rs/zerolog/log"
)

// Gateway applies client events from the transport to the registry and
// the rooms
type Gateway struct {
	registry *Registry
	rooms    *Rooms
}

// NewGateway creates a new event gateway
func NewGateway(registry *Registry, rooms *Rooms) *Gateway {
	return &Gateway{registry: registry, rooms: rooms}
}

// Handle applies one client event. authUserID is the user the transport
// authenticated, or "" for an anonymous connection.
func (g *Gateway) Handle(session Session, authUserID string, in Inbound) {
	switch in.Event {
	case EventRegister:
		g.register(session, authUserID, stringArg(in.Data, "userId"))
	case EventJoinChat:
		g.room(session, in.Event, stringArg(in.Data, "chatId"), ChatRoom, true)
	case EventLeaveChat:
		g.room(session, in.Event, stringArg(in.Data, "chatId"), ChatRoom, false)
	case EventJoinTask:
		g.room(session, in.Event, stringArg(in.Data, "taskId"), TaskRoom, true)
	case EventLeaveTask:
		g.room(session, in.Event, stringArg(in.Data, "taskId"), TaskRoom, false)
	default:
		reply(session, EventError, errorPayload(in.Event, "unknown event"))
	}
}

// Disconnect drops every trace of session from the registry and rooms
func (g *Gateway) Disconnect(session Session) {
	userID := g.registry.Unregister(session)
	rooms := g.rooms.LeaveAll(session)

	log.Debug().
		Str("session_id", session.ID()).
		Str("user_id", userID).
		Int("rooms_left", len(rooms)).
		Msg("session disconnected")
}

func (g *Gateway) register(session Session, authUserID, userID string) {
	if userID == "" {
		userID = authUserID
	}
	if authUserID != "" && userID != authUserID {
		reply(session, EventError, errorPayload(EventRegister, "cannot register as another user"))
		return
	}
	if !g.registry.Register(userID, session) {
		reply(session, EventError, errorPayload(EventRegister, "invalid user id"))
		return
	}

	reply(session, EventRegistered, map[string]string{
		"userId":    userID,
		"sessionId": session.ID(),
	})
}

func (g *Gateway) room(session Session, event, id string, name func(string) string, join bool) {
	if !domain.IsValidID(id) {
		reply(session, EventError, errorPayload(event, "invalid room id"))
		return
	}
	if join {
		g.rooms.Join(session, name(id))
		return
	}
	g.rooms.Leave(session, name(id))
}

func errorPayload(event, message string) map[string]string {
	return map[string]string{"event": event, "message": message}
}

// reply sends a direct acknowledgement; a failure only means the client
// is already gone
func reply(session Session, event string, payload any) {
	if err := session.Send(event, payload); err != nil {
		log.Debug().Err(err).Str("session_id", session.ID()).Str("event", event).Msg("failed to reply")
	}
}
