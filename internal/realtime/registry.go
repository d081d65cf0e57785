package realtime

import (
	"sync"

	"github.com/Rrens/collabhub/internal/domain"
	"github.com/rs/zerolog/log"
)

// Registry maps users to their live sessions. A user may hold several
// sessions at once; a session belongs to at most one user.
type Registry struct {
	users  map[string]map[string]Session
	owners map[string]string
	mu     sync.RWMutex
}

// Stats is a point-in-time view of registry occupancy
type Stats struct {
	Users    int `json:"users"`
	Sessions int `json:"sessions"`
}

// NewRegistry creates an empty connection registry
func NewRegistry() *Registry {
	return &Registry{
		users:  make(map[string]map[string]Session),
		owners: make(map[string]string),
	}
}

// Register adds session to userID's session set. Registering the same
// session twice is a no-op; registering it under another user moves it.
// Empty or malformed user ids are ignored.
func (r *Registry) Register(userID string, session Session) bool {
	if session == nil || !domain.IsValidID(userID) {
		log.Warn().Str("user_id", userID).Msg("ignoring register with invalid user or session")
		return false
	}

	sessionID := session.ID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.owners[sessionID]; ok && prev != userID {
		r.removeLocked(prev, sessionID)
	}

	sessions, ok := r.users[userID]
	if !ok {
		sessions = make(map[string]Session)
		r.users[userID] = sessions
	}
	sessions[sessionID] = session
	r.owners[sessionID] = userID

	log.Debug().
		Str("user_id", userID).
		Str("session_id", sessionID).
		Int("sessions", len(sessions)).
		Msg("session registered")

	return true
}

// Unregister removes session from whichever user owns it and returns
// that user's id, or "" when the session was never registered.
func (r *Registry) Unregister(session Session) string {
	if session == nil {
		return ""
	}
	sessionID := session.ID()

	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.owners[sessionID]
	if !ok {
		return ""
	}
	r.removeLocked(userID, sessionID)

	log.Debug().
		Str("user_id", userID).
		Str("session_id", sessionID).
		Msg("session unregistered")

	return userID
}

// removeLocked must be called with mu held for writing
func (r *Registry) removeLocked(userID, sessionID string) {
	delete(r.owners, sessionID)
	sessions, ok := r.users[userID]
	if !ok {
		return
	}
	delete(sessions, sessionID)
	if len(sessions) == 0 {
		delete(r.users, userID)
	}
}

// SessionsFor returns a snapshot of userID's live sessions
func (r *Registry) SessionsFor(userID string) []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := r.users[userID]
	out := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s)
	}
	return out
}

// SendTo pushes event to every live session of userID. An offline user
// is logged and otherwise ignored.
func (r *Registry) SendTo(userID, event string, payload any) DeliveryReport {
	sessions := r.SessionsFor(userID)
	if len(sessions) == 0 {
		log.Debug().
			Str("user_id", userID).
			Str("event", event).
			Msg("user offline, skipping push")
		return DeliveryReport{}
	}
	return deliver(sessions, event, payload)
}

// IsOnline reports whether userID has at least one live session
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[userID]
	return ok
}

// OnlineUsers returns the ids of all users with live sessions
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0, len(r.users))
	for userID := range r.users {
		users = append(users, userID)
	}
	return users
}

// Stats returns the current user and session counts
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{Users: len(r.users), Sessions: len(r.owners)}
}
