package realtime

import (
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	chatRoomPrefix = "chat:"
	taskRoomPrefix = "task:"
)

// ChatRoom returns the room name for a chat
func ChatRoom(chatID string) string {
	return chatRoomPrefix + chatID
}

// TaskRoom returns the room name for a task's comment stream
func TaskRoom(taskID string) string {
	return taskRoomPrefix + taskID
}

// Rooms tracks named broadcast groups of sessions. Membership is
// independent of the user registry.
type Rooms struct {
	rooms  map[string]map[string]Session
	joined map[string]map[string]struct{}
	mu     sync.RWMutex
}

// NewRooms creates an empty room broadcaster
func NewRooms() *Rooms {
	return &Rooms{
		rooms:  make(map[string]map[string]Session),
		joined: make(map[string]map[string]struct{}),
	}
}

// Join adds session to room
func (b *Rooms) Join(session Session, room string) {
	if session == nil || room == "" {
		return
	}
	sessionID := session.ID()

	b.mu.Lock()
	defer b.mu.Unlock()

	members, ok := b.rooms[room]
	if !ok {
		members = make(map[string]Session)
		b.rooms[room] = members
	}
	members[sessionID] = session

	rooms, ok := b.joined[sessionID]
	if !ok {
		rooms = make(map[string]struct{})
		b.joined[sessionID] = rooms
	}
	rooms[room] = struct{}{}

	log.Debug().Str("session_id", sessionID).Str("room", room).Msg("joined room")
}

// Leave removes session from room
func (b *Rooms) Leave(session Session, room string) {
	if session == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.leaveLocked(session.ID(), room)
}

// LeaveAll removes session from every room it joined and returns
// those room names
func (b *Rooms) LeaveAll(session Session) []string {
	if session == nil {
		return nil
	}
	sessionID := session.ID()

	b.mu.Lock()
	defer b.mu.Unlock()

	left := make([]string, 0, len(b.joined[sessionID]))
	for room := range b.joined[sessionID] {
		left = append(left, room)
	}
	for _, room := range left {
		b.leaveLocked(sessionID, room)
	}
	return left
}

func (b *Rooms) leaveLocked(sessionID, room string) {
	if members, ok := b.rooms[room]; ok {
		delete(members, sessionID)
		if len(members) == 0 {
			delete(b.rooms, room)
		}
	}
	if rooms, ok := b.joined[sessionID]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(b.joined, sessionID)
		}
	}
}

// Members returns a snapshot of the sessions currently in room
func (b *Rooms) Members(room string) []Session {
	b.mu.RLock()
	defer b.mu.RUnlock()

	members := b.rooms[room]
	out := make([]Session, 0, len(members))
	for _, s := range members {
		out = append(out, s)
	}
	return out
}

// Broadcast pushes event to every session in room. An empty room is a
// silent no-op.
func (b *Rooms) Broadcast(room, event string, payload any) DeliveryReport {
	members := b.Members(room)
	if len(members) == 0 {
		return DeliveryReport{}
	}
	return deliver(members, event, payload)
}

// RoomCount returns the number of rooms with at least one member
func (b *Rooms) RoomCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.rooms)
}
