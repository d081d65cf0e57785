package handler

import (
	"context"
	"net/http"
	"sort"

	"github.com/Rrens/collabhub/internal/api/response"
	"github.com/Rrens/collabhub/internal/realtime"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including database and cache
// connectivity
func ReadyCheck(db Pinger, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			response.ServiceUnavailable(w, "database not ready")
			return
		}
		if err := cache.Ping(r.Context()); err != nil {
			response.ServiceUnavailable(w, "cache not ready")
			return
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}

// StatsSource reports live connections
type StatsSource interface {
	Stats() realtime.Stats
	OnlineUsers() []string
}

// RoomCounter reports how many rooms have members
type RoomCounter interface {
	RoomCount() int
}

// RealtimeStats returns connection counts and the ids of online users
func RealtimeStats(registry StatsSource, rooms RoomCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := registry.Stats()
		online := registry.OnlineUsers()
		sort.Strings(online)

		response.OK(w, map[string]any{
			"users":       stats.Users,
			"sessions":    stats.Sessions,
			"rooms":       rooms.RoomCount(),
			"onlineUsers": online,
		})
	}
}

// CacheFlusher drops every cached entry it owns
type CacheFlusher interface {
	FlushAll(ctx context.Context) (int64, error)
}

// FlushCache clears all cached chat names from Redis
func FlushCache(cache CacheFlusher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := cache.FlushAll(r.Context())
		if err != nil {
			response.InternalError(w, "failed to flush cache: "+err.Error())
			return
		}

		response.OK(w, map[string]any{
			"message":     "cache flushed successfully",
			"keysDeleted": deleted,
		})
	}
}
