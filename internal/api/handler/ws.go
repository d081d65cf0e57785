package handler

import (
	"net/http"
	"slices"

	"github.com/Rrens/collabhub/internal/config"
	"github.com/Rrens/collabhub/internal/realtime"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSHandler upgrades authenticated requests to realtime sessions
type WSHandler struct {
	gateway  *realtime.Gateway
	cfg      config.RealtimeConfig
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new websocket handler
func NewWSHandler(gateway *realtime.Gateway, cfg config.RealtimeConfig) *WSHandler {
	return &WSHandler{
		gateway: gateway,
		cfg:     cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// Serve runs one websocket session until the client disconnects
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		log.Debug().Err(err).Str("user_id", userID).Msg("websocket upgrade failed")
		return
	}

	conn := realtime.NewConn(ws, h.cfg)
	log.Debug().Str("session_id", conn.ID()).Str("user_id", userID).Msg("websocket connected")

	go conn.WritePump()
	conn.ReadPump(func(in realtime.Inbound) {
		h.gateway.Handle(conn, userID, in)
	})
	h.gateway.Disconnect(conn)
}
