package realtime

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Rrens/collabhub/internal/config"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Conn is a websocket-backed Session. Outbound frames are queued on a
// bounded channel drained by WritePump, so Send never waits on the network.
type Conn struct {
	id        string
	ws        *websocket.Conn
	cfg       config.RealtimeConfig
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewConn wraps an upgraded websocket connection
func NewConn(ws *websocket.Conn, cfg config.RealtimeConfig) *Conn {
	return &Conn{
		id:   uuid.New().String(),
		ws:   ws,
		cfg:  cfg,
		send: make(chan []byte, cfg.SendBuffer),
		done: make(chan struct{}),
	}
}

// ID returns the session id
func (c *Conn) ID() string {
	return c.id
}

// Send queues an event for delivery
func (c *Conn) Send(event string, payload any) error {
	data, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event, err)
	}

	select {
	case <-c.done:
		return ErrSessionClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrSessionClosed
	default:
		return ErrSendBufferFull
	}
}

// Close stops the session. WritePump closes the socket on its way out.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return nil
}

// WritePump drains the outbound queue and keeps the connection alive with
// pings. It owns the socket's write side and closes the socket on exit.
func (c *Conn) WritePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
		c.ws.Close()
	}()

	for {
		select {
		case <-c.done:
			c.ws.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.cfg.WriteWait),
			)
			return
		case msg := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug().Err(err).Str("session_id", c.id).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteWait)); err != nil {
				log.Debug().Err(err).Str("session_id", c.id).Msg("websocket ping failed")
				return
			}
		}
	}
}

// ReadPump decodes client frames and hands them to handle until the peer
// goes away. It returns after closing the session.
func (c *Conn) ReadPump(handle func(Inbound)) {
	defer c.Close()

	c.ws.SetReadLimit(c.cfg.MaxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("session_id", c.id).Msg("websocket closed unexpectedly")
			}
			return
		}

		var in Inbound
		if err := json.Unmarshal(data, &in); err != nil {
			reply(c, EventError, errorPayload("", "malformed frame"))
			continue
		}
		handle(in)
	}
}
