package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/neztrixTON/app/internal/biz/domain"
	"github.com/neztrixTON/app/internal/biz/usecase"
	"github.com/neztrixTON/app/internal/logx"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 25 * time.Second
	clientSendSize = 32
)

// Hub fans chat events out to the websocket connections of their participants
type Hub struct {
	presenceUC *usecase.PresenceUsecase
	upgrader   websocket.Upgrader
	log        zerolog.Logger

	mu      sync.RWMutex
	clients map[string]map[*wsClient]bool
}

type wsClient struct {
	conn   *websocket.Conn
	userID string
	send   chan domain.Event
	done   chan struct{}
}

// NewHub creates a hub accepting connections from allowedOrigins ("*" allows any)
func NewHub(presenceUC *usecase.PresenceUsecase, allowedOrigins []string) *Hub {
	allowAll := false
	allowedMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowedMap[origin] = true
	}

	return &Hub{
		presenceUC: presenceUC,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || allowedMap[origin]
			},
		},
		log:     logx.Component("hub"),
		clients: make(map[string]map[*wsClient]bool),
	}
}

// Publish queues event for every connection of userIDs. Slow connections drop events.
func (h *Hub) Publish(userIDs []string, event domain.Event) {
	h.mu.RLock()
	var targets []*wsClient
	for _, id := range userIDs {
		for c := range h.clients[id] {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- event:
		case <-c.done:
		default:
			h.log.Warn().Str("user_id", c.userID).Str("event", string(event.Type)).Msg("Client queue full, event dropped")
		}
	}
}

// Connections returns the number of open connections of userID
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// ServeWS handles GET /ws?userId=
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, domain.MissingParameter("userId"))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	c := &wsClient{
		conn:   conn,
		userID: userID,
		send:   make(chan domain.Event, clientSendSize),
		done:   make(chan struct{}),
	}
	h.presenceUC.Touch(r.Context(), userID)
	h.register(c)

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*wsClient]bool)
	}
	h.clients[c.userID][c] = true
	total := len(h.clients[c.userID])
	h.mu.Unlock()

	h.log.Debug().Str("user_id", c.userID).Int("connections", total).Msg("Client connected")
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	if conns, ok := h.clients[c.userID]; ok && conns[c] {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.clients, c.userID)
		}
		close(c.done)
	}
	h.mu.Unlock()
	c.conn.Close()

	h.log.Debug().Str("user_id", c.userID).Msg("Client disconnected")
}

// readLoop counts every inbound frame and pong as a heartbeat
func (h *Hub) readLoop(c *wsClient) {
	defer h.unregister(c)

	ctx := context.Background()
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		h.presenceUC.Touch(ctx, c.userID)
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
		h.presenceUC.Touch(ctx, c.userID)
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

func (h *Hub) writeLoop(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case event := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(event); err != nil {
				h.unregister(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.unregister(c)
				return
			}
		}
	}
}
