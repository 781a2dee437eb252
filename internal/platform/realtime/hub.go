package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"fidbaq/internal/shared/events"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 32
)

// Subscriber is the part of the event bus the hub consumes.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, consumer string, handler func(context.Context, events.Envelope) error) error
}

type client struct {
	hub     *Hub
	conn    *websocket.Conn
	boardID string
	send    chan []byte
}

// Hub fans board-scoped envelopes out to websocket clients watching that
// board.
type Hub struct {
	mu       sync.RWMutex
	boards   map[string]map[*client]struct{}
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewHub(allowedOrigins []string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(origin, "/")] = struct{}{}
	}
	return &Hub{
		boards: make(map[string]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowAll {
					return true
				}
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[strings.TrimRight(origin, "/")]
				return ok
			},
		},
		logger: logger,
	}
}

// Run subscribes the hub to every board topic and blocks until ctx is done,
// then disconnects all clients.
func (h *Hub) Run(ctx context.Context, bus Subscriber) error {
	for _, topic := range events.BoardTopics {
		if err := bus.Subscribe(ctx, topic, "realtime-hub", h.Dispatch); err != nil {
			return err
		}
	}
	h.logger.Info("realtime hub started",
		"event", "realtime_hub_started",
		"module", "internal/platform/realtime",
		"layer", "platform",
		"topics", len(events.BoardTopics),
	)
	<-ctx.Done()
	h.closeAll()
	return nil
}

// Dispatch delivers one envelope to the clients of its board. Clients whose
// buffers are full are dropped.
func (h *Hub) Dispatch(_ context.Context, event events.Envelope) error {
	boardID := strings.TrimSpace(event.BoardID)
	if boardID == "" {
		return nil
	}
	message, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.boards[boardID] {
		select {
		case c.send <- message:
		default:
			h.logger.Warn("realtime client buffer full, disconnecting",
				"event", "realtime_client_dropped",
				"module", "internal/platform/realtime",
				"layer", "platform",
				"board_id", boardID,
			)
			h.removeLocked(c)
		}
	}
	return nil
}

// ServeWS upgrades the request and attaches the connection to boardID.
// Access checks happen in the caller.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, boardID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			"event", "realtime_upgrade_failed",
			"module", "internal/platform/realtime",
			"layer", "platform",
			"board_id", boardID,
			"error", err.Error(),
		)
		return
	}

	c := &client{hub: h, conn: conn, boardID: boardID, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	if h.boards[boardID] == nil {
		h.boards[boardID] = make(map[*client]struct{})
	}
	h.boards[boardID][c] = struct{}{}
	h.mu.Unlock()

	go c.writePump()
	go c.readPump()
}

// ClientCount reports connected clients for a board.
func (h *Hub) ClientCount(boardID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.boards[boardID])
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	clients, ok := h.boards[c.boardID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.boards, c.boardID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.boards {
		for c := range clients {
			h.removeLocked(c)
		}
	}
}

// readPump only services control frames; board clients never send data.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket closed unexpectedly",
					"event", "realtime_client_closed",
					"module", "internal/platform/realtime",
					"layer", "platform",
					"board_id", c.boardID,
					"error", err.Error(),
				)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
