package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/johnquangdev/script-workspace/internal/domain/entities"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// EventWorkspace carries a full workspace view.
	EventWorkspace = "workspace"
)

// Event is the message written to subscribers.
type Event struct {
	Type      string                 `json:"type"`
	Data      entities.WorkspaceView `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

// Hub fans workspace views out to websocket subscribers. Every event is a
// complete view, so a slow subscriber only ever receives the latest one.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu           sync.RWMutex
	clients      map[*client]struct{}
	closed       bool
	lastRevision uint64
}

type client struct {
	conn *websocket.Conn
	// send holds at most the newest undelivered event
	send chan []byte
	once sync.Once
}

// NewHub creates a hub accepting upgrades from allowedOrigins. "*" accepts
// any origin; requests without an Origin header are always accepted.
func NewHub(allowedOrigins []string, logger *zap.Logger) *Hub {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || allowAll {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// Publish implements workspace.Notifier. A view older than the last
// published one is dropped.
func (h *Hub) Publish(view entities.WorkspaceView) {
	payload, err := encodeEvent(view)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to encode workspace event", zap.Error(err))
		}
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if view.Revision < h.lastRevision {
		return
	}
	h.lastRevision = view.Revision
	for c := range h.clients {
		c.offer(payload)
	}
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve upgrades the request, sends current as the first event and then
// streams every published view until the peer disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, current entities.WorkspaceView) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	initial, err := encodeEvent(current)
	if err != nil {
		_ = conn.Close()
		return err
	}

	c := &client{conn: conn, send: make(chan []byte, 1)}
	if !h.register(c, initial) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return nil
	}

	if h.logger != nil {
		h.logger.Info("event subscriber connected", zap.String("remote", r.RemoteAddr), zap.Int("subscribers", h.Subscribers()))
	}

	go h.writePump(c)
	h.readPump(c)
	return nil
}

// Close disconnects every subscriber and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

func (h *Hub) register(c *client, initial []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	c.offer(initial)
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

// readPump discards incoming messages and keeps the read deadline alive
// through pongs. It returns when the connection fails.
func (h *Hub) readPump(c *client) {
	defer h.unregister(c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && h.logger != nil {
				h.logger.Debug("event subscriber read failed", zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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

// offer replaces any undelivered event with payload. Callers hold the hub
// lock, so the channel is never closed underneath.
func (c *client) offer(payload []byte) {
	for {
		select {
		case c.send <- payload:
			return
		default:
		}
		select {
		case <-c.send:
		default:
		}
	}
}

func encodeEvent(view entities.WorkspaceView) ([]byte, error) {
	return json.Marshal(Event{Type: EventWorkspace, Data: view, Timestamp: time.Now().UTC()})
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}
