package bus

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/voicerec/voicerec/pkg/logging"
)

const (
	writeWait      = 10 * time.Second
	clientSendSize = 16
)

// Frame is the JSON envelope every connected client receives per event.
type Frame struct {
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload"`
}

type client struct {
	conn *websocket.Conn
	send chan Frame
}

// Hub broadcasts fired events to connected websocket clients. It stands in
// for the host platform's event bus; the frontend card subscribes here.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	logger   *logging.Logger
}

// NewHub returns an empty hub.
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			// The host platform fronts authentication; origins are not
			// re-checked here.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Handler upgrades the request and keeps the connection attached until the
// client goes away.
func (h *Hub) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.logger.Warn("websocket upgrade failed", "error", err)
			return
		}

		cl := &client{conn: conn, send: make(chan Frame, clientSendSize)}
		h.attach(cl)

		go h.writeLoop(cl)
		h.readLoop(cl)
	}
}

// Fire broadcasts one frame per connected client. A client whose send buffer
// is full is dropped rather than allowed to stall the upload path.
func (h *Hub) Fire(_ context.Context, event string, payload map[string]any) {
	frame := Frame{Event: event, Payload: payload}

	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- frame:
		default:
			h.logger.Warn("dropping slow websocket client")
			delete(h.clients, cl)
			close(cl.send)
		}
	}
}

// ClientCount returns the number of attached clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close detaches and closes every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		delete(h.clients, cl)
		close(cl.send)
	}
}

func (h *Hub) attach(cl *client) {
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) detach(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
}

func (h *Hub) writeLoop(cl *client) {
	defer cl.conn.Close()

	for frame := range cl.send {
		raw, err := json.Marshal(frame)
		if err != nil {
			h.logger.Error("encode event frame", "error", err)
			continue
		}
		cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			h.detach(cl)
			return
		}
	}
}

// readLoop drains the connection so control frames are processed; clients
// never send application data.
func (h *Hub) readLoop(cl *client) {
	defer h.detach(cl)

	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}
