package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"cluedo-custom/internal/events"
	"cluedo-custom/internal/manager"
)

const sendBuffer = 16

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is what websocket clients receive for every public game event.
type Message struct {
	Type string       `json:"type"`
	Data events.Event `json:"data"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub fans game events out to the websocket clients watching that game.
// It is an events.Listener.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*client]bool
	log     *logrus.Logger
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{clients: make(map[string]map[*client]bool), log: logger}
}

// HandleEvent broadcasts e to the game's clients. Slow clients drop messages
// rather than stall the publisher.
func (h *Hub) HandleEvent(e events.Event) {
	payload, err := json.Marshal(Message{Type: events.Name(e), Data: e})
	if err != nil {
		h.log.Errorf("Error encoding event %s: %v", events.Name(e), err)
		return
	}

	code := e.GameCode()
	h.mu.RLock()
	for c := range h.clients[code] {
		select {
		case c.send <- payload:
		default:
			h.log.Debugf("Dropping event for slow client of game %s", code)
		}
	}
	h.mu.RUnlock()

	if _, ok := e.(events.GameDeleted); ok {
		h.closeGame(code)
	}
}

// Count returns the number of clients watching a game.
func (h *Hub) Count(code string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[code])
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for code, set := range h.clients {
		for c := range set {
			c.close()
		}
		delete(h.clients, code)
	}
}

func (h *Hub) register(code string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[code] == nil {
		h.clients[code] = make(map[*client]bool)
	}
	h.clients[code][c] = true
}

func (h *Hub) unregister(code string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[code]; ok && set[c] {
		delete(set, c)
		c.close()
		if len(set) == 0 {
			delete(h.clients, code)
		}
	}
}

func (h *Hub) closeGame(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[code] {
		c.close()
	}
	delete(h.clients, code)
}

// serveWS upgrades the request and streams the events of one game.
func (h *Hub) serveWS(mgr *manager.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, err := mgr.Get(c.Param("code"))
		if err != nil {
			abortWithError(c, err)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.log.Debugf("Upgrade error: %v", err)
			return
		}

		cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}
		h.register(g.ID, cl)
		h.log.Debugf("Client connected to game %s (%d watching)", g.ID, h.Count(g.ID))

		go cl.writePump()
		cl.readPump()
		h.unregister(g.ID, cl)
	}
}

// readPump discards client messages and returns when the connection drops.
func (c *client) readPump() {
	defer c.conn.Close()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
