package ws

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/umami-pos/api/internal/auth"
	"github.com/umami-pos/api/internal/middleware"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// Client is one subscriber of a topic. The hub owns and closes send.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	topic  string
	userID string
	send   chan []byte
}

// readPump discards inbound frames; order screens only listen. It returns,
// unregistering the client, once the peer goes away or stops answering pings.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WARNING: ws %s user %s: %v", c.topic, c.userID, err)
			}
			return
		}
	}
}

// writePump sends one event per frame and keeps the connection alive.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Handler subscribes authenticated connections to one topic.
type Handler struct {
	hub      *Hub
	secret   string
	topic    string
	upgrader websocket.Upgrader
}

// NewHandler serves topic from hub. Browser connections must come from one of
// origins; an empty list accepts any origin. Requests without an Origin
// header are not browsers and are accepted.
func NewHandler(hub *Hub, jwtSecret, topic string, origins []string) *Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &Handler{
		hub:    hub,
		secret: jwtSecret,
		topic:  topic,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed[origin]
			},
		},
	}
}

// ServeHTTP authenticates with ?token= (browsers cannot set headers on a
// WebSocket handshake) or an Authorization header, then upgrades.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		var err error
		if token, err = middleware.BearerToken(r); err != nil {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
	}
	claims, err := auth.ValidateToken(h.secret, token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		log.Printf("WARNING: ws upgrade for user %s: %v", claims.UserID, err)
		return
	}

	c := &Client{
		hub:    h.hub,
		conn:   conn,
		topic:  h.topic,
		userID: claims.UserID,
		send:   make(chan []byte, sendBuffer),
	}
	h.hub.register <- c

	go c.writePump()
	go c.readPump()
}
