// Package ws pushes ship and world events to browsers over websockets.
//
// A Hub owns the set of connected clients. Each client subscribes to one or
// more channels when it connects (`GET /ws?channel=ships&channel=user:u1`)
// and receives every envelope published on those channels.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256

	defaultChannel = "ships"
	userPrefix     = "user:"
	senderSystem   = "system"
)

var ErrHubClosed = errors.New("hub closed")

// Envelope is the JSON frame every subscriber receives.
type Envelope struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
	Payload any    `json:"payload"`
	Sender  string `json:"sender"`
}

type outbound struct {
	channel string
	data    []byte
}

type client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	channels map[string]struct{}
}

type Hub struct {
	logger *slog.Logger

	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan outbound
	counts     chan chan map[string]int
	done       chan struct{}

	upgrader websocket.Upgrader
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:     logger,
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan outbound, sendBuffer),
		counts:     make(chan chan map[string]int),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then
// closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			close(c.send)
			delete(h.clients, c)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.logger.Debug("ws client registered", "channels", len(c.channels), "clients", len(h.clients))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				if _, ok := c.channels[msg.channel]; !ok {
					continue
				}
				select {
				case c.send <- msg.data:
				default:
					// Slow reader; drop it rather than stall everyone else.
					close(c.send)
					delete(h.clients, c)
					h.logger.Warn("ws client dropped", "reason", "send buffer full")
				}
			}
		case reply := <-h.counts:
			out := map[string]int{}
			for c := range h.clients {
				for ch := range c.channels {
					out[ch]++
				}
			}
			reply <- out
		}
	}
}

// Publish implements ports.Publisher.
func (h *Hub) Publish(channel, msgType string, payload any) error {
	data, err := json.Marshal(Envelope{Type: msgType, Channel: channel, Payload: payload, Sender: senderSystem})
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- outbound{channel: channel, data: data}:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

// Subscribers reports how many connected clients listen on channel.
func (h *Hub) Subscribers(channel string) int {
	reply := make(chan map[string]int, 1)
	select {
	case h.counts <- reply:
	case <-h.done:
		return 0
	}
	return (<-reply)[channel]
}

// ServeHTTP upgrades the request. A user channel is only granted to the
// caller naming the same user in X-User-ID or the user query parameter.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	channels, ok := requestedChannels(r)
	if !ok {
		http.Error(w, "forbidden channel", http.StatusForbidden)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "err", err)
		return
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), channels: channels}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

func requestedChannels(r *http.Request) (map[string]struct{}, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if userID == "" {
		userID = strings.TrimSpace(r.URL.Query().Get("user"))
	}
	raw := r.URL.Query()["channel"]
	if len(raw) == 0 {
		raw = []string{defaultChannel}
	}
	out := make(map[string]struct{}, len(raw))
	for _, ch := range raw {
		ch = strings.TrimSpace(ch)
		if ch == "" {
			continue
		}
		if strings.HasPrefix(ch, userPrefix) && (userID == "" || ch != userPrefix+userID) {
			return nil, false
		}
		out[ch] = struct{}{}
	}
	return out, len(out) > 0
}

// readPump only watches for close and pong frames; clients do not send
// commands over the socket.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Info("ws read closed", "err", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
