// Package monitor streams a live blackjack table to read-only websocket spectators.
package monitor

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Spectators only send control frames and the odd stray message
	maxMessageSize = 512

	sendBuffer = 256
)

// Hub tracks connected spectators and fans messages out to them
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	greeting []byte
	clock    quartz.Clock
	logger   *log.Logger
}

// NewHub creates an empty hub
func NewHub(clock quartz.Clock, logger *log.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		clock:   clock,
		logger:  logger.WithPrefix("monitor"),
	}
}

// Clients returns the number of connected spectators
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues data for every spectator. A spectator whose buffer is
// full is disconnected; the broadcaster never blocks.
func (h *Hub) Broadcast(data []byte) {
	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Spectator send buffer full, closing connection", "remote", c.remote)
		h.remove(c)
	}
}

func (h *Hub) setGreeting(data []byte) {
	h.mu.Lock()
	h.greeting = data
	h.mu.Unlock()
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.greeting != nil {
		c.send <- h.greeting
	}
	h.clients[c] = struct{}{}
	h.logger.Info("Spectator connected", "remote", c.remote, "name", c.name, "clients", len(h.clients))
}

// remove unregisters c and closes its send channel. Safe to call twice.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.logger.Info("Spectator disconnected", "remote", c.remote, "clients", len(h.clients))
}

// Close disconnects every spectator
func (h *Hub) Close() {
	h.mu.RLock()
	all := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		all = append(all, c)
	}
	h.mu.RUnlock()

	for _, c := range all {
		h.remove(c)
	}
}

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	remote string
	name   string
}

// readPump discards everything the spectator sends; it exists to process
// control frames and notice the connection closing.
func (c *client) readPump() {
	defer func() {
		c.hub.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("Spectator read error", "remote", c.remote, "error", err)
			}
			return
		}
	}
}

func (c *client) writePump(ticker *quartz.Ticker) {
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.hub.logger.Debug("Failed to write to spectator", "remote", c.remote, "error", err)
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
