package gauntlet

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client is one websocket subscriber, attached to a single topic.
type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	Topic    string
	isClosed bool
	mu       sync.Mutex
}

// Hub fans out state-change events to websocket subscribers grouped by
// topic. Delivery is best-effort: a slow client is skipped, a marshal
// failure is logged and dropped. Nothing here ever reaches the tournament
// transaction.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	topics     map[string]map[*Client]bool
	mu         sync.RWMutex
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		topics:     make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.topics[client.Topic]; !ok {
				h.topics[client.Topic] = make(map[*Client]bool)
			}
			h.topics[client.Topic][client] = true
			h.logger.Info("websocket client registered",
				slog.String("topic", client.Topic),
				slog.Int("subscribers", len(h.topics[client.Topic])))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if subscribers, ok := h.topics[client.Topic]; ok {
				if _, okClient := subscribers[client]; okClient {
					client.closeSend()
					delete(subscribers, client)
					if len(subscribers) == 0 {
						delete(h.topics, client.Topic)
					}
					h.logger.Info("websocket client unregistered",
						slog.String("topic", client.Topic),
						slog.Int("subscribers", len(subscribers)))
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish broadcasts a payload to every subscriber of the topic. Marshal
// errors and full client buffers are logged and swallowed.
func (h *Hub) Publish(topic string, payload interface{}) {
	message, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to marshal websocket payload",
			slog.String("topic", topic), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.topics[topic] {
		client.mu.Lock()
		if client.isClosed {
			client.mu.Unlock()
			continue
		}
		select {
		case client.Send <- message:
		default:
			h.logger.Warn("websocket client send buffer full, dropping message",
				slog.String("topic", topic))
		}
		client.mu.Unlock()
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isClosed {
		close(c.Send)
		c.isClosed = true
	}
}

func (c *Client) markClosed() {
	c.mu.Lock()
	c.isClosed = true
	c.mu.Unlock()
}

// ReadPump drains (and ignores) inbound frames so pings/pongs and close
// handshakes work. Runs until the peer disconnects.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
		c.markClosed()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("websocket read error",
					slog.String("topic", c.Topic), slog.Any("error", err))
			}
			return
		}
	}
}

// WritePump forwards hub messages to the peer and keeps the connection
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.markClosed()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush anything queued behind the current message.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
