package web

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Review text can be long, so allow larger frames than a chat UI.
	maxMessageSize = 64 * 1024

	sendBufferSize = 256
)

// WSClient is one browser connection and the popup view it drives.
type WSClient struct {
	id   uuid.UUID
	hub  *Hub
	conn *websocket.Conn
	log  *slog.Logger
	view *popupView

	send chan *WSMessage

	mu     sync.Mutex
	closed bool
}

func newWSClient(hub *Hub, conn *websocket.Conn, log *slog.Logger) *WSClient {
	id := uuid.New()

	return &WSClient{
		id:   id,
		hub:  hub,
		conn: conn,
		log:  log.With("client", id),
		send: make(chan *WSMessage, sendBufferSize),
	}
}

// Send queues msg. Messages to a closed or backed-up client are dropped.
func (c *WSClient) Send(msg *WSMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- msg:
	default:
		c.log.Warn("WebSocket send buffer full, dropping message",
			"type", msg.Type,
		)
	}
}

// Close closes the connection and discards the client's popup session.
func (c *WSClient) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.conn.Close()
	c.mu.Unlock()

	if c.view != nil {
		c.view.close()
	}
}

// readPump reads frames until the connection fails, then unregisters.
func (c *WSClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {

				c.log.Warn("WebSocket read failed", "error", err)
			}

			return
		}

		c.handleIncoming(messageType, data)
	}
}

// writePump writes queued frames and keepalive pings.
func (c *WSClient) writePump() {
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
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				c.log.Error("WebSocket marshal failed", "error", err)
				continue
			}

			err = c.conn.WriteMessage(websocket.TextMessage, data)
			if err != nil {
				c.log.Debug("WebSocket write failed", "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			if err != nil {
				return
			}
		}
	}
}
