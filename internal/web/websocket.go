package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Messages sent to the browser.
const (
	WSMsgConnected    = "connected"
	WSMsgPong         = "pong"
	WSMsgError        = "error"
	WSMsgLang         = "lang"
	WSMsgLabel        = "label"
	WSMsgToggle       = "toggle"
	WSMsgInput        = "input"
	WSMsgLoading      = "loading"
	WSMsgResult       = "result"
	WSMsgScore        = "score"
	WSMsgScoreMessage = "score_message"
	WSMsgStatus       = "status"
	WSMsgMessage      = "message"
	WSMsgItems        = "items"
	WSMsgSelection    = "selection"
)

// Requests received from the browser.
const (
	WSReqPing      = "ping"
	WSReqSubmit    = "submit"
	WSReqLang      = "lang"
	WSReqToggle    = "toggle"
	WSReqLoad      = "load_selection"
	WSReqLoadEval  = "load_stored"
	WSReqFeedback  = "feedback"
	WSReqRecommend = "recommend"
)

// WSMessage is one frame sent to a client.
type WSMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Hub tracks connected clients and fans out broadcasts.
type Hub struct {
	log *slog.Logger

	register     chan *WSClient
	unregister   chan *WSClient
	broadcastAll chan *WSMessage

	mu      sync.RWMutex
	clients map[uuid.UUID]*WSClient

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a hub. Call Run to start it.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		log:          log.With("component", "web"),
		register:     make(chan *WSClient),
		unregister:   make(chan *WSClient),
		broadcastAll: make(chan *WSMessage, 256),
		clients:      make(map[uuid.UUID]*WSClient),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Run is the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			h.mu.Lock()
			for _, client := range h.clients {
				client.Close()
			}
			h.clients = make(map[uuid.UUID]*WSClient)
			h.mu.Unlock()

			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			total := len(h.clients)
			h.mu.Unlock()

			h.log.Debug("WebSocket client registered",
				"client", client.id, "total", total,
			)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				client.Close()
			}
			total := len(h.clients)
			h.mu.Unlock()

			h.log.Debug("WebSocket client unregistered",
				"client", client.id, "total", total,
			)

		case msg := <-h.broadcastAll:
			h.mu.RLock()
			for _, client := range h.clients {
				client.Send(msg)
			}
			h.mu.RUnlock()
		}
	}
}

// Stop shuts the hub down and closes every client.
func (h *Hub) Stop() {
	h.cancel()
}

// Broadcast queues msg for every client. It never blocks the caller; the
// message is dropped if the hub is backed up or stopped.
func (h *Hub) Broadcast(msg *WSMessage) {
	select {
	case h.broadcastAll <- msg:
	case <-h.ctx.Done():
	default:
		h.log.Warn("Broadcast queue full, dropping message",
			"type", msg.Type,
		)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// upgrader only accepts same-origin and origin-less connections.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}

		return origin == "http://"+r.Host || origin == "https://"+r.Host
	},
}

// handleWebSocket upgrades /ws and gives the connection its own popup view.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	client := newWSClient(s.hub, conn, s.log)
	client.view = s.newPopupView(client)

	select {
	case s.hub.register <- client:
	case <-s.hub.ctx.Done():
		client.Close()
		return
	}

	client.Send(&WSMessage{
		Type: WSMsgConnected,
		Payload: map[string]any{
			"client_id": client.id.String(),
			"time":      time.Now().UTC().Format(time.RFC3339),
		},
	})

	go client.writePump()

	// The view renders its initial state before any request is read.
	if err := client.view.open(r.Context()); err != nil {
		s.log.Warn("Unable to initialise popup view", "error", err)
	}

	go client.readPump()
}

// wsRequest is one frame received from a client.
type wsRequest struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// handleIncoming decodes a client frame and dispatches it to the client's
// popup view.
func (c *WSClient) handleIncoming(messageType int, data []byte) {
	if messageType != websocket.TextMessage {
		return
	}

	var req wsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.sendError("invalid message format")
		return
	}

	if req.Type == WSReqPing {
		c.Send(&WSMessage{
			Type: WSMsgPong,
			Payload: map[string]any{
				"time": time.Now().UTC().Format(time.RFC3339),
			},
		})

		return
	}

	if err := c.view.handle(c.hub.ctx, req); err != nil {
		c.sendError(err.Error())
	}
}

func (c *WSClient) sendError(message string) {
	c.Send(&WSMessage{
		Type:    WSMsgError,
		Payload: map[string]any{"message": message},
	})
}
