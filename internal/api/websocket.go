package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/onboard-hub/backend/internal/models"
)

// WebSocket message types for the batch progress push
const (
	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypeBatch     = "batch:update"
	MsgTypePong      = "pong"

	// Client -> Server messages
	MsgTypePing = "ping"
)

// WSMessage is the envelope for every websocket frame.
type WSMessage struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// BatchHub pushes tracked batch snapshots to every connected client.
// Clients that cannot keep up are disconnected rather than allowed to
// stall the broadcast.
type BatchHub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*hubClient]struct{}
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewBatchHub creates an empty hub.
func NewBatchHub() *BatchHub {
	return &BatchHub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow connections from dev server
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
		},
		clients: make(map[*hubClient]struct{}),
	}
}

// HandleWebSocket upgrades the connection and keeps it subscribed until
// the client disconnects.
func (h *BatchHub) HandleWebSocket(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &hubClient{
		conn: ws,
		send: make(chan []byte, 32),
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	fmt.Printf("[BatchHub] Client connected (%d total)\n", count)

	h.sendEnvelope(client, WSMessage{Type: MsgTypeConnected, Timestamp: time.Now().UnixMilli()})

	go h.writeLoop(client)
	h.readLoop(client)

	h.mu.Lock()
	delete(h.clients, client)
	close(client.send)
	count = len(h.clients)
	h.mu.Unlock()

	ws.Close()
	fmt.Printf("[BatchHub] Client disconnected (%d total)\n", count)
	return nil
}

// BroadcastBatch pushes one batch snapshot to every client. Implements
// poller.Broadcaster.
func (h *BatchHub) BroadcastBatch(b *models.Batch) {
	payload, err := json.Marshal(b)
	if err != nil {
		return
	}
	frame, err := json.Marshal(WSMessage{
		Type:      MsgTypeBatch,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- frame:
		default:
			// Slow consumer; drop the frame. The next poll refreshes it.
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *BatchHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// readLoop answers pings and detects disconnects.
func (h *BatchHub) readLoop(client *hubClient) {
	for {
		var msg WSMessage
		if err := client.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				fmt.Printf("[BatchHub] Connection error: %v\n", err)
			}
			return
		}
		if msg.Type == MsgTypePing {
			h.sendEnvelope(client, WSMessage{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()})
		}
	}
}

func (h *BatchHub) writeLoop(client *hubClient) {
	for frame := range client.send {
		if err := client.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
}

func (h *BatchHub) sendEnvelope(client *hubClient, msg WSMessage) {
	frame, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case client.send <- frame:
	default:
	}
}
