package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onboard-hub/backend/internal/models"
)

func dialHub(t *testing.T, hub *BatchHub) (*websocket.Conn, func()) {
	t.Helper()

	e := echo.New()
	e.GET("/api/ws/batches", hub.HandleWebSocket)
	srv := httptest.NewServer(e)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/batches"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))

	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func TestBatchHubBroadcast(t *testing.T) {
	hub := NewBatchHub()
	conn, cleanup := dialHub(t, hub)
	defer cleanup()

	// Greeting arrives after registration, so the client is counted by
	// the time we read it.
	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MsgTypeConnected, msg.Type)
	assert.Equal(t, 1, hub.ClientCount())

	hub.BroadcastBatch(&models.Batch{
		ID:             "batch-1",
		FileName:       "roster.csv",
		TotalEmployees: 3,
		Status:         models.BatchStatusProcessing,
	})

	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, MsgTypeBatch, msg.Type)

	var b models.Batch
	require.NoError(t, json.Unmarshal(msg.Payload, &b))
	assert.Equal(t, "batch-1", b.ID)
	assert.Equal(t, 3, b.TotalEmployees)
}

func TestBatchHubPingPong(t *testing.T) {
	hub := NewBatchHub()
	conn, cleanup := dialHub(t, hub)
	defer cleanup()

	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, MsgTypeConnected, msg.Type)

	require.NoError(t, conn.WriteJSON(WSMessage{Type: MsgTypePing}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MsgTypePong, msg.Type)
}

func TestBatchHubClientCountAfterDisconnect(t *testing.T) {
	hub := NewBatchHub()
	conn, cleanup := dialHub(t, hub)
	defer cleanup()

	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, 1, hub.ClientCount())

	conn.Close()

	deadline := time.Now().Add(3 * time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client still counted after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
