package transport

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-motion-inspector/pkg/models"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	r := gin.New()
	r.GET("/events", hub.serveEvents)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
	return conn
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	conn := dialHub(t, hub)

	hub.Broadcast(models.MotionEvent{Type: "motion_detected", MotionID: 7, Count: 12})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got models.MotionEvent
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "motion_detected", got.Type)
	assert.Equal(t, 7, got.MotionID)
	assert.Equal(t, 12, got.Count)
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	conn := dialHub(t, hub)

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub)

	hub.Close()
	assert.Equal(t, 0, hub.Clients())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	// Broadcasting after close is a no-op
	hub.Broadcast(models.MotionEvent{Type: "motion_cleared"})
}
