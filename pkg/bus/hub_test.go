package bus

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicerec/voicerec/pkg/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	router := gin.New()
	router.GET("/ws", hub.Handler())

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestHubDeliversFiredEvent(t *testing.T) {
	hub := NewHub(logging.NewTestLogger())
	conn := dialHub(t, hub)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	hub.Fire(context.Background(), EventSaved, map[string]any{
		"filename": "recording_2026-01-02_03:04:05.mp3",
		"size":     5,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame Frame
	require.NoError(t, json.Unmarshal(raw, &frame))
	assert.Equal(t, EventSaved, frame.Event)
	assert.Equal(t, "recording_2026-01-02_03:04:05.mp3", frame.Payload["filename"])
}

func TestHubDetachesClosedClient(t *testing.T) {
	hub := NewHub(logging.NewTestLogger())
	conn := dialHub(t, hub)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		2*time.Second, 10*time.Millisecond)

	// Firing with no clients must not panic or block.
	hub.Fire(context.Background(), EventSaved, nil)
}

func TestLogBusFire(t *testing.T) {
	t.Parallel()

	// Smoke check only: LogBus has no observable output beyond the log.
	NewLogBus(logging.NewTestLogger()).Fire(context.Background(), EventSaved, map[string]any{"size": 1})
}
