package stream

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lumenex/internal/models"
	"lumenex/internal/notify"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestHubRelaysBroadcastEventsToClient(t *testing.T) {
	n := notify.New()
	hub := New(n)
	defer hub.Close()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the server goroutine a moment to register the subscription.
	deadline := time.Now().Add(2 * time.Second)
	for n.Count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, 1, n.Count())

	order := models.New("o-1", "u", "BTCUSD", models.Buy, models.Limit, 100, 1, 1, 0)
	n.Broadcast(notify.Event{Symbol: "BTCUSD", Order: order})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev notify.Event
	require.NoError(t, conn.ReadJSON(&ev))
	require.Equal(t, "BTCUSD", ev.Symbol)
	require.Equal(t, "o-1", ev.Order.ID)
}
