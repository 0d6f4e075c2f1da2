// Package stream serves the order-event feed over a websocket, fanning out
// whatever internal/notify.Notifier publishes to every connected client.
package stream

import (
	"net/http"
	"time"

	"lumenex/internal/notify"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

// Hub upgrades incoming connections and relays Notifier events to them. A
// client that never reads fast enough is dropped by the Notifier itself
// (see internal/notify); the Hub only owns the websocket plumbing.
type Hub struct {
	notifier *notify.Notifier
	upgrader websocket.Upgrader
	t        tomb.Tomb
}

// New builds a Hub over notifier. Origin checking is left permissive, as in
// the reference terminal websocket manager this is grounded on; a
// production deployment would restrict it.
func New(notifier *notify.Notifier) *Hub {
	return &Hub{
		notifier: notifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and blocks pumping events to it until the
// connection closes or the Hub is shut down.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	id, events := h.notifier.Subscribe()
	log.Debug().Uint64("subscriber_id", id).Msg("stream client connected")

	done := make(chan struct{})
	go h.readPump(conn, done)
	h.writePump(conn, events, done)

	h.notifier.Unsubscribe(id)
	conn.Close()
	log.Debug().Uint64("subscriber_id", id).Msg("stream client disconnected")
}

// readPump only exists to notice the client going away (close frames,
// errors) and drain any pings; this feed is one-directional from the
// server's side.
func (h *Hub) readPump(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, events <-chan notify.Event, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-h.t.Dying():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close signals every active writePump to stop. Individual connections
// still unwind through their own ServeHTTP goroutine.
func (h *Hub) Close() {
	h.t.Kill(nil)
}
