package server

import (
	"net/http"
	"time"

	"github.com/ayusman/signscribe/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// SnapshotSocket pushes every display snapshot to a WebSocket client as JSON.
type SnapshotSocket struct {
	app    Controller
	logger zerolog.Logger
}

// NewSnapshotSocket creates a SnapshotSocket over app.
func NewSnapshotSocket(app Controller, logger zerolog.Logger) *SnapshotSocket {
	return &SnapshotSocket{app: app, logger: logger}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *SnapshotSocket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	metrics.DisplayClients.Inc()
	defer metrics.DisplayClients.Dec()

	updates, cancel := h.app.Subscribe()
	defer cancel()

	// The client never sends anything useful; reading only detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.send(conn, h.app.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case snap := <-updates:
			if err := h.send(conn, snap); err != nil {
				h.logger.Debug().Err(err).Msg("websocket write failed")
				return
			}
		}
	}
}

func (h *SnapshotSocket) send(conn *websocket.Conn, snap any) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(snap)
}
