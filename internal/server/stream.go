package server

import (
	"fmt"
	"net/http"
	"time"
)

// keepAlive re-sends the last skeleton when nothing new arrived, so a
// stalled capture loop does not look like a dead connection.
const keepAlive = 2 * time.Second

// StreamHandler serves the rendered skeleton canvas as MJPEG.
type StreamHandler struct {
	app Controller
}

// NewStreamHandler creates a new StreamHandler over app.
func NewStreamHandler(app Controller) *StreamHandler {
	return &StreamHandler{app: app}
}

// ServeHTTP streams one JPEG part per snapshot that carries a skeleton.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	updates, cancel := h.app.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	last := h.app.Snapshot().Skeleton
	if len(last) > 0 {
		if err := writePart(w, last); err != nil {
			return
		}
	}

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap := <-updates:
			if len(snap.Skeleton) == 0 {
				continue
			}
			last = snap.Skeleton
		case <-ticker.C:
			if len(last) == 0 {
				continue
			}
		}

		if err := writePart(w, last); err != nil {
			return
		}
	}
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "\r\n"); err != nil {
		return err
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
