package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// SessionExists reports whether a session id is live.
type SessionExists func(id string) bool

// HandleWebSocket upgrades connections and runs them as Hub clients. The
// optional ?session= query narrows the stream to one editing session.
func HandleWebSocket(hub *Hub, exists SessionExists, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session")
		if sessionID != "" && exists != nil && !exists(sessionID) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}
		defer conn.CloseNow()

		logger.Debug("websocket connected", "session", sessionID)
		NewClient(hub, conn, sessionID).Run(r.Context())
		logger.Debug("websocket closed", "session", sessionID)
	}
}
