package notify

import (
	"log/slog"
	"net/http"

	"qanda-service/internal/auth"
	"qanda-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/gorilla/websocket"
)

type Authenticator interface {
	FromRequest(r *http.Request) (auth.Identity, error)
}

// NewHandler upgrades the request and registers the connection under the caller's role.
// Requests without a valid token become guests.
func NewHandler(log *slog.Logger, registry *Registry, authn Authenticator, checkOrigin func(r *http.Request) bool) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "notify.Handler"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var userID, role string
		if id, err := authn.FromRequest(r); err == nil {
			userID, role = id.ID, string(id.Role)
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", sl.Err(err))
			return
		}

		conn := NewConnection(ws, userID, role)
		registry.Register(conn)

		log.Info("client connected",
			slog.String("user_id", userID),
			slog.String("role", role),
			slog.Int("connections", registry.Count()),
		)

		go func() {
			defer func() {
				registry.Unregister(conn)
				_ = conn.Close()
				log.Info("client disconnected", slog.String("user_id", userID))
			}()
			conn.readLoop()
		}()
	}
}
