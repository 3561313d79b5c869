package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// AlertStream serves a websocket subscription for one owner until the
// client goes away
type AlertStream interface {
	Serve(ctx context.Context, conn *websocket.Conn, owner uuid.UUID)
}

// AlertsHandler upgrades GET /ws/alerts and streams the caller's
// low-stock alerts
type AlertsHandler struct {
	stream   AlertStream
	callers  CallerResolver
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewAlertsHandler(stream AlertStream, callers CallerResolver, allowedOrigins []string, logger *slog.Logger) *AlertsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AlertsHandler{
		stream:  stream,
		callers: callers,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
		logger: logger,
	}
}

// Stream handles GET /ws/alerts
func (h *AlertsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	caller, err := h.callers.CurrentCaller(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	h.stream.Serve(r.Context(), conn, caller.ID)
}
