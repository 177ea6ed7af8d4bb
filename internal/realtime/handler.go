package realtime

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// joinRequest is the handshake a client sends after connecting.
type joinRequest struct {
	Event  string `json:"event"`
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

// Handler upgrades HTTP requests to websocket sessions and feeds the hub.
type Handler struct {
	hub    *Hub
	logger *zap.Logger
}

// NewHandler constructs the websocket handler.
func NewHandler(hub *Hub, logger *zap.Logger) *Handler {
	return &Handler{hub: hub, logger: logger}
}

// UpgradeRequired rejects non-websocket requests on the /ws route.
func UpgradeRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// Serve handles one live session: register, accept join handshakes, and
// drop all memberships when the transport disconnects.
func (h *Handler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		sessionID := h.hub.Register(conn)
		defer h.hub.Unregister(sessionID)

		for {
			var req joinRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			if req.Event != "join" || req.UserID == 0 {
				continue
			}
			h.hub.Join(sessionID, req.UserID, domain.UserRole(req.Role))
			h.logger.Debug("session joined",
				zap.String("session_id", sessionID),
				zap.Int64("user_id", req.UserID),
				zap.String("role", req.Role))
		}
	})
}
