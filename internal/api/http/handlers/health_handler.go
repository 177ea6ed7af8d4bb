package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/persistence"
)

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	pg    *persistence.Postgres
	redis *persistence.Redis
}

// NewHealthHandler constructs handler.
func NewHealthHandler(pg *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{pg: pg, redis: redis}
}

// Live GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready GET /health/ready. Redis is advisory: the service degrades
// without it, so only Postgres gates readiness.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.pg == nil || h.pg.PoolHandle() == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "no database"})
	}
	if err := h.pg.PoolHandle().Ping(c.UserContext()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "database unreachable"})
	}
	redisOK := h.redis != nil && h.redis.Ping(c.UserContext()) == nil
	return c.JSON(fiber.Map{"status": "ok", "redis": redisOK})
}
