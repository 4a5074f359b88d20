package health

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type Handlers struct {
	Rdb *redis.Client
	DB  DBPinger
}

// JSON GET /health/json — machine-readable health snapshot.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	result := CollectHealth(c.Context(), h.Rdb, h.DB)
	return c.JSON(result)
}
