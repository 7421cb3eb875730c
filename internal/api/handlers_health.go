package api

import (
	"context"
	"time"

	"github.com/agrosoft/agrosoft/internal/db"
	"github.com/gofiber/fiber/v2"
)

const healthCheckTimeout = 2 * time.Second

// Health reports whether the database answers. It is public and skips the
// weather service, which is allowed to be down.
func (handler *Handler) Health(c *fiber.Ctx) error {
	sqlDB, err := handler.db.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "database": "down"})
	}
	return c.JSON(fiber.Map{"status": "ok", "database": db.Dialect(handler.db)})
}
