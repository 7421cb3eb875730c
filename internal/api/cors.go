package api

import (
	"github.com/go-chi/cors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// corsMiddleware is nil when no origins are configured; the JSON API is then
// same-origin only.
func (handler *Handler) corsMiddleware() fiber.Handler {
	if len(handler.corsOrigins) == 0 {
		return nil
	}
	return adaptor.HTTPMiddleware(cors.Handler(cors.Options{
		AllowedOrigins:   handler.corsOrigins,
		AllowedMethods:   []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodOptions},
		AllowedHeaders:   []string{fiber.HeaderAccept, fiber.HeaderContentType},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}
