package api

import (
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) AdminOnly(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		if isAPIPath(c.Path()) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	if !user.IsAdmin() {
		if isAPIPath(c.Path()) || acceptsJSON(c) {
			return apiError(c, fiber.StatusForbidden, "admin access required")
		}
		return handler.renderErrorPage(c, fiber.StatusForbidden, "error.forbidden.title", "error.forbidden.body")
	}
	return c.Next()
}
