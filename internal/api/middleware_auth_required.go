package api

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, err := handler.authenticateRequest(c)
	if err != nil {
		if isAPIPath(c.Path()) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		return c.Redirect(loginRedirectPath(c), fiber.StatusSeeOther)
	}

	c.Locals(contextUserKey, user)
	if user.MustChangePassword && !allowedDuringForcedPasswordChange(c.Path()) {
		if isAPIPath(c.Path()) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "password change required"})
		}
		return c.Redirect("/change-password", fiber.StatusSeeOther)
	}
	return c.Next()
}

func allowedDuringForcedPasswordChange(path string) bool {
	cleanPath := strings.TrimSpace(path)
	return cleanPath == "/change-password" || cleanPath == "/logout"
}

// loginRedirectPath keeps the original GET target in ?next= so login can
// send the user back.
func loginRedirectPath(c *fiber.Ctx) string {
	if c.Method() != fiber.MethodGet {
		return "/login"
	}
	target := currentPathWithQuery(c)
	if target == "" || target == "/" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(target)
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
