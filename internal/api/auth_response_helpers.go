package api

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// respondAuthError sends browsers back to the form they came from with the
// message in a flash cookie; JSON clients get the message directly.
func (handler *Handler) respondAuthError(c *fiber.Ctx, status int, message string) error {
	if acceptsJSON(c) {
		return apiError(c, status, message)
	}

	flash := FlashPayload{AuthError: message}
	switch c.Path() {
	case "/login":
		flash.Identifier = c.FormValue("username")
		handler.setFlashCookie(c, flash)
		if next := sanitizeRedirectPath(c.FormValue("next"), ""); next != "" {
			return c.Redirect("/login?next="+url.QueryEscape(next), fiber.StatusSeeOther)
		}
		return c.Redirect("/login", fiber.StatusSeeOther)
	case "/register":
		flash.RegisterUser = c.FormValue("username")
		flash.RegisterEmail = c.FormValue("email")
		handler.setFlashCookie(c, flash)
		return c.Redirect("/register", fiber.StatusSeeOther)
	case "/forgot-password":
		flash.Identifier = c.FormValue("identifier")
		handler.setFlashCookie(c, flash)
		return c.Redirect("/forgot-password", fiber.StatusSeeOther)
	case "/reset-password":
		handler.setFlashCookie(c, flash)
		return c.Redirect("/reset-password", fiber.StatusSeeOther)
	case "/change-password":
		handler.setFlashCookie(c, flash)
		return c.Redirect("/change-password", fiber.StatusSeeOther)
	default:
		if strings.HasPrefix(c.Path(), "/reset-password/") {
			handler.setFlashCookie(c, flash)
			return c.Redirect("/forgot-password", fiber.StatusSeeOther)
		}
		handler.setFlashCookie(c, flash)
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
}
