package api

import (
	"github.com/agrosoft/agrosoft/internal/models"
	"github.com/gofiber/fiber/v2"
)

const (
	authCookieName          = "agrosoft_auth"
	languageCookieName      = "agrosoft_lang"
	flashCookieName         = "agrosoft_flash"
	resetPasswordCookieName = "agrosoft_reset_password"
	csrfCookieName          = "agrosoft_csrf"
	contextUserKey          = "current_user"
	contextLanguageKey      = "current_language"
	contextMessagesKey      = "current_messages"
	contextCSRFKey          = "csrf"
)

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok && user != nil
}
