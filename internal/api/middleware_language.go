package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) LanguageMiddleware(c *fiber.Ctx) error {
	cookieLanguage := c.Cookies(languageCookieName)
	language := handler.i18n.DetectFromAcceptLanguage(c.Get("Accept-Language"))
	if cookieLanguage != "" {
		language = handler.i18n.NormalizeLanguage(cookieLanguage)
	}

	if cookieLanguage != language {
		handler.setLanguageCookie(c, language)
	}

	c.Locals(contextLanguageKey, language)
	c.Locals(contextMessagesKey, handler.i18n.Messages(language))
	return c.Next()
}

// SetLanguage stores the chosen language and returns to the page the switch
// was clicked on.
func (handler *Handler) SetLanguage(c *fiber.Ctx) error {
	language := c.Params("lang")
	if !handler.i18n.IsSupported(language) {
		return handler.NotFound(c)
	}
	handler.setLanguageCookie(c, language)

	next := sanitizeRedirectPath(c.Query("next"), "")
	if next == "" {
		next = sanitizeRedirectPath(refererPath(c), "/")
	}
	return c.Redirect(next, fiber.StatusSeeOther)
}

func (handler *Handler) setLanguageCookie(c *fiber.Ctx, language string) {
	cookie := handler.newCookie(languageCookieName, handler.i18n.NormalizeLanguage(language))
	cookie.HTTPOnly = false
	cookie.Expires = time.Now().AddDate(1, 0, 0)
	c.Cookie(cookie)
}
