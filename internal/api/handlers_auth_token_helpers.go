package api

import (
	"time"

	"github.com/agrosoft/agrosoft/internal/models"
	"github.com/gofiber/fiber/v2"
)

// The session cookie is a browser-session cookie unless "remember me" was
// ticked; the token inside always carries its own expiry.
func (handler *Handler) setAuthCookie(c *fiber.Ctx, user *models.User, rememberMe bool) error {
	tokenTTL := defaultAuthTokenTTL
	if rememberMe {
		tokenTTL = rememberAuthTokenTTL
	}

	token, err := handler.buildToken(user, tokenTTL)
	if err != nil {
		return err
	}

	cookie := handler.newCookie(authCookieName, token)
	if rememberMe {
		cookie.Expires = time.Now().Add(tokenTTL)
	}
	c.Cookie(cookie)
	return nil
}

func (handler *Handler) clearAuthCookie(c *fiber.Ctx) {
	handler.expireCookie(c, authCookieName)
}
