package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	flashCookieTTL         = 5 * time.Minute
	resetPasswordCookieTTL = 30 * time.Minute
)

func (handler *Handler) newCookie(name string, value string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

func (handler *Handler) expireCookie(c *fiber.Ctx, name string) {
	cookie := handler.newCookie(name, "")
	cookie.Expires = time.Now().Add(-time.Hour)
	c.Cookie(cookie)
}

// setSealedCookie stores value encrypted under the cookie's own name, so it
// can neither be read by the browser nor moved to another cookie.
func (handler *Handler) setSealedCookie(c *fiber.Ctx, name string, value []byte, ttl time.Duration) {
	sealed, err := handler.cookieCodec.seal(name, value)
	if err != nil {
		handler.expireCookie(c, name)
		return
	}
	cookie := handler.newCookie(name, sealed)
	cookie.Expires = time.Now().Add(ttl)
	c.Cookie(cookie)
}

// openSealedCookie expires cookies that fail to open.
func (handler *Handler) openSealedCookie(c *fiber.Ctx, name string) ([]byte, bool) {
	raw := strings.TrimSpace(c.Cookies(name))
	if raw == "" {
		return nil, false
	}
	opened, err := handler.cookieCodec.open(name, raw)
	if err != nil {
		handler.expireCookie(c, name)
		return nil, false
	}
	return opened, true
}

// The emailed token is moved out of the URL into a sealed cookie as soon as
// the link is opened.
func (handler *Handler) setResetPasswordCookie(c *fiber.Ctx, token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		handler.clearResetPasswordCookie(c)
		return
	}
	handler.setSealedCookie(c, resetPasswordCookieName, []byte(token), resetPasswordCookieTTL)
}

func (handler *Handler) readResetPasswordCookie(c *fiber.Ctx) (string, bool) {
	opened, ok := handler.openSealedCookie(c, resetPasswordCookieName)
	if !ok {
		return "", false
	}
	token := strings.TrimSpace(string(opened))
	if token == "" {
		handler.clearResetPasswordCookie(c)
		return "", false
	}
	return token, true
}

func (handler *Handler) clearResetPasswordCookie(c *fiber.Ctx) {
	handler.expireCookie(c, resetPasswordCookieName)
}
