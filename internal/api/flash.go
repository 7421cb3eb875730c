package api

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Flash messages carry translation keys plus the values typed into the form
// that failed, sealed because they may include an email address.
func (handler *Handler) setFlashCookie(c *fiber.Ctx, payload FlashPayload) {
	payload = normalizeFlashPayload(payload)
	if payload == (FlashPayload{}) {
		handler.expireCookie(c, flashCookieName)
		return
	}

	serialized, err := json.Marshal(payload)
	if err != nil {
		return
	}
	handler.setSealedCookie(c, flashCookieName, serialized, flashCookieTTL)
}

// popFlashCookie reads the flash once and expires it.
func (handler *Handler) popFlashCookie(c *fiber.Ctx) FlashPayload {
	opened, ok := handler.openSealedCookie(c, flashCookieName)
	if !ok {
		return FlashPayload{}
	}
	handler.expireCookie(c, flashCookieName)

	payload := FlashPayload{}
	if err := json.Unmarshal(opened, &payload); err != nil {
		return FlashPayload{}
	}
	return normalizeFlashPayload(payload)
}

func normalizeFlashPayload(payload FlashPayload) FlashPayload {
	payload.AuthError = strings.TrimSpace(payload.AuthError)
	payload.FormError = strings.TrimSpace(payload.FormError)
	payload.Success = strings.TrimSpace(payload.Success)
	payload.Identifier = strings.TrimSpace(payload.Identifier)
	payload.RegisterEmail = strings.ToLower(strings.TrimSpace(payload.RegisterEmail))
	payload.RegisterUser = strings.TrimSpace(payload.RegisterUser)
	return payload
}
