package api

import (
	"errors"
	"time"

	"github.com/agrosoft/agrosoft/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) ForgotPassword(c *fiber.Ctx) error {
	input := forgotPasswordInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.respondAuthError(c, fiber.StatusBadRequest, errInvalidInput)
	}

	client := clientAddress(c)
	now := time.Now()
	if wait := handler.recoveryLimiter.retryAfter(client, now); wait > 0 {
		setRetryAfter(c, wait)
		return handler.respondAuthError(c, fiber.StatusTooManyRequests, errTooManyRecoveryAttempts)
	}

	if err := handler.authService.RequestPasswordReset(c.UserContext(), input.Identifier); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			handler.recoveryLimiter.recordFailure(client, now)
			return handler.respondAuthError(c, fiber.StatusNotFound, err.Error())
		}
		return err
	}

	if acceptsJSON(c) {
		return c.JSON(fiber.Map{"ok": true})
	}
	handler.setFlashCookie(c, FlashPayload{Success: "auth.success.reset_sent"})
	return c.Redirect("/login", fiber.StatusSeeOther)
}

// ResetPasswordLink is the target of the emailed link. The token is checked,
// sealed into a cookie and dropped from the address bar.
func (handler *Handler) ResetPasswordLink(c *fiber.Ctx) error {
	token := c.Params("token")
	if _, err := handler.authService.ResolveResetToken(token); err != nil {
		handler.clearResetPasswordCookie(c)
		if isResetTokenError(err) {
			return handler.respondAuthError(c, fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	handler.setResetPasswordCookie(c, token)
	return c.Redirect("/reset-password", fiber.StatusSeeOther)
}

func (handler *Handler) ResetPassword(c *fiber.Ctx) error {
	input := resetPasswordInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.respondAuthError(c, fiber.StatusBadRequest, errInvalidInput)
	}

	token, ok := handler.readResetPasswordCookie(c)
	if !ok {
		return handler.respondResetTokenError(c, services.ErrPasswordResetTokenInvalid)
	}

	if _, err := handler.authService.ResetPassword(token, input.Password, input.ConfirmPassword); err != nil {
		if isResetTokenError(err) {
			handler.clearResetPasswordCookie(c)
			return handler.respondResetTokenError(c, err)
		}
		if errorTranslationKey(err.Error()) != "" {
			return handler.respondAuthError(c, fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	handler.clearResetPasswordCookie(c)
	handler.clearAuthCookie(c)
	if acceptsJSON(c) {
		return c.JSON(fiber.Map{"ok": true})
	}
	handler.setFlashCookie(c, FlashPayload{Success: "auth.success.password_reset"})
	return c.Redirect("/login", fiber.StatusSeeOther)
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	input := changePasswordInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.respondAuthError(c, fiber.StatusBadRequest, errInvalidInput)
	}

	if err := handler.authService.ChangePassword(user, input.CurrentPassword, input.NewPassword, input.ConfirmPassword); err != nil {
		if errorTranslationKey(err.Error()) != "" {
			return handler.respondAuthError(c, fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	if acceptsJSON(c) {
		return c.JSON(fiber.Map{"ok": true})
	}
	handler.setFlashCookie(c, FlashPayload{Success: "auth.success.password_changed"})
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (handler *Handler) respondResetTokenError(c *fiber.Ctx, err error) error {
	if acceptsJSON(c) {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	handler.setFlashCookie(c, FlashPayload{AuthError: err.Error()})
	return c.Redirect("/forgot-password", fiber.StatusSeeOther)
}

func isResetTokenError(err error) bool {
	return errors.Is(err, services.ErrPasswordResetTokenMissing) ||
		errors.Is(err, services.ErrPasswordResetTokenInvalid) ||
		errors.Is(err, services.ErrPasswordResetTokenExpired)
}
