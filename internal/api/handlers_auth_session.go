package api

import (
	"errors"
	"time"

	"github.com/agrosoft/agrosoft/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) Login(c *fiber.Ctx) error {
	input := credentialsInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.respondAuthError(c, fiber.StatusBadRequest, errInvalidInput)
	}

	client := clientAddress(c)
	now := time.Now()
	if wait := handler.loginLimiter.retryAfter(client, now); wait > 0 {
		setRetryAfter(c, wait)
		return handler.respondAuthError(c, fiber.StatusTooManyRequests, errTooManyLoginAttempts)
	}

	user, err := handler.authService.Authenticate(input.Identifier, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrAuthCredentialsInvalid) {
			handler.loginLimiter.recordFailure(client, now)
			return handler.respondAuthError(c, fiber.StatusUnauthorized, err.Error())
		}
		return err
	}
	handler.loginLimiter.forget(client)

	if err := handler.setAuthCookie(c, &user, input.RememberMe); err != nil {
		return err
	}
	if user.MustChangePassword {
		return redirectOrJSON(c, "/change-password")
	}
	return redirectOrJSON(c, sanitizeRedirectPath(input.Next, "/"))
}

// Register always creates a farmer and signs the new account in.
func (handler *Handler) Register(c *fiber.Ctx) error {
	input := registerInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.respondAuthError(c, fiber.StatusBadRequest, errInvalidInput)
	}

	user, err := handler.authService.Register(services.AccountInput{
		Username:        input.Username,
		Email:           input.Email,
		Password:        input.Password,
		ConfirmPassword: input.ConfirmPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken), errors.Is(err, services.ErrEmailTaken):
			return handler.respondAuthError(c, fiber.StatusConflict, err.Error())
		case errorTranslationKey(err.Error()) != "":
			return handler.respondAuthError(c, fiber.StatusBadRequest, err.Error())
		default:
			return err
		}
	}

	if err := handler.setAuthCookie(c, &user, false); err != nil {
		return err
	}
	return redirectOrJSON(c, "/")
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	handler.clearResetPasswordCookie(c)
	return redirectOrJSON(c, "/login")
}
