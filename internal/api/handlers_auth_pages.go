package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) LoginPage(c *fiber.Ctx) error {
	if handler.optionalAuthenticatedUser(c) != nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	flash := handler.popFlashCookie(c)
	return handler.render(c, "login", fiber.Map{
		"Title":      localizedPageTitle(currentMessages(c), "meta.title.login"),
		"Error":      flash.AuthError,
		"Success":    flash.Success,
		"Identifier": flash.Identifier,
		"Next":       sanitizeRedirectPath(c.Query("next"), ""),
	})
}

func (handler *Handler) RegisterPage(c *fiber.Ctx) error {
	if handler.optionalAuthenticatedUser(c) != nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	flash := handler.popFlashCookie(c)
	return handler.render(c, "register", fiber.Map{
		"Title":    localizedPageTitle(currentMessages(c), "meta.title.register"),
		"Error":    flash.AuthError,
		"Username": flash.RegisterUser,
		"Email":    flash.RegisterEmail,
	})
}

func (handler *Handler) ForgotPasswordPage(c *fiber.Ctx) error {
	flash := handler.popFlashCookie(c)
	return handler.render(c, "forgot_password", fiber.Map{
		"Title":      localizedPageTitle(currentMessages(c), "meta.title.forgot_password"),
		"Error":      flash.AuthError,
		"Success":    flash.Success,
		"Identifier": flash.Identifier,
	})
}

func (handler *Handler) ResetPasswordPage(c *fiber.Ctx) error {
	flash := handler.popFlashCookie(c)
	token, ok := handler.readResetPasswordCookie(c)
	if ok {
		if _, err := handler.authService.ResolveResetToken(token); err != nil {
			handler.clearResetPasswordCookie(c)
			return handler.respondResetTokenError(c, errors.New(publicErrorMessage(err)))
		}
	}

	return handler.render(c, "reset_password", fiber.Map{
		"Title":        localizedPageTitle(currentMessages(c), "meta.title.reset_password"),
		"Error":        flash.AuthError,
		"InvalidToken": !ok,
	})
}

func (handler *Handler) ChangePasswordPage(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	flash := handler.popFlashCookie(c)
	return handler.render(c, "change_password", fiber.Map{
		"Title":   localizedPageTitle(currentMessages(c), "meta.title.change_password"),
		"Error":   flash.AuthError,
		"Success": flash.Success,
		"Forced":  user.MustChangePassword,
	})
}
