package api

import (
	"errors"
	"time"

	"github.com/agrosoft/agrosoft/internal/models"
	"github.com/agrosoft/agrosoft/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) AdminDashboard(c *fiber.Ctx) error {
	stats, err := handler.statsService.BuildDashboard(time.Now().In(handler.location))
	if err != nil {
		return err
	}

	flash := handler.popFlashCookie(c)
	return handler.render(c, "admin_dashboard", fiber.Map{
		"Title":   localizedPageTitle(currentMessages(c), "meta.title.admin_dashboard"),
		"Stats":   stats,
		"Success": flash.Success,
		"Error":   flash.FormError,
	})
}

func (handler *Handler) AdminUsers(c *fiber.Ctx) error {
	users, err := handler.userAdminService.ListUsers()
	if err != nil {
		return err
	}

	flash := handler.popFlashCookie(c)
	return handler.render(c, "admin_users", fiber.Map{
		"Title":    localizedPageTitle(currentMessages(c), "meta.title.admin_users"),
		"Users":    users,
		"Roles":    []string{models.RoleFarmer, models.RoleAdmin},
		"Error":    flash.FormError,
		"Success":  flash.Success,
		"Username": flash.RegisterUser,
		"Email":    flash.RegisterEmail,
	})
}

func (handler *Handler) AdminCreateUser(c *fiber.Ctx) error {
	actor, _ := currentUser(c)

	input := adminUserInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.respondAdminError(c, "/admin/users", fiber.StatusBadRequest, FlashPayload{FormError: errInvalidInput})
	}

	if _, err := handler.userAdminService.CreateUser(actor, services.AccountInput{
		Username:        input.Username,
		Email:           input.Email,
		Password:        input.Password,
		ConfirmPassword: input.ConfirmPassword,
		Role:            input.Role,
	}); err != nil {
		if errorTranslationKey(err.Error()) == "" {
			return err
		}
		return handler.respondAdminError(c, "/admin/users", adminErrorStatus(err), FlashPayload{
			FormError:     err.Error(),
			RegisterUser:  input.Username,
			RegisterEmail: input.Email,
		})
	}
	return handler.respondAdminSuccess(c, "/admin/users", "admin.success.user_created")
}

func (handler *Handler) AdminChangeRole(c *fiber.Ctx) error {
	actor, _ := currentUser(c)

	targetID, err := c.ParamsInt("id")
	if err != nil || targetID <= 0 {
		return handler.NotFound(c)
	}
	if err := handler.userAdminService.ChangeRole(actor, uint(targetID), c.FormValue("role")); err != nil {
		if errorTranslationKey(err.Error()) == "" {
			return err
		}
		return handler.respondAdminError(c, "/admin/users", adminErrorStatus(err), FlashPayload{FormError: err.Error()})
	}
	return handler.respondAdminSuccess(c, "/admin/users", "admin.success.role_changed")
}

func (handler *Handler) AdminDeleteUser(c *fiber.Ctx) error {
	actor, _ := currentUser(c)

	targetID, err := c.ParamsInt("id")
	if err != nil || targetID <= 0 {
		return handler.NotFound(c)
	}
	if err := handler.userAdminService.DeleteUser(actor, uint(targetID)); err != nil {
		if errorTranslationKey(err.Error()) == "" {
			return err
		}
		return handler.respondAdminError(c, "/admin/users", adminErrorStatus(err), FlashPayload{FormError: err.Error()})
	}
	return handler.respondAdminSuccess(c, "/admin/users", "admin.success.user_deleted")
}

func (handler *Handler) AdminProcessRequest(c *fiber.Ctx) error {
	requestID, err := c.ParamsInt("id")
	if err != nil || requestID <= 0 {
		return handler.NotFound(c)
	}

	back := sanitizeRedirectPath(c.FormValue("next"), "/admin")
	if err := handler.recommendationSvc.MarkProcessed(uint(requestID)); err != nil {
		if errorTranslationKey(err.Error()) == "" {
			return err
		}
		return handler.respondAdminError(c, back, adminErrorStatus(err), FlashPayload{FormError: err.Error()})
	}
	return handler.respondAdminSuccess(c, back, "admin.success.request_processed")
}

func (handler *Handler) respondAdminError(c *fiber.Ctx, path string, status int, flash FlashPayload) error {
	if acceptsJSON(c) {
		return apiError(c, status, flash.FormError)
	}
	handler.setFlashCookie(c, flash)
	return c.Redirect(path, fiber.StatusSeeOther)
}

func (handler *Handler) respondAdminSuccess(c *fiber.Ctx, path string, messageKey string) error {
	if acceptsJSON(c) {
		return c.JSON(fiber.Map{"ok": true})
	}
	handler.setFlashCookie(c, FlashPayload{Success: messageKey})
	return c.Redirect(path, fiber.StatusSeeOther)
}

func adminErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrRequestNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrAdminActionForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrUsernameTaken), errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrRequestNotCompleted):
		return fiber.StatusConflict
	default:
		return fiber.StatusBadRequest
	}
}
