package api

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	if isAPIPath(c.Path()) || acceptsJSON(c) {
		return apiError(c, fiber.StatusNotFound, "not found")
	}
	return handler.renderErrorPage(c, fiber.StatusNotFound, "error.not_found.title", "error.not_found.body")
}

// ErrorHandler replaces fiber's plain-text default: JSON for API clients and
// the localized error page for browsers.
func (handler *Handler) ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
		message = fiberErr.Message
	}
	if status >= fiber.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Method(), c.Path(), err)
	}

	if isAPIPath(c.Path()) {
		// API clients get the underlying error text on 500s.
		if fiberErr == nil {
			message = err.Error()
		}
		return apiError(c, status, message)
	}
	if acceptsJSON(c) {
		return apiError(c, status, message)
	}

	switch status {
	case fiber.StatusNotFound:
		return handler.renderErrorPage(c, status, "error.not_found.title", "error.not_found.body")
	case fiber.StatusForbidden:
		return handler.renderErrorPage(c, status, "error.forbidden.title", "error.forbidden.body")
	case fiber.StatusMethodNotAllowed:
		return handler.renderErrorPage(c, status, "error.method_not_allowed.title", "error.method_not_allowed.body")
	case fiber.StatusBadRequest:
		return handler.renderErrorPage(c, status, "error.bad_request.title", "error.bad_request.body")
	default:
		return handler.renderErrorPage(c, status, "error.internal.title", "error.internal.body")
	}
}

func (handler *Handler) renderErrorPage(c *fiber.Ctx, status int, titleKey string, bodyKey string) error {
	user := handler.optionalAuthenticatedUser(c)
	primaryPath := "/login"
	primaryLabelKey := "error.action_login"
	if user != nil {
		primaryPath = "/"
		primaryLabelKey = "error.action_home"
	}

	c.Status(status)
	return handler.render(c, "error", fiber.Map{
		"Title":           localizedPageTitle(currentMessages(c), titleKey),
		"CurrentUser":     user,
		"Status":          status,
		"HeadingKey":      titleKey,
		"BodyKey":         bodyKey,
		"PrimaryPath":     primaryPath,
		"PrimaryLabelKey": primaryLabelKey,
	})
}
