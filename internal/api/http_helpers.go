package api

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func redirectOrJSON(c *fiber.Ctx, path string) error {
	if acceptsJSON(c) {
		return c.JSON(fiber.Map{"ok": true, "redirect": path})
	}
	return c.Redirect(path, fiber.StatusSeeOther)
}

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func acceptsJSON(c *fiber.Ctx) bool {
	return strings.Contains(strings.ToLower(c.Get(fiber.HeaderAccept)), fiber.MIMEApplicationJSON)
}

func csrfToken(c *fiber.Ctx) string {
	token, _ := c.Locals(contextCSRFKey).(string)
	return token
}

func currentPathWithQuery(c *fiber.Ctx) string {
	path := c.Path()
	if query := string(c.Request().URI().QueryString()); query != "" {
		return path + "?" + query
	}
	return path
}

// refererPath reduces a same-host Referer to its path and query.
func refererPath(c *fiber.Ctx) string {
	raw := strings.TrimSpace(c.Get(fiber.HeaderReferer))
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if parsed.Host != "" && !strings.EqualFold(parsed.Host, c.Hostname()) {
		return ""
	}
	if parsed.RawQuery != "" {
		return parsed.Path + "?" + parsed.RawQuery
	}
	return parsed.Path
}

func sanitizeRedirectPath(raw string, fallback string) string {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return fallback
	}
	if strings.HasPrefix(candidate, "//") || strings.HasPrefix(candidate, "/\\") || !strings.HasPrefix(candidate, "/") {
		return fallback
	}
	parsed, err := url.Parse(candidate)
	if err != nil || parsed.IsAbs() || parsed.Host != "" {
		return fallback
	}
	return candidate
}

func localizedPageTitle(messages map[string]string, key string) string {
	appName := translateMessage(messages, "app.name")
	title := translateMessage(messages, key)
	if title == key || strings.TrimSpace(title) == "" {
		return appName
	}
	return appName + " | " + title
}
