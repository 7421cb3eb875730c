package api

import (
	"bytes"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
)

var pageTemplates = []string{
	"login",
	"register",
	"forgot_password",
	"reset_password",
	"change_password",
	"home",
	"recommendation_form",
	"recommendation_result",
	"recommendations",
	"products",
	"admin_dashboard",
	"admin_users",
	"admin_reports",
	"error",
}

// render executes the page inside the base layout. The page is buffered so a
// template error never leaves a half-written response.
func (handler *Handler) render(c *fiber.Ctx, name string, data fiber.Map) error {
	page, ok := handler.templates[name]
	if !ok {
		return fmt.Errorf("page template %q is not registered", name)
	}

	var output bytes.Buffer
	if err := page.ExecuteTemplate(&output, "base", handler.withTemplateDefaults(c, data)); err != nil {
		log.Printf("render %s: %v", name, err)
		return c.Status(fiber.StatusInternalServerError).SendString("failed to render page")
	}
	c.Type("html", "utf-8")
	return c.Send(output.Bytes())
}
