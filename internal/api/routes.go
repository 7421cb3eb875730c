package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	registerPageRoutes(app, handler)
	registerAdminRoutes(app, handler)
	registerAPIRoutes(app, handler)
}

func registerPageRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", sendNoContent)
	app.Get("/lang/:lang", handler.SetLanguage)

	app.Get("/login", handler.LoginPage)
	app.Post("/login", handler.Login)
	app.Get("/register", handler.RegisterPage)
	app.Post("/register", handler.Register)
	app.Post("/logout", handler.Logout)
	app.Get("/forgot-password", handler.ForgotPasswordPage)
	app.Post("/forgot-password", handler.ForgotPassword)
	app.Get("/reset-password", handler.ResetPasswordPage)
	app.Post("/reset-password", handler.ResetPassword)
	app.Get("/reset-password/:token", handler.ResetPasswordLink)
	app.Get("/change-password", handler.AuthRequired, handler.ChangePasswordPage)
	app.Post("/change-password", handler.AuthRequired, handler.ChangePassword)

	app.Get("/", handler.AuthRequired, handler.Home)
	app.Get("/products", handler.AuthRequired, handler.Products)
	app.Get("/recommendations", handler.AuthRequired, handler.Recommendations)
	app.Post("/recommendations", handler.AuthRequired, handler.CreateRecommendation)
	app.Get("/recommendations/new", handler.AuthRequired, handler.RecommendationForm)
	app.Get("/recommendations/:id", handler.AuthRequired, handler.RecommendationDetail)
}

func registerAdminRoutes(app *fiber.App, handler *Handler) {
	admin := app.Group("/admin", handler.AuthRequired, handler.AdminOnly)
	admin.Get("", handler.AdminDashboard)
	admin.Get("/users", handler.AdminUsers)
	admin.Post("/users", handler.AdminCreateUser)
	admin.Post("/users/:id/role", handler.AdminChangeRole)
	admin.Post("/users/:id/delete", handler.AdminDeleteUser)
	admin.Post("/requests/:id/process", handler.AdminProcessRequest)
	admin.Get("/reports", handler.AdminReports)
	admin.Get("/reports/export.csv", handler.AdminReportsCSV)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")
	if cors := handler.corsMiddleware(); cors != nil {
		api.Use(cors)
	}

	api.Get("/weather", handler.AuthRequired, handler.APIWeather)
	api.All("/weather", handler.MethodNotAllowed)
	api.Post("/recommendations", handler.AuthRequired, handler.APIRecommendation)
	api.All("/recommendations", handler.MethodNotAllowed)
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
