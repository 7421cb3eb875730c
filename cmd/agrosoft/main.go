package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/agrosoft/agrosoft/internal/api"
	"github.com/agrosoft/agrosoft/internal/cli"
	"github.com/agrosoft/agrosoft/internal/db"
	"github.com/agrosoft/agrosoft/internal/i18n"
	"github.com/agrosoft/agrosoft/internal/integrations/mail"
	"github.com/agrosoft/agrosoft/internal/integrations/weather"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

const minSecretKeyLength = 32

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	command := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	var err error
	switch command {
	case "serve":
		err = runServer()
	case "create-admin":
		err = runCreateAdmin(args)
	case "reset-password":
		err = runResetPassword(args)
	default:
		err = fmt.Errorf("unknown command %q (expected serve, create-admin or reset-password)", command)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func runServer() error {
	location := mustLoadLocation(getEnv("TZ", "America/Bogota"))
	time.Local = location

	secretKey, err := resolveSecretKey()
	if err != nil {
		return err
	}
	port, err := resolvePort()
	if err != nil {
		return err
	}
	cookieSecure := parseBoolEnv("COOKIE_SECURE", false)
	dbPath := getEnv("DB_PATH", filepath.Join("data", "agrosoft.db"))

	database, err := openDatabase()
	if err != nil {
		return err
	}

	i18nManager, err := i18n.NewManager(getEnv("DEFAULT_LANGUAGE", i18n.LangES))
	if err != nil {
		return fmt.Errorf("i18n init failed: %w", err)
	}

	handler, err := api.NewHandler(database, api.HandlerOptions{
		SecretKey:          secretKey,
		TemplateDir:        filepath.Join("internal", "templates"),
		Location:           location,
		I18n:               i18nManager,
		CookieSecure:       cookieSecure,
		BaseURL:            getEnv("BASE_URL", "http://localhost:"+port),
		CORSAllowedOrigins: parseListEnv("CORS_ALLOWED_ORIGINS"),
		Mailer:             mail.New(smtpConfigFromEnv()),
		Weather: weather.NewClient(weather.Config{
			APIKey:   os.Getenv("OPENWEATHER_API_KEY"),
			Language: getEnv("OPENWEATHER_LANG", weather.DefaultLanguage),
		}),
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "AgroSoft",
		DisableStartupMessage: true,
		ErrorHandler:          handler.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(handler.LanguageMiddleware)
	app.Use(csrf.New(csrfMiddlewareConfig(cookieSecure)))

	app.Static("/static", filepath.Join("web", "static"))
	api.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("AgroSoft listening on http://0.0.0.0:%s (db: %s, tz: %s)", port, databaseLabel(database, dbPath), location.String())
	if err := app.Listen(":" + port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func runCreateAdmin(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: agrosoft create-admin <username> <email>")
	}
	database, err := openDatabase()
	if err != nil {
		return err
	}
	return cli.RunCreateAdminCommand(database, args[0], args[1], cli.TerminalPasswordReader(os.Stdin, os.Stdout), os.Stdout)
}

func runResetPassword(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: agrosoft reset-password <username>")
	}
	database, err := openDatabase()
	if err != nil {
		return err
	}
	return cli.RunResetPasswordCommand(database, args[0], os.Stdout)
}

func openDatabase() (*gorm.DB, error) {
	database, err := db.Open(os.Getenv("DATABASE_URL"), getEnv("DB_PATH", filepath.Join("data", "agrosoft.db")))
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	return database, nil
}

func databaseLabel(database *gorm.DB, dbPath string) string {
	if db.Dialect(database) == db.DialectPostgres {
		return "postgres"
	}
	return dbPath
}

func csrfMiddlewareConfig(cookieSecure bool) csrf.Config {
	return csrf.Config{
		KeyLookup:      "form:csrf_token",
		CookieName:     "agrosoft_csrf",
		CookieSameSite: "Lax",
		CookieHTTPOnly: true,
		CookieSecure:   cookieSecure,
		ContextKey:     "csrf",
		// The JSON API authenticates with the session cookie and is CSRF exempt.
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
	}
}

func smtpConfigFromEnv() mail.SMTPConfig {
	port, err := strconv.Atoi(strings.TrimSpace(os.Getenv("SMTP_PORT")))
	if err != nil {
		port = 0
	}
	return mail.SMTPConfig{
		Host:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
		Port:     port,
		User:     os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

func resolveSecretKey() (string, error) {
	secret := strings.TrimSpace(os.Getenv("SECRET_KEY"))
	if secret == "" {
		return "", errors.New("SECRET_KEY is required")
	}
	if _, insecure := insecureSecretKeys[strings.ToLower(secret)]; insecure {
		return "", errors.New("SECRET_KEY uses an insecure placeholder value")
	}
	if len(secret) < minSecretKeyLength {
		return "", fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return secret, nil
}

func resolvePort() (string, error) {
	raw := strings.TrimSpace(getEnv("PORT", "8080"))
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		return "", fmt.Errorf("invalid PORT %q", raw)
	}
	return strconv.Itoa(port), nil
}

func parseBoolEnv(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("invalid %s %q, using %t", key, raw, fallback)
		return fallback
	}
	return value
}

func parseListEnv(key string) []string {
	values := make([]string, 0)
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func mustLoadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("invalid TZ %q, falling back to UTC", name)
		return time.UTC
	}
	return location
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
