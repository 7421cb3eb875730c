package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/agrosoft/agrosoft/internal/db"
	"github.com/agrosoft/agrosoft/internal/i18n"
	"github.com/agrosoft/agrosoft/internal/integrations/mail"
	"github.com/agrosoft/agrosoft/internal/models"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testWeatherText = "Clima: 18°C, Nubes dispersas"

var resetLinkPattern = regexp.MustCompile(`/reset-password/([0-9a-fA-F-]{36})`)

type stubWeather struct {
	text string
}

func (weather stubWeather) Snapshot(context.Context) string {
	return weather.text
}

type testApp struct {
	app      *fiber.App
	handler  *Handler
	database *gorm.DB
	mailer   *mail.Recorder
}

func newTestApp(t *testing.T) testApp {
	t.Helper()
	return newTestAppWithOptions(t, nil)
}

// newTestAppWithOptions lets a test adjust HandlerOptions before the handler is built.
func newTestAppWithOptions(t *testing.T, adjust func(options *HandlerOptions)) testApp {
	t.Helper()

	_, testFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("resolve current test file path")
	}

	apiDir := filepath.Dir(testFile)
	templatesDir := filepath.Join(filepath.Dir(apiDir), "templates")
	databasePath := filepath.Join(t.TempDir(), "agrosoft-api-test.db")

	database, err := db.OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	i18nManager, err := i18n.NewManager("es")
	if err != nil {
		t.Fatalf("init i18n: %v", err)
	}

	recorder := &mail.Recorder{}
	options := HandlerOptions{
		SecretKey:   "test-secret-key",
		TemplateDir: templatesDir,
		Location:    time.UTC,
		I18n:        i18nManager,
		BaseURL:     "http://agrosoft.test",
		Mailer:      recorder,
		Weather:     stubWeather{text: testWeatherText},
	}
	if adjust != nil {
		adjust(&options)
	}
	handler, err := NewHandler(database, options)
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler})
	app.Use(handler.LanguageMiddleware)
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return testApp{app: app, handler: handler, database: database, mailer: recorder}
}

func createTestUser(t *testing.T, database *gorm.DB, username string, password string, role string) models.User {
	t.Helper()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(passwordHash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func loginAndExtractAuthCookie(t *testing.T, app *fiber.App, username string, password string) string {
	t.Helper()

	response := postForm(t, app, "/login", url.Values{
		"username": {username},
		"password": {password},
	}, "")
	defer response.Body.Close()

	if response.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected login status 303, got %d", response.StatusCode)
	}

	value := responseCookieValue(response.Cookies(), authCookieName)
	if value == "" {
		t.Fatal("auth cookie is missing in login response")
	}
	return authCookieName + "=" + value
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values, cookie string) *http.Response {
	t.Helper()

	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return response
}

func getPage(t *testing.T, app *fiber.App, path string, cookie string) *http.Response {
	t.Helper()

	request := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return response
}

func sendJSON(t *testing.T, app *fiber.App, method string, path string, body string, cookie string) *http.Response {
	t.Helper()

	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return response
}

func readBody(t *testing.T, body io.Reader) string {
	t.Helper()

	content, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return string(content)
}

func joinCookieHeader(parts ...string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			filtered = append(filtered, part)
		}
	}
	return strings.Join(filtered, "; ")
}

func extractResetToken(t *testing.T, recorder *mail.Recorder) string {
	t.Helper()

	messages := recorder.Messages()
	if len(messages) == 0 {
		t.Fatal("expected a reset email to be sent")
	}
	match := resetLinkPattern.FindStringSubmatch(messages[len(messages)-1].Body)
	if len(match) != 2 {
		t.Fatalf("reset link not found in email body: %q", messages[len(messages)-1].Body)
	}
	return match[1]
}
