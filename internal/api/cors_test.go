package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func sendPreflight(t *testing.T, app *fiber.App, path string, origin string) *http.Response {
	t.Helper()

	request := httptest.NewRequest(http.MethodOptions, path, nil)
	request.Header.Set("Origin", origin)
	request.Header.Set("Access-Control-Request-Method", http.MethodPost)
	request.Header.Set("Access-Control-Request-Headers", "Content-Type")
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("OPTIONS %s failed: %v", path, err)
	}
	return response
}

func TestRecommendationsAPIPreflightHonoursAllowedOrigins(t *testing.T) {
	env := newTestAppWithOptions(t, func(options *HandlerOptions) {
		options.CORSAllowedOrigins = []string{"https://campo.example"}
	})

	allowed := sendPreflight(t, env.app, "/api/recommendations", "https://campo.example")
	if got := allowed.Header.Get("Access-Control-Allow-Origin"); got != "https://campo.example" {
		t.Fatalf("expected allowed origin to be echoed, got %q", got)
	}
	if got := allowed.Header.Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("expected credentials to be allowed, got %q", got)
	}

	denied := sendPreflight(t, env.app, "/api/recommendations", "https://otro.example")
	if got := denied.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no CORS grant for an unknown origin, got %q", got)
	}
}

func TestRecommendationsAPIWithoutOriginsSendsNoCORSHeaders(t *testing.T) {
	env := newTestApp(t)

	response := sendPreflight(t, env.app, "/api/recommendations", "https://campo.example")
	if got := response.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected same-origin only API, got %q", got)
	}
}
