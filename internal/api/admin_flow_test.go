package api

import (
	"encoding/csv"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/agrosoft/agrosoft/internal/models"
	"github.com/agrosoft/agrosoft/internal/services"
)

func TestAdminPagesForbiddenForFarmers(t *testing.T) {
	env := newTestApp(t)
	createTestUser(t, env.database, "ana", "papa-criolla", models.RoleFarmer)
	authCookie := loginAndExtractAuthCookie(t, env.app, "ana", "papa-criolla")

	for _, path := range []string{"/admin", "/admin/users", "/admin/reports", "/admin/reports/export.csv"} {
		response := getPage(t, env.app, path, authCookie)
		response.Body.Close()
		if response.StatusCode != http.StatusForbidden {
			t.Fatalf("%s: expected status 403, got %d", path, response.StatusCode)
		}
	}

	anonymous := getPage(t, env.app, "/admin", "")
	anonymous.Body.Close()
	if location := anonymous.Header.Get("Location"); !strings.HasPrefix(location, "/login") {
		t.Fatalf("expected anonymous admin visit to redirect to login, got %q", location)
	}
}

func TestAdminPagesRender(t *testing.T) {
	env := newTestApp(t)
	createTestUser(t, env.database, "jefe", "admin-clave-1", models.RoleAdmin)
	createTestUser(t, env.database, "ana", "papa-criolla", models.RoleFarmer)
	farmerCookie := loginAndExtractAuthCookie(t, env.app, "ana", "papa-criolla")
	submitRecommendationForm(t, env, farmerCookie, url.Values{
		"mode":        {"crop"},
		"crop":        {"papa"},
		"sowing_date": {"2025-03-10"},
		"quantity":    {"100"},
	})

	adminCookie := loginAndExtractAuthCookie(t, env.app, "jefe", "admin-clave-1")
	for _, path := range []string{"/admin", "/admin/users", "/admin/reports", "/admin/reports?status=completed&crop=papa"} {
		response := getPage(t, env.app, path, adminCookie)
		response.Body.Close()
		if response.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d", path, response.StatusCode)
		}
	}

	invalid := getPage(t, env.app, "/admin/reports?from=2025-05-01&to=2025-01-01", adminCookie)
	invalid.Body.Close()
	if invalid.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected inverted range to return 400, got %d", invalid.StatusCode)
	}
}

func TestAdminCreatesUserWithChosenRole(t *testing.T) {
	env := newTestApp(t)
	createTestUser(t, env.database, "jefe", "admin-clave-1", models.RoleAdmin)
	adminCookie := loginAndExtractAuthCookie(t, env.app, "jefe", "admin-clave-1")

	response := postForm(t, env.app, "/admin/users", url.Values{
		"username":         {"asistente"},
		"email":            {"asistente@example.com"},
		"password":         {"clave-asistente"},
		"confirm_password": {"clave-asistente"},
		"role":             {models.RoleAdmin},
	}, adminCookie)
	response.Body.Close()
	if location := response.Header.Get("Location"); location != "/admin/users" {
		t.Fatalf("expected redirect to /admin/users, got %q", location)
	}

	created := models.User{}
	if err := env.database.Where("username = ?", "asistente").First(&created).Error; err != nil {
		t.Fatalf("load created user: %v", err)
	}
	if created.Role != models.RoleAdmin {
		t.Fatalf("expected admin role, got %q", created.Role)
	}

	duplicate := sendJSON(t, env.app, http.MethodPost, "/admin/users",
		`{"username":"asistente","email":"x@example.com","password":"clave-asistente","confirm_password":"clave-asistente","role":"farmer"}`,
		adminCookie)
	defer duplicate.Body.Close()
	if duplicate.StatusCode != http.StatusConflict {
		t.Fatalf("expected duplicate user status 409, got %d", duplicate.StatusCode)
	}
}

func TestAdminCannotDeleteOrDemoteSelf(t *testing.T) {
	env := newTestApp(t)
	admin := createTestUser(t, env.database, "jefe", "admin-clave-1", models.RoleAdmin)
	adminCookie := loginAndExtractAuthCookie(t, env.app, "jefe", "admin-clave-1")
	adminID := strconv.FormatUint(uint64(admin.ID), 10)

	deleted := sendJSON(t, env.app, http.MethodPost, "/admin/users/"+adminID+"/delete", "", adminCookie)
	defer deleted.Body.Close()
	if deleted.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected self delete status 400, got %d", deleted.StatusCode)
	}
	if got := readAPIError(t, deleted.Body); got != services.ErrCannotDeleteSelf.Error() {
		t.Fatalf("expected self delete error, got %q", got)
	}

	demoted := postForm(t, env.app, "/admin/users/"+adminID+"/role", url.Values{"role": {models.RoleFarmer}}, adminCookie)
	demoted.Body.Close()
	if location := demoted.Header.Get("Location"); location != "/admin/users" {
		t.Fatalf("expected redirect to /admin/users, got %q", location)
	}

	stored := models.User{}
	if err := env.database.First(&stored, admin.ID).Error; err != nil {
		t.Fatalf("load admin: %v", err)
	}
	if stored.Role != models.RoleAdmin {
		t.Fatalf("expected admin to keep role, got %q", stored.Role)
	}
}

func TestAdminDeleteUserCascadesRequests(t *testing.T) {
	env := newTestApp(t)
	createTestUser(t, env.database, "jefe", "admin-clave-1", models.RoleAdmin)
	farmer := createTestUser(t, env.database, "ana", "papa-criolla", models.RoleFarmer)

	farmerCookie := loginAndExtractAuthCookie(t, env.app, "ana", "papa-criolla")
	submitRecommendationForm(t, env, farmerCookie, url.Values{
		"mode":        {"crop"},
		"crop":        {"frijol"},
		"sowing_date": {"2025-03-10"},
		"quantity":    {"50"},
	})

	adminCookie := loginAndExtractAuthCookie(t, env.app, "jefe", "admin-clave-1")
	response := postForm(t, env.app, "/admin/users/"+strconv.FormatUint(uint64(farmer.ID), 10)+"/delete", url.Values{}, adminCookie)
	response.Body.Close()
	if response.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", response.StatusCode)
	}

	var users, requests int64
	env.database.Model(&models.User{}).Where("id = ?", farmer.ID).Count(&users)
	env.database.Model(&models.RecommendationRequest{}).Where("user_id = ?", farmer.ID).Count(&requests)
	if users != 0 || requests != 0 {
		t.Fatalf("expected user and requests removed, got users=%d requests=%d", users, requests)
	}

	stale := getPage(t, env.app, "/", farmerCookie)
	stale.Body.Close()
	if stale.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected deleted user's session to be rejected, got %d", stale.StatusCode)
	}
}

func TestAdminProcessRequestRequiresCompletedStatus(t *testing.T) {
	env := newTestApp(t)
	createTestUser(t, env.database, "jefe", "admin-clave-1", models.RoleAdmin)
	createTestUser(t, env.database, "ana", "papa-criolla", models.RoleFarmer)

	farmerCookie := loginAndExtractAuthCookie(t, env.app, "ana", "papa-criolla")
	request := submitRecommendationForm(t, env, farmerCookie, url.Values{
		"mode":        {"crop"},
		"crop":        {"papa"},
		"sowing_date": {"2025-03-10"},
		"quantity":    {"100"},
	})
	path := "/admin/requests/" + strconv.FormatUint(uint64(request.ID), 10) + "/process"

	adminCookie := loginAndExtractAuthCookie(t, env.app, "jefe", "admin-clave-1")
	first := sendJSON(t, env.app, http.MethodPost, path, "", adminCookie)
	first.Body.Close()
	if first.StatusCode != http.StatusOK {
		t.Fatalf("expected first processing to succeed, got %d", first.StatusCode)
	}

	second := sendJSON(t, env.app, http.MethodPost, path, "", adminCookie)
	defer second.Body.Close()
	if second.StatusCode != http.StatusConflict {
		t.Fatalf("expected processed request to be rejected with 409, got %d", second.StatusCode)
	}
}

func TestAdminReportsCSVExport(t *testing.T) {
	env := newTestApp(t)
	createTestUser(t, env.database, "jefe", "admin-clave-1", models.RoleAdmin)
	createTestUser(t, env.database, "ana", "papa-criolla", models.RoleFarmer)

	farmerCookie := loginAndExtractAuthCookie(t, env.app, "ana", "papa-criolla")
	for _, crop := range []string{"papa", "maiz"} {
		submitRecommendationForm(t, env, farmerCookie, url.Values{
			"mode":        {"crop"},
			"crop":        {crop},
			"sowing_date": {"2025-03-10"},
			"quantity":    {"100"},
		})
	}

	adminCookie := loginAndExtractAuthCookie(t, env.app, "jefe", "admin-clave-1")
	response := getPage(t, env.app, "/admin/reports/export.csv?crop=papa", adminCookie)
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", response.StatusCode)
	}
	if contentType := response.Header.Get("Content-Type"); !strings.HasPrefix(contentType, "text/csv") {
		t.Fatalf("expected csv content type, got %q", contentType)
	}
	if disposition := response.Header.Get("Content-Disposition"); !strings.Contains(disposition, "attachment; filename=agrosoft-report-") {
		t.Fatalf("expected attachment disposition, got %q", disposition)
	}

	records, err := csv.NewReader(response.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus one filtered row, got %d records", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(services.ReportCSVHeaders, ",") {
		t.Fatalf("unexpected csv header %v", records[0])
	}

	invalid := getPage(t, env.app, "/admin/reports/export.csv?status=archived", adminCookie)
	defer invalid.Body.Close()
	if invalid.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected invalid status filter to return 400, got %d", invalid.StatusCode)
	}
}
