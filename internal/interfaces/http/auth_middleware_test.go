package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/foodstock-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/foodstock-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "foodstock-test"
	testExpMin    = 60
)

// guardedApp expone GET /guarded detrás de AuthMiddleware + RequireRole y devuelve la identidad cargada.
func guardedApp(roles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/guarded",
		apphttp.AuthMiddleware(testJWTSecret, testIssuer),
		apphttp.RequireRole(roles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"user_id":    apphttp.GetUserID(c),
				"company_id": apphttp.GetCompanyID(c),
				"role":       apphttp.GetRole(c),
			})
		},
	)
	return app
}

func bearer(t *testing.T, role, issuer string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, role, issuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func hit(t *testing.T, app *fiber.App, authorization string) (int, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body := map[string]string{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_Rechazos(t *testing.T) {
	cases := []struct {
		name          string
		authorization func(t *testing.T) string
		code          string
	}{
		{"sin cabecera", func(*testing.T) string { return "" }, "MISSING_TOKEN"},
		{"esquema distinto de Bearer", func(*testing.T) string { return "Token abc" }, "INVALID_TOKEN"},
		{"firma inválida", func(*testing.T) string { return "Bearer token.invalido.aqui" }, "INVALID_TOKEN"},
		{"otro emisor", func(t *testing.T) string { return bearer(t, apphttp.RoleAdmin, "otro-emisor") }, "INVALID_TOKEN"},
	}
	app := guardedApp(apphttp.RoleAdmin, apphttp.RoleManager, apphttp.RoleStaff)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := hit(t, app, tc.authorization(t))
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, tc.code, body["code"])
		})
	}
}

func TestAuthMiddleware_CargaIdentidadDelToken(t *testing.T) {
	status, body := hit(t, guardedApp(apphttp.RoleStaff), bearer(t, apphttp.RoleStaff, testIssuer))

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testCompanyID, body["company_id"])
	assert.Equal(t, apphttp.RoleStaff, body["role"])
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireRole: matriz de rutas de inventario
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_Matriz(t *testing.T) {
	everyone := []string{apphttp.RoleAdmin, apphttp.RoleManager, apphttp.RoleStaff}
	managers := []string{apphttp.RoleAdmin, apphttp.RoleManager}

	cases := []struct {
		name   string
		route  []string
		role   string
		status int
	}{
		{"staff registra movimientos", everyone, apphttp.RoleStaff, http.StatusOK},
		{"manager corrige lotes", managers, apphttp.RoleManager, http.StatusOK},
		{"admin concilia", managers, apphttp.RoleAdmin, http.StatusOK},
		{"staff no corrige lotes", managers, apphttp.RoleStaff, http.StatusForbidden},
		{"rol desconocido", everyone, "auditor", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := hit(t, guardedApp(tc.route...), bearer(t, tc.role, testIssuer))
			assert.Equal(t, tc.status, status)
			if tc.status == http.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", body["code"])
			}
		})
	}
}

func TestRequireRole_TokenSinRol(t *testing.T) {
	status, body := hit(t, guardedApp(apphttp.RoleAdmin), bearer(t, "", testIssuer))

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_ROLE", body["code"])
}
