package http_test

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Bodega-api/internal/application/auth"
	"github.com/jhoicas/Bodega-api/internal/domain/access"
	apphttp "github.com/jhoicas/Bodega-api/internal/interfaces/http"
	"github.com/jhoicas/Bodega-api/pkg/logger"
	pkgjwt "github.com/jhoicas/Bodega-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "bodega-api-test"
	testExpMin    = 60
	testAdminUser = "admin"
	testAdminPass = "s3creto"
)

func testResolver(t *testing.T) *auth.Resolver {
	t.Helper()
	admin, err := auth.NewAdminCredential(testAdminUser, testAdminPass, "")
	require.NoError(t, err)
	return auth.NewResolver(pkgjwt.NewVerifier(testJWTSecret, testIssuer), admin)
}

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para resolver el Principal
//   - Require para autorizar (recurso, acción)
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(t *testing.T, allowBasic bool, resource access.Resource, action access.Action) *fiber.App {
	app := apphttp.NewApp(apphttp.AppConfig{Name: "test"}, logger.Nop())
	app.Get("/protected",
		apphttp.AuthMiddleware(testResolver(t), allowBasic),
		apphttp.Require(resource, action),
		func(c *fiber.Ctx) error {
			p := apphttp.GetPrincipal(c)
			return c.JSON(fiber.Map{"ok": true, "subject": p.Subject, "role": string(p.Role)})
		},
	)
	return app
}

// tokenForRole genera un JWT con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, "u-"+role, role, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func basicHeader(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	code, _ := body["error"].(string)
	return code
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Require
// ──────────────────────────────────────────────────────────────────────────────

func TestRequire_ManagerApruebaMovimientos(t *testing.T) {
	app := buildTestApp(t, false, access.Movements, access.Approve)
	resp := doRequest(t, app, tokenForRole(t, "MANAGER"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "u-MANAGER", body["subject"])
	assert.Equal(t, "MANAGER", body["role"])
}

func TestRequire_AdminHeredaPermisosDeManager(t *testing.T) {
	app := buildTestApp(t, false, access.Reports, access.Monthly)
	resp := doRequest(t, app, tokenForRole(t, "ADMIN"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequire_OperadorBloqueadoAlAprobar(t *testing.T) {
	app := buildTestApp(t, false, access.Movements, access.Approve)
	resp := doRequest(t, app, tokenForRole(t, "OPERATOR"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "ACCESS_DENIED", errorCode(t, resp))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware: errores de credencial
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_SinAuthHeader_Retorna401(t *testing.T) {
	app := buildTestApp(t, false, access.Movements, access.Read)
	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHENTICATED", errorCode(t, resp))
}

func TestAuthMiddleware_TokenMalformado_Retorna401InvalidToken(t *testing.T) {
	app := buildTestApp(t, false, access.Movements, access.Read)
	resp := doRequest(t, app, "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, resp))
}

func TestAuthMiddleware_TokenExpirado_Retorna401TokenExpired(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, "u-1", "OPERATOR", testIssuer, -5)
	require.NoError(t, err)

	app := buildTestApp(t, false, access.Movements, access.Read)
	resp := doRequest(t, app, "Bearer "+tok)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "TOKEN_EXPIRED", errorCode(t, resp))
}

func TestAuthMiddleware_TokenSinRol_Retorna401(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, "u-1", "", testIssuer, testExpMin)
	require.NoError(t, err)

	app := buildTestApp(t, false, access.Movements, access.Read)
	resp := doRequest(t, app, "Bearer "+tok)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, resp))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Basic: solo en rutas de administración
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_BasicAdminEnRutaAdmin(t *testing.T) {
	app := buildTestApp(t, true, access.Admin, access.ManageUsers)
	resp := doRequest(t, app, basicHeader(testAdminUser, testAdminPass))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthMiddleware_BasicContrasenaIncorrecta(t *testing.T) {
	app := buildTestApp(t, true, access.Admin, access.ManageUsers)
	resp := doRequest(t, app, basicHeader(testAdminUser, "otra"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHENTICATED", errorCode(t, resp))
}

func TestAuthMiddleware_BasicFueraDeAdminRechazado(t *testing.T) {
	app := buildTestApp(t, false, access.Movements, access.Read)
	resp := doRequest(t, app, basicHeader(testAdminUser, testAdminPass))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// OptionalAuth
// ──────────────────────────────────────────────────────────────────────────────

func TestOptionalAuth_SinCredencialPasa(t *testing.T) {
	app := apphttp.NewApp(apphttp.AppConfig{Name: "test"}, logger.Nop())
	app.Get("/public", apphttp.OptionalAuth(testResolver(t)), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"authenticated": apphttp.GetPrincipal(c).Authenticated()})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/public", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer basura")
	resp2, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode, "una credencial inválida no se ignora")
}
