package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Bodega-api/internal/application/document"
	"github.com/jhoicas/Bodega-api/internal/application/movement"
	"github.com/jhoicas/Bodega-api/internal/application/report"
	"github.com/jhoicas/Bodega-api/internal/application/stock"
	"github.com/jhoicas/Bodega-api/internal/application/usecase"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Bodega-api/internal/interfaces/http"
	"github.com/jhoicas/Bodega-api/pkg/logger"
	pkgjwt "github.com/jhoicas/Bodega-api/pkg/jwt"
)

const basePath = "/api/v1"

type fakeRenderer struct{}

func (fakeRenderer) Render(d *entity.Document) ([]byte, error) {
	return []byte("%PDF-1.4 " + d.ID), nil
}

// newTestAPI arma la API completa sobre el almacenamiento en memoria.
func newTestAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	store.SeedStock([]entity.StockBalance{
		{ProductID: 100, WarehouseID: 1, Category: "DAIRY", Quantity: 200},
		{ProductID: 100, WarehouseID: 2, Category: "DAIRY", Quantity: 10},
		{ProductID: 101, WarehouseID: 1, Category: "DAIRY", Quantity: 4},
		{ProductID: 300, WarehouseID: 3, Category: "BAKERY", Quantity: 60},
	})
	store.SeedUsers([]entity.User{
		{ID: "seed-operator", Username: "operator", Name: "Operador", Role: entity.RoleOperator, Status: "ACTIVE"},
	})

	log := logger.Nop()
	app := apphttp.NewApp(apphttp.AppConfig{Name: "test"}, log)
	apphttp.Router(app, apphttp.RouterDeps{
		Movements:   movement.NewEngine(store.Movements(), store, movement.WithLogger(log)),
		Documents:   document.NewEngine(store.Documents(), store, document.WithRenderer(fakeRenderer{})),
		Stock:       stock.NewLedger(store.Stock(), nil, log),
		Reports:     report.NewService(store.Movements(), store.Documents()),
		Users:       usecase.NewUserUseCase(store.Users()),
		Resolver:    testResolver(t),
		BasePath:    basePath,
		ServiceName: "bodega-api",
		Log:         log,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, auth string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, basePath+path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func transferBody() map[string]interface{} {
	return map[string]interface{}{
		"warehouseFromId": 1,
		"warehouseToId":   2,
		"productId":       100,
		"quantity":        50,
		"type":            "TRANSFER",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestMovimientos_FlujoCompleto(t *testing.T) {
	app := newTestAPI(t)
	op, mgr := tokenForRole(t, "OPERATOR"), tokenForRole(t, "MANAGER")

	resp, body := call(t, app, http.MethodPost, "/movements", op, transferBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "CREATED", body["status"])
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, basePath+"/movements/"+id, resp.Header.Get("Location"))
	assert.EqualValues(t, 2, body["warehouseToId"])

	resp, body = call(t, app, http.MethodPut, "/movements/"+id+"/approve", mgr, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "APPROVED", body["status"])
	assert.Equal(t, "u-MANAGER", body["approvedBy"])

	resp, body = call(t, app, http.MethodPut, "/movements/"+id+"/complete", op, map[string]interface{}{"actualQuantity": 98})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "COMPLETED", body["status"])
	assert.EqualValues(t, 98, body["actualQuantity"])

	resp, body = call(t, app, http.MethodPut, "/movements/"+id+"/approve", mgr, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_STATE_TRANSITION", body["error"])

	// el stock refleja la cantidad real
	resp, body = call(t, app, http.MethodGet, "/stock/100", op, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 210, body["totalQuantity"])
	wh, _ := body["warehouses"].(map[string]interface{})
	assert.EqualValues(t, 102, wh["1"])
	assert.EqualValues(t, 108, wh["2"])
}

func TestMovimientos_CrearYObtener(t *testing.T) {
	app := newTestAPI(t)
	op := tokenForRole(t, "OPERATOR")

	_, created := call(t, app, http.MethodPost, "/movements", op, transferBody())
	id := created["id"].(string)

	resp, got := call(t, app, http.MethodGet, "/movements/"+id, op, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, got["id"])
	assert.Equal(t, "CREATED", got["status"])
	assert.EqualValues(t, 50, got["quantity"])
	assert.Nil(t, got["actualQuantity"])
}

func TestMovimientos_MismaBodega_Retorna422(t *testing.T) {
	app := newTestAPI(t)
	in := transferBody()
	in["warehouseToId"] = 1

	resp, body := call(t, app, http.MethodPost, "/movements", tokenForRole(t, "OPERATOR"), in)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "BUSINESS_ERROR", body["error"])
	assert.Contains(t, body["message"], "same warehouse")
}

func TestMovimientos_CantidadInvalida_Retorna400(t *testing.T) {
	app := newTestAPI(t)
	op := tokenForRole(t, "OPERATOR")

	for _, qty := range []int{0, -3} {
		in := transferBody()
		in["quantity"] = qty
		resp, body := call(t, app, http.MethodPost, "/movements", op, in)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", body["error"])
		details, _ := body["details"].(map[string]interface{})
		assert.Equal(t, "must be greater than 0", details["quantity"])
	}

	_, list := call(t, app, http.MethodGet, "/movements", op, nil)
	assert.Empty(t, list["content"], "ningún movimiento debe quedar registrado")
}

func TestMovimientos_JSONMalformado_Retorna400(t *testing.T) {
	app := newTestAPI(t)
	resp, body := call(t, app, http.MethodPost, "/movements", tokenForRole(t, "OPERATOR"), `{"quantity": `)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", body["error"])
}

func TestMovimientos_OperadorNoAprueba(t *testing.T) {
	app := newTestAPI(t)
	_, created := call(t, app, http.MethodPost, "/movements", tokenForRole(t, "OPERATOR"), transferBody())

	resp, body := call(t, app, http.MethodPut, "/movements/"+created["id"].(string)+"/approve", tokenForRole(t, "OPERATOR"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "ACCESS_DENIED", body["error"])
}

func TestMovimientos_Inexistente_Retorna404(t *testing.T) {
	app := newTestAPI(t)
	resp, body := call(t, app, http.MethodGet, "/movements/no-existe", tokenForRole(t, "OPERATOR"), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["error"])
}

func TestMovimientos_CompletarSinAprobar_Retorna409(t *testing.T) {
	app := newTestAPI(t)
	op := tokenForRole(t, "OPERATOR")
	_, created := call(t, app, http.MethodPost, "/movements", op, transferBody())

	resp, body := call(t, app, http.MethodPut, "/movements/"+created["id"].(string)+"/complete", op, map[string]interface{}{"actualQuantity": 50})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_STATE_TRANSITION", body["error"])
}

func TestMovimientos_CompletarSinCantidad_Retorna400(t *testing.T) {
	app := newTestAPI(t)
	op := tokenForRole(t, "OPERATOR")
	_, created := call(t, app, http.MethodPost, "/movements", op, transferBody())

	resp, body := call(t, app, http.MethodPut, "/movements/"+created["id"].(string)+"/complete", op, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	details, _ := body["details"].(map[string]interface{})
	assert.Equal(t, "is required", details["actualQuantity"])
}

func TestMovimientos_CompletarPrioridadEstadoSobreBody(t *testing.T) {
	app := newTestAPI(t)
	op, mgr := tokenForRole(t, "OPERATOR"), tokenForRole(t, "MANAGER")

	resp, body := call(t, app, http.MethodPut, "/movements/no-existe/complete", op, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["error"])

	_, created := call(t, app, http.MethodPost, "/movements", op, transferBody())
	id := created["id"].(string)
	call(t, app, http.MethodPut, "/movements/"+id+"/approve", mgr, nil)
	resp, _ = call(t, app, http.MethodPut, "/movements/"+id+"/complete", op, map[string]interface{}{"actualQuantity": 50})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = call(t, app, http.MethodPut, "/movements/"+id+"/complete", op, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_STATE_TRANSITION", body["error"])
}

func TestMovimientos_BajaSinBodegaOrigen_Retorna201(t *testing.T) {
	app := newTestAPI(t)
	resp, body := call(t, app, http.MethodPost, "/movements", tokenForRole(t, "OPERATOR"), map[string]interface{}{
		"productId": 200,
		"quantity":  5,
		"type":      "WRITE_OFF",
		"reason":    "damaged",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Nil(t, body["warehouseFromId"])
	assert.Nil(t, body["warehouseToId"])
	assert.Equal(t, "CREATED", body["status"])
}

func TestMovimientos_ListaConFiltro(t *testing.T) {
	app := newTestAPI(t)
	op, mgr := tokenForRole(t, "OPERATOR"), tokenForRole(t, "MANAGER")

	_, first := call(t, app, http.MethodPost, "/movements", op, transferBody())
	call(t, app, http.MethodPost, "/movements", op, transferBody())
	call(t, app, http.MethodPut, "/movements/"+first["id"].(string)+"/approve", mgr, nil)

	resp, body := call(t, app, http.MethodGet, "/movements", op, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["content"], 2)

	_, body = call(t, app, http.MethodGet, "/movements?status=APPROVED", op, nil)
	content, _ := body["content"].([]interface{})
	require.Len(t, content, 1)
	assert.Equal(t, first["id"], content[0].(map[string]interface{})["id"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Credenciales
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_TokenExpiradoYMalformado(t *testing.T) {
	app := newTestAPI(t)
	expired, err := pkgjwt.Generate(testJWTSecret, "u-1", "OPERATOR", testIssuer, -1)
	require.NoError(t, err)

	resp, body := call(t, app, http.MethodGet, "/movements", "Bearer "+expired, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "TOKEN_EXPIRED", body["error"])

	resp, body = call(t, app, http.MethodGet, "/stock", "Bearer abc.def", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", body["error"])

	resp, body = call(t, app, http.MethodPost, "/documents", "", map[string]interface{}{"type": "X"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHENTICATED", body["error"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Documentos
// ──────────────────────────────────────────────────────────────────────────────

func documentBody() map[string]interface{} {
	return map[string]interface{}{
		"type":  "TRANSFER_ACT",
		"date":  "2024-03-15",
		"items": []map[string]interface{}{{"productId": 100, "quantity": 50}, {"productId": 101, "quantity": 2}},
	}
}

func TestDocumentos_AprobarLuegoRechazar_Retorna409(t *testing.T) {
	app := newTestAPI(t)
	op, mgr := tokenForRole(t, "OPERATOR"), tokenForRole(t, "MANAGER")

	resp, created := call(t, app, http.MethodPost, "/documents", op, documentBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode, created)
	assert.Equal(t, "DRAFT", created["status"])
	assert.Equal(t, "2024-03-15", created["date"])
	assert.Len(t, created["items"], 2)
	id := created["id"].(string)

	resp, approved := call(t, app, http.MethodPut, "/documents/"+id+"/approve", mgr, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, approved)
	assert.Equal(t, "APPROVED", approved["status"])
	assert.Equal(t, "u-MANAGER", approved["approvedBy"])
	assert.NotNil(t, approved["approvedAt"])

	resp, body := call(t, app, http.MethodPut, "/documents/"+id+"/reject", mgr, map[string]interface{}{"reason": "incorrect data"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_STATE_TRANSITION", body["error"])

	resp, body = call(t, app, http.MethodPut, "/documents/"+id+"/reject", mgr, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "sin body también es 409")
	assert.Equal(t, "INVALID_STATE_TRANSITION", body["error"])

	_, got := call(t, app, http.MethodGet, "/documents/"+id, op, nil)
	assert.Equal(t, "APPROVED", got["status"])
	assert.Nil(t, got["rejectionReason"])
}

func TestDocumentos_RechazoYListaPorEstado(t *testing.T) {
	app := newTestAPI(t)
	op, mgr := tokenForRole(t, "OPERATOR"), tokenForRole(t, "MANAGER")

	_, a := call(t, app, http.MethodPost, "/documents", op, documentBody())
	call(t, app, http.MethodPost, "/documents", op, documentBody())

	resp, rejected := call(t, app, http.MethodPut, "/documents/"+a["id"].(string)+"/reject", mgr, map[string]interface{}{"reason": "wrong items"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "REJECTED", rejected["status"])
	assert.Equal(t, "wrong items", rejected["rejectionReason"])

	resp, body := call(t, app, http.MethodGet, "/documents?status=DRAFT", op, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["content"], 1)

	_, body = call(t, app, http.MethodGet, "/documents?status=REJECTED", op, nil)
	assert.Len(t, body["content"], 1)
}

func TestDocumentos_RechazoSinMotivo(t *testing.T) {
	app := newTestAPI(t)
	_, created := call(t, app, http.MethodPost, "/documents", tokenForRole(t, "OPERATOR"), documentBody())

	resp, rejected := call(t, app, http.MethodPut, "/documents/"+created["id"].(string)+"/reject", tokenForRole(t, "MANAGER"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, rejected)
	assert.Equal(t, "REJECTED", rejected["status"])
	assert.Nil(t, rejected["rejectionReason"])
}

func TestDocumentos_OperadorNoRechaza(t *testing.T) {
	app := newTestAPI(t)
	op := tokenForRole(t, "OPERATOR")
	_, created := call(t, app, http.MethodPost, "/documents", op, documentBody())

	resp, _ := call(t, app, http.MethodPut, "/documents/"+created["id"].(string)+"/reject", op, map[string]interface{}{"reason": "x"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDocumentos_SinItems_Retorna400(t *testing.T) {
	app := newTestAPI(t)
	resp, body := call(t, app, http.MethodPost, "/documents", tokenForRole(t, "OPERATOR"), map[string]interface{}{"type": "TRANSFER_ACT"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	details, _ := body["details"].(map[string]interface{})
	assert.Contains(t, details, "items")
}

func TestDocumentos_PDF(t *testing.T) {
	app := newTestAPI(t)
	op := tokenForRole(t, "OPERATOR")
	_, created := call(t, app, http.MethodPost, "/documents", op, documentBody())
	id := created["id"].(string)

	req := httptest.NewRequest(http.MethodGet, basePath+"/documents/"+id+"/pdf", nil)
	req.Header.Set("Authorization", op)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	raw, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock
// ──────────────────────────────────────────────────────────────────────────────

func TestStock_BodegaVacia_RetornaListaVacia(t *testing.T) {
	app := newTestAPI(t)
	resp, body := call(t, app, http.MethodGet, "/stock?warehouseId=999", tokenForRole(t, "OPERATOR"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items, ok := body["items"].([]interface{})
	require.True(t, ok, "items debe ser una lista, no null")
	assert.Empty(t, items)
}

func TestStock_FiltrosConjuntivos(t *testing.T) {
	app := newTestAPI(t)
	op := tokenForRole(t, "OPERATOR")

	_, body := call(t, app, http.MethodGet, "/stock?category=DAIRY", op, nil)
	assert.Len(t, body["items"], 2)

	_, body = call(t, app, http.MethodGet, "/stock?warehouseId=1&category=DAIRY&belowThreshold=10", op, nil)
	items, _ := body["items"].([]interface{})
	require.Len(t, items, 1)
	assert.EqualValues(t, 101, items[0].(map[string]interface{})["productId"])
}

func TestStock_ParametroInvalido_Retorna400(t *testing.T) {
	app := newTestAPI(t)
	resp, body := call(t, app, http.MethodGet, "/stock?warehouseId=uno", tokenForRole(t, "OPERATOR"), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	details, _ := body["details"].(map[string]interface{})
	assert.Equal(t, "must be an integer", details["warehouseId"])
}

func TestStock_ProductoSinStock_Retorna404(t *testing.T) {
	app := newTestAPI(t)
	resp, body := call(t, app, http.MethodGet, "/stock/9999", tokenForRole(t, "OPERATOR"), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["error"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Reportes y administración
// ──────────────────────────────────────────────────────────────────────────────

func TestReportes_DiarioPublicoYMensualSoloManager(t *testing.T) {
	app := newTestAPI(t)

	resp, body := call(t, app, http.MethodGet, "/reports/daily", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "movementsCreated")

	resp, _ = call(t, app, http.MethodGet, "/reports/monthly", tokenForRole(t, "OPERATOR"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = call(t, app, http.MethodGet, "/reports/monthly?month=2024-03", tokenForRole(t, "MANAGER"), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2024-03", body["month"])
}

func TestAdmin_UsuariosConBasicYBearer(t *testing.T) {
	app := newTestAPI(t)

	resp, body := call(t, app, http.MethodGet, "/admin/users", basicHeader(testAdminUser, testAdminPass), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Len(t, body["items"], 1)

	resp, created := call(t, app, http.MethodPost, "/admin/users", tokenForRole(t, "ADMIN"),
		map[string]interface{}{"username": "Gerente1", "name": "Gerente Uno", "role": "manager"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, created)
	assert.Equal(t, "gerente1", created["username"])
	assert.Equal(t, "MANAGER", created["role"])

	resp, _ = call(t, app, http.MethodGet, "/admin/users", tokenForRole(t, "MANAGER"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRutaInexistente_Retorna404SinCredencial(t *testing.T) {
	app := newTestAPI(t)
	resp, body := call(t, app, http.MethodGet, "/nonexistent", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["error"])

	resp, _ = call(t, app, http.MethodGet, "/movements", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "los recursos siguen protegidos")
}

func TestHealth(t *testing.T) {
	app := newTestAPI(t)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
