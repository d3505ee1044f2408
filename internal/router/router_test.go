package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cafehenola/internal/config"
	"cafehenola/internal/infra"
	"cafehenola/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func nuevoServidor(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	nombre := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", nombre)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, infra.RunMigrations(db))

	return router.New(&config.Config{Env: "test"}, db, nil)
}

func do(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 && strings.HasPrefix(w.Body.String(), "{") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestHealthSinRedis(t *testing.T) {
	r := nuevoServidor(t)
	w, body := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "disabled", body["redis"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestFlujoVentaHTTP(t *testing.T) {
	r := nuevoServidor(t)

	w, cli := do(t, r, http.MethodPost, "/v1/clientes", map[string]any{"nombre": "Cooperativa La Esperanza"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, prod := do(t, r, http.MethodPost, "/v1/productos", map[string]any{
		"nombre": "Oro", "tara_por_saco": "0", "factor_descuento": "0", "factor_oro": "1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = do(t, r, http.MethodPost, "/v1/compras", map[string]any{
		"cliente_id": cli["id"], "producto_id": prod["id"], "cantidad": "10", "precio_unitario": "1500",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, body := do(t, r, http.MethodPost, "/v1/ventas", map[string]any{
		"cliente_id": cli["id"], "producto_id": prod["id"], "cantidad": "11",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "inventario_insuficiente", body["code"])

	w, venta := do(t, r, http.MethodPost, "/v1/ventas", map[string]any{
		"cliente_id": cli["id"], "producto_id": prod["id"], "cantidad": "4",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, saldo := do(t, r, http.MethodGet, fmt.Sprintf("/v1/inventario/saldo?cliente_id=%s&producto_id=%s", cli["id"], prod["id"]), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decimal.RequireFromString(fmt.Sprint(saldo["cantidad"])).Equal(decimal.NewFromInt(6)))

	w, _ = do(t, r, http.MethodDelete, fmt.Sprintf("/v1/ventas/%s", venta["id"]), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, body = do(t, r, http.MethodDelete, fmt.Sprintf("/v1/ventas/%s", venta["id"]), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "registro_anulado", body["code"])
}

func TestValidacionYNoEncontrado(t *testing.T) {
	r := nuevoServidor(t)

	w, body := do(t, r, http.MethodPost, "/v1/ventas", map[string]any{"cliente_id": "x", "cantidad": "-1"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, body, "fields")

	w, _ = do(t, r, http.MethodGet, "/v1/contratos/no-es-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = do(t, r, http.MethodGet, "/v1/contratos/6f1c2a8e-8d7b-4f6e-9a51-0c2d3e4f5a6b", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", body["code"])
}

func TestPrestamosHTTP(t *testing.T) {
	r := nuevoServidor(t)
	_, cli := do(t, r, http.MethodPost, "/v1/clientes", map[string]any{"nombre": "Finca Santa Rosa"})

	w, _ := do(t, r, http.MethodPost, "/v1/prestamos/movimientos", map[string]any{
		"cliente_id": cli["id"], "tipo": "PRESTAMO", "monto": "500",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, body := do(t, r, http.MethodPost, "/v1/prestamos/movimientos", map[string]any{
		"cliente_id": cli["id"], "tipo": "ABONO", "monto": "600",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "exceeds_pending_debt", body["code"])

	// Advances are a separate pool: no active advance, so the payment is kept as credit.
	w, body = do(t, r, http.MethodPost, "/v1/anticipos/movimientos", map[string]any{
		"cliente_id": cli["id"], "tipo": "ABONO_ANTICIPO", "monto": "50",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, decimal.RequireFromString(fmt.Sprint(body["no_asignado"])).Equal(decimal.NewFromInt(50)))

	w, ec := do(t, r, http.MethodGet, fmt.Sprintf("/v1/prestamos/clientes/%s", cli["id"]), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decimal.RequireFromString(fmt.Sprint(ec["saldo_total"])).Equal(decimal.NewFromInt(500)))
}
