package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cafehenola/internal/apierror"
	"cafehenola/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func servir(r *gin.Engine, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterCortaAlExceder(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RateLimiter(2, time.Minute))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, servir(r, nil).Code)
	assert.Equal(t, http.StatusNoContent, servir(r, nil).Code)

	w := servir(r, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimiterDesactivado(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RateLimiter(0, time.Minute))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusNoContent, servir(r, nil).Code)
	}
}

func TestRequestIDPropagaOGenera(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(middleware.RequestIDKey)) })

	w := servir(r, map[string]string{"X-Request-ID": "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "abc-123", w.Body.String())

	w = servir(r, nil)
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestErrorHandlerClasificaErrores(t *testing.T) {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.GET("/x", func(c *gin.Context) {
		_ = c.Error(apierror.Conflict(apierror.CodeRegistroAnulado, "la venta ya fue anulada"))
	})

	w := servir(r, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	var body apierror.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apierror.CodeRegistroAnulado, body.Code)
	assert.Equal(t, "la venta ya fue anulada", body.Detail)
}

func TestRecoveryDevuelve500(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Recovery())
	r.GET("/x", func(c *gin.Context) { panic("boom") })

	w := servir(r, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Error interno del servidor")
}
