package handler

import (
	"net/http"

	"cafehenola/internal/dto"
	"cafehenola/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventarioHandler struct{ svc service.InventarioService }

func NewInventarioHandler(svc service.InventarioService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// Saldo godoc
// @Summary      Saldo de inventario
// @Description  Suma de los lotes del cliente para un producto.
// @Tags         inventario
// @Produce      json
// @Param        cliente_id  query string true "UUID del cliente"
// @Param        producto_id query string true "UUID del producto"
// @Success      200  {object} dto.SaldoInventarioResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/inventario/saldo [get]
func (h *InventarioHandler) Saldo(c *gin.Context) {
	clienteID, ok := queryID(c, "cliente_id")
	if !ok {
		return
	}
	productoID, ok := queryID(c, "producto_id")
	if !ok {
		return
	}
	resp, err := h.svc.Saldo(c.Request.Context(), clienteID, productoID)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarLotes godoc
// @Summary      Listar lotes
// @Tags         inventario
// @Produce      json
// @Param        cliente_id  query string true  "UUID del cliente"
// @Param        producto_id query string false "UUID del producto"
// @Success      200  {array} dto.LoteResponse
// @Router       /v1/inventario/lotes [get]
func (h *InventarioHandler) ListarLotes(c *gin.Context) {
	clienteID, ok := queryID(c, "cliente_id")
	if !ok {
		return
	}
	var productoID *uuid.UUID
	if c.Query("producto_id") != "" {
		id, ok := queryID(c, "producto_id")
		if !ok {
			return
		}
		productoID = &id
	}
	resp, err := h.svc.ListarLotes(c.Request.Context(), clienteID, productoID)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarMovimientos godoc
// @Summary      Historial de movimientos de inventario
// @Tags         inventario
// @Produce      json
// @Param        cliente_id      query string true  "UUID del cliente"
// @Param        producto_id     query string false "UUID del producto"
// @Param        referencia_tipo query string false "compra | venta | deposito | liquidacion_deposito | entrega_contrato"
// @Param        limit           query int    false "Máximo de registros (default 100)"
// @Success      200  {array} dto.MovimientoInventarioResponse
// @Router       /v1/inventario/movimientos [get]
func (h *InventarioHandler) ListarMovimientos(c *gin.Context) {
	var filter dto.InventarioFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
