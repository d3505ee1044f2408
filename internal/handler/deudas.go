package handler

import (
	"net/http"

	"cafehenola/internal/dto"
	"cafehenola/internal/model"
	"cafehenola/internal/service"

	"github.com/gin-gonic/gin"
)

// DeudasHandler serves one Cartera. The router mounts one instance for loans
// and one for advances.
type DeudasHandler struct {
	svc     service.DeudaService
	cartera model.Cartera
}

func NewDeudasHandler(svc service.DeudaService, cartera model.Cartera) *DeudasHandler {
	return &DeudasHandler{svc: svc, cartera: cartera}
}

// RegistrarMovimiento godoc
// @Summary      Registrar movimiento de préstamo o anticipo
// @Description  Desembolsos abren una deuda; abonos recorren las deudas activas de la más antigua a la más reciente. Un abono sin deudas queda como crédito no asignado.
// @Tags         deudas
// @Accept       json
// @Produce      json
// @Param        body body dto.RegistrarMovimientoDeudaRequest true "Movimiento"
// @Success      201  {object} dto.MovimientoDeudaResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/prestamos/movimientos [post]
// @Router       /v1/anticipos/movimientos [post]
func (h *DeudasHandler) RegistrarMovimiento(c *gin.Context) {
	var req dto.RegistrarMovimientoDeudaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarMovimiento(c.Request.Context(), h.cartera, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AnularMovimiento godoc
// @Summary      Anular movimiento
// @Description  Anula todas las filas escritas por el pago. Falla con 409 si movimientos posteriores ya lo superaron.
// @Tags         deudas
// @Param        pago_id path string true "UUID del pago"
// @Success      204
// @Failure      409  {object} apierror.APIError
// @Router       /v1/prestamos/movimientos/{pago_id} [delete]
// @Router       /v1/anticipos/movimientos/{pago_id} [delete]
func (h *DeudasHandler) AnularMovimiento(c *gin.Context) {
	id, ok := paramID(c, "pago_id")
	if !ok {
		return
	}
	if err := h.svc.AnularMovimiento(c.Request.Context(), h.cartera, id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// EstadoCuenta godoc
// @Summary      Estado de cuenta del cliente
// @Tags         deudas
// @Produce      json
// @Param        cliente_id path string true "UUID del cliente"
// @Success      200  {object} dto.EstadoCuentaResponse
// @Router       /v1/prestamos/clientes/{cliente_id} [get]
// @Router       /v1/anticipos/clientes/{cliente_id} [get]
func (h *DeudasHandler) EstadoCuenta(c *gin.Context) {
	id, ok := paramID(c, "cliente_id")
	if !ok {
		return
	}
	resp, err := h.svc.EstadoCuenta(c.Request.Context(), h.cartera, id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
