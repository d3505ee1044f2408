package handler

import (
	"net/http"

	"cafehenola/internal/dto"
	"cafehenola/internal/service"

	"github.com/gin-gonic/gin"
)

type DepositosHandler struct{ svc service.DepositoService }

func NewDepositosHandler(svc service.DepositoService) *DepositosHandler {
	return &DepositosHandler{svc: svc}
}

// RegistrarDeposito godoc
// @Summary      Registrar depósito
// @Description  Café dejado en custodia; abre un lote nuevo para el cliente.
// @Tags         depositos
// @Accept       json
// @Produce      json
// @Param        body body dto.RegistrarDepositoRequest true "Depósito"
// @Success      201  {object} dto.DepositoResponse
// @Router       /v1/depositos [post]
func (h *DepositosHandler) RegistrarDeposito(c *gin.Context) {
	var req dto.RegistrarDepositoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Liquidar godoc
// @Summary      Liquidar depósitos
// @Description  Liquida la cantidad pedida sobre los depósitos abiertos del cliente, del más antiguo al más reciente.
// @Tags         depositos
// @Accept       json
// @Produce      json
// @Param        body body dto.LiquidarRequest true "Cantidad y precio"
// @Success      201  {object} dto.LiquidacionResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/depositos/liquidaciones [post]
func (h *DepositosHandler) Liquidar(c *gin.Context) {
	var req dto.LiquidarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Liquidar(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *DepositosHandler) AnularLiquidacion(c *gin.Context) {
	id, ok := paramID(c, "grupo_id")
	if !ok {
		return
	}
	if err := h.svc.AnularLiquidacion(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DepositosHandler) AnularDeposito(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Anular(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Saldo godoc
// @Summary      Saldo depositado
// @Tags         depositos
// @Produce      json
// @Param        cliente_id  query string true "UUID del cliente"
// @Param        producto_id query string true "UUID del producto"
// @Success      200  {object} dto.SaldoAgregadoResponse
// @Router       /v1/depositos/saldo [get]
func (h *DepositosHandler) Saldo(c *gin.Context) {
	clienteID, ok := queryID(c, "cliente_id")
	if !ok {
		return
	}
	productoID, ok := queryID(c, "producto_id")
	if !ok {
		return
	}
	resp, err := h.svc.SaldoAgregado(c.Request.Context(), clienteID, productoID)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
