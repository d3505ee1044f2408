package handler

import (
	"net/http"

	"cafehenola/internal/dto"
	"cafehenola/internal/service"

	"github.com/gin-gonic/gin"
)

type SalidasHandler struct{ svc service.SalidaService }

func NewSalidasHandler(svc service.SalidaService) *SalidasHandler { return &SalidasHandler{svc: svc} }

// RegistrarSalida godoc
// @Summary      Registrar salida a comprador
// @Tags         salidas
// @Accept       json
// @Produce      json
// @Param        body body dto.RegistrarSalidaRequest true "Salida"
// @Success      201  {object} dto.SalidaResponse
// @Router       /v1/salidas [post]
func (h *SalidasHandler) RegistrarSalida(c *gin.Context) {
	var req dto.RegistrarSalidaRequest
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
// @Summary      Liquidar salidas
// @Description  Liquida la cantidad pedida sobre las salidas abiertas del comprador, de la más antigua a la más reciente.
// @Tags         salidas
// @Accept       json
// @Produce      json
// @Param        body body dto.LiquidarRequest true "Cantidad y precio"
// @Success      201  {object} dto.LiquidacionResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/salidas/liquidaciones [post]
func (h *SalidasHandler) Liquidar(c *gin.Context) {
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

func (h *SalidasHandler) AnularLiquidacion(c *gin.Context) {
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

func (h *SalidasHandler) Saldo(c *gin.Context) {
	compradorID, ok := queryID(c, "comprador_id")
	if !ok {
		return
	}
	productoID, ok := queryID(c, "producto_id")
	if !ok {
		return
	}
	resp, err := h.svc.SaldoAgregado(c.Request.Context(), compradorID, productoID)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
