package handler

import (
	"net/http"

	"cafehenola/internal/dto"
	"cafehenola/internal/service"

	"github.com/gin-gonic/gin"
)

type ContratosHandler struct{ svc service.ContratoService }

func NewContratosHandler(svc service.ContratoService) *ContratosHandler {
	return &ContratosHandler{svc: svc}
}

// CrearContrato godoc
// @Summary      Crear contrato de entrega
// @Tags         contratos
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearContratoRequest true "Compromiso en QQ y precio"
// @Success      201  {object} dto.ContratoResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/contratos [post]
func (h *ContratosHandler) CrearContrato(c *gin.Context) {
	var req dto.CrearContratoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ContratosHandler) ObtenerContrato(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarContratos godoc
// @Summary      Contratos de un cliente
// @Tags         contratos
// @Produce      json
// @Param        cliente_id query string true  "UUID del cliente"
// @Param        estado     query string false "Pendiente | Liquidado | Anulado"
// @Success      200  {array} dto.ContratoResponse
// @Router       /v1/contratos [get]
func (h *ContratosHandler) ListarContratos(c *gin.Context) {
	clienteID, ok := queryID(c, "cliente_id")
	if !ok {
		return
	}
	resp, err := h.svc.ListarPorCliente(c.Request.Context(), clienteID, c.Query("estado"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ContratosHandler) AnularContrato(c *gin.Context) {
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

// RegistrarEntrega godoc
// @Summary      Registrar entrega contra un contrato
// @Description  Rechaza entregas que excedan el saldo pendiente. El contrato pasa a Liquidado cuando lo entregado cubre lo contratado.
// @Tags         contratos
// @Accept       json
// @Produce      json
// @Param        id   path string true "UUID del contrato"
// @Param        body body dto.RegistrarEntregaRequest true "Entrega"
// @Success      201  {object} dto.EntregaResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/contratos/{id}/entregas [post]
func (h *ContratosHandler) RegistrarEntrega(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.RegistrarEntregaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarEntrega(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ActualizarEntrega godoc
// @Summary      Editar entrega
// @Tags         contratos
// @Accept       json
// @Produce      json
// @Param        id   path string true "UUID del detalle de entrega"
// @Param        body body dto.ActualizarEntregaRequest true "Nueva cantidad"
// @Success      200  {object} dto.EntregaResponse
// @Router       /v1/entregas/{id} [put]
func (h *ContratosHandler) ActualizarEntrega(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarEntregaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarEntrega(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AnularEntrega godoc
// @Summary      Anular entrega
// @Description  Un contrato Liquidado vuelve a Pendiente si deja de estar cubierto.
// @Tags         contratos
// @Produce      json
// @Param        id   path string true "UUID del detalle de entrega"
// @Success      200  {object} dto.EntregaResponse
// @Router       /v1/entregas/{id} [delete]
func (h *ContratosHandler) AnularEntrega(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.AnularEntrega(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
