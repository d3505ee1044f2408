package handler

import (
	"net/http"

	"cafehenola/internal/dto"
	"cafehenola/internal/service"

	"github.com/gin-gonic/gin"
)

type ComprasHandler struct{ svc service.CompraService }

func NewComprasHandler(svc service.CompraService) *ComprasHandler { return &ComprasHandler{svc: svc} }

// RegistrarCompra godoc
// @Summary      Registrar una compra
// @Description  Acepta cantidad en oro o peso bruto (convertido con la tara y los factores del producto) y acredita el inventario del cliente.
// @Tags         compras
// @Accept       json
// @Produce      json
// @Param        body body dto.RegistrarCompraRequest true "Detalle de la compra"
// @Success      201  {object} dto.CompraResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/compras [post]
func (h *ComprasHandler) RegistrarCompra(c *gin.Context) {
	var req dto.RegistrarCompraRequest
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

// ActualizarCompra godoc
// @Summary      Editar compra
// @Description  Mueve el inventario por la diferencia entre la cantidad nueva y la anterior.
// @Tags         compras
// @Accept       json
// @Produce      json
// @Param        id   path string true "UUID de la compra"
// @Param        body body dto.ActualizarCompraRequest true "Campos a modificar"
// @Success      200  {object} dto.CompraResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/compras/{id} [patch]
func (h *ComprasHandler) ActualizarCompra(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarCompraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ComprasHandler) AnularCompra(c *gin.Context) {
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

func (h *ComprasHandler) ObtenerCompra(c *gin.Context) {
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

func (h *ComprasHandler) ListarCompras(c *gin.Context) {
	var filter dto.OperacionFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
