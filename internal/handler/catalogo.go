package handler

import (
	"net/http"

	"cafehenola/internal/dto"
	"cafehenola/internal/service"

	"github.com/gin-gonic/gin"
)

type CatalogoHandler struct{ svc service.CatalogoService }

func NewCatalogoHandler(svc service.CatalogoService) *CatalogoHandler {
	return &CatalogoHandler{svc: svc}
}

// CrearCliente godoc
// @Summary      Crear cliente
// @Tags         catalogo
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearClienteRequest true "Datos del cliente"
// @Success      201  {object} dto.ClienteResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/clientes [post]
func (h *CatalogoHandler) CrearCliente(c *gin.Context) {
	var req dto.CrearClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearCliente(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarClientes godoc
// @Summary      Listar clientes
// @Tags         catalogo
// @Produce      json
// @Param        activos query bool false "Solo activos"
// @Success      200  {array} dto.ClienteResponse
// @Router       /v1/clientes [get]
func (h *CatalogoHandler) ListarClientes(c *gin.Context) {
	resp, err := h.svc.ListarClientes(c.Request.Context(), c.Query("activos") == "true")
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CrearComprador godoc
// @Summary      Crear comprador
// @Tags         catalogo
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearCompradorRequest true "Datos del comprador"
// @Success      201  {object} dto.CompradorResponse
// @Router       /v1/compradores [post]
func (h *CatalogoHandler) CrearComprador(c *gin.Context) {
	var req dto.CrearCompradorRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearComprador(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CatalogoHandler) ListarCompradores(c *gin.Context) {
	resp, err := h.svc.ListarCompradores(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CrearProducto godoc
// @Summary      Crear producto
// @Description  Registra un producto con su tara por saco y los factores de conversión a oro.
// @Tags         catalogo
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearProductoRequest true "Datos del producto"
// @Success      201  {object} dto.ProductoResponse
// @Router       /v1/productos [post]
func (h *CatalogoHandler) CrearProducto(c *gin.Context) {
	var req dto.CrearProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearProducto(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CatalogoHandler) ListarProductos(c *gin.Context) {
	resp, err := h.svc.ListarProductos(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
