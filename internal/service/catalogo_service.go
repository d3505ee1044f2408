package service

import (
	"context"
	"strings"

	"cafehenola/internal/apierror"
	"cafehenola/internal/dto"
	"cafehenola/internal/model"
	"cafehenola/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CatalogoService interface {
	CrearCliente(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	ListarClientes(ctx context.Context, soloActivos bool) ([]dto.ClienteResponse, error)
	CrearComprador(ctx context.Context, req dto.CrearCompradorRequest) (*dto.CompradorResponse, error)
	ListarCompradores(ctx context.Context) ([]dto.CompradorResponse, error)
	CrearProducto(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ListarProductos(ctx context.Context) ([]dto.ProductoResponse, error)
}

type catalogoService struct {
	repo repository.CatalogoRepository
}

func NewCatalogoService(repo repository.CatalogoRepository) CatalogoService {
	return &catalogoService{repo: repo}
}

func (s *catalogoService) CrearCliente(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	c := &model.Cliente{Nombre: strings.TrimSpace(req.Nombre), Documento: req.Documento, Activo: true}
	if err := s.repo.CreateCliente(ctx, c); err != nil {
		return nil, err
	}
	return &dto.ClienteResponse{ID: c.ID.String(), Nombre: c.Nombre, Documento: c.Documento, Activo: c.Activo}, nil
}

func (s *catalogoService) ListarClientes(ctx context.Context, soloActivos bool) ([]dto.ClienteResponse, error) {
	clientes, err := s.repo.ListClientes(ctx, soloActivos)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ClienteResponse, 0, len(clientes))
	for _, c := range clientes {
		out = append(out, dto.ClienteResponse{ID: c.ID.String(), Nombre: c.Nombre, Documento: c.Documento, Activo: c.Activo})
	}
	return out, nil
}

func (s *catalogoService) CrearComprador(ctx context.Context, req dto.CrearCompradorRequest) (*dto.CompradorResponse, error) {
	c := &model.Comprador{Nombre: strings.TrimSpace(req.Nombre), Activo: true}
	if err := s.repo.CreateComprador(ctx, c); err != nil {
		return nil, err
	}
	return &dto.CompradorResponse{ID: c.ID.String(), Nombre: c.Nombre, Activo: c.Activo}, nil
}

func (s *catalogoService) ListarCompradores(ctx context.Context) ([]dto.CompradorResponse, error) {
	compradores, err := s.repo.ListCompradores(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CompradorResponse, 0, len(compradores))
	for _, c := range compradores {
		out = append(out, dto.CompradorResponse{ID: c.ID.String(), Nombre: c.Nombre, Activo: c.Activo})
	}
	return out, nil
}

func (s *catalogoService) CrearProducto(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if req.FactorDescuento.IsNegative() || req.FactorDescuento.GreaterThan(decimal.NewFromInt(1)) {
		return nil, apierror.Validation("factor_descuento debe estar entre 0 y 1")
	}
	p := &model.Producto{
		Nombre:          strings.TrimSpace(req.Nombre),
		TaraPorSaco:     req.TaraPorSaco,
		FactorDescuento: req.FactorDescuento,
		FactorOro:       req.FactorOro,
		Activo:          true,
	}
	if err := s.repo.CreateProducto(ctx, p); err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *catalogoService) ListarProductos(ctx context.Context) ([]dto.ProductoResponse, error) {
	productos, err := s.repo.ListProductos(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		out = append(out, *productoToResponse(&productos[i]))
	}
	return out, nil
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:              p.ID.String(),
		Nombre:          p.Nombre,
		TaraPorSaco:     p.TaraPorSaco,
		FactorDescuento: p.FactorDescuento,
		FactorOro:       p.FactorOro,
		Activo:          p.Activo,
	}
}

// validarClienteProducto loads both identities inside tx and rejects inactive ones.
func validarClienteProducto(ctx context.Context, tx *gorm.DB, repo repository.CatalogoRepository, clienteID, productoID uuid.UUID) (*model.Producto, error) {
	cliente, err := repo.FindClienteTx(ctx, tx, clienteID)
	if err != nil {
		return nil, noEncontrado(err, "cliente")
	}
	if !cliente.Activo {
		return nil, apierror.Conflict(apierror.CodeRegistroAnulado, "el cliente %s está inactivo", cliente.Nombre)
	}
	producto, err := repo.FindProductoTx(ctx, tx, productoID)
	if err != nil {
		return nil, noEncontrado(err, "producto")
	}
	return producto, nil
}
