package service

import (
	"context"

	"cafehenola/internal/apierror"
	"cafehenola/internal/dto"
	"cafehenola/internal/model"
	"cafehenola/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type VentaService interface {
	Registrar(ctx context.Context, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	Anular(ctx context.Context, id uuid.UUID) error
	Obtener(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	Listar(ctx context.Context, f dto.OperacionFilter) ([]dto.VentaResponse, error)
}

type ventaService struct {
	repo       repository.VentaRepository
	catalogo   repository.CatalogoRepository
	inventario InventarioService
	locker     Locker
}

func NewVentaService(
	repo repository.VentaRepository,
	catalogo repository.CatalogoRepository,
	inventario InventarioService,
	locker Locker,
) VentaService {
	return &ventaService{
		repo:       repo,
		catalogo:   catalogo,
		inventario: inventario,
		locker:     locker,
	}
}

// ── Registrar ─────────────────────────────────────────────────────────────────
// One transaction: withdraw FIFO from the client's lots, then insert the sale.
// The id is generated up front so the movements can reference it.

func (s *ventaService) Registrar(ctx context.Context, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	clienteID, err := parseID("cliente_id", req.ClienteID)
	if err != nil {
		return nil, err
	}
	productoID, err := parseID("producto_id", req.ProductoID)
	if err != nil {
		return nil, err
	}
	if !req.Cantidad.IsPositive() {
		return nil, apierror.Validation("la cantidad debe ser mayor a cero")
	}
	if req.PrecioUnitario.IsNegative() {
		return nil, apierror.Validation("el precio no puede ser negativo")
	}

	defer bloquear(ctx, s.locker, claveCliente(clienteID))()

	venta := model.Venta{
		ID:             uuid.New(),
		ClienteID:      clienteID,
		ProductoID:     productoID,
		Cantidad:       req.Cantidad,
		Sacos:          req.Sacos,
		PrecioUnitario: req.PrecioUnitario,
		Total:          req.Cantidad.Mul(req.PrecioUnitario).Round(2),
		Estado:         model.EstadoRegistrada,
		Nota:           req.Nota,
	}
	var movs []model.MovimientoInventario

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := validarClienteProducto(ctx, tx, s.catalogo, clienteID, productoID); err != nil {
			return err
		}
		var err error
		movs, err = s.inventario.RetirarTx(ctx, tx, RetiroInventario{
			ClienteID:  clienteID,
			ProductoID: productoID,
			Cantidad:   req.Cantidad,
			Sacos:      req.Sacos,
			Referencia: model.Referencia{Tipo: model.RefVenta, ID: venta.ID},
			Nota:       req.Nota,
		})
		if err != nil {
			return err
		}
		// Lots without sacks give none; record what was taken.
		venta.Sacos = sacosRetirados(movs)
		return s.repo.CreateTx(ctx, tx, &venta)
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().Str("venta_id", venta.ID.String()).Str("cliente_id", clienteID.String()).
		Str("cantidad", venta.Cantidad.String()).Int("lotes", len(movs)).Msg("venta registrada")

	resp := ventaToResponse(&venta)
	for _, m := range movs {
		resp.Movimientos = append(resp.Movimientos, movimientoToResponse(m))
	}
	return resp, nil
}

// ── Anular ────────────────────────────────────────────────────────────────────

func (s *ventaService) Anular(ctx context.Context, id uuid.UUID) error {
	defer bloquearDe(ctx, s.locker, func() (uuid.UUID, error) {
		v, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return uuid.Nil, err
		}
		return v.ClienteID, nil
	})()

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		venta, err := s.repo.LockTx(ctx, tx, id)
		if err != nil {
			return noEncontrado(err, "venta")
		}
		if venta.Estado == model.EstadoAnulado {
			return apierror.Conflict(apierror.CodeRegistroAnulado, "la venta ya está anulada")
		}
		if err := s.inventario.RevertirTx(ctx, tx, model.Referencia{Tipo: model.RefVenta, ID: id}); err != nil {
			return err
		}
		return s.repo.UpdateEstadoTx(ctx, tx, id, model.EstadoAnulado)
	})
}

func (s *ventaService) Obtener(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "venta")
	}
	return ventaToResponse(venta), nil
}

func (s *ventaService) Listar(ctx context.Context, f dto.OperacionFilter) ([]dto.VentaResponse, error) {
	filter, err := operacionFilter(f)
	if err != nil {
		return nil, err
	}
	ventas, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		out = append(out, *ventaToResponse(&ventas[i]))
	}
	return out, nil
}

func operacionFilter(f dto.OperacionFilter) (repository.OperacionFilter, error) {
	out := repository.OperacionFilter{Estado: f.Estado, Page: f.Page, Limit: f.Limit}
	if f.ClienteID != "" {
		id, err := parseID("cliente_id", f.ClienteID)
		if err != nil {
			return out, err
		}
		out.ClienteID = &id
	}
	return out, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	return &dto.VentaResponse{
		ID:             v.ID.String(),
		ClienteID:      v.ClienteID.String(),
		ProductoID:     v.ProductoID.String(),
		Cantidad:       v.Cantidad,
		Sacos:          v.Sacos,
		PrecioUnitario: v.PrecioUnitario,
		Total:          v.Total,
		Estado:         v.Estado,
		Nota:           v.Nota,
		CreatedAt:      v.CreatedAt,
	}
}
