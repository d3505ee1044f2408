package service

import (
	"context"

	"cafehenola/internal/apierror"
	"cafehenola/internal/dto"
	"cafehenola/internal/model"
	"cafehenola/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CompraService interface {
	Registrar(ctx context.Context, req dto.RegistrarCompraRequest) (*dto.CompraResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCompraRequest) (*dto.CompraResponse, error)
	Anular(ctx context.Context, id uuid.UUID) error
	Obtener(ctx context.Context, id uuid.UUID) (*dto.CompraResponse, error)
	Listar(ctx context.Context, f dto.OperacionFilter) ([]dto.CompraResponse, error)
}

type compraService struct {
	repo       repository.CompraRepository
	catalogo   repository.CatalogoRepository
	inventario InventarioService
	locker     Locker
}

func NewCompraService(
	repo repository.CompraRepository,
	catalogo repository.CatalogoRepository,
	inventario InventarioService,
	locker Locker,
) CompraService {
	return &compraService{repo: repo, catalogo: catalogo, inventario: inventario, locker: locker}
}

// cantidadOro resolves the net QQ of a purchase: an explicit cantidad wins,
// otherwise the gross weight goes through the product factors.
func cantidadOro(p *model.Producto, pesoBruto, cantidad *decimal.Decimal, sacos int) (decimal.Decimal, error) {
	if cantidad != nil {
		if !cantidad.IsPositive() {
			return decimal.Zero, apierror.Validation("la cantidad debe ser mayor a cero")
		}
		return *cantidad, nil
	}
	if pesoBruto == nil || !pesoBruto.IsPositive() {
		return decimal.Zero, apierror.Validation("se requiere peso_bruto o cantidad mayor a cero")
	}
	oro := p.ConvertirAOro(*pesoBruto, sacos)
	if !oro.IsPositive() {
		return decimal.Zero, apierror.Validation("el peso bruto no cubre la tara de %d sacos", sacos)
	}
	return oro, nil
}

func (s *compraService) Registrar(ctx context.Context, req dto.RegistrarCompraRequest) (*dto.CompraResponse, error) {
	clienteID, err := parseID("cliente_id", req.ClienteID)
	if err != nil {
		return nil, err
	}
	productoID, err := parseID("producto_id", req.ProductoID)
	if err != nil {
		return nil, err
	}
	if req.PrecioUnitario.IsNegative() {
		return nil, apierror.Validation("el precio no puede ser negativo")
	}

	defer bloquear(ctx, s.locker, claveCliente(clienteID))()

	compra := model.Compra{
		ID:             uuid.New(),
		ClienteID:      clienteID,
		ProductoID:     productoID,
		Sacos:          req.Sacos,
		PrecioUnitario: req.PrecioUnitario,
		Estado:         model.EstadoRegistrada,
		Nota:           req.Nota,
	}
	if req.PesoBruto != nil {
		compra.PesoBruto = *req.PesoBruto
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		producto, err := validarClienteProducto(ctx, tx, s.catalogo, clienteID, productoID)
		if err != nil {
			return err
		}
		compra.Cantidad, err = cantidadOro(producto, req.PesoBruto, req.Cantidad, req.Sacos)
		if err != nil {
			return err
		}
		compra.Total = compra.Cantidad.Mul(compra.PrecioUnitario).Round(2)

		if err := s.repo.CreateTx(ctx, tx, &compra); err != nil {
			return err
		}
		_, err = s.inventario.AcreditarTx(ctx, tx, IngresoInventario{
			ClienteID:  clienteID,
			ProductoID: productoID,
			Cantidad:   compra.Cantidad,
			Sacos:      compra.Sacos,
			Referencia: model.Referencia{Tipo: model.RefCompra, ID: compra.ID},
			Nota:       compra.Nota,
		})
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().Str("compra_id", compra.ID.String()).Str("cliente_id", clienteID.String()).
		Str("cantidad", compra.Cantidad.String()).Msg("compra registrada")
	return compraToResponse(&compra), nil
}

// ── Actualizar ────────────────────────────────────────────────────────────────
// Quantity edits move inventory by new − old: a positive delta credits the
// newest lot, a negative one is withdrawn oldest lot first.

func (s *compraService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCompraRequest) (*dto.CompraResponse, error) {
	defer bloquearDe(ctx, s.locker, func() (uuid.UUID, error) {
		c, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return uuid.Nil, err
		}
		return c.ClienteID, nil
	})()

	var compra *model.Compra
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		compra, err = s.repo.LockTx(ctx, tx, id)
		if err != nil {
			return noEncontrado(err, "compra")
		}
		if compra.Estado == model.EstadoAnulado {
			return apierror.Conflict(apierror.CodeRegistroAnulado, "la compra está anulada")
		}
		producto, err := s.catalogo.FindProductoTx(ctx, tx, compra.ProductoID)
		if err != nil {
			return noEncontrado(err, "producto")
		}

		anterior := compra.Cantidad
		sacosAnteriores := compra.Sacos
		if req.Sacos != nil {
			compra.Sacos = *req.Sacos
		}
		if req.PesoBruto != nil {
			compra.PesoBruto = *req.PesoBruto
		}
		switch {
		case req.Cantidad != nil:
			compra.Cantidad, err = cantidadOro(producto, nil, req.Cantidad, compra.Sacos)
		case req.PesoBruto != nil || (req.Sacos != nil && compra.PesoBruto.IsPositive()):
			compra.Cantidad, err = cantidadOro(producto, &compra.PesoBruto, nil, compra.Sacos)
		}
		if err != nil {
			return err
		}
		if req.PrecioUnitario != nil {
			if req.PrecioUnitario.IsNegative() {
				return apierror.Validation("el precio no puede ser negativo")
			}
			compra.PrecioUnitario = *req.PrecioUnitario
		}
		if req.Nota != nil {
			compra.Nota = *req.Nota
		}
		compra.Total = compra.Cantidad.Mul(compra.PrecioUnitario).Round(2)

		if err := s.inventario.AjustarDeltaTx(ctx, tx, AjusteInventario{
			ClienteID:  compra.ClienteID,
			ProductoID: compra.ProductoID,
			Delta:      compra.Cantidad.Sub(anterior),
			DeltaSacos: compra.Sacos - sacosAnteriores,
			Referencia: model.Referencia{Tipo: model.RefCompra, ID: compra.ID},
			Nota:       "ajuste de compra",
		}); err != nil {
			return err
		}
		return s.repo.UpdateTx(ctx, tx, compra)
	})
	if txErr != nil {
		return nil, txErr
	}
	return compraToResponse(compra), nil
}

func (s *compraService) Anular(ctx context.Context, id uuid.UUID) error {
	defer bloquearDe(ctx, s.locker, func() (uuid.UUID, error) {
		c, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return uuid.Nil, err
		}
		return c.ClienteID, nil
	})()

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		compra, err := s.repo.LockTx(ctx, tx, id)
		if err != nil {
			return noEncontrado(err, "compra")
		}
		if compra.Estado == model.EstadoAnulado {
			return apierror.Conflict(apierror.CodeRegistroAnulado, "la compra ya está anulada")
		}
		if err := s.inventario.RevertirTx(ctx, tx, model.Referencia{Tipo: model.RefCompra, ID: id}); err != nil {
			return err
		}
		compra.Estado = model.EstadoAnulado
		return s.repo.UpdateTx(ctx, tx, compra)
	})
}

func (s *compraService) Obtener(ctx context.Context, id uuid.UUID) (*dto.CompraResponse, error) {
	compra, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "compra")
	}
	return compraToResponse(compra), nil
}

func (s *compraService) Listar(ctx context.Context, f dto.OperacionFilter) ([]dto.CompraResponse, error) {
	filter, err := operacionFilter(f)
	if err != nil {
		return nil, err
	}
	compras, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CompraResponse, 0, len(compras))
	for i := range compras {
		out = append(out, *compraToResponse(&compras[i]))
	}
	return out, nil
}

func compraToResponse(c *model.Compra) *dto.CompraResponse {
	return &dto.CompraResponse{
		ID:             c.ID.String(),
		ClienteID:      c.ClienteID.String(),
		ProductoID:     c.ProductoID.String(),
		PesoBruto:      c.PesoBruto,
		Sacos:          c.Sacos,
		Cantidad:       c.Cantidad,
		PrecioUnitario: c.PrecioUnitario,
		Total:          c.Total,
		Estado:         c.Estado,
		Nota:           c.Nota,
		CreatedAt:      c.CreatedAt,
	}
}
