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

// ContratoService tracks deliveries against forward contracts. The delivered
// total is never stored; it is summed from the live details inside the same
// transaction that changes them.
type ContratoService interface {
	Crear(ctx context.Context, req dto.CrearContratoRequest) (*dto.ContratoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ContratoResponse, error)
	ListarPorCliente(ctx context.Context, clienteID uuid.UUID, estado string) ([]dto.ContratoResponse, error)
	Anular(ctx context.Context, id uuid.UUID) error

	RegistrarEntrega(ctx context.Context, contratoID uuid.UUID, req dto.RegistrarEntregaRequest) (*dto.EntregaResponse, error)
	ActualizarEntrega(ctx context.Context, detalleID uuid.UUID, req dto.ActualizarEntregaRequest) (*dto.EntregaResponse, error)
	AnularEntrega(ctx context.Context, detalleID uuid.UUID) (*dto.EntregaResponse, error)
}

type contratoService struct {
	repo       repository.ContratoRepository
	catalogo   repository.CatalogoRepository
	secuencia  repository.SecuenciaRepository
	inventario InventarioService
	locker     Locker
}

func NewContratoService(
	repo repository.ContratoRepository,
	catalogo repository.CatalogoRepository,
	secuencia repository.SecuenciaRepository,
	inventario InventarioService,
	locker Locker,
) ContratoService {
	return &contratoService{
		repo:       repo,
		catalogo:   catalogo,
		secuencia:  secuencia,
		inventario: inventario,
		locker:     locker,
	}
}

func (s *contratoService) Crear(ctx context.Context, req dto.CrearContratoRequest) (*dto.ContratoResponse, error) {
	clienteID, err := parseID("cliente_id", req.ClienteID)
	if err != nil {
		return nil, err
	}
	productoID, err := parseID("producto_id", req.ProductoID)
	if err != nil {
		return nil, err
	}
	if !req.CantidadContratada.IsPositive() {
		return nil, apierror.Validation("la cantidad contratada debe ser mayor a cero")
	}
	if req.PrecioUnitario.IsNegative() {
		return nil, apierror.Validation("el precio no puede ser negativo")
	}

	contrato := model.Contrato{
		ClienteID:          clienteID,
		ProductoID:         productoID,
		CantidadContratada: req.CantidadContratada,
		PrecioUnitario:     req.PrecioUnitario,
		Estado:             model.EstadoPendiente,
		Nota:               req.Nota,
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := validarClienteProducto(ctx, tx, s.catalogo, clienteID, productoID); err != nil {
			return err
		}
		seq, err := s.secuencia.SiguienteTx(ctx, tx, repository.SecContratos)
		if err != nil {
			return err
		}
		contrato.Secuencia = seq
		return s.repo.CreateTx(ctx, tx, &contrato)
	})
	if txErr != nil {
		return nil, txErr
	}
	return contratoToResponse(&contrato, nil), nil
}

// ── RegistrarEntrega ──────────────────────────────────────────────────────────
//  1. Lock the contract; Anulado blocks deliveries
//  2. Sum the live deliveries and reject anything beyond the pending saldo
//  3. Withdraw from the client's lots when the delivery comes from stock, or
//     credit them when it is received into stock
//  4. Insert the detail and move to Liquidado once the commitment is covered

func (s *contratoService) RegistrarEntrega(ctx context.Context, contratoID uuid.UUID, req dto.RegistrarEntregaRequest) (*dto.EntregaResponse, error) {
	if !req.Cantidad.IsPositive() {
		return nil, apierror.Validation("la cantidad entregada debe ser mayor a cero")
	}
	if req.DesdeInventario && req.IngresaInventario {
		return nil, apierror.Validation("una entrega no puede salir del inventario e ingresar a él a la vez")
	}

	defer bloquearDe(ctx, s.locker, func() (uuid.UUID, error) {
		c, err := s.repo.FindByID(ctx, contratoID)
		if err != nil {
			return uuid.Nil, err
		}
		return c.ClienteID, nil
	})()

	var resp *dto.EntregaResponse
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		contrato, err := s.repo.LockTx(ctx, tx, contratoID)
		if err != nil {
			return noEncontrado(err, "contrato")
		}
		if err := coincideContrato(contrato, req.ClienteID, req.ProductoID); err != nil {
			return err
		}
		if contrato.Estado == model.EstadoAnulado {
			return apierror.Conflict(apierror.CodeContratoAnulado, "el contrato está anulado y no admite entregas")
		}

		entregado, err := s.entregado(ctx, tx, contrato.ID, uuid.Nil)
		if err != nil {
			return err
		}
		saldo := contrato.CantidadContratada.Sub(entregado)
		if req.Cantidad.GreaterThan(saldo) {
			log.Debug().Str("contrato_id", contrato.ID.String()).Str("saldo", saldo.String()).
				Str("solicitado", req.Cantidad.String()).Msg("entrega rechazada")
			return apierror.Insufficient(apierror.CodeExcedeCompromiso, nil,
				"La entrega de %s QQ excede el saldo pendiente del contrato (%s QQ)",
				req.Cantidad.String(), saldo.String())
		}

		precio := contrato.PrecioUnitario
		if req.PrecioUnitario != nil {
			precio = *req.PrecioUnitario
		}
		detalle := model.DetalleEntrega{
			ID:                uuid.New(),
			ContratoID:        contrato.ID,
			Cantidad:          req.Cantidad,
			Sacos:             req.Sacos,
			PrecioUnitario:    precio,
			Total:             req.Cantidad.Mul(precio).Round(2),
			TipoMovimiento:    model.TipoEntrega,
			DesdeInventario:   req.DesdeInventario,
			IngresaInventario: req.IngresaInventario,
			Nota:              req.Nota,
		}
		ref := model.Referencia{Tipo: model.RefEntregaContrato, ID: detalle.ID}
		switch {
		case req.DesdeInventario:
			movs, err := s.inventario.RetirarTx(ctx, tx, RetiroInventario{
				ClienteID:  contrato.ClienteID,
				ProductoID: contrato.ProductoID,
				Cantidad:   req.Cantidad,
				Sacos:      req.Sacos,
				Referencia: ref,
				Nota:       req.Nota,
			})
			if err != nil {
				return err
			}
			detalle.Sacos = sacosRetirados(movs)
		case req.IngresaInventario:
			if _, err := s.inventario.AcreditarTx(ctx, tx, IngresoInventario{
				ClienteID:  contrato.ClienteID,
				ProductoID: contrato.ProductoID,
				Cantidad:   req.Cantidad,
				Sacos:      req.Sacos,
				Referencia: ref,
				Nota:       req.Nota,
			}); err != nil {
				return err
			}
		}
		if err := s.repo.CreateEntregaTx(ctx, tx, &detalle); err != nil {
			return err
		}

		despues := entregado.Add(req.Cantidad)
		estado, err := s.reconciliar(ctx, tx, contrato, despues)
		if err != nil {
			return err
		}
		resp = entregaResponse(contrato, detalle, saldo, despues, estado)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	log.Info().Str("contrato_id", contratoID.String()).Str("detalle_id", resp.DetalleEntregaID).
		Str("saldo_qq", resp.SaldoDespuesQQ.String()).Str("estado", resp.EstadoContrato).Msg("entrega registrada")
	return resp, nil
}

// ── ActualizarEntrega ─────────────────────────────────────────────────────────
// Same saldo check as registration with the edited detail left out of the
// delivered sum. State is re-evaluated both ways.

func (s *contratoService) ActualizarEntrega(ctx context.Context, detalleID uuid.UUID, req dto.ActualizarEntregaRequest) (*dto.EntregaResponse, error) {
	if !req.Cantidad.IsPositive() {
		return nil, apierror.Validation("la cantidad entregada debe ser mayor a cero")
	}

	defer bloquearDe(ctx, s.locker, func() (uuid.UUID, error) {
		return s.repo.ClienteDeEntrega(ctx, detalleID)
	})()

	var resp *dto.EntregaResponse
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		detalle, err := s.repo.LockEntregaTx(ctx, tx, detalleID)
		if err != nil {
			return noEncontrado(err, "detalle de entrega")
		}
		if detalle.TipoMovimiento == model.TipoAnulado {
			return apierror.Conflict(apierror.CodeRegistroAnulado, "la entrega está anulada")
		}
		contrato, err := s.repo.LockTx(ctx, tx, detalle.ContratoID)
		if err != nil {
			return noEncontrado(err, "contrato")
		}
		if contrato.Estado == model.EstadoAnulado {
			return apierror.Conflict(apierror.CodeContratoAnulado, "el contrato está anulado")
		}

		otros, err := s.entregado(ctx, tx, contrato.ID, detalle.ID)
		if err != nil {
			return err
		}
		saldo := contrato.CantidadContratada.Sub(otros)
		if req.Cantidad.GreaterThan(saldo) {
			return apierror.Insufficient(apierror.CodeExcedeCompromiso, nil,
				"La entrega de %s QQ excede el saldo pendiente del contrato (%s QQ)",
				req.Cantidad.String(), saldo.String())
		}

		anterior, sacosAnteriores := detalle.Cantidad, detalle.Sacos
		detalle.Cantidad = req.Cantidad
		if req.Sacos != nil {
			detalle.Sacos = *req.Sacos
		}
		if req.PrecioUnitario != nil {
			detalle.PrecioUnitario = *req.PrecioUnitario
		}
		if req.Nota != nil {
			detalle.Nota = *req.Nota
		}
		detalle.Total = detalle.Cantidad.Mul(detalle.PrecioUnitario).Round(2)

		if detalle.DesdeInventario || detalle.IngresaInventario {
			// Stock moves by new − old for a received delivery; delivering
			// more from stock takes more, hence old − new.
			delta, deltaSacos := detalle.Cantidad.Sub(anterior), detalle.Sacos-sacosAnteriores
			if detalle.DesdeInventario {
				delta, deltaSacos = delta.Neg(), -deltaSacos
			}
			if err := s.inventario.AjustarDeltaTx(ctx, tx, AjusteInventario{
				ClienteID:  contrato.ClienteID,
				ProductoID: contrato.ProductoID,
				Delta:      delta,
				DeltaSacos: deltaSacos,
				Referencia: model.Referencia{Tipo: model.RefEntregaContrato, ID: detalle.ID},
				Nota:       "ajuste de entrega",
			}); err != nil {
				return err
			}
		}
		if err := s.repo.UpdateEntregaTx(ctx, tx, detalle); err != nil {
			return err
		}

		despues := otros.Add(detalle.Cantidad)
		estado, err := s.reconciliar(ctx, tx, contrato, despues)
		if err != nil {
			return err
		}
		resp = entregaResponse(contrato, *detalle, contrato.CantidadContratada.Sub(otros.Add(anterior)), despues, estado)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return resp, nil
}

// ── AnularEntrega ─────────────────────────────────────────────────────────────
// Voids the detail, undoes its stock movement and recomputes the delivered
// total; a Liquidado contract that is no longer covered returns to Pendiente.

func (s *contratoService) AnularEntrega(ctx context.Context, detalleID uuid.UUID) (*dto.EntregaResponse, error) {
	defer bloquearDe(ctx, s.locker, func() (uuid.UUID, error) {
		return s.repo.ClienteDeEntrega(ctx, detalleID)
	})()

	var resp *dto.EntregaResponse
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		detalle, err := s.repo.LockEntregaTx(ctx, tx, detalleID)
		if err != nil {
			return noEncontrado(err, "detalle de entrega")
		}
		if detalle.TipoMovimiento == model.TipoAnulado {
			return apierror.Conflict(apierror.CodeRegistroAnulado, "la entrega ya está anulada")
		}
		contrato, err := s.repo.LockTx(ctx, tx, detalle.ContratoID)
		if err != nil {
			return noEncontrado(err, "contrato")
		}

		antes, err := s.entregado(ctx, tx, contrato.ID, uuid.Nil)
		if err != nil {
			return err
		}
		if detalle.DesdeInventario || detalle.IngresaInventario {
			if err := s.inventario.RevertirTx(ctx, tx, model.Referencia{Tipo: model.RefEntregaContrato, ID: detalle.ID}); err != nil {
				return err
			}
		}
		detalle.TipoMovimiento = model.TipoAnulado
		if err := s.repo.UpdateEntregaTx(ctx, tx, detalle); err != nil {
			return err
		}

		despues, err := s.entregado(ctx, tx, contrato.ID, uuid.Nil)
		if err != nil {
			return err
		}
		estado, err := s.reconciliar(ctx, tx, contrato, despues)
		if err != nil {
			return err
		}
		resp = entregaResponse(contrato, *detalle, contrato.CantidadContratada.Sub(antes), despues, estado)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	log.Info().Str("detalle_id", detalleID.String()).Str("estado", resp.EstadoContrato).Msg("entrega anulada")
	return resp, nil
}

// Anular voids the contract by hand. Existing deliveries stay as they are.
func (s *contratoService) Anular(ctx context.Context, id uuid.UUID) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		contrato, err := s.repo.LockTx(ctx, tx, id)
		if err != nil {
			return noEncontrado(err, "contrato")
		}
		if contrato.Estado == model.EstadoAnulado {
			return apierror.Conflict(apierror.CodeContratoAnulado, "el contrato ya está anulado")
		}
		return s.repo.UpdateEstadoTx(ctx, tx, id, model.EstadoAnulado)
	})
}

func (s *contratoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ContratoResponse, error) {
	contrato, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "contrato")
	}
	return contratoToResponse(contrato, contrato.Entregas), nil
}

func (s *contratoService) ListarPorCliente(ctx context.Context, clienteID uuid.UUID, estado string) ([]dto.ContratoResponse, error) {
	contratos, err := s.repo.ListByCliente(ctx, clienteID, estado)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ContratoResponse, 0, len(contratos))
	for i := range contratos {
		out = append(out, *contratoToResponse(&contratos[i], contratos[i].Entregas))
	}
	return out, nil
}

// entregado sums the live deliveries of a contract, leaving out excluir.
func (s *contratoService) entregado(ctx context.Context, tx *gorm.DB, contratoID, excluir uuid.UUID) (decimal.Decimal, error) {
	detalles, err := s.repo.EntregasVivasTx(ctx, tx, contratoID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, d := range detalles {
		if d.ID == excluir {
			continue
		}
		total = total.Add(d.Cantidad)
	}
	return total, nil
}

// reconciliar writes the state implied by the delivered total.
func (s *contratoService) reconciliar(ctx context.Context, tx *gorm.DB, c *model.Contrato, entregado decimal.Decimal) (string, error) {
	estado := estadoContrato(c.Estado, c.CantidadContratada, entregado)
	if estado == c.Estado {
		return estado, nil
	}
	if err := s.repo.UpdateEstadoTx(ctx, tx, c.ID, estado); err != nil {
		return "", err
	}
	c.Estado = estado
	return estado, nil
}

func estadoContrato(actual string, contratado, entregado decimal.Decimal) string {
	switch {
	case actual == model.EstadoAnulado:
		return model.EstadoAnulado
	case entregado.GreaterThanOrEqual(contratado):
		return model.EstadoLiquidado
	default:
		return model.EstadoPendiente
	}
}

func coincideContrato(c *model.Contrato, clienteID, productoID string) error {
	if clienteID != "" && clienteID != c.ClienteID.String() {
		return apierror.Validation("el contrato no pertenece al cliente indicado")
	}
	if productoID != "" && productoID != c.ProductoID.String() {
		return apierror.Validation("el producto no coincide con el del contrato")
	}
	return nil
}

func entregaResponse(c *model.Contrato, d model.DetalleEntrega, saldoAntes, entregado decimal.Decimal, estado string) *dto.EntregaResponse {
	saldo := c.CantidadContratada.Sub(entregado)
	return &dto.EntregaResponse{
		DetalleEntregaID:  d.ID.String(),
		ContratoID:        c.ID.String(),
		SaldoAntesQQ:      saldoAntes,
		Cantidad:          d.Cantidad,
		EntregadoQQ:       entregado,
		SaldoDespuesQQ:    saldo,
		SaldoDespuesMonto: saldo.Mul(c.PrecioUnitario).Round(2),
		EstadoContrato:    estado,
	}
}

func contratoToResponse(c *model.Contrato, entregas []model.DetalleEntrega) *dto.ContratoResponse {
	resp := &dto.ContratoResponse{
		ID:                 c.ID.String(),
		ClienteID:          c.ClienteID.String(),
		ProductoID:         c.ProductoID.String(),
		CantidadContratada: c.CantidadContratada,
		PrecioUnitario:     c.PrecioUnitario,
		Estado:             c.Estado,
		EntregadoQQ:        decimal.Zero,
		CreatedAt:          c.CreatedAt,
	}
	for _, e := range entregas {
		if e.TipoMovimiento != model.TipoAnulado {
			resp.EntregadoQQ = resp.EntregadoQQ.Add(e.Cantidad)
		}
		resp.Entregas = append(resp.Entregas, dto.DetalleEntregaResponse{
			ID:                e.ID.String(),
			Cantidad:          e.Cantidad,
			Sacos:             e.Sacos,
			PrecioUnitario:    e.PrecioUnitario,
			Total:             e.Total,
			TipoMovimiento:    e.TipoMovimiento,
			DesdeInventario:   e.DesdeInventario,
			IngresaInventario: e.IngresaInventario,
			CreatedAt:         e.CreatedAt,
		})
	}
	resp.SaldoQQ = c.CantidadContratada.Sub(resp.EntregadoQQ)
	resp.SaldoMonto = resp.SaldoQQ.Mul(c.PrecioUnitario).Round(2)
	return resp
}
