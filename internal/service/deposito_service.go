package service

import (
	"context"
	"errors"

	"cafehenola/internal/apierror"
	"cafehenola/internal/dto"
	"cafehenola/internal/fifo"
	"cafehenola/internal/model"
	"cafehenola/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DepositoService tracks banked coffee and its liquidation. saldo(deposito) is
// always Cantidad − Σ live liquidation details, recomputed in the transaction.
type DepositoService interface {
	Registrar(ctx context.Context, req dto.RegistrarDepositoRequest) (*dto.DepositoResponse, error)
	Liquidar(ctx context.Context, req dto.LiquidarRequest) (*dto.LiquidacionResponse, error)
	AnularLiquidacion(ctx context.Context, grupoID uuid.UUID) error
	Anular(ctx context.Context, id uuid.UUID) error
	SaldoAgregado(ctx context.Context, clienteID, productoID uuid.UUID) (*dto.SaldoAgregadoResponse, error)
}

type depositoService struct {
	repo       repository.DepositoRepository
	catalogo   repository.CatalogoRepository
	secuencia  repository.SecuenciaRepository
	inventario InventarioService
	locker     Locker
}

func NewDepositoService(
	repo repository.DepositoRepository,
	catalogo repository.CatalogoRepository,
	secuencia repository.SecuenciaRepository,
	inventario InventarioService,
	locker Locker,
) DepositoService {
	return &depositoService{
		repo:       repo,
		catalogo:   catalogo,
		secuencia:  secuencia,
		inventario: inventario,
		locker:     locker,
	}
}

// Registrar records the deposit and opens a new lot for it.
func (s *depositoService) Registrar(ctx context.Context, req dto.RegistrarDepositoRequest) (*dto.DepositoResponse, error) {
	clienteID, err := parseID("cliente_id", req.ClienteID)
	if err != nil {
		return nil, err
	}
	productoID, err := parseID("producto_id", req.ProductoID)
	if err != nil {
		return nil, err
	}
	if !req.Cantidad.IsPositive() {
		return nil, apierror.Validation("la cantidad depositada debe ser mayor a cero")
	}

	defer bloquear(ctx, s.locker, claveCliente(clienteID))()

	dep := model.Deposito{
		ClienteID:  clienteID,
		ProductoID: productoID,
		Cantidad:   req.Cantidad,
		Sacos:      req.Sacos,
		Estado:     model.EstadoPendiente,
		Nota:       req.Nota,
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := validarClienteProducto(ctx, tx, s.catalogo, clienteID, productoID); err != nil {
			return err
		}
		seq, err := s.secuencia.SiguienteTx(ctx, tx, repository.SecDepositos)
		if err != nil {
			return err
		}
		dep.Secuencia = seq
		if err := s.repo.CreateTx(ctx, tx, &dep); err != nil {
			return err
		}
		_, err = s.inventario.AcreditarTx(ctx, tx, IngresoInventario{
			ClienteID:  clienteID,
			ProductoID: productoID,
			Cantidad:   dep.Cantidad,
			Sacos:      dep.Sacos,
			Referencia: model.Referencia{Tipo: model.RefDeposito, ID: dep.ID},
			Nota:       dep.Nota,
			NuevoLote:  true,
		})
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	return depositoToResponse(&dep, decimal.Zero), nil
}

// ── Liquidar ──────────────────────────────────────────────────────────────────
//  1. Lock the client's open deposits for the product and derive each saldo
//  2. Reject when the aggregate saldo cannot cover the request
//  3. Take the same QQ out of the client's lots
//  4. Allocate oldest deposit first, one detail per deposit, all under one grupo

func (s *depositoService) Liquidar(ctx context.Context, req dto.LiquidarRequest) (*dto.LiquidacionResponse, error) {
	clienteID, err := parseID("cliente_id", req.ClienteID)
	if err != nil {
		return nil, err
	}
	productoID, err := parseID("producto_id", req.ProductoID)
	if err != nil {
		return nil, err
	}
	if !req.Cantidad.IsPositive() {
		return nil, apierror.Validation("la cantidad a liquidar debe ser mayor a cero")
	}
	if req.PrecioUnitario.IsNegative() {
		return nil, apierror.Validation("el precio no puede ser negativo")
	}

	defer bloquear(ctx, s.locker, claveCliente(clienteID))()

	grupoID := uuid.New()
	resp := &dto.LiquidacionResponse{GrupoID: grupoID.String(), Cantidad: req.Cantidad, Total: decimal.Zero}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		deps, saldos, err := s.saldosTx(ctx, tx, clienteID, productoID)
		if err != nil {
			return err
		}
		registros := make([]fifo.Record, 0, len(deps))
		porID := make(map[uuid.UUID]*model.Deposito, len(deps))
		for i := range deps {
			d := &deps[i]
			porID[d.ID] = d
			registros = append(registros, fifo.Record{ID: d.ID, Secuencia: d.Secuencia, Disponible: saldos[d.ID]})
		}
		resp.SaldoAntes = fifo.Total(registros)

		res, err := fifo.Allocate(req.Cantidad, registros)
		if err != nil {
			var short *fifo.ShortfallError
			if errors.As(err, &short) {
				return apierror.Insufficient(apierror.CodeExcedeDeposito, err,
					"La liquidación de %s QQ excede el saldo depositado (%s QQ)",
					req.Cantidad.String(), short.Disponible.String())
			}
			return err
		}

		if _, err := s.inventario.RetirarTx(ctx, tx, RetiroInventario{
			ClienteID:  clienteID,
			ProductoID: productoID,
			Cantidad:   req.Cantidad,
			Referencia: model.Referencia{Tipo: model.RefLiquidacionDeposito, ID: grupoID},
			Nota:       "liquidación de depósito",
		}); err != nil {
			return err
		}

		for _, a := range res.Asignaciones {
			d := porID[a.ID]
			det := model.DetalleLiquidacion{
				DepositoID:     d.ID,
				GrupoID:        grupoID,
				Cantidad:       a.Cantidad,
				PrecioUnitario: req.PrecioUnitario,
				Total:          a.Cantidad.Mul(req.PrecioUnitario).Round(2),
				TipoMovimiento: model.TipoLiquidacion,
			}
			if err := s.repo.CreateDetalleTx(ctx, tx, &det); err != nil {
				return err
			}
			estado := d.Estado
			if a.Restante.IsZero() {
				estado = model.EstadoLiquidado
			}
			if estado != d.Estado {
				if err := s.repo.UpdateEstadoTx(ctx, tx, d.ID, estado); err != nil {
					return err
				}
			}
			resp.Total = resp.Total.Add(det.Total)
			resp.Detalles = append(resp.Detalles, dto.DetalleLiquidacionResponse{
				ID:             det.ID.String(),
				RegistroID:     d.ID.String(),
				Cantidad:       det.Cantidad,
				PrecioUnitario: det.PrecioUnitario,
				Total:          det.Total,
				SaldoRestante:  a.Restante,
				EstadoRegistro: estado,
			})
		}
		resp.SaldoDespues = resp.SaldoAntes.Sub(req.Cantidad)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	log.Info().Str("grupo_id", grupoID.String()).Str("cliente_id", clienteID.String()).
		Str("cantidad", req.Cantidad.String()).Int("depositos", len(resp.Detalles)).Msg("depósitos liquidados")
	return resp, nil
}

// AnularLiquidacion voids every detail of the grupo, returns the QQ to the
// client's lots and reopens deposits that are no longer fully liquidated.
func (s *depositoService) AnularLiquidacion(ctx context.Context, grupoID uuid.UUID) error {
	defer bloquearDe(ctx, s.locker, func() (uuid.UUID, error) {
		return s.repo.ClienteDeGrupo(ctx, grupoID)
	})()

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		detalles, err := s.repo.DetallesGrupoTx(ctx, tx, grupoID)
		if err != nil {
			return err
		}
		if len(detalles) == 0 {
			return apierror.NotFound("liquidación no encontrada o ya anulada")
		}
		ids := make([]uuid.UUID, 0, len(detalles))
		depIDs := make([]uuid.UUID, 0, len(detalles))
		for _, d := range detalles {
			ids = append(ids, d.ID)
			depIDs = append(depIDs, d.DepositoID)
		}
		deps, err := s.repo.LockByIDsTx(ctx, tx, depIDs)
		if err != nil {
			return err
		}
		if err := s.inventario.RevertirTx(ctx, tx, model.Referencia{Tipo: model.RefLiquidacionDeposito, ID: grupoID}); err != nil {
			return err
		}
		if err := s.repo.AnularDetallesTx(ctx, tx, ids); err != nil {
			return err
		}
		for _, d := range deps {
			if d.Estado == model.EstadoLiquidado {
				if err := s.repo.UpdateEstadoTx(ctx, tx, d.ID, model.EstadoPendiente); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Anular voids a deposit that has no live liquidation and takes its QQ back out
// of the lot it opened.
func (s *depositoService) Anular(ctx context.Context, id uuid.UUID) error {
	defer bloquearDe(ctx, s.locker, func() (uuid.UUID, error) {
		d, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return uuid.Nil, err
		}
		return d.ClienteID, nil
	})()

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		dep, err := s.repo.LockTx(ctx, tx, id)
		if err != nil {
			return noEncontrado(err, "depósito")
		}
		if dep.Estado == model.EstadoAnulado {
			return apierror.Conflict(apierror.CodeRegistroAnulado, "el depósito ya está anulado")
		}
		detalles, err := s.repo.DetallesVivosTx(ctx, tx, []uuid.UUID{id})
		if err != nil {
			return err
		}
		if len(detalles) > 0 {
			return apierror.Conflict(apierror.CodeYaLiquidado,
				"el depósito tiene %d liquidaciones vigentes; anúlelas primero", len(detalles))
		}
		if err := s.inventario.RevertirTx(ctx, tx, model.Referencia{Tipo: model.RefDeposito, ID: id}); err != nil {
			return err
		}
		return s.repo.UpdateEstadoTx(ctx, tx, id, model.EstadoAnulado)
	})
}

func (s *depositoService) SaldoAgregado(ctx context.Context, clienteID, productoID uuid.UUID) (*dto.SaldoAgregadoResponse, error) {
	resp := &dto.SaldoAgregadoResponse{ProductoID: productoID.String(), Saldo: decimal.Zero}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		deps, saldos, err := s.saldosTx(ctx, tx, clienteID, productoID)
		if err != nil {
			return err
		}
		for i := range deps {
			saldo := saldos[deps[i].ID]
			resp.Saldo = resp.Saldo.Add(saldo)
			resp.Registros = append(resp.Registros, *depositoToResponse(&deps[i], deps[i].Cantidad.Sub(saldo)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// saldosTx locks the open deposits of (cliente, producto) and derives each saldo.
func (s *depositoService) saldosTx(ctx context.Context, tx *gorm.DB, clienteID, productoID uuid.UUID) ([]model.Deposito, map[uuid.UUID]decimal.Decimal, error) {
	deps, err := s.repo.LockAbiertosTx(ctx, tx, clienteID, productoID)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]uuid.UUID, 0, len(deps))
	saldos := make(map[uuid.UUID]decimal.Decimal, len(deps))
	for _, d := range deps {
		ids = append(ids, d.ID)
		saldos[d.ID] = d.Cantidad
	}
	detalles, err := s.repo.DetallesVivosTx(ctx, tx, ids)
	if err != nil {
		return nil, nil, err
	}
	for _, det := range detalles {
		saldos[det.DepositoID] = saldos[det.DepositoID].Sub(det.Cantidad)
	}
	return deps, saldos, nil
}

func depositoToResponse(d *model.Deposito, liquidado decimal.Decimal) *dto.DepositoResponse {
	return &dto.DepositoResponse{
		ID:         d.ID.String(),
		ClienteID:  d.ClienteID.String(),
		ProductoID: d.ProductoID.String(),
		Cantidad:   d.Cantidad,
		Sacos:      d.Sacos,
		Liquidado:  liquidado,
		Saldo:      d.Cantidad.Sub(liquidado),
		Estado:     d.Estado,
		CreatedAt:  d.CreatedAt,
	}
}
