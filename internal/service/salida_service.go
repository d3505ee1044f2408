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

// SalidaService liquidates coffee committed to external buyers. Same drawdown
// as deposits, keyed by comprador and without touching client lots.
type SalidaService interface {
	Registrar(ctx context.Context, req dto.RegistrarSalidaRequest) (*dto.SalidaResponse, error)
	Liquidar(ctx context.Context, req dto.LiquidarRequest) (*dto.LiquidacionResponse, error)
	AnularLiquidacion(ctx context.Context, grupoID uuid.UUID) error
	SaldoAgregado(ctx context.Context, compradorID, productoID uuid.UUID) (*dto.SaldoSalidasResponse, error)
}

type salidaService struct {
	repo      repository.SalidaRepository
	catalogo  repository.CatalogoRepository
	secuencia repository.SecuenciaRepository
}

func NewSalidaService(repo repository.SalidaRepository, catalogo repository.CatalogoRepository, secuencia repository.SecuenciaRepository) SalidaService {
	return &salidaService{repo: repo, catalogo: catalogo, secuencia: secuencia}
}

func (s *salidaService) Registrar(ctx context.Context, req dto.RegistrarSalidaRequest) (*dto.SalidaResponse, error) {
	compradorID, err := parseID("comprador_id", req.CompradorID)
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

	salida := model.Salida{
		CompradorID: compradorID,
		ProductoID:  productoID,
		Cantidad:    req.Cantidad,
		Precio:      req.Precio,
		Estado:      model.EstadoPendiente,
		Nota:        req.Nota,
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.catalogo.FindCompradorTx(ctx, tx, compradorID); err != nil {
			return noEncontrado(err, "comprador")
		}
		if _, err := s.catalogo.FindProductoTx(ctx, tx, productoID); err != nil {
			return noEncontrado(err, "producto")
		}
		seq, err := s.secuencia.SiguienteTx(ctx, tx, repository.SecSalidas)
		if err != nil {
			return err
		}
		salida.Secuencia = seq
		return s.repo.CreateTx(ctx, tx, &salida)
	})
	if txErr != nil {
		return nil, txErr
	}
	return salidaToResponse(&salida, decimal.Zero), nil
}

func (s *salidaService) Liquidar(ctx context.Context, req dto.LiquidarRequest) (*dto.LiquidacionResponse, error) {
	compradorID, err := parseID("comprador_id", req.CompradorID)
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

	grupoID := uuid.New()
	resp := &dto.LiquidacionResponse{GrupoID: grupoID.String(), Cantidad: req.Cantidad, Total: decimal.Zero}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		salidas, saldos, err := s.saldosTx(ctx, tx, compradorID, productoID)
		if err != nil {
			return err
		}
		registros := make([]fifo.Record, 0, len(salidas))
		porID := make(map[uuid.UUID]*model.Salida, len(salidas))
		for i := range salidas {
			sa := &salidas[i]
			porID[sa.ID] = sa
			registros = append(registros, fifo.Record{ID: sa.ID, Secuencia: sa.Secuencia, Disponible: saldos[sa.ID]})
		}
		resp.SaldoAntes = fifo.Total(registros)

		res, err := fifo.Allocate(req.Cantidad, registros)
		if err != nil {
			var short *fifo.ShortfallError
			if errors.As(err, &short) {
				return apierror.Insufficient(apierror.CodeExcedeSalida, err,
					"La liquidación de %s QQ excede el saldo pendiente de salidas (%s QQ)",
					req.Cantidad.String(), short.Disponible.String())
			}
			return err
		}

		for _, a := range res.Asignaciones {
			sa := porID[a.ID]
			det := model.DetalleLiquidacionSalida{
				SalidaID:       sa.ID,
				GrupoID:        grupoID,
				Cantidad:       a.Cantidad,
				PrecioUnitario: req.PrecioUnitario,
				Total:          a.Cantidad.Mul(req.PrecioUnitario).Round(2),
				TipoMovimiento: model.TipoLiquidacion,
			}
			if err := s.repo.CreateDetalleTx(ctx, tx, &det); err != nil {
				return err
			}
			estado := sa.Estado
			if a.Restante.IsZero() {
				estado = model.EstadoLiquidado
				if err := s.repo.UpdateEstadoTx(ctx, tx, sa.ID, estado); err != nil {
					return err
				}
			}
			resp.Total = resp.Total.Add(det.Total)
			resp.Detalles = append(resp.Detalles, dto.DetalleLiquidacionResponse{
				ID:             det.ID.String(),
				RegistroID:     sa.ID.String(),
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
	log.Info().Str("grupo_id", grupoID.String()).Str("comprador_id", compradorID.String()).
		Str("cantidad", req.Cantidad.String()).Msg("salidas liquidadas")
	return resp, nil
}

func (s *salidaService) AnularLiquidacion(ctx context.Context, grupoID uuid.UUID) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		detalles, err := s.repo.DetallesGrupoTx(ctx, tx, grupoID)
		if err != nil {
			return err
		}
		if len(detalles) == 0 {
			return apierror.NotFound("liquidación no encontrada o ya anulada")
		}
		ids := make([]uuid.UUID, 0, len(detalles))
		salidaIDs := make([]uuid.UUID, 0, len(detalles))
		for _, d := range detalles {
			ids = append(ids, d.ID)
			salidaIDs = append(salidaIDs, d.SalidaID)
		}
		salidas, err := s.repo.LockByIDsTx(ctx, tx, salidaIDs)
		if err != nil {
			return err
		}
		if err := s.repo.AnularDetallesTx(ctx, tx, ids); err != nil {
			return err
		}
		for _, sa := range salidas {
			if sa.Estado == model.EstadoLiquidado {
				if err := s.repo.UpdateEstadoTx(ctx, tx, sa.ID, model.EstadoPendiente); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (s *salidaService) SaldoAgregado(ctx context.Context, compradorID, productoID uuid.UUID) (*dto.SaldoSalidasResponse, error) {
	resp := &dto.SaldoSalidasResponse{ProductoID: productoID.String(), Saldo: decimal.Zero}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		salidas, saldos, err := s.saldosTx(ctx, tx, compradorID, productoID)
		if err != nil {
			return err
		}
		for i := range salidas {
			saldo := saldos[salidas[i].ID]
			resp.Saldo = resp.Saldo.Add(saldo)
			resp.Registros = append(resp.Registros, *salidaToResponse(&salidas[i], salidas[i].Cantidad.Sub(saldo)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *salidaService) saldosTx(ctx context.Context, tx *gorm.DB, compradorID, productoID uuid.UUID) ([]model.Salida, map[uuid.UUID]decimal.Decimal, error) {
	salidas, err := s.repo.LockAbiertasTx(ctx, tx, compradorID, productoID)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]uuid.UUID, 0, len(salidas))
	saldos := make(map[uuid.UUID]decimal.Decimal, len(salidas))
	for _, sa := range salidas {
		ids = append(ids, sa.ID)
		saldos[sa.ID] = sa.Cantidad
	}
	detalles, err := s.repo.DetallesVivosTx(ctx, tx, ids)
	if err != nil {
		return nil, nil, err
	}
	for _, d := range detalles {
		saldos[d.SalidaID] = saldos[d.SalidaID].Sub(d.Cantidad)
	}
	return salidas, saldos, nil
}

func salidaToResponse(s *model.Salida, liquidado decimal.Decimal) *dto.SalidaResponse {
	return &dto.SalidaResponse{
		ID:          s.ID.String(),
		CompradorID: s.CompradorID.String(),
		ProductoID:  s.ProductoID.String(),
		Cantidad:    s.Cantidad,
		Precio:      s.Precio,
		Liquidado:   liquidado,
		Saldo:       s.Cantidad.Sub(liquidado),
		Estado:      s.Estado,
		CreatedAt:   s.CreatedAt,
	}
}
