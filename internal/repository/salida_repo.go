package repository

import (
	"context"

	"cafehenola/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SalidaRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, s *model.Salida) error
	LockAbiertasTx(ctx context.Context, tx *gorm.DB, compradorID, productoID uuid.UUID) ([]model.Salida, error)
	LockByIDsTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]model.Salida, error)
	UpdateEstadoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, estado string) error

	CreateDetalleTx(ctx context.Context, tx *gorm.DB, d *model.DetalleLiquidacionSalida) error
	DetallesVivosTx(ctx context.Context, tx *gorm.DB, salidaIDs []uuid.UUID) ([]model.DetalleLiquidacionSalida, error)
	DetallesGrupoTx(ctx context.Context, tx *gorm.DB, grupoID uuid.UUID) ([]model.DetalleLiquidacionSalida, error)
	AnularDetallesTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error

	ListByComprador(ctx context.Context, compradorID uuid.UUID) ([]model.Salida, error)
	DB() *gorm.DB
}

type salidaRepo struct{ db *gorm.DB }

func NewSalidaRepository(db *gorm.DB) SalidaRepository { return &salidaRepo{db: db} }

func (r *salidaRepo) DB() *gorm.DB { return r.db }

func (r *salidaRepo) CreateTx(ctx context.Context, tx *gorm.DB, s *model.Salida) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *salidaRepo) LockAbiertasTx(ctx context.Context, tx *gorm.DB, compradorID, productoID uuid.UUID) ([]model.Salida, error) {
	var out []model.Salida
	err := tx.WithContext(ctx).Clauses(forUpdate()).
		Where("comprador_id = ? AND producto_id = ? AND estado <> ?", compradorID, productoID, model.EstadoAnulado).
		Order("secuencia ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *salidaRepo) LockByIDsTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]model.Salida, error) {
	var out []model.Salida
	if len(ids) == 0 {
		return out, nil
	}
	err := tx.WithContext(ctx).Clauses(forUpdate()).
		Where("id IN ?", ids).
		Order("secuencia ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *salidaRepo) UpdateEstadoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, estado string) error {
	return tx.WithContext(ctx).Model(&model.Salida{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *salidaRepo) CreateDetalleTx(ctx context.Context, tx *gorm.DB, d *model.DetalleLiquidacionSalida) error {
	return tx.WithContext(ctx).Create(d).Error
}

func (r *salidaRepo) DetallesVivosTx(ctx context.Context, tx *gorm.DB, salidaIDs []uuid.UUID) ([]model.DetalleLiquidacionSalida, error) {
	var out []model.DetalleLiquidacionSalida
	if len(salidaIDs) == 0 {
		return out, nil
	}
	err := tx.WithContext(ctx).
		Where("salida_id IN ? AND tipo_movimiento <> ?", salidaIDs, model.TipoAnulado).
		Find(&out).Error
	return out, err
}

func (r *salidaRepo) DetallesGrupoTx(ctx context.Context, tx *gorm.DB, grupoID uuid.UUID) ([]model.DetalleLiquidacionSalida, error) {
	var out []model.DetalleLiquidacionSalida
	err := tx.WithContext(ctx).
		Where("grupo_id = ? AND tipo_movimiento <> ?", grupoID, model.TipoAnulado).
		Find(&out).Error
	return out, err
}

func (r *salidaRepo) AnularDetallesTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Model(&model.DetalleLiquidacionSalida{}).
		Where("id IN ?", ids).
		Update("tipo_movimiento", model.TipoAnulado).Error
}

func (r *salidaRepo) ListByComprador(ctx context.Context, compradorID uuid.UUID) ([]model.Salida, error) {
	var out []model.Salida
	err := r.db.WithContext(ctx).Where("comprador_id = ?", compradorID).Order("secuencia ASC").Find(&out).Error
	return out, err
}
