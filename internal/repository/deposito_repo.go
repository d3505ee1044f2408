package repository

import (
	"context"

	"cafehenola/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DepositoRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, d *model.Deposito) error
	LockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Deposito, error)
	// LockAbiertosTx locks every non-voided deposit of (cliente, producto) in FIFO order.
	LockAbiertosTx(ctx context.Context, tx *gorm.DB, clienteID, productoID uuid.UUID) ([]model.Deposito, error)
	LockByIDsTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]model.Deposito, error)
	UpdateEstadoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, estado string) error

	CreateDetalleTx(ctx context.Context, tx *gorm.DB, d *model.DetalleLiquidacion) error
	DetallesVivosTx(ctx context.Context, tx *gorm.DB, depositoIDs []uuid.UUID) ([]model.DetalleLiquidacion, error)
	DetallesGrupoTx(ctx context.Context, tx *gorm.DB, grupoID uuid.UUID) ([]model.DetalleLiquidacion, error)
	AnularDetallesTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*model.Deposito, error)
	// ClienteDeGrupo returns the client whose deposits a liquidation group drew on.
	ClienteDeGrupo(ctx context.Context, grupoID uuid.UUID) (uuid.UUID, error)
	ListByCliente(ctx context.Context, clienteID uuid.UUID, productoID *uuid.UUID) ([]model.Deposito, error)
	DB() *gorm.DB
}

type depositoRepo struct{ db *gorm.DB }

func NewDepositoRepository(db *gorm.DB) DepositoRepository { return &depositoRepo{db: db} }

func (r *depositoRepo) DB() *gorm.DB { return r.db }

func (r *depositoRepo) CreateTx(ctx context.Context, tx *gorm.DB, d *model.Deposito) error {
	return tx.WithContext(ctx).Create(d).Error
}

func (r *depositoRepo) LockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Deposito, error) {
	var d model.Deposito
	err := tx.WithContext(ctx).Clauses(forUpdate()).Where("id = ?", id).First(&d).Error
	return &d, err
}

func (r *depositoRepo) LockAbiertosTx(ctx context.Context, tx *gorm.DB, clienteID, productoID uuid.UUID) ([]model.Deposito, error) {
	var out []model.Deposito
	err := tx.WithContext(ctx).Clauses(forUpdate()).
		Where("cliente_id = ? AND producto_id = ? AND estado <> ?", clienteID, productoID, model.EstadoAnulado).
		Order("secuencia ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *depositoRepo) LockByIDsTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]model.Deposito, error) {
	var out []model.Deposito
	if len(ids) == 0 {
		return out, nil
	}
	err := tx.WithContext(ctx).Clauses(forUpdate()).
		Where("id IN ?", ids).
		Order("secuencia ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *depositoRepo) UpdateEstadoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, estado string) error {
	return tx.WithContext(ctx).Model(&model.Deposito{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *depositoRepo) CreateDetalleTx(ctx context.Context, tx *gorm.DB, d *model.DetalleLiquidacion) error {
	return tx.WithContext(ctx).Create(d).Error
}

func (r *depositoRepo) DetallesVivosTx(ctx context.Context, tx *gorm.DB, depositoIDs []uuid.UUID) ([]model.DetalleLiquidacion, error) {
	var out []model.DetalleLiquidacion
	if len(depositoIDs) == 0 {
		return out, nil
	}
	err := tx.WithContext(ctx).
		Where("deposito_id IN ? AND tipo_movimiento <> ?", depositoIDs, model.TipoAnulado).
		Find(&out).Error
	return out, err
}

func (r *depositoRepo) DetallesGrupoTx(ctx context.Context, tx *gorm.DB, grupoID uuid.UUID) ([]model.DetalleLiquidacion, error) {
	var out []model.DetalleLiquidacion
	err := tx.WithContext(ctx).
		Where("grupo_id = ? AND tipo_movimiento <> ?", grupoID, model.TipoAnulado).
		Find(&out).Error
	return out, err
}

func (r *depositoRepo) AnularDetallesTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Model(&model.DetalleLiquidacion{}).
		Where("id IN ?", ids).
		Update("tipo_movimiento", model.TipoAnulado).Error
}

func (r *depositoRepo) ClienteDeGrupo(ctx context.Context, grupoID uuid.UUID) (uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Deposito{}).
		Joins("JOIN detalles_liquidacion ON detalles_liquidacion.deposito_id = depositos.id").
		Where("detalles_liquidacion.grupo_id = ?", grupoID).Limit(1).
		Pluck("depositos.cliente_id", &ids).Error
	if err != nil {
		return uuid.Nil, err
	}
	if len(ids) == 0 {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return ids[0], nil
}

func (r *depositoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Deposito, error) {
	var d model.Deposito
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	return &d, err
}

func (r *depositoRepo) ListByCliente(ctx context.Context, clienteID uuid.UUID, productoID *uuid.UUID) ([]model.Deposito, error) {
	var out []model.Deposito
	q := r.db.WithContext(ctx).Where("cliente_id = ?", clienteID)
	if productoID != nil {
		q = q.Where("producto_id = ?", *productoID)
	}
	err := q.Order("secuencia ASC").Find(&out).Error
	return out, err
}
