package repository

import (
	"context"

	"cafehenola/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimientoFilter narrows the inventory audit listing.
type MovimientoFilter struct {
	ClienteID      *uuid.UUID
	ProductoID     *uuid.UUID
	ReferenciaTipo string
	Limit          int
}

type InventarioRepository interface {
	// LockLotesTx returns every lot of (cliente, producto) in FIFO order, locked.
	LockLotesTx(ctx context.Context, tx *gorm.DB, clienteID, productoID uuid.UUID) ([]model.Lote, error)
	LockLotesByIDTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]model.Lote, error)
	CreateLoteTx(ctx context.Context, tx *gorm.DB, l *model.Lote) error
	UpdateLoteTx(ctx context.Context, tx *gorm.DB, l *model.Lote) error

	CreateMovimientoTx(ctx context.Context, tx *gorm.DB, m *model.MovimientoInventario) error
	// MovimientosVivosTx returns the non-voided movements written for ref.
	MovimientosVivosTx(ctx context.Context, tx *gorm.DB, ref model.Referencia) ([]model.MovimientoInventario, error)
	AnularMovimientosTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error

	ListLotes(ctx context.Context, clienteID uuid.UUID, productoID *uuid.UUID) ([]model.Lote, error)
	ListMovimientos(ctx context.Context, f MovimientoFilter) ([]model.MovimientoInventario, error)

	DB() *gorm.DB
}

type inventarioRepo struct{ db *gorm.DB }

func NewInventarioRepository(db *gorm.DB) InventarioRepository { return &inventarioRepo{db: db} }

func (r *inventarioRepo) DB() *gorm.DB { return r.db }

func (r *inventarioRepo) LockLotesTx(ctx context.Context, tx *gorm.DB, clienteID, productoID uuid.UUID) ([]model.Lote, error) {
	var lotes []model.Lote
	err := tx.WithContext(ctx).Clauses(forUpdate()).
		Where("cliente_id = ? AND producto_id = ?", clienteID, productoID).
		Order("secuencia ASC, id ASC").
		Find(&lotes).Error
	return lotes, err
}

func (r *inventarioRepo) LockLotesByIDTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]model.Lote, error) {
	var lotes []model.Lote
	if len(ids) == 0 {
		return lotes, nil
	}
	err := tx.WithContext(ctx).Clauses(forUpdate()).
		Where("id IN ?", ids).
		Order("secuencia ASC, id ASC").
		Find(&lotes).Error
	return lotes, err
}

func (r *inventarioRepo) CreateLoteTx(ctx context.Context, tx *gorm.DB, l *model.Lote) error {
	return tx.WithContext(ctx).Create(l).Error
}

func (r *inventarioRepo) UpdateLoteTx(ctx context.Context, tx *gorm.DB, l *model.Lote) error {
	return tx.WithContext(ctx).Model(&model.Lote{}).Where("id = ?", l.ID).
		Updates(map[string]interface{}{
			"cantidad": l.Cantidad,
			"sacos":    l.Sacos,
		}).Error
}

func (r *inventarioRepo) CreateMovimientoTx(ctx context.Context, tx *gorm.DB, m *model.MovimientoInventario) error {
	return tx.WithContext(ctx).Create(m).Error
}

func (r *inventarioRepo) MovimientosVivosTx(ctx context.Context, tx *gorm.DB, ref model.Referencia) ([]model.MovimientoInventario, error) {
	var movs []model.MovimientoInventario
	err := tx.WithContext(ctx).
		Where("referencia_tipo = ? AND referencia_id = ? AND tipo <> ?", ref.Tipo, ref.ID, model.MovAnulado).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *inventarioRepo) AnularMovimientosTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Model(&model.MovimientoInventario{}).
		Where("id IN ?", ids).
		Update("tipo", model.MovAnulado).Error
}

func (r *inventarioRepo) ListLotes(ctx context.Context, clienteID uuid.UUID, productoID *uuid.UUID) ([]model.Lote, error) {
	var lotes []model.Lote
	q := r.db.WithContext(ctx).Preload("Producto").Where("cliente_id = ?", clienteID)
	if productoID != nil {
		q = q.Where("producto_id = ?", *productoID)
	}
	err := q.Order("secuencia ASC, id ASC").Find(&lotes).Error
	return lotes, err
}

func (r *inventarioRepo) ListMovimientos(ctx context.Context, f MovimientoFilter) ([]model.MovimientoInventario, error) {
	var movs []model.MovimientoInventario
	q := r.db.WithContext(ctx).Model(&model.MovimientoInventario{})
	if f.ClienteID != nil {
		q = q.Where("cliente_id = ?", *f.ClienteID)
	}
	if f.ProductoID != nil {
		q = q.Where("producto_id = ?", *f.ProductoID)
	}
	if f.ReferenciaTipo != "" {
		q = q.Where("referencia_tipo = ?", f.ReferenciaTipo)
	}
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	err := q.Order("created_at DESC").Limit(f.Limit).Find(&movs).Error
	return movs, err
}
