package repository

import (
	"context"

	"cafehenola/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OperacionFilter lists purchases or sales of one client.
type OperacionFilter struct {
	ClienteID *uuid.UUID
	Estado    string
	Page      int
	Limit     int
}

func (f OperacionFilter) apply(q *gorm.DB) *gorm.DB {
	if f.ClienteID != nil {
		q = q.Where("cliente_id = ?", *f.ClienteID)
	}
	if f.Estado != "" {
		q = q.Where("estado = ?", f.Estado)
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	return q.Order("created_at DESC").Offset((f.Page - 1) * f.Limit).Limit(f.Limit)
}

type VentaRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	LockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Venta, error)
	UpdateEstadoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, estado string) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	List(ctx context.Context, f OperacionFilter) ([]model.Venta, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) CreateTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return tx.WithContext(ctx).Create(v).Error
}

func (r *ventaRepo) LockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := tx.WithContext(ctx).Clauses(forUpdate()).Where("id = ?", id).First(&v).Error
	return &v, err
}

func (r *ventaRepo) UpdateEstadoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, estado string) error {
	return tx.WithContext(ctx).Model(&model.Venta{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error
	return &v, err
}

func (r *ventaRepo) List(ctx context.Context, f OperacionFilter) ([]model.Venta, error) {
	var ventas []model.Venta
	err := f.apply(r.db.WithContext(ctx).Model(&model.Venta{})).Find(&ventas).Error
	return ventas, err
}
