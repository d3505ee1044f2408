package repository

import (
	"context"

	"cafehenola/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompraRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, c *model.Compra) error
	LockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Compra, error)
	UpdateTx(ctx context.Context, tx *gorm.DB, c *model.Compra) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Compra, error)
	List(ctx context.Context, f OperacionFilter) ([]model.Compra, error)
	DB() *gorm.DB
}

type compraRepo struct{ db *gorm.DB }

func NewCompraRepository(db *gorm.DB) CompraRepository { return &compraRepo{db: db} }

func (r *compraRepo) DB() *gorm.DB { return r.db }

func (r *compraRepo) CreateTx(ctx context.Context, tx *gorm.DB, c *model.Compra) error {
	return tx.WithContext(ctx).Create(c).Error
}

func (r *compraRepo) LockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Compra, error) {
	var c model.Compra
	err := tx.WithContext(ctx).Clauses(forUpdate()).Where("id = ?", id).First(&c).Error
	return &c, err
}

// UpdateTx writes the mutable columns; a map keeps zero values (Sacos = 0).
func (r *compraRepo) UpdateTx(ctx context.Context, tx *gorm.DB, c *model.Compra) error {
	return tx.WithContext(ctx).Model(&model.Compra{}).Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"peso_bruto":      c.PesoBruto,
			"sacos":           c.Sacos,
			"cantidad":        c.Cantidad,
			"precio_unitario": c.PrecioUnitario,
			"total":           c.Total,
			"estado":          c.Estado,
			"nota":            c.Nota,
		}).Error
}

func (r *compraRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Compra, error) {
	var c model.Compra
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *compraRepo) List(ctx context.Context, f OperacionFilter) ([]model.Compra, error) {
	var compras []model.Compra
	err := f.apply(r.db.WithContext(ctx).Model(&model.Compra{})).Find(&compras).Error
	return compras, err
}
