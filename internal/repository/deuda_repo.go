package repository

import (
	"context"
	"time"

	"cafehenola/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeudaRepository stores loans and advances. Every method takes the Cartera
// whose tables it should touch.
type DeudaRepository interface {
	CreateDeudaTx(ctx context.Context, tx *gorm.DB, c model.Cartera, d *model.Deuda) error
	LockDeudaTx(ctx context.Context, tx *gorm.DB, c model.Cartera, id uuid.UUID) (*model.Deuda, error)
	// LockDeudasTx locks the client's debts in the given states, oldest first.
	LockDeudasTx(ctx context.Context, tx *gorm.DB, c model.Cartera, clienteID uuid.UUID, estados ...string) ([]model.Deuda, error)
	UpdateDeudaEstadoTx(ctx context.Context, tx *gorm.DB, c model.Cartera, id uuid.UUID, estado string) error

	CreateMovimientoTx(ctx context.Context, tx *gorm.DB, c model.Cartera, m *model.MovimientoDeuda) error
	MovimientosVivosTx(ctx context.Context, tx *gorm.DB, c model.Cartera, deudaIDs []uuid.UUID) ([]model.MovimientoDeuda, error)
	MovimientosPagoTx(ctx context.Context, tx *gorm.DB, c model.Cartera, pagoID uuid.UUID) ([]model.MovimientoDeuda, error)
	AnularMovimientosTx(ctx context.Context, tx *gorm.DB, c model.Cartera, ids []uuid.UUID) error
	// PagoAnuladoTx reports whether pagoID wrote movements that are now voided.
	PagoAnuladoTx(ctx context.Context, tx *gorm.DB, c model.Cartera, pagoID uuid.UUID) (bool, error)
	// ClienteDePago returns the client a request belongs to, voided or not.
	ClienteDePago(ctx context.Context, c model.Cartera, pagoID uuid.UUID) (uuid.UUID, error)
	// HayPosteriorTx reports a live movement on deudaID written after secuencia
	// by a request other than pagoID.
	HayPosteriorTx(ctx context.Context, tx *gorm.DB, c model.Cartera, deudaID uuid.UUID, secuencia int64, pagoID uuid.UUID) (bool, error)

	LockCreditosTx(ctx context.Context, tx *gorm.DB, c model.Cartera, clienteID uuid.UUID) ([]model.CreditoNoAsignado, error)
	LockCreditoPagoTx(ctx context.Context, tx *gorm.DB, c model.Cartera, pagoID uuid.UUID) (*model.CreditoNoAsignado, error)
	CreateCreditoTx(ctx context.Context, tx *gorm.DB, cr *model.CreditoNoAsignado) error
	UpdateCreditoTx(ctx context.Context, tx *gorm.DB, cr *model.CreditoNoAsignado) error

	DB() *gorm.DB
}

type deudaRepo struct{ db *gorm.DB }

func NewDeudaRepository(db *gorm.DB) DeudaRepository { return &deudaRepo{db: db} }

func (r *deudaRepo) DB() *gorm.DB { return r.db }

func (r *deudaRepo) CreateDeudaTx(ctx context.Context, tx *gorm.DB, c model.Cartera, d *model.Deuda) error {
	return tx.WithContext(ctx).Table(c.TablaDeudas).Create(d).Error
}

func (r *deudaRepo) LockDeudaTx(ctx context.Context, tx *gorm.DB, c model.Cartera, id uuid.UUID) (*model.Deuda, error) {
	var d model.Deuda
	err := tx.WithContext(ctx).Table(c.TablaDeudas).Clauses(forUpdate()).
		Where("id = ?", id).First(&d).Error
	return &d, err
}

func (r *deudaRepo) LockDeudasTx(ctx context.Context, tx *gorm.DB, c model.Cartera, clienteID uuid.UUID, estados ...string) ([]model.Deuda, error) {
	var out []model.Deuda
	q := tx.WithContext(ctx).Table(c.TablaDeudas).Clauses(forUpdate()).
		Where("cliente_id = ?", clienteID)
	if len(estados) > 0 {
		q = q.Where("estado IN ?", estados)
	}
	err := q.Order("secuencia ASC, id ASC").Find(&out).Error
	return out, err
}

func (r *deudaRepo) UpdateDeudaEstadoTx(ctx context.Context, tx *gorm.DB, c model.Cartera, id uuid.UUID, estado string) error {
	return tx.WithContext(ctx).Table(c.TablaDeudas).Where("id = ?", id).
		Updates(map[string]interface{}{"estado": estado, "updated_at": time.Now()}).Error
}

func (r *deudaRepo) CreateMovimientoTx(ctx context.Context, tx *gorm.DB, c model.Cartera, m *model.MovimientoDeuda) error {
	return tx.WithContext(ctx).Table(c.TablaMovimientos).Create(m).Error
}

func (r *deudaRepo) MovimientosVivosTx(ctx context.Context, tx *gorm.DB, c model.Cartera, deudaIDs []uuid.UUID) ([]model.MovimientoDeuda, error) {
	var out []model.MovimientoDeuda
	if len(deudaIDs) == 0 {
		return out, nil
	}
	err := tx.WithContext(ctx).Table(c.TablaMovimientos).
		Where("deuda_id IN ? AND tipo <> ?", deudaIDs, model.MovDeudaAnulado).
		Order("secuencia ASC").
		Find(&out).Error
	return out, err
}

func (r *deudaRepo) MovimientosPagoTx(ctx context.Context, tx *gorm.DB, c model.Cartera, pagoID uuid.UUID) ([]model.MovimientoDeuda, error) {
	var out []model.MovimientoDeuda
	err := tx.WithContext(ctx).Table(c.TablaMovimientos).
		Where("pago_id = ? AND tipo <> ?", pagoID, model.MovDeudaAnulado).
		Order("secuencia ASC").
		Find(&out).Error
	return out, err
}

func (r *deudaRepo) AnularMovimientosTx(ctx context.Context, tx *gorm.DB, c model.Cartera, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Table(c.TablaMovimientos).
		Where("id IN ?", ids).
		Update("tipo", model.MovDeudaAnulado).Error
}

func (r *deudaRepo) PagoAnuladoTx(ctx context.Context, tx *gorm.DB, c model.Cartera, pagoID uuid.UUID) (bool, error) {
	var n int64
	err := tx.WithContext(ctx).Table(c.TablaMovimientos).
		Where("pago_id = ? AND tipo = ?", pagoID, model.MovDeudaAnulado).
		Count(&n).Error
	return n > 0, err
}

func (r *deudaRepo) ClienteDePago(ctx context.Context, c model.Cartera, pagoID uuid.UUID) (uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Table(c.TablaMovimientos).
		Where("pago_id = ?", pagoID).Limit(1).
		Pluck("cliente_id", &ids).Error; err != nil {
		return uuid.Nil, err
	}
	if len(ids) == 0 {
		if err := r.db.WithContext(ctx).Model(&model.CreditoNoAsignado{}).
			Where("pago_id = ? AND cartera = ?", pagoID, c.Nombre).Limit(1).
			Pluck("cliente_id", &ids).Error; err != nil {
			return uuid.Nil, err
		}
	}
	if len(ids) == 0 {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return ids[0], nil
}

func (r *deudaRepo) HayPosteriorTx(ctx context.Context, tx *gorm.DB, c model.Cartera, deudaID uuid.UUID, secuencia int64, pagoID uuid.UUID) (bool, error) {
	var n int64
	err := tx.WithContext(ctx).Table(c.TablaMovimientos).
		Where("deuda_id = ? AND secuencia > ? AND pago_id <> ? AND tipo <> ?",
			deudaID, secuencia, pagoID, model.MovDeudaAnulado).
		Count(&n).Error
	return n > 0, err
}

func (r *deudaRepo) LockCreditosTx(ctx context.Context, tx *gorm.DB, c model.Cartera, clienteID uuid.UUID) ([]model.CreditoNoAsignado, error) {
	var out []model.CreditoNoAsignado
	err := tx.WithContext(ctx).Clauses(forUpdate()).
		Where("cliente_id = ? AND cartera = ? AND estado = ?", clienteID, c.Nombre, model.CreditoPendiente).
		Order("secuencia ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *deudaRepo) LockCreditoPagoTx(ctx context.Context, tx *gorm.DB, c model.Cartera, pagoID uuid.UUID) (*model.CreditoNoAsignado, error) {
	var cr model.CreditoNoAsignado
	err := tx.WithContext(ctx).Clauses(forUpdate()).
		Where("pago_id = ? AND cartera = ?", pagoID, c.Nombre).
		First(&cr).Error
	return &cr, err
}

func (r *deudaRepo) CreateCreditoTx(ctx context.Context, tx *gorm.DB, cr *model.CreditoNoAsignado) error {
	return tx.WithContext(ctx).Create(cr).Error
}

func (r *deudaRepo) UpdateCreditoTx(ctx context.Context, tx *gorm.DB, cr *model.CreditoNoAsignado) error {
	return tx.WithContext(ctx).Model(&model.CreditoNoAsignado{}).Where("id = ?", cr.ID).
		Updates(map[string]interface{}{
			"aplicado": cr.Aplicado,
			"estado":   cr.Estado,
		}).Error
}
