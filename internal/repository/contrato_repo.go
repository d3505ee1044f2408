package repository

import (
	"context"

	"cafehenola/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContratoRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, c *model.Contrato) error
	LockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Contrato, error)
	UpdateEstadoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, estado string) error

	CreateEntregaTx(ctx context.Context, tx *gorm.DB, d *model.DetalleEntrega) error
	LockEntregaTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.DetalleEntrega, error)
	UpdateEntregaTx(ctx context.Context, tx *gorm.DB, d *model.DetalleEntrega) error
	// EntregasVivasTx returns the non-voided deliveries of a contract.
	EntregasVivasTx(ctx context.Context, tx *gorm.DB, contratoID uuid.UUID) ([]model.DetalleEntrega, error)

	FindByID(ctx context.Context, id uuid.UUID) (*model.Contrato, error)
	// ClienteDeEntrega returns the client of the contract a delivery belongs to.
	ClienteDeEntrega(ctx context.Context, detalleID uuid.UUID) (uuid.UUID, error)
	ListByCliente(ctx context.Context, clienteID uuid.UUID, estado string) ([]model.Contrato, error)
	DB() *gorm.DB
}

type contratoRepo struct{ db *gorm.DB }

func NewContratoRepository(db *gorm.DB) ContratoRepository { return &contratoRepo{db: db} }

func (r *contratoRepo) DB() *gorm.DB { return r.db }

func (r *contratoRepo) CreateTx(ctx context.Context, tx *gorm.DB, c *model.Contrato) error {
	return tx.WithContext(ctx).Create(c).Error
}

func (r *contratoRepo) LockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Contrato, error) {
	var c model.Contrato
	err := tx.WithContext(ctx).Clauses(forUpdate()).Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *contratoRepo) UpdateEstadoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, estado string) error {
	return tx.WithContext(ctx).Model(&model.Contrato{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *contratoRepo) CreateEntregaTx(ctx context.Context, tx *gorm.DB, d *model.DetalleEntrega) error {
	return tx.WithContext(ctx).Create(d).Error
}

func (r *contratoRepo) LockEntregaTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.DetalleEntrega, error) {
	var d model.DetalleEntrega
	err := tx.WithContext(ctx).Clauses(forUpdate()).Where("id = ?", id).First(&d).Error
	return &d, err
}

func (r *contratoRepo) UpdateEntregaTx(ctx context.Context, tx *gorm.DB, d *model.DetalleEntrega) error {
	return tx.WithContext(ctx).Model(&model.DetalleEntrega{}).Where("id = ?", d.ID).
		Updates(map[string]interface{}{
			"cantidad":        d.Cantidad,
			"sacos":           d.Sacos,
			"precio_unitario": d.PrecioUnitario,
			"total":           d.Total,
			"tipo_movimiento": d.TipoMovimiento,
			"nota":            d.Nota,
		}).Error
}

func (r *contratoRepo) EntregasVivasTx(ctx context.Context, tx *gorm.DB, contratoID uuid.UUID) ([]model.DetalleEntrega, error) {
	var out []model.DetalleEntrega
	err := tx.WithContext(ctx).
		Where("contrato_id = ? AND tipo_movimiento <> ?", contratoID, model.TipoAnulado).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *contratoRepo) ClienteDeEntrega(ctx context.Context, detalleID uuid.UUID) (uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Contrato{}).
		Joins("JOIN detalles_entrega ON detalles_entrega.contrato_id = contratos.id").
		Where("detalles_entrega.id = ?", detalleID).Limit(1).
		Pluck("contratos.cliente_id", &ids).Error
	if err != nil {
		return uuid.Nil, err
	}
	if len(ids) == 0 {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return ids[0], nil
}

func (r *contratoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Contrato, error) {
	var c model.Contrato
	err := r.db.WithContext(ctx).
		Preload("Entregas", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *contratoRepo) ListByCliente(ctx context.Context, clienteID uuid.UUID, estado string) ([]model.Contrato, error) {
	var out []model.Contrato
	q := r.db.WithContext(ctx).Preload("Entregas").Where("cliente_id = ?", clienteID)
	if estado != "" {
		q = q.Where("estado = ?", estado)
	}
	err := q.Order("secuencia ASC").Find(&out).Error
	return out, err
}
