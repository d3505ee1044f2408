package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Lote is coffee a client holds with the business for one product.
// A client may hold several lots per product; withdrawals drain them in
// Secuencia order.
type Lote struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ClienteID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_lotes_cliente_producto"`
	ProductoID uuid.UUID       `gorm:"type:uuid;not null;index:idx_lotes_cliente_producto"`
	Cantidad   decimal.Decimal `gorm:"type:decimal(14,4);not null;check:cantidad >= 0"`
	Sacos      int             `gorm:"not null;default:0;check:sacos >= 0"`
	Secuencia  int64           `gorm:"not null;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (l *Lote) BeforeCreate(*gorm.DB) error {
	asignarID(&l.ID)
	return nil
}

// Movement directions. Anulado replaces the direction when the originating
// transaction is voided; TipoOriginal keeps what it was.
const (
	MovEntrada = "Entrada"
	MovSalida  = "Salida"
	MovAnulado = "Anulado"
)

// MovimientoInventario is the append-only audit row for every lot change.
// Rows are never deleted; voiding flips Tipo to Anulado.
type MovimientoInventario struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	LoteID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClienteID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Tipo           string          `gorm:"type:varchar(10);not null"`
	TipoOriginal   string          `gorm:"type:varchar(10);not null"`
	Cantidad       decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	Sacos          int             `gorm:"not null;default:0"`
	Nota           string
	ReferenciaTipo string    `gorm:"type:varchar(30);not null;index:idx_movinv_referencia"`
	ReferenciaID   uuid.UUID `gorm:"type:uuid;not null;index:idx_movinv_referencia"`
	CreatedAt      time.Time
}

func (m *MovimientoInventario) BeforeCreate(*gorm.DB) error {
	asignarID(&m.ID)
	return nil
}

// TableName overrides GORM's default pluralization.
func (MovimientoInventario) TableName() string { return "movimientos_inventario" }
