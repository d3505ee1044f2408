package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Deposito is coffee a client leaves with the business to be priced later.
// Its saldo is Cantidad minus the live liquidations.
type Deposito struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ClienteID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_depositos_cliente_producto"`
	ProductoID uuid.UUID       `gorm:"type:uuid;not null;index:idx_depositos_cliente_producto"`
	Cantidad   decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	Sacos      int             `gorm:"not null;default:0"`
	Estado     string          `gorm:"type:varchar(15);not null;default:'Pendiente'"`
	Secuencia  int64           `gorm:"not null"`
	Nota       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (d *Deposito) BeforeCreate(*gorm.DB) error {
	asignarID(&d.ID)
	return nil
}

// DetalleLiquidacion is the share of one liquidation request taken from a
// single deposit. Rows produced by the same request share GrupoID.
type DetalleLiquidacion struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DepositoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	GrupoID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cantidad       decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	TipoMovimiento string          `gorm:"type:varchar(15);not null;default:'Liquidacion'"`
	CreatedAt      time.Time
}

func (d *DetalleLiquidacion) BeforeCreate(*gorm.DB) error {
	asignarID(&d.ID)
	return nil
}

// TableName overrides GORM's default pluralization.
func (DetalleLiquidacion) TableName() string { return "detalles_liquidacion" }
