package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Estados for records that are drawn down over time (Contrato, Deposito, Salida).
const (
	EstadoPendiente = "Pendiente"
	EstadoLiquidado = "Liquidado"
)

// Detail movement types.
const (
	TipoEntrega     = "Entrega"
	TipoLiquidacion = "Liquidacion"
	TipoAnulado     = "Anulado"
)

// Contrato is a forward commitment to deliver CantidadContratada QQ at
// PrecioUnitario. Delivered quantity is always derived from DetalleEntrega.
type Contrato struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ClienteID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID         uuid.UUID       `gorm:"type:uuid;not null"`
	CantidadContratada decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	PrecioUnitario     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Estado             string          `gorm:"type:varchar(15);not null;default:'Pendiente'"`
	Secuencia          int64           `gorm:"not null"`
	Nota               string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Entregas []DetalleEntrega `gorm:"foreignKey:ContratoID"`
}

func (c *Contrato) BeforeCreate(*gorm.DB) error {
	asignarID(&c.ID)
	return nil
}

// DetalleEntrega is one delivery against a contract.
type DetalleEntrega struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ContratoID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cantidad        decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	Sacos           int             `gorm:"not null;default:0"`
	PrecioUnitario  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Total           decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	TipoMovimiento  string          `gorm:"type:varchar(15);not null;default:'Entrega'"`
	DesdeInventario bool            `gorm:"not null;default:false"`
	// IngresaInventario credits the delivered QQ to the client's lots.
	IngresaInventario bool `gorm:"not null;default:false"`
	Nota              string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (d *DetalleEntrega) BeforeCreate(*gorm.DB) error {
	asignarID(&d.ID)
	return nil
}

// TableName overrides GORM's default pluralization.
func (DetalleEntrega) TableName() string { return "detalles_entrega" }
