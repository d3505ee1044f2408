package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Salida is coffee committed to an external buyer, liquidated in parts.
type Salida struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompradorID uuid.UUID       `gorm:"type:uuid;not null;index:idx_salidas_comprador_producto"`
	ProductoID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_salidas_comprador_producto"`
	Cantidad    decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	Precio      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Estado      string          `gorm:"type:varchar(15);not null;default:'Pendiente'"`
	Secuencia   int64           `gorm:"not null"`
	Nota        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (s *Salida) BeforeCreate(*gorm.DB) error {
	asignarID(&s.ID)
	return nil
}

type DetalleLiquidacionSalida struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SalidaID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	GrupoID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cantidad       decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	TipoMovimiento string          `gorm:"type:varchar(15);not null;default:'Liquidacion'"`
	CreatedAt      time.Time
}

func (d *DetalleLiquidacionSalida) BeforeCreate(*gorm.DB) error {
	asignarID(&d.ID)
	return nil
}

// TableName overrides GORM's default pluralization.
func (DetalleLiquidacionSalida) TableName() string { return "detalles_liquidacion_salida" }
