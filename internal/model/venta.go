package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Venta is a direct sale out of a client's stock.
type Venta struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ClienteID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad       decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	Sacos          int             `gorm:"not null;default:0"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Estado         string          `gorm:"type:varchar(15);not null;default:'Registrada'"`
	Nota           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (v *Venta) BeforeCreate(*gorm.DB) error {
	asignarID(&v.ID)
	return nil
}
