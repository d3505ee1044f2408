package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Estados shared by one-shot records (Compra, Venta).
const (
	EstadoRegistrada = "Registrada"
	EstadoAnulado    = "Anulado"
)

// Compra is a purchase receipt: coffee received from a client, credited to
// their inventory as oro.
type Compra struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ClienteID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	PesoBruto      decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`
	Sacos          int             `gorm:"not null;default:0"`
	Cantidad       decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Estado         string          `gorm:"type:varchar(15);not null;default:'Registrada'"`
	Nota           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (c *Compra) BeforeCreate(*gorm.DB) error {
	asignarID(&c.ID)
	return nil
}
