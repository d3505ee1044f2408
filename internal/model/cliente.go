package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cliente owns lots, deposits, contracts and debts. Never deleted; Activo=false
// hides it from new operations.
type Cliente struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre    string    `gorm:"not null;index"`
	Documento *string   `gorm:"type:varchar(30);uniqueIndex"`
	Activo    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Cliente) BeforeCreate(*gorm.DB) error {
	asignarID(&c.ID)
	return nil
}

// Comprador is an external buyer; Salidas are keyed by it instead of a Cliente.
type Comprador struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre    string    `gorm:"not null;index"`
	Activo    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Comprador) BeforeCreate(*gorm.DB) error {
	asignarID(&c.ID)
	return nil
}

// TableName overrides GORM's default pluralization (compradors → compradores).
func (Comprador) TableName() string { return "compradores" }
