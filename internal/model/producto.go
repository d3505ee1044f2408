package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Producto is a coffee grade. The factors convert gross weight and sack count
// into oro, the net quantity every balance is kept in.
type Producto struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre string    `gorm:"not null;uniqueIndex"`
	// TaraPorSaco is the QQ weight of one empty sack.
	TaraPorSaco decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0"`
	// FactorDescuento is the fraction discounted for humidity and impurities (0..1).
	FactorDescuento decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0"`
	// FactorOro converts the clean weight into gold-equivalent QQ.
	FactorOro decimal.Decimal `gorm:"type:decimal(8,4);not null;default:1"`
	Activo    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Producto) BeforeCreate(*gorm.DB) error {
	asignarID(&p.ID)
	return nil
}

// ConvertirAOro returns (pesoBruto − sacos·tara)·(1 − descuento)·factorOro,
// rounded to four decimals and never negative.
func (p *Producto) ConvertirAOro(pesoBruto decimal.Decimal, sacos int) decimal.Decimal {
	tara := p.TaraPorSaco.Mul(decimal.NewFromInt(int64(sacos)))
	neto := pesoBruto.Sub(tara)
	if neto.IsNegative() {
		return decimal.Zero
	}
	factor := p.FactorOro
	if factor.IsZero() {
		factor = decimal.NewFromInt(1)
	}
	oro := neto.Mul(decimal.NewFromInt(1).Sub(p.FactorDescuento)).Mul(factor)
	return oro.Round(4)
}
