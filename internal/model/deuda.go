package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Debt record states.
const (
	DeudaActivo     = "Activo"
	DeudaCompletado = "Completado"
	DeudaAnulado    = "Anulado"
)

// Movement types. Loans and advances never share a table, so a type is only
// valid for the cartera that declares it.
const (
	MovPrestamo     = "PRESTAMO"
	MovAnticipo     = "ANTICIPO"
	MovAbono        = "ABONO"
	MovCargoInteres = "CARGO_INTERES"
	MovAbonoInteres = "ABONO_INTERES"

	MovCargoAnticipo   = "CARGO_ANTICIPO"
	MovAbonoAnticipo   = "ABONO_ANTICIPO"
	MovInteresAnticipo = "INTERES_ANTICIPO"

	MovDeudaAnulado = "ANULADO"
)

// Unassigned credit states.
const (
	CreditoPendiente = "Pendiente"
	CreditoAplicado  = "Aplicado"
	CreditoAnulado   = "Anulado"
)

// Deuda is a loan or an advance. The same struct is stored in prestamos or
// anticipos depending on the Cartera; indexes are created by the migration
// because GORM index names would collide between the two tables.
type Deuda struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ClienteID uuid.UUID       `gorm:"type:uuid;not null"`
	Principal decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	// Tasa is the monthly interest rate in percent.
	Tasa      decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	Estado    string          `gorm:"type:varchar(12);not null;default:'Activo'"`
	Fecha     time.Time       `gorm:"not null"`
	Secuencia int64           `gorm:"not null"`
	Nota      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d *Deuda) BeforeCreate(*gorm.DB) error {
	asignarID(&d.ID)
	return nil
}

// MovimientoDeuda is one typed entry against a Deuda. Rows written by the same
// request share PagoID, which is also the handle used to void them.
type MovimientoDeuda struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey"`
	DeudaID      uuid.UUID        `gorm:"type:uuid;not null"`
	ClienteID    uuid.UUID        `gorm:"type:uuid;not null"`
	PagoID       uuid.UUID        `gorm:"type:uuid;not null"`
	Tipo         string           `gorm:"type:varchar(20);not null"`
	TipoOriginal string           `gorm:"type:varchar(20);not null"`
	Monto        decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	Tasa         *decimal.Decimal `gorm:"type:decimal(6,2)"`
	Dias         *int
	Fecha        time.Time `gorm:"not null"`
	Secuencia    int64     `gorm:"not null"`
	Nota         string
	CreatedAt    time.Time
}

func (m *MovimientoDeuda) BeforeCreate(*gorm.DB) error {
	asignarID(&m.ID)
	return nil
}

// CreditoNoAsignado holds a payment received while the client had no open
// debt in that cartera. It is absorbed, oldest first, by the next disbursement.
type CreditoNoAsignado struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ClienteID uuid.UUID       `gorm:"type:uuid;not null;index:idx_creditos_cliente_cartera"`
	Cartera   string          `gorm:"type:varchar(12);not null;index:idx_creditos_cliente_cartera"`
	PagoID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Monto     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Aplicado  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Estado    string          `gorm:"type:varchar(12);not null;default:'Pendiente'"`
	Fecha     time.Time       `gorm:"not null"`
	Secuencia int64           `gorm:"not null"`
	Nota      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *CreditoNoAsignado) BeforeCreate(*gorm.DB) error {
	asignarID(&c.ID)
	return nil
}

// TableName overrides GORM's default pluralization.
func (CreditoNoAsignado) TableName() string { return "creditos_no_asignados" }

// Disponible is the part of the credit not yet applied to a debt.
func (c *CreditoNoAsignado) Disponible() decimal.Decimal {
	return c.Monto.Sub(c.Aplicado)
}

// Cartera describes one debt pool: where it is stored and which movement type
// plays each role. An empty type means the pool has no such movement.
type Cartera struct {
	Nombre           string
	TablaDeudas      string
	TablaMovimientos string

	Desembolso   string
	Aumento      string
	Abono        string
	CargoInteres string
	AbonoInteres string

	// InteresDevengado selects accrued simple interest over the declining
	// capital instead of explicit interest charges.
	InteresDevengado bool

	alias map[string]string
}

var (
	CarteraPrestamos = Cartera{
		Nombre:           "prestamos",
		TablaDeudas:      "prestamos",
		TablaMovimientos: "movimientos_prestamo",
		Desembolso:       MovPrestamo,
		Aumento:          MovAnticipo,
		Abono:            MovAbono,
		CargoInteres:     MovCargoInteres,
		AbonoInteres:     MovAbonoInteres,
		alias: map[string]string{
			"INT-CARGO":    MovCargoInteres,
			"PAGO_INTERES": MovAbonoInteres,
		},
	}

	CarteraAnticipos = Cartera{
		Nombre:           "anticipos",
		TablaDeudas:      "anticipos",
		TablaMovimientos: "movimientos_anticipo",
		Desembolso:       MovCargoAnticipo,
		Abono:            MovAbonoAnticipo,
		AbonoInteres:     MovInteresAnticipo,
		InteresDevengado: true,
	}
)

// Carteras lists every debt pool, in migration order.
func Carteras() []Cartera {
	return []Cartera{CarteraPrestamos, CarteraAnticipos}
}

// NormalizarTipo upper-cases t, resolves legacy aliases and reports whether the
// result is a movement this cartera accepts from a caller.
func (c Cartera) NormalizarTipo(t string) (string, bool) {
	t = strings.ToUpper(strings.TrimSpace(t))
	if canon, ok := c.alias[t]; ok {
		t = canon
	}
	if t == "" {
		return "", false
	}
	switch t {
	case c.Desembolso, c.Aumento, c.Abono, c.CargoInteres, c.AbonoInteres:
		return t, true
	}
	return t, false
}
