package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegistrarMovimientoDeudaRequest is one loan or advance movement. Tipo is
// checked against the cartera of the route it was posted to.
type RegistrarMovimientoDeudaRequest struct {
	ClienteID string           `json:"cliente_id" validate:"required,uuid"`
	Tipo      string           `json:"tipo"       validate:"required,max=20"`
	Monto     decimal.Decimal  `json:"monto"      validate:"gt=0"`
	Tasa      *decimal.Decimal `json:"tasa"       validate:"omitempty,min=0,max=100"`
	Dias      *int             `json:"dias"       validate:"omitempty,min=0"`
	Fecha     *time.Time       `json:"fecha"`
	Nota      string           `json:"nota"       validate:"max=500"`
	DeudaID   string           `json:"deuda_id"   validate:"omitempty,uuid"`
}

type AplicacionResponse struct {
	DeudaID       string          `json:"deuda_id"`
	Tipo          string          `json:"tipo"`
	Monto         decimal.Decimal `json:"monto"`
	SaldoRestante decimal.Decimal `json:"saldo_restante"`
	EstadoDeuda   string          `json:"estado_deuda"`
}

type MovimientoDeudaResponse struct {
	PagoID       string               `json:"pago_id"`
	Cartera      string               `json:"cartera"`
	Tipo         string               `json:"tipo"`
	Monto        decimal.Decimal      `json:"monto"`
	DeudaID      *string              `json:"deuda_id,omitempty"`
	Aplicaciones []AplicacionResponse `json:"aplicaciones"`
	// NoAsignado is the part kept as unassigned credit.
	NoAsignado decimal.Decimal `json:"no_asignado"`
}

type DeudaResponse struct {
	ID               string          `json:"id"`
	Principal        decimal.Decimal `json:"principal"`
	Tasa             decimal.Decimal `json:"tasa"`
	Estado           string          `json:"estado"`
	Fecha            time.Time       `json:"fecha"`
	SaldoPendiente   decimal.Decimal `json:"saldo_pendiente"`
	InteresPendiente decimal.Decimal `json:"interes_pendiente"`
}

type CreditoResponse struct {
	ID         string          `json:"id"`
	PagoID     string          `json:"pago_id"`
	Monto      decimal.Decimal `json:"monto"`
	Aplicado   decimal.Decimal `json:"aplicado"`
	Disponible decimal.Decimal `json:"disponible"`
	Estado     string          `json:"estado"`
	Fecha      time.Time       `json:"fecha"`
}

type EstadoCuentaResponse struct {
	ClienteID         string            `json:"cliente_id"`
	Cartera           string            `json:"cartera"`
	Deudas            []DeudaResponse   `json:"deudas"`
	Creditos          []CreditoResponse `json:"creditos"`
	SaldoTotal        decimal.Decimal   `json:"saldo_total"`
	InteresTotal      decimal.Decimal   `json:"interes_total"`
	CreditoNoAsignado decimal.Decimal   `json:"credito_no_asignado"`
}
