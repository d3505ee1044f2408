package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Depósitos ───────────────────────────────────────────────────────────────

type RegistrarDepositoRequest struct {
	ClienteID  string          `json:"cliente_id"  validate:"required,uuid"`
	ProductoID string          `json:"producto_id" validate:"required,uuid"`
	Cantidad   decimal.Decimal `json:"cantidad"    validate:"gt=0"`
	Sacos      int             `json:"sacos"       validate:"min=0"`
	Nota       string          `json:"nota"        validate:"max=500"`
}

// LiquidarRequest draws down deposits (keyed by cliente) or salidas (keyed by
// comprador) oldest first.
type LiquidarRequest struct {
	ClienteID      string          `json:"cliente_id"      validate:"required_without=CompradorID,omitempty,uuid"`
	CompradorID    string          `json:"comprador_id"    validate:"required_without=ClienteID,omitempty,uuid"`
	ProductoID     string          `json:"producto_id"     validate:"required,uuid"`
	Cantidad       decimal.Decimal `json:"cantidad"        validate:"gt=0"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"min=0"`
}

type DepositoResponse struct {
	ID         string          `json:"id"`
	ClienteID  string          `json:"cliente_id"`
	ProductoID string          `json:"producto_id"`
	Cantidad   decimal.Decimal `json:"cantidad"`
	Sacos      int             `json:"sacos"`
	Liquidado  decimal.Decimal `json:"liquidado"`
	Saldo      decimal.Decimal `json:"saldo"`
	Estado     string          `json:"estado"`
	CreatedAt  time.Time       `json:"created_at"`
}

type DetalleLiquidacionResponse struct {
	ID             string          `json:"id"`
	RegistroID     string          `json:"registro_id"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Total          decimal.Decimal `json:"total"`
	SaldoRestante  decimal.Decimal `json:"saldo_restante"`
	EstadoRegistro string          `json:"estado_registro"`
}

type LiquidacionResponse struct {
	GrupoID      string                       `json:"grupo_id"`
	Cantidad     decimal.Decimal              `json:"cantidad"`
	Total        decimal.Decimal              `json:"total"`
	SaldoAntes   decimal.Decimal              `json:"saldo_antes"`
	SaldoDespues decimal.Decimal              `json:"saldo_despues"`
	Detalles     []DetalleLiquidacionResponse `json:"detalles"`
}

type SaldoAgregadoResponse struct {
	ProductoID string             `json:"producto_id"`
	Saldo      decimal.Decimal    `json:"saldo"`
	Registros  []DepositoResponse `json:"registros"`
}

// ─── Salidas ─────────────────────────────────────────────────────────────────

type RegistrarSalidaRequest struct {
	CompradorID string          `json:"comprador_id" validate:"required,uuid"`
	ProductoID  string          `json:"producto_id"  validate:"required,uuid"`
	Cantidad    decimal.Decimal `json:"cantidad"     validate:"gt=0"`
	Precio      decimal.Decimal `json:"precio"       validate:"min=0"`
	Nota        string          `json:"nota"         validate:"max=500"`
}

type SalidaResponse struct {
	ID          string          `json:"id"`
	CompradorID string          `json:"comprador_id"`
	ProductoID  string          `json:"producto_id"`
	Cantidad    decimal.Decimal `json:"cantidad"`
	Precio      decimal.Decimal `json:"precio"`
	Liquidado   decimal.Decimal `json:"liquidado"`
	Saldo       decimal.Decimal `json:"saldo"`
	Estado      string          `json:"estado"`
	CreatedAt   time.Time       `json:"created_at"`
}

type SaldoSalidasResponse struct {
	ProductoID string           `json:"producto_id"`
	Saldo      decimal.Decimal  `json:"saldo"`
	Registros  []SalidaResponse `json:"registros"`
}
