package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Ventas ──────────────────────────────────────────────────────────────────

type RegistrarVentaRequest struct {
	ClienteID      string          `json:"cliente_id"      validate:"required,uuid"`
	ProductoID     string          `json:"producto_id"     validate:"required,uuid"`
	Cantidad       decimal.Decimal `json:"cantidad"        validate:"gt=0"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"min=0"`
	Sacos          int             `json:"sacos"           validate:"min=0"`
	Nota           string          `json:"nota"            validate:"max=500"`
}

type VentaResponse struct {
	ID             string          `json:"id"`
	ClienteID      string          `json:"cliente_id"`
	ProductoID     string          `json:"producto_id"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	Sacos          int             `json:"sacos"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Total          decimal.Decimal `json:"total"`
	Estado         string          `json:"estado"`
	Nota           string          `json:"nota,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	// Movimientos lists the per-lot withdrawals, oldest lot first.
	Movimientos []MovimientoInventarioResponse `json:"movimientos,omitempty"`
}

// ─── Compras ─────────────────────────────────────────────────────────────────

// RegistrarCompraRequest takes either the net Cantidad (oro) or PesoBruto, in
// which case the product factors convert it.
type RegistrarCompraRequest struct {
	ClienteID      string           `json:"cliente_id"      validate:"required,uuid"`
	ProductoID     string           `json:"producto_id"     validate:"required,uuid"`
	PesoBruto      *decimal.Decimal `json:"peso_bruto"      validate:"required_without=Cantidad,omitempty,gt=0"`
	Cantidad       *decimal.Decimal `json:"cantidad"        validate:"required_without=PesoBruto,omitempty,gt=0"`
	Sacos          int              `json:"sacos"           validate:"min=0"`
	PrecioUnitario decimal.Decimal  `json:"precio_unitario" validate:"min=0"`
	Nota           string           `json:"nota"            validate:"max=500"`
}

type ActualizarCompraRequest struct {
	PesoBruto      *decimal.Decimal `json:"peso_bruto"      validate:"omitempty,gt=0"`
	Cantidad       *decimal.Decimal `json:"cantidad"        validate:"omitempty,gt=0"`
	Sacos          *int             `json:"sacos"           validate:"omitempty,min=0"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario" validate:"omitempty,min=0"`
	Nota           *string          `json:"nota"            validate:"omitempty,max=500"`
}

type CompraResponse struct {
	ID             string          `json:"id"`
	ClienteID      string          `json:"cliente_id"`
	ProductoID     string          `json:"producto_id"`
	PesoBruto      decimal.Decimal `json:"peso_bruto"`
	Sacos          int             `json:"sacos"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Total          decimal.Decimal `json:"total"`
	Estado         string          `json:"estado"`
	Nota           string          `json:"nota,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type OperacionFilter struct {
	ClienteID string `form:"cliente_id" validate:"omitempty,uuid"`
	Estado    string `form:"estado"     validate:"omitempty,oneof=Registrada Anulado"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}
