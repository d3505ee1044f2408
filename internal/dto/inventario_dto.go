package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Filter ──────────────────────────────────────────────────────────────────

type InventarioFilter struct {
	ClienteID      string `form:"cliente_id"      validate:"required,uuid"`
	ProductoID     string `form:"producto_id"     validate:"omitempty,uuid"`
	ReferenciaTipo string `form:"referencia_tipo"`
	Limit          int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LoteResponse struct {
	ID         string          `json:"id"`
	ClienteID  string          `json:"cliente_id"`
	ProductoID string          `json:"producto_id"`
	Producto   string          `json:"producto,omitempty"`
	Cantidad   decimal.Decimal `json:"cantidad"`
	Sacos      int             `json:"sacos"`
	Secuencia  int64           `json:"secuencia"`
	CreatedAt  time.Time       `json:"created_at"`
}

type MovimientoInventarioResponse struct {
	ID             string          `json:"id"`
	LoteID         string          `json:"lote_id"`
	Tipo           string          `json:"tipo"`
	TipoOriginal   string          `json:"tipo_original"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	Sacos          int             `json:"sacos"`
	Nota           string          `json:"nota,omitempty"`
	ReferenciaTipo string          `json:"referencia_tipo"`
	ReferenciaID   string          `json:"referencia_id"`
	CreatedAt      time.Time       `json:"created_at"`
}

type SaldoInventarioResponse struct {
	ClienteID  string          `json:"cliente_id"`
	ProductoID string          `json:"producto_id"`
	Cantidad   decimal.Decimal `json:"cantidad"`
	Sacos      int             `json:"sacos"`
	Lotes      int             `json:"lotes"`
}
