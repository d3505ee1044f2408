package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearClienteRequest struct {
	Nombre    string  `json:"nombre"    validate:"required,min=2,max=120"`
	Documento *string `json:"documento" validate:"omitempty,max=30"`
}

type CrearCompradorRequest struct {
	Nombre string `json:"nombre" validate:"required,min=2,max=120"`
}

type CrearProductoRequest struct {
	Nombre          string          `json:"nombre"           validate:"required,min=2,max=120"`
	TaraPorSaco     decimal.Decimal `json:"tara_por_saco"    validate:"min=0"`
	FactorDescuento decimal.Decimal `json:"factor_descuento" validate:"min=0,max=1"`
	FactorOro       decimal.Decimal `json:"factor_oro"       validate:"gt=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClienteResponse struct {
	ID        string  `json:"id"`
	Nombre    string  `json:"nombre"`
	Documento *string `json:"documento"`
	Activo    bool    `json:"activo"`
}

type CompradorResponse struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Activo bool   `json:"activo"`
}

type ProductoResponse struct {
	ID              string          `json:"id"`
	Nombre          string          `json:"nombre"`
	TaraPorSaco     decimal.Decimal `json:"tara_por_saco"`
	FactorDescuento decimal.Decimal `json:"factor_descuento"`
	FactorOro       decimal.Decimal `json:"factor_oro"`
	Activo          bool            `json:"activo"`
}
