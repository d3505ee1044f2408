package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CrearContratoRequest struct {
	ClienteID          string          `json:"cliente_id"          validate:"required,uuid"`
	ProductoID         string          `json:"producto_id"         validate:"required,uuid"`
	CantidadContratada decimal.Decimal `json:"cantidad_contratada" validate:"gt=0"`
	PrecioUnitario     decimal.Decimal `json:"precio_unitario"     validate:"min=0"`
	Nota               string          `json:"nota"                validate:"max=500"`
}

// RegistrarEntregaRequest delivers against a contract. PrecioUnitario defaults
// to the contract price. DesdeInventario withdraws the QQ from the client's
// lots; IngresaInventario receives them into the client's stock instead.
type RegistrarEntregaRequest struct {
	ClienteID         string           `json:"cliente_id"         validate:"omitempty,uuid"`
	ProductoID        string           `json:"producto_id"        validate:"omitempty,uuid"`
	Cantidad          decimal.Decimal  `json:"cantidad"           validate:"gt=0"`
	PrecioUnitario    *decimal.Decimal `json:"precio_unitario"    validate:"omitempty,min=0"`
	Sacos             int              `json:"sacos"              validate:"min=0"`
	DesdeInventario   bool             `json:"desde_inventario"`
	IngresaInventario bool             `json:"ingresa_inventario" validate:"excluded_if=DesdeInventario true"`
	Nota              string           `json:"nota"               validate:"max=500"`
}

type ActualizarEntregaRequest struct {
	Cantidad       decimal.Decimal  `json:"cantidad"        validate:"gt=0"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario" validate:"omitempty,min=0"`
	Sacos          *int             `json:"sacos"           validate:"omitempty,min=0"`
	Nota           *string          `json:"nota"            validate:"omitempty,max=500"`
}

type EntregaResponse struct {
	DetalleEntregaID  string          `json:"detalle_entrega_id"`
	ContratoID        string          `json:"contrato_id"`
	SaldoAntesQQ      decimal.Decimal `json:"saldo_antes_qq"`
	Cantidad          decimal.Decimal `json:"cantidad"`
	EntregadoQQ       decimal.Decimal `json:"entregado_qq"`
	SaldoDespuesQQ    decimal.Decimal `json:"saldo_despues_qq"`
	SaldoDespuesMonto decimal.Decimal `json:"saldo_despues_monto"`
	EstadoContrato    string          `json:"estado_contrato"`
}

type DetalleEntregaResponse struct {
	ID                string          `json:"id"`
	Cantidad          decimal.Decimal `json:"cantidad"`
	Sacos             int             `json:"sacos"`
	PrecioUnitario    decimal.Decimal `json:"precio_unitario"`
	Total             decimal.Decimal `json:"total"`
	TipoMovimiento    string          `json:"tipo_movimiento"`
	DesdeInventario   bool            `json:"desde_inventario"`
	IngresaInventario bool            `json:"ingresa_inventario"`
	CreatedAt         time.Time       `json:"created_at"`
}

type ContratoResponse struct {
	ID                 string                   `json:"id"`
	ClienteID          string                   `json:"cliente_id"`
	ProductoID         string                   `json:"producto_id"`
	CantidadContratada decimal.Decimal          `json:"cantidad_contratada"`
	PrecioUnitario     decimal.Decimal          `json:"precio_unitario"`
	Estado             string                   `json:"estado"`
	EntregadoQQ        decimal.Decimal          `json:"entregado_qq"`
	SaldoQQ            decimal.Decimal          `json:"saldo_qq"`
	SaldoMonto         decimal.Decimal          `json:"saldo_monto"`
	Entregas           []DetalleEntregaResponse `json:"entregas,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
}
