package model

import (
	"github.com/google/uuid"
)

// asignarID fills a zero primary key before insert. Postgres could default it,
// but the ids are needed before commit to tag audit rows.
func asignarID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// Referencia points an audit row at the transaction that produced it.
type Referencia struct {
	Tipo string
	ID   uuid.UUID
}

// Origin types used in MovimientoInventario.ReferenciaTipo.
const (
	RefCompra              = "compra"
	RefVenta               = "venta"
	RefDeposito            = "deposito"
	RefLiquidacionDeposito = "liquidacion_deposito"
	RefEntregaContrato     = "entrega_contrato"
)
