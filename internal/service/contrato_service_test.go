package service_test

import (
	"context"
	"testing"

	"cafehenola/internal/apierror"
	"cafehenola/internal/dto"
	"cafehenola/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nuevoContrato(t *testing.T, e *entorno, cantidad, precio string) uuid.UUID {
	t.Helper()
	c, err := e.contratos.Crear(context.Background(), dto.CrearContratoRequest{
		ClienteID:          e.cliente.String(),
		ProductoID:         e.producto.String(),
		CantidadContratada: dec(cantidad),
		PrecioUnitario:     dec(precio),
	})
	require.NoError(t, err)
	assert.Equal(t, model.EstadoPendiente, c.Estado)
	return uuid.MustParse(c.ID)
}

func TestContratoSeLiquidaYReabre(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	id := nuevoContrato(t, e, "100", "1000")

	r1, err := e.contratos.RegistrarEntrega(ctx, id, dto.RegistrarEntregaRequest{Cantidad: dec("60")})
	require.NoError(t, err)
	assertDec(t, "100", r1.SaldoAntesQQ)
	assertDec(t, "40", r1.SaldoDespuesQQ)
	assertDec(t, "40000", r1.SaldoDespuesMonto)
	assert.Equal(t, model.EstadoPendiente, r1.EstadoContrato)

	r2, err := e.contratos.RegistrarEntrega(ctx, id, dto.RegistrarEntregaRequest{Cantidad: dec("40")})
	require.NoError(t, err)
	assertDec(t, "0", r2.SaldoDespuesQQ)
	assert.Equal(t, model.EstadoLiquidado, r2.EstadoContrato)

	r3, err := e.contratos.AnularEntrega(ctx, uuid.MustParse(r2.DetalleEntregaID))
	require.NoError(t, err)
	assertDec(t, "40", r3.SaldoDespuesQQ)
	assert.Equal(t, model.EstadoPendiente, r3.EstadoContrato)

	c, err := e.contratos.Obtener(ctx, id)
	require.NoError(t, err)
	assertDec(t, "60", c.EntregadoQQ)
	assert.Equal(t, model.EstadoPendiente, c.Estado)
}

func TestEntregaExcedeCompromiso(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	id := nuevoContrato(t, e, "50", "10")

	_, err := e.contratos.RegistrarEntrega(ctx, id, dto.RegistrarEntregaRequest{Cantidad: dec("30")})
	require.NoError(t, err)

	_, err = e.contratos.RegistrarEntrega(ctx, id, dto.RegistrarEntregaRequest{Cantidad: dec("25")})
	require.Error(t, err)
	assert.ErrorIs(t, err, apierror.ErrExceedsCommitment)

	c, err := e.contratos.Obtener(ctx, id)
	require.NoError(t, err)
	assertDec(t, "30", c.EntregadoQQ)
	assert.Len(t, c.Entregas, 1)
}

func TestEntregaEnContratoAnulado(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	id := nuevoContrato(t, e, "50", "10")
	require.NoError(t, e.contratos.Anular(ctx, id))

	_, err := e.contratos.RegistrarEntrega(ctx, id, dto.RegistrarEntregaRequest{Cantidad: dec("1")})
	assert.ErrorIs(t, err, apierror.ErrContractVoided)
	assert.Equal(t, 409, apierror.Status(err))
}

func TestActualizarEntregaExcluyeLaPropia(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	id := nuevoContrato(t, e, "100", "10")

	r1, err := e.contratos.RegistrarEntrega(ctx, id, dto.RegistrarEntregaRequest{Cantidad: dec("70")})
	require.NoError(t, err)

	// 100 is allowed: the 70 being edited does not count against itself.
	r2, err := e.contratos.ActualizarEntrega(ctx, uuid.MustParse(r1.DetalleEntregaID), dto.ActualizarEntregaRequest{Cantidad: dec("100")})
	require.NoError(t, err)
	assert.Equal(t, model.EstadoLiquidado, r2.EstadoContrato)

	r3, err := e.contratos.ActualizarEntrega(ctx, uuid.MustParse(r1.DetalleEntregaID), dto.ActualizarEntregaRequest{Cantidad: dec("90")})
	require.NoError(t, err)
	assert.Equal(t, model.EstadoPendiente, r3.EstadoContrato)
	assertDec(t, "10", r3.SaldoDespuesQQ)

	_, err = e.contratos.ActualizarEntrega(ctx, uuid.MustParse(r1.DetalleEntregaID), dto.ActualizarEntregaRequest{Cantidad: dec("101")})
	assert.ErrorIs(t, err, apierror.ErrExceedsCommitment)
}

func TestEntregaDesdeInventario(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	e.lote(t, "10", 0)
	id := nuevoContrato(t, e, "20", "10")

	r, err := e.contratos.RegistrarEntrega(ctx, id, dto.RegistrarEntregaRequest{Cantidad: dec("8"), DesdeInventario: true})
	require.NoError(t, err)
	assertDec(t, "2", e.saldoInventario(t))

	_, err = e.contratos.RegistrarEntrega(ctx, id, dto.RegistrarEntregaRequest{Cantidad: dec("5"), DesdeInventario: true})
	assert.ErrorIs(t, err, apierror.ErrInsufficientInventory)

	_, err = e.contratos.AnularEntrega(ctx, uuid.MustParse(r.DetalleEntregaID))
	require.NoError(t, err)
	assertDec(t, "10", e.saldoInventario(t))
}

func (e *entorno) vender(t *testing.T, cantidad string) {
	t.Helper()
	_, err := e.ventas.Registrar(context.Background(), dto.RegistrarVentaRequest{
		ClienteID:  e.cliente.String(),
		ProductoID: e.producto.String(),
		Cantidad:   dec(cantidad),
	})
	require.NoError(t, err)
}

func TestAnularEntregaEditadaDesdeInventario(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	la := e.lote(t, "10", 0)
	lb := e.lote(t, "5", 0)
	id := nuevoContrato(t, e, "20", "10")

	r, err := e.contratos.RegistrarEntrega(ctx, id, dto.RegistrarEntregaRequest{Cantidad: dec("10"), DesdeInventario: true})
	require.NoError(t, err)
	detalle := uuid.MustParse(r.DetalleEntregaID)

	// The 2 QQ given back return to the lot they came from.
	_, err = e.contratos.ActualizarEntrega(ctx, detalle, dto.ActualizarEntregaRequest{Cantidad: dec("8")})
	require.NoError(t, err)
	assertDec(t, "2", e.cantidadLote(t, la))
	assertDec(t, "5", e.cantidadLote(t, lb))

	e.vender(t, "7")
	assertDec(t, "0", e.saldoInventario(t))

	anulada, err := e.contratos.AnularEntrega(ctx, detalle)
	require.NoError(t, err)
	assert.Equal(t, model.EstadoPendiente, anulada.EstadoContrato)
	assertDec(t, "8", e.saldoInventario(t))
	assertDec(t, "8", e.cantidadLote(t, la))
}

func TestEntregaRecibidaIngresaAInventario(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	id := nuevoContrato(t, e, "20", "10")

	r, err := e.contratos.RegistrarEntrega(ctx, id, dto.RegistrarEntregaRequest{
		Cantidad:          dec("12"),
		Sacos:             3,
		IngresaInventario: true,
	})
	require.NoError(t, err)
	assertDec(t, "12", e.saldoInventario(t))
	detalle := uuid.MustParse(r.DetalleEntregaID)

	_, err = e.contratos.ActualizarEntrega(ctx, detalle, dto.ActualizarEntregaRequest{Cantidad: dec("15")})
	require.NoError(t, err)
	assertDec(t, "15", e.saldoInventario(t))

	_, err = e.contratos.ActualizarEntrega(ctx, detalle, dto.ActualizarEntregaRequest{Cantidad: dec("10")})
	require.NoError(t, err)
	assertDec(t, "10", e.saldoInventario(t))

	c, err := e.contratos.Obtener(ctx, id)
	require.NoError(t, err)
	require.Len(t, c.Entregas, 1)
	assert.True(t, c.Entregas[0].IngresaInventario)

	_, err = e.contratos.AnularEntrega(ctx, detalle)
	require.NoError(t, err)
	assertDec(t, "0", e.saldoInventario(t))
}

func TestAnularEntregaRecibidaYaVendida(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	id := nuevoContrato(t, e, "20", "10")

	r, err := e.contratos.RegistrarEntrega(ctx, id, dto.RegistrarEntregaRequest{Cantidad: dec("5"), IngresaInventario: true})
	require.NoError(t, err)
	e.vender(t, "3")

	_, err = e.contratos.AnularEntrega(ctx, uuid.MustParse(r.DetalleEntregaID))
	assert.ErrorIs(t, err, apierror.ErrInsufficientInventory)
	assertDec(t, "2", e.saldoInventario(t))
}

func TestEntregaNoPuedeSalirEIngresar(t *testing.T) {
	e := nuevoEntorno(t)
	id := nuevoContrato(t, e, "20", "10")

	_, err := e.contratos.RegistrarEntrega(context.Background(), id, dto.RegistrarEntregaRequest{
		Cantidad:          dec("1"),
		DesdeInventario:   true,
		IngresaInventario: true,
	})
	assert.ErrorIs(t, err, apierror.ErrValidation)
}

func TestEdicionesYAnulacionesTomanLockDelCliente(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	clave := "cliente:" + e.cliente.String()
	id := nuevoContrato(t, e, "20", "10")

	r, err := e.contratos.RegistrarEntrega(ctx, id, dto.RegistrarEntregaRequest{Cantidad: dec("4"), IngresaInventario: true})
	require.NoError(t, err)
	detalle := uuid.MustParse(r.DetalleEntregaID)
	e.locks.tomados()

	_, err = e.contratos.ActualizarEntrega(ctx, detalle, dto.ActualizarEntregaRequest{Cantidad: dec("6")})
	require.NoError(t, err)
	assert.Equal(t, []string{clave}, e.locks.tomados())

	_, err = e.contratos.AnularEntrega(ctx, detalle)
	require.NoError(t, err)
	assert.Equal(t, []string{clave}, e.locks.tomados())

	compra, err := e.compras.Registrar(ctx, dto.RegistrarCompraRequest{
		ClienteID:  e.cliente.String(),
		ProductoID: e.producto.String(),
		Cantidad:   decPtr("3"),
	})
	require.NoError(t, err)
	e.locks.tomados()
	require.NoError(t, e.compras.Anular(ctx, uuid.MustParse(compra.ID)))
	assert.Equal(t, []string{clave}, e.locks.tomados())

	p := e.movimiento(t, model.CarteraPrestamos, model.MovPrestamo, "50")
	e.locks.tomados()
	require.NoError(t, e.deudas.AnularMovimiento(ctx, model.CarteraPrestamos, uuid.MustParse(p.PagoID)))
	assert.Equal(t, []string{clave}, e.locks.tomados())

	// Unknown records take no lock and still report not found.
	assert.ErrorIs(t, e.compras.Anular(ctx, uuid.New()), apierror.ErrNotFound)
	assert.Empty(t, e.locks.tomados())
}
