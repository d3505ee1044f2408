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

func depositar(t *testing.T, e *entorno, cantidad string) uuid.UUID {
	t.Helper()
	d, err := e.depositos.Registrar(context.Background(), dto.RegistrarDepositoRequest{
		ClienteID:  e.cliente.String(),
		ProductoID: e.producto.String(),
		Cantidad:   dec(cantidad),
	})
	require.NoError(t, err)
	return uuid.MustParse(d.ID)
}

func TestLiquidarDepositosEnOrden(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	d1 := depositar(t, e, "10")
	d2 := depositar(t, e, "15")

	liq, err := e.depositos.Liquidar(ctx, dto.LiquidarRequest{
		ClienteID:      e.cliente.String(),
		ProductoID:     e.producto.String(),
		Cantidad:       dec("12"),
		PrecioUnitario: dec("2"),
	})
	require.NoError(t, err)
	assertDec(t, "25", liq.SaldoAntes)
	assertDec(t, "13", liq.SaldoDespues)
	assertDec(t, "24", liq.Total)
	require.Len(t, liq.Detalles, 2)
	assert.Equal(t, d1.String(), liq.Detalles[0].RegistroID)
	assert.Equal(t, model.EstadoLiquidado, liq.Detalles[0].EstadoRegistro)
	assert.Equal(t, d2.String(), liq.Detalles[1].RegistroID)
	assertDec(t, "13", liq.Detalles[1].SaldoRestante)

	saldo, err := e.depositos.SaldoAgregado(ctx, e.cliente, e.producto)
	require.NoError(t, err)
	assertDec(t, "13", saldo.Saldo)
	assertDec(t, "13", e.saldoInventario(t))

	// saldo = cantidad − liquidado on every record.
	for _, r := range saldo.Registros {
		assert.True(t, r.Saldo.Equal(r.Cantidad.Sub(r.Liquidado)))
	}
}

func TestLiquidarExcedeDeposito(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	depositar(t, e, "5")

	_, err := e.depositos.Liquidar(ctx, dto.LiquidarRequest{
		ClienteID:  e.cliente.String(),
		ProductoID: e.producto.String(),
		Cantidad:   dec("6"),
	})
	assert.ErrorIs(t, err, apierror.ErrExceedsDeposit)
	assertDec(t, "5", e.saldoInventario(t))
}

func TestAnularDepositoConLiquidacion(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	d := depositar(t, e, "5")

	liq, err := e.depositos.Liquidar(ctx, dto.LiquidarRequest{
		ClienteID:  e.cliente.String(),
		ProductoID: e.producto.String(),
		Cantidad:   dec("5"),
	})
	require.NoError(t, err)

	err = e.depositos.Anular(ctx, d)
	assert.ErrorIs(t, err, apierror.ErrStateConflict)

	require.NoError(t, e.depositos.AnularLiquidacion(ctx, uuid.MustParse(liq.GrupoID)))
	assertDec(t, "5", e.saldoInventario(t))

	saldo, err := e.depositos.SaldoAgregado(ctx, e.cliente, e.producto)
	require.NoError(t, err)
	require.Len(t, saldo.Registros, 1)
	assert.Equal(t, model.EstadoPendiente, saldo.Registros[0].Estado)

	require.NoError(t, e.depositos.Anular(ctx, d))
	assertDec(t, "0", e.saldoInventario(t))
}

func TestLiquidarSalidas(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	for _, q := range []string{"4", "6"} {
		_, err := e.salidas.Registrar(ctx, dto.RegistrarSalidaRequest{
			CompradorID: e.comprador.String(),
			ProductoID:  e.producto.String(),
			Cantidad:    dec(q),
			Precio:      dec("3"),
		})
		require.NoError(t, err)
	}

	liq, err := e.salidas.Liquidar(ctx, dto.LiquidarRequest{
		CompradorID: e.comprador.String(),
		ProductoID:  e.producto.String(),
		Cantidad:    dec("5"),
	})
	require.NoError(t, err)
	require.Len(t, liq.Detalles, 2)
	assert.Equal(t, model.EstadoLiquidado, liq.Detalles[0].EstadoRegistro)
	assertDec(t, "5", liq.SaldoDespues)

	_, err = e.salidas.Liquidar(ctx, dto.LiquidarRequest{
		CompradorID: e.comprador.String(),
		ProductoID:  e.producto.String(),
		Cantidad:    dec("6"),
	})
	assert.ErrorIs(t, err, apierror.ErrExceedsSalida)

	require.NoError(t, e.salidas.AnularLiquidacion(ctx, uuid.MustParse(liq.GrupoID)))
	saldo, err := e.salidas.SaldoAgregado(ctx, e.comprador, e.producto)
	require.NoError(t, err)
	assertDec(t, "10", saldo.Saldo)
}
