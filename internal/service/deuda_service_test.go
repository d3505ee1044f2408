package service_test

import (
	"context"
	"testing"
	"time"

	"cafehenola/internal/apierror"
	"cafehenola/internal/dto"
	"cafehenola/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *entorno) movimiento(t *testing.T, c model.Cartera, tipo, monto string, mod ...func(*dto.RegistrarMovimientoDeudaRequest)) *dto.MovimientoDeudaResponse {
	t.Helper()
	resp, err := e.intentar(c, tipo, monto, mod...)
	require.NoError(t, err)
	return resp
}

func (e *entorno) intentar(c model.Cartera, tipo, monto string, mod ...func(*dto.RegistrarMovimientoDeudaRequest)) (*dto.MovimientoDeudaResponse, error) {
	req := dto.RegistrarMovimientoDeudaRequest{
		ClienteID: e.cliente.String(),
		Tipo:      tipo,
		Monto:     dec(monto),
	}
	for _, m := range mod {
		m(&req)
	}
	return e.deudas.RegistrarMovimiento(context.Background(), c, req)
}

func enFecha(f time.Time) func(*dto.RegistrarMovimientoDeudaRequest) {
	return func(r *dto.RegistrarMovimientoDeudaRequest) { r.Fecha = &f }
}

func conTasa(tasa string) func(*dto.RegistrarMovimientoDeudaRequest) {
	return func(r *dto.RegistrarMovimientoDeudaRequest) { r.Tasa = decPtr(tasa) }
}

func (e *entorno) estadoCuenta(t *testing.T, c model.Cartera) *dto.EstadoCuentaResponse {
	t.Helper()
	ec, err := e.deudas.EstadoCuenta(context.Background(), c, e.cliente)
	require.NoError(t, err)
	return ec
}

func TestAbonoRecorrePrestamosEnOrden(t *testing.T) {
	e := nuevoEntorno(t)
	a := e.movimiento(t, model.CarteraPrestamos, model.MovPrestamo, "200")
	b := e.movimiento(t, model.CarteraPrestamos, model.MovPrestamo, "300")

	abono := e.movimiento(t, model.CarteraPrestamos, model.MovAbono, "250")
	require.Len(t, abono.Aplicaciones, 2)
	assert.Equal(t, *a.DeudaID, abono.Aplicaciones[0].DeudaID)
	assertDec(t, "200", abono.Aplicaciones[0].Monto)
	assert.Equal(t, model.DeudaCompletado, abono.Aplicaciones[0].EstadoDeuda)
	assert.Equal(t, *b.DeudaID, abono.Aplicaciones[1].DeudaID)
	assertDec(t, "50", abono.Aplicaciones[1].Monto)
	assertDec(t, "250", abono.Aplicaciones[1].SaldoRestante)
	assert.Equal(t, model.DeudaActivo, abono.Aplicaciones[1].EstadoDeuda)

	ec := e.estadoCuenta(t, model.CarteraPrestamos)
	assertDec(t, "250", ec.SaldoTotal)
	require.Len(t, ec.Deudas, 2)
	assert.Equal(t, model.DeudaCompletado, ec.Deudas[0].Estado)
}

func TestAbonoExcedeDeuda(t *testing.T) {
	e := nuevoEntorno(t)
	e.movimiento(t, model.CarteraPrestamos, model.MovPrestamo, "100")

	_, err := e.intentar(model.CarteraPrestamos, model.MovAbono, "100.01")
	require.Error(t, err)
	assert.ErrorIs(t, err, apierror.ErrExceedsPendingDebt)

	ec := e.estadoCuenta(t, model.CarteraPrestamos)
	assertDec(t, "100", ec.SaldoTotal)
	assert.Equal(t, model.DeudaActivo, ec.Deudas[0].Estado)
}

func TestAbonoSinDeudaQuedaComoCredito(t *testing.T) {
	e := nuevoEntorno(t)
	abono := e.movimiento(t, model.CarteraPrestamos, model.MovAbono, "100")
	assert.Empty(t, abono.Aplicaciones)
	assertDec(t, "100", abono.NoAsignado)

	ec := e.estadoCuenta(t, model.CarteraPrestamos)
	assertDec(t, "100", ec.CreditoNoAsignado)

	// The pools are separate.
	assertDec(t, "0", e.estadoCuenta(t, model.CarteraAnticipos).CreditoNoAsignado)

	p1 := e.movimiento(t, model.CarteraPrestamos, model.MovPrestamo, "60")
	require.Len(t, p1.Aplicaciones, 1)
	assertDec(t, "60", p1.Aplicaciones[0].Monto)
	assert.Equal(t, model.DeudaCompletado, p1.Aplicaciones[0].EstadoDeuda)

	p2 := e.movimiento(t, model.CarteraPrestamos, model.MovPrestamo, "100")
	require.Len(t, p2.Aplicaciones, 1)
	assertDec(t, "40", p2.Aplicaciones[0].Monto)

	ec = e.estadoCuenta(t, model.CarteraPrestamos)
	assertDec(t, "0", ec.CreditoNoAsignado)
	assertDec(t, "60", ec.SaldoTotal)
}

func TestInteresDePrestamo(t *testing.T) {
	e := nuevoEntorno(t)
	e.movimiento(t, model.CarteraPrestamos, model.MovPrestamo, "100")

	// Legacy alias.
	cargo := e.movimiento(t, model.CarteraPrestamos, "int-cargo", "10")
	assert.Equal(t, model.MovCargoInteres, cargo.Tipo)

	ec := e.estadoCuenta(t, model.CarteraPrestamos)
	assertDec(t, "110", ec.SaldoTotal)
	assertDec(t, "10", ec.InteresTotal)

	_, err := e.intentar(model.CarteraPrestamos, model.MovAbonoInteres, "15")
	assert.ErrorIs(t, err, apierror.ErrExceedsPendingInterest)

	e.movimiento(t, model.CarteraPrestamos, model.MovAbonoInteres, "10")
	ec = e.estadoCuenta(t, model.CarteraPrestamos)
	assertDec(t, "100", ec.SaldoTotal)
	assertDec(t, "0", ec.InteresTotal)
}

func TestInteresSinPrestamoActivo(t *testing.T) {
	e := nuevoEntorno(t)
	_, err := e.intentar(model.CarteraPrestamos, model.MovCargoInteres, "5")
	assert.ErrorIs(t, err, apierror.ErrExceedsPendingDebt)

	_, err = e.intentar(model.CarteraPrestamos, model.MovAbonoInteres, "5")
	assert.ErrorIs(t, err, apierror.ErrExceedsPendingInterest)
}

func TestTipoFueraDeCartera(t *testing.T) {
	e := nuevoEntorno(t)
	_, err := e.intentar(model.CarteraPrestamos, model.MovCargoAnticipo, "5")
	assert.ErrorIs(t, err, apierror.ErrValidation)

	_, err = e.intentar(model.CarteraAnticipos, model.MovDeudaAnulado, "5")
	assert.ErrorIs(t, err, apierror.ErrValidation)
}

func TestInteresDevengadoDeAnticipo(t *testing.T) {
	e := nuevoEntorno(t)
	inicio := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	e.movimiento(t, model.CarteraAnticipos, model.MovCargoAnticipo, "1000", enFecha(inicio), conTasa("3"))

	// 30 days at 3% a month on 1000.
	corte := inicio.AddDate(0, 0, 30)
	_, err := e.intentar(model.CarteraAnticipos, model.MovInteresAnticipo, "30.01", enFecha(corte))
	assert.ErrorIs(t, err, apierror.ErrExceedsPendingInterest)

	pago := e.movimiento(t, model.CarteraAnticipos, model.MovInteresAnticipo, "30", enFecha(corte))
	require.Len(t, pago.Aplicaciones, 1)

	// Capital back to 400 on day 30; the next 30 days accrue on 400.
	e.movimiento(t, model.CarteraAnticipos, model.MovAbonoAnticipo, "600", enFecha(corte))
	_, err = e.intentar(model.CarteraAnticipos, model.MovInteresAnticipo, "12.01", enFecha(corte.AddDate(0, 0, 30)))
	assert.ErrorIs(t, err, apierror.ErrExceedsPendingInterest)
	e.movimiento(t, model.CarteraAnticipos, model.MovInteresAnticipo, "12", enFecha(corte.AddDate(0, 0, 30)))
}

func TestAnticipoPagadoConservaInteres(t *testing.T) {
	e := nuevoEntorno(t)
	inicio := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	e.movimiento(t, model.CarteraAnticipos, model.MovCargoAnticipo, "500", enFecha(inicio), conTasa("2"))
	abono := e.movimiento(t, model.CarteraAnticipos, model.MovAbonoAnticipo, "500", enFecha(inicio.AddDate(0, 0, 15)))
	require.Len(t, abono.Aplicaciones, 1)
	assert.Equal(t, model.DeudaCompletado, abono.Aplicaciones[0].EstadoDeuda)

	// 500 · 2% · 15/30 = 5, payable after the capital is gone.
	pago := e.movimiento(t, model.CarteraAnticipos, model.MovInteresAnticipo, "5", enFecha(inicio.AddDate(0, 1, 0)))
	require.Len(t, pago.Aplicaciones, 1)
	assert.Equal(t, model.DeudaCompletado, pago.Aplicaciones[0].EstadoDeuda)
}

func TestAnularMovimientoSuperado(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	e.movimiento(t, model.CarteraPrestamos, model.MovPrestamo, "100")
	p1 := e.movimiento(t, model.CarteraPrestamos, model.MovAbono, "40")
	p2 := e.movimiento(t, model.CarteraPrestamos, model.MovAbono, "60")

	err := e.deudas.AnularMovimiento(ctx, model.CarteraPrestamos, uuid.MustParse(p1.PagoID))
	assert.ErrorIs(t, err, apierror.ErrAlreadySettled)

	require.NoError(t, e.deudas.AnularMovimiento(ctx, model.CarteraPrestamos, uuid.MustParse(p2.PagoID)))
	ec := e.estadoCuenta(t, model.CarteraPrestamos)
	assertDec(t, "60", ec.SaldoTotal)
	assert.Equal(t, model.DeudaActivo, ec.Deudas[0].Estado)

	require.NoError(t, e.deudas.AnularMovimiento(ctx, model.CarteraPrestamos, uuid.MustParse(p1.PagoID)))
	assertDec(t, "100", e.estadoCuenta(t, model.CarteraPrestamos).SaldoTotal)

	err = e.deudas.AnularMovimiento(ctx, model.CarteraPrestamos, uuid.MustParse(p1.PagoID))
	assert.ErrorIs(t, err, apierror.ErrAlreadyVoided)

	err = e.deudas.AnularMovimiento(ctx, model.CarteraPrestamos, uuid.New())
	assert.ErrorIs(t, err, apierror.ErrNotFound)
}

func TestAnularDesembolsoAnulaDeuda(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	p := e.movimiento(t, model.CarteraPrestamos, model.MovPrestamo, "100")

	require.NoError(t, e.deudas.AnularMovimiento(ctx, model.CarteraPrestamos, uuid.MustParse(p.PagoID)))
	ec := e.estadoCuenta(t, model.CarteraPrestamos)
	assert.Empty(t, ec.Deudas)
	assertDec(t, "0", ec.SaldoTotal)

	err := e.deudas.AnularMovimiento(ctx, model.CarteraPrestamos, uuid.MustParse(p.PagoID))
	assert.ErrorIs(t, err, apierror.ErrAlreadyVoided)
	assert.Equal(t, 409, apierror.Status(err))
}

func TestAnularCreditoNoAsignado(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	abono := e.movimiento(t, model.CarteraAnticipos, model.MovAbonoAnticipo, "80")

	require.NoError(t, e.deudas.AnularMovimiento(ctx, model.CarteraAnticipos, uuid.MustParse(abono.PagoID)))
	assertDec(t, "0", e.estadoCuenta(t, model.CarteraAnticipos).CreditoNoAsignado)

	err := e.deudas.AnularMovimiento(ctx, model.CarteraAnticipos, uuid.MustParse(abono.PagoID))
	assert.ErrorIs(t, err, apierror.ErrAlreadyVoided)
}
