package model_test

import (
	"testing"

	"cafehenola/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestConvertirAOro(t *testing.T) {
	d := decimal.RequireFromString
	cases := []struct {
		name      string
		producto  model.Producto
		pesoBruto string
		sacos     int
		want      string
	}{
		{"sin factores", model.Producto{FactorOro: d("1")}, "100", 0, "100"},
		{"tara por saco", model.Producto{TaraPorSaco: d("0.5"), FactorOro: d("1")}, "100", 4, "98"},
		{"descuento y factor", model.Producto{TaraPorSaco: d("1"), FactorDescuento: d("0.1"), FactorOro: d("0.8")}, "110", 10, "72"},
		{"factor cero es uno", model.Producto{}, "12.5", 0, "12.5"},
		{"tara mayor al peso", model.Producto{TaraPorSaco: d("2"), FactorOro: d("1")}, "5", 3, "0"},
		{"redondeo", model.Producto{FactorOro: d("0.33333")}, "1", 0, "0.3333"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.producto.ConvertirAOro(d(tc.pesoBruto), tc.sacos)
			assert.True(t, d(tc.want).Equal(got), "want %s, got %s", tc.want, got)
		})
	}
}

func TestNormalizarTipo(t *testing.T) {
	tipo, ok := model.CarteraPrestamos.NormalizarTipo(" pago_interes ")
	assert.True(t, ok)
	assert.Equal(t, model.MovAbonoInteres, tipo)

	_, ok = model.CarteraAnticipos.NormalizarTipo(model.MovCargoInteres)
	assert.False(t, ok)

	_, ok = model.CarteraAnticipos.NormalizarTipo("")
	assert.False(t, ok)
}
