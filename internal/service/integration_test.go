//go:build integration

package service_test

// Run with: go test -tags integration ./internal/service/... -v
// Requires Docker. Exercises the row locks that SQLite ignores.

import (
	"context"
	"errors"
	"sync"
	"testing"

	"cafehenola/internal/apierror"
	"cafehenola/internal/dto"
	"cafehenola/internal/infra"
	"cafehenola/internal/model"
	"cafehenola/internal/repository"
	"cafehenola/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestRetirosConcurrentesNoSobregiran(t *testing.T) {
	ctx := context.Background()
	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("henola_test"),
		tcPostgres.WithUsername("henola"),
		tcPostgres.WithPassword("henola"),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := infra.NewDatabase(dsn)
	require.NoError(t, err)

	catalogoRepo := repository.NewCatalogoRepository(db)
	secuencia := repository.NewSecuenciaRepository()
	catalogo := service.NewCatalogoService(catalogoRepo)
	inventario := service.NewInventarioService(repository.NewInventarioRepository(db), secuencia)
	compras := service.NewCompraService(repository.NewCompraRepository(db), catalogoRepo, inventario, nil)
	ventas := service.NewVentaService(repository.NewVentaRepository(db), catalogoRepo, inventario, nil)
	deudas := service.NewDeudaService(repository.NewDeudaRepository(db), catalogoRepo, secuencia, nil)

	cli, err := catalogo.CrearCliente(ctx, dto.CrearClienteRequest{Nombre: "Beneficio San Juan"})
	require.NoError(t, err)
	prod, err := catalogo.CrearProducto(ctx, dto.CrearProductoRequest{Nombre: "Oro", FactorOro: dec("1")})
	require.NoError(t, err)
	_, err = compras.Registrar(ctx, dto.RegistrarCompraRequest{
		ClienteID: cli.ID, ProductoID: prod.ID, Cantidad: decPtr("10"),
	})
	require.NoError(t, err)

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ventas.Registrar(ctx, dto.RegistrarVentaRequest{
				ClienteID: cli.ID, ProductoID: prod.ID, Cantidad: dec("3"),
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, errors.Is(err, apierror.ErrInsufficientInventory), err.Error())
	}
	assert.Equal(t, 3, ok)

	saldo, err := inventario.Saldo(ctx, uuid.MustParse(cli.ID), uuid.MustParse(prod.ID))
	require.NoError(t, err)
	assertDec(t, "1", saldo.Cantidad)

	// Concurrent payments against one loan: the total never exceeds the debt.
	_, err = deudas.RegistrarMovimiento(ctx, model.CarteraPrestamos, dto.RegistrarMovimientoDeudaRequest{
		ClienteID: cli.ID, Tipo: model.MovPrestamo, Monto: dec("100"),
	})
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = deudas.RegistrarMovimiento(ctx, model.CarteraPrestamos, dto.RegistrarMovimientoDeudaRequest{
				ClienteID: cli.ID, Tipo: model.MovAbono, Monto: dec("30"),
			})
		}(i)
	}
	wg.Wait()
	ok = 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, errors.Is(err, apierror.ErrExceedsPendingDebt), err.Error())
	}
	assert.Equal(t, 3, ok)

	ec, err := deudas.EstadoCuenta(ctx, model.CarteraPrestamos, uuid.MustParse(cli.ID))
	require.NoError(t, err)
	assertDec(t, "10", ec.SaldoTotal)
}
