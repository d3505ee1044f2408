package service_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"cafehenola/internal/dto"
	"cafehenola/internal/infra"
	"cafehenola/internal/model"
	"cafehenola/internal/repository"
	"cafehenola/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ── Test environment over in-memory SQLite ───────────────────────────────────

type entorno struct {
	db         *gorm.DB
	catalogo   service.CatalogoService
	inventario service.InventarioService
	ventas     service.VentaService
	compras    service.CompraService
	contratos  service.ContratoService
	depositos  service.DepositoService
	salidas    service.SalidaService
	deudas     service.DeudaService
	locks      *locksRegistrados

	cliente   uuid.UUID
	producto  uuid.UUID
	comprador uuid.UUID
}

func nuevoEntorno(t *testing.T) *entorno {
	t.Helper()
	nombre := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", nombre)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection: every write inside a transaction goes through its tx.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, infra.RunMigrations(db))

	catalogoRepo := repository.NewCatalogoRepository(db)
	secuencia := repository.NewSecuenciaRepository()
	inventario := service.NewInventarioService(repository.NewInventarioRepository(db), secuencia)
	locks := &locksRegistrados{}

	e := &entorno{
		db:         db,
		locks:      locks,
		catalogo:   service.NewCatalogoService(catalogoRepo),
		inventario: inventario,
		ventas:     service.NewVentaService(repository.NewVentaRepository(db), catalogoRepo, inventario, locks),
		compras:    service.NewCompraService(repository.NewCompraRepository(db), catalogoRepo, inventario, locks),
		contratos:  service.NewContratoService(repository.NewContratoRepository(db), catalogoRepo, secuencia, inventario, locks),
		depositos:  service.NewDepositoService(repository.NewDepositoRepository(db), catalogoRepo, secuencia, inventario, locks),
		salidas:    service.NewSalidaService(repository.NewSalidaRepository(db), catalogoRepo, secuencia),
		deudas:     service.NewDeudaService(repository.NewDeudaRepository(db), catalogoRepo, secuencia, locks),
	}

	ctx := context.Background()
	cli, err := e.catalogo.CrearCliente(ctx, dto.CrearClienteRequest{Nombre: "Finca El Porvenir"})
	require.NoError(t, err)
	e.cliente = uuid.MustParse(cli.ID)

	prod, err := e.catalogo.CrearProducto(ctx, dto.CrearProductoRequest{
		Nombre:          "Pergamino",
		TaraPorSaco:     decimal.RequireFromString("1"),
		FactorDescuento: decimal.Zero,
		FactorOro:       decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	e.producto = uuid.MustParse(prod.ID)

	comp, err := e.catalogo.CrearComprador(ctx, dto.CrearCompradorRequest{Nombre: "Exportadora Norte"})
	require.NoError(t, err)
	e.comprador = uuid.MustParse(comp.ID)
	return e
}

// lote opens a fresh lot for the environment's client and product.
func (e *entorno) lote(t *testing.T, cantidad string, sacos int) uuid.UUID {
	t.Helper()
	var mov *model.MovimientoInventario
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var err error
		mov, err = e.inventario.AcreditarTx(context.Background(), tx, service.IngresoInventario{
			ClienteID:  e.cliente,
			ProductoID: e.producto,
			Cantidad:   dec(cantidad),
			Sacos:      sacos,
			Referencia: model.Referencia{Tipo: model.RefCompra, ID: uuid.New()},
			NuevoLote:  true,
		})
		return err
	})
	require.NoError(t, err)
	return mov.LoteID
}

func (e *entorno) saldoInventario(t *testing.T) decimal.Decimal {
	t.Helper()
	s, err := e.inventario.Saldo(context.Background(), e.cliente, e.producto)
	require.NoError(t, err)
	return s.Cantidad
}

func (e *entorno) cantidadLote(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()
	var l model.Lote
	require.NoError(t, e.db.Where("id = ?", id).First(&l).Error)
	return l.Cantidad
}

// locksRegistrados is a Locker that always grants and remembers every key.
type locksRegistrados struct {
	mu     sync.Mutex
	claves []string
}

func (l *locksRegistrados) Lock(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.claves = append(l.claves, key)
	return func() {}, nil
}

// tomados returns the keys locked since the last call.
func (l *locksRegistrados) tomados() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.claves
	l.claves = nil
	return out
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// assertDec compares decimals by value; "5" and "5.0000" are equal.
func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}
