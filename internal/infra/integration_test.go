//go:build integration

package infra_test

// Run with: go test -tags integration ./internal/infra/... -v
// Requires Docker.

import (
	"context"
	"testing"
	"time"

	"cafehenola/internal/infra"
	"cafehenola/internal/model"
	"cafehenola/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

func postgresDB(t *testing.T) *gorm.DB {
	t.Helper()
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
	return db
}

func TestMigracionesEnPostgres(t *testing.T) {
	db := postgresDB(t)

	// Second run must be a no-op.
	require.NoError(t, infra.RunMigrations(db))

	for _, c := range model.Carteras() {
		assert.True(t, db.Migrator().HasTable(c.TablaDeudas), c.TablaDeudas)
		assert.True(t, db.Migrator().HasTable(c.TablaMovimientos), c.TablaMovimientos)
		assert.True(t, db.Migrator().HasIndex(c.TablaMovimientos, "idx_"+c.TablaMovimientos+"_pago"))
	}
	assert.True(t, db.Migrator().HasTable(&model.Lote{}))
}

func TestSecuenciaNoBloqueaEntreTransacciones(t *testing.T) {
	db := postgresDB(t)
	repo := repository.NewSecuenciaRepository()
	ctx := context.Background()

	tx1 := db.Begin()
	require.NoError(t, tx1.Error)
	defer tx1.Rollback()
	v1, err := repo.SiguienteTx(ctx, tx1, repository.SecLotes)
	require.NoError(t, err)

	// tx1 is still open; a second writer must not wait for it.
	tx2 := db.Begin()
	require.NoError(t, tx2.Error)
	defer tx2.Rollback()
	ctx2, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	v2, err := repo.SiguienteTx(ctx2, tx2, repository.SecLotes)
	require.NoError(t, err)
	assert.Greater(t, v2, v1)
}

func TestSecuenciaContinuaDesdeTablaContador(t *testing.T) {
	db := postgresDB(t)
	require.NoError(t, db.Create(&model.Secuencia{Nombre: repository.SecSalidas, Valor: 41}).Error)
	require.NoError(t, infra.RunMigrations(db))

	v, err := repository.NewSecuenciaRepository().SiguienteTx(context.Background(), db, repository.SecSalidas)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestRedisLockerExcluye(t *testing.T) {
	ctx := context.Background()
	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	locker := infra.NewRedisLocker(rdb, 2*time.Second)
	unlock, err := locker.Lock(ctx, "cliente:1")
	require.NoError(t, err)

	// Retries for about half a second, then gives up while the first holder keeps it.
	_, err = locker.Lock(ctx, "cliente:1")
	assert.Error(t, err)

	unlock()
	unlock2, err := locker.Lock(ctx, "cliente:1")
	require.NoError(t, err)
	unlock2()
}
