package repository_test

import (
	"context"
	"testing"

	"cafehenola/internal/model"
	"cafehenola/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSiguienteIndependientePorNombre(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:secuencias?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Secuencia{}))

	repo := repository.NewSecuenciaRepository()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		v, err := repo.SiguienteTx(ctx, db, repository.SecLotes)
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}
	v, err := repo.SiguienteTx(ctx, db, repository.SecDepositos)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestSecuenciasIncluyeCarteras(t *testing.T) {
	nombres := repository.Secuencias()
	for _, c := range model.Carteras() {
		assert.Contains(t, nombres, c.TablaDeudas)
		assert.Contains(t, nombres, c.TablaMovimientos)
	}
	assert.Contains(t, nombres, repository.SecLotes)
}
