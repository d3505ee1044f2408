package repository

import (
	"context"

	"cafehenola/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sequence names, one per FIFO population.
const (
	SecLotes     = "lotes"
	SecContratos = "contratos"
	SecDepositos = "depositos"
	SecSalidas   = "salidas"
	SecCreditos  = "creditos"
)

// Secuencias lists every counter name in use, debt pools included.
func Secuencias() []string {
	nombres := []string{SecLotes, SecContratos, SecDepositos, SecSalidas, SecCreditos}
	for _, c := range model.Carteras() {
		nombres = append(nombres, c.TablaDeudas, c.TablaMovimientos)
	}
	return nombres
}

// SecuenciaPostgres is the name of the database sequence backing a counter.
func SecuenciaPostgres(nombre string) string { return "seq_" + nombre }

type SecuenciaRepository interface {
	// SiguienteTx returns the next value of the counter. On Postgres it is a
	// nextval, which holds no row lock, so writers of unrelated clients never
	// queue behind each other. Values are unique and increasing per name but
	// may have gaps.
	SiguienteTx(ctx context.Context, tx *gorm.DB, nombre string) (int64, error)
}

type secuenciaRepo struct{}

func NewSecuenciaRepository() SecuenciaRepository { return &secuenciaRepo{} }

func (r *secuenciaRepo) SiguienteTx(ctx context.Context, tx *gorm.DB, nombre string) (int64, error) {
	db := tx.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		var v int64
		err := db.Raw("SELECT nextval(CAST(? AS regclass))", SecuenciaPostgres(nombre)).Row().Scan(&v)
		return v, err
	}

	// Counter table for SQLite, which serializes writers anyway.
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Secuencia{Nombre: nombre, Valor: 0}).Error; err != nil {
		return 0, err
	}
	if err := db.Model(&model.Secuencia{}).Where("nombre = ?", nombre).
		Update("valor", gorm.Expr("valor + 1")).Error; err != nil {
		return 0, err
	}
	var s model.Secuencia
	if err := db.Where("nombre = ?", nombre).First(&s).Error; err != nil {
		return 0, err
	}
	return s.Valor, nil
}
