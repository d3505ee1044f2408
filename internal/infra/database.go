package infra

import (
	"fmt"

	"cafehenola/internal/model"
	"cafehenola/internal/repository"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and brings the ledger
// schema up to date (AutoMigrate plus the idempotent patches GORM cannot express).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates every ledger table. It is dialect neutral so
// the service tests can run it against SQLite.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Secuencia{},
		&model.Cliente{},
		&model.Comprador{},
		&model.Producto{},
		&model.Lote{},
		&model.MovimientoInventario{},
		&model.Compra{},
		&model.Venta{},
		&model.Contrato{},
		&model.DetalleEntrega{},
		&model.Deposito{},
		&model.DetalleLiquidacion{},
		&model.Salida{},
		&model.DetalleLiquidacionSalida{},
		&model.CreditoNoAsignado{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	// Loans and advances share a struct but never a table.
	for _, c := range model.Carteras() {
		if err := db.Table(c.TablaDeudas).AutoMigrate(&model.Deuda{}); err != nil {
			return fmt.Errorf("AutoMigrate %s: %w", c.TablaDeudas, err)
		}
		if err := db.Table(c.TablaMovimientos).AutoMigrate(&model.MovimientoDeuda{}); err != nil {
			return fmt.Errorf("AutoMigrate %s: %w", c.TablaMovimientos, err)
		}
	}

	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot derive from the
// models. CREATE INDEX IF NOT EXISTS is understood by both Postgres and SQLite.
func applySchemaPatches(db *gorm.DB) error {
	var patches []string
	for _, c := range model.Carteras() {
		patches = append(patches,
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_cliente_estado ON %[1]s (cliente_id, estado, secuencia)`, c.TablaDeudas),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_deuda ON %[1]s (deuda_id, secuencia)`, c.TablaMovimientos),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_pago ON %[1]s (pago_id)`, c.TablaMovimientos),
		)
	}
	patches = append(patches,
		`CREATE INDEX IF NOT EXISTS idx_detalles_entrega_contrato_tipo ON detalles_entrega (contrato_id, tipo_movimiento)`,
		`CREATE INDEX IF NOT EXISTS idx_detalles_liquidacion_deposito_tipo ON detalles_liquidacion (deposito_id, tipo_movimiento)`,
	)

	// Counters live in real sequences on Postgres. A sequence created over an
	// existing ledger starts after the value the counter table reached.
	if db.Dialector.Name() == "postgres" {
		for _, nombre := range repository.Secuencias() {
			seq := repository.SecuenciaPostgres(nombre)
			patches = append(patches,
				fmt.Sprintf(`CREATE SEQUENCE IF NOT EXISTS %s`, seq),
				fmt.Sprintf(`SELECT setval('%[1]s', s.valor) FROM secuencias s
					WHERE s.nombre = '%[2]s'
					AND s.valor > (SELECT CASE WHEN is_called THEN last_value ELSE 0 END FROM %[1]s)`, seq, nombre),
			)
		}
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
