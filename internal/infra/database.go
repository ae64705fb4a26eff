package infra

import (
	"fmt"

	"fabricaops/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies idempotent SQL patches that GORM
// cannot express (the batch code sequence, partial indexes).
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

// RunMigrations applies the schema. Shared with integration tests so that a
// containerized Postgres gets the identical layout.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.ProcesoProductivo{},
		&model.EtapaProceso{},
		&model.Producto{},
		&model.ProductoTalle{},
		&model.ColorProducto{},
		&model.RolloTela{},
		&model.LoteProduccion{},
		&model.LoteProducto{},
		&model.AuditoriaEtapa{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Sequence behind the human batch code (LOTE-YYYYMMDD-NNNN).
		`CREATE SEQUENCE IF NOT EXISTS lotes_codigo_seq START 1`,
		// Partial index for the roll-availability query (inclusive-OR rule).
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_rollos_con_remanente') THEN
		    CREATE INDEX idx_rollos_con_remanente
		        ON rollos_tela (tipo_tela)
		        WHERE metros_restantes > 0.5 OR peso_restante > 0.01;
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
