package infra

import (
	"fmt"

	"sistemainventario/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx. When autoMigrate is
// set the schema is brought up to date before the connection is returned.
func NewDatabase(dsn string, autoMigrate bool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
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

	if autoMigrate {
		if err := Migrar(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Modelos lists every persisted model in dependency order.
func Modelos() []interface{} {
	return []interface{}{
		&model.Usuario{},
		&model.Categoria{},
		&model.NombreProducto{},
		&model.Producto{},
		&model.Cliente{},
		&model.EntradaCompra{},
		&model.DetalleEntradaCompra{},
		&model.AjusteInventario{},
		&model.Factura{},
		&model.DetalleFactura{},
		&model.HistorialPrecio{},
	}
}

// Migrar creates / updates all tables, foreign keys and CHECK constraints,
// then applies the Postgres-only patches GORM cannot express.
func Migrar(db *gorm.DB) error {
	if err := db.AutoMigrate(Modelos()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate cannot
// handle on its own (partial and expression indexes). Each statement is guarded
// so re-running on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// low-stock report: only active products at or below their minimum
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_productos_por_agotarse') THEN
		    CREATE INDEX idx_productos_por_agotarse
		        ON productos (stock_actual)
		        WHERE activo = true AND stock_actual <= stock_minimo;
		  END IF;
		END $$`,
		// daily sales report groups completed invoices by calendar day
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_facturas_completadas_fecha') THEN
		    CREATE INDEX idx_facturas_completadas_fecha
		        ON facturas (fecha_venta)
		        WHERE estado = 'COMPLETADA';
		  END IF;
		END $$`,
		// costing engine scans every purchase line of one product
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_detalles_entrada_producto_costo') THEN
		    CREATE INDEX idx_detalles_entrada_producto_costo
		        ON detalles_entrada_compra (producto_id) INCLUDE (cantidad, precio_unitario);
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
