package database

import (
	"fmt"

	"vetclinic-backend/models"

	"gorm.io/gorm"
)

// Migrate applies (idempotent) schema migrations:
// - AutoMigrate (tables/columns/index tags)
// - Composite indexes for the hot queries
// - CHECK constraints on money and quantity columns (postgres only)
func Migrate(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&models.User{},
			&models.Client{},
			&models.Pet{},
			&models.Service{},
			&models.Product{},
			&models.Invoice{},
			&models.InvoiceItem{},
			&models.StockMovement{},
			&models.AuditLog{},
			&models.IdempotencyKey{},
		); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}

		indexes := []string{
			`CREATE INDEX IF NOT EXISTS idx_invoices_created_number ON invoices (created_at, invoice_number)`,
			`CREATE INDEX IF NOT EXISTS idx_invoice_items_invoice_status ON invoice_items (invoice_id, status)`,
			`CREATE INDEX IF NOT EXISTS idx_audit_logs_action_created ON audit_logs (action, created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_stock_movements_product_created ON stock_movements (product_id, created_at)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		if tx.Dialector.Name() != "postgres" {
			return nil
		}

		checks := []struct{ table, name, expr string }{
			{"products", "chk_products_price_nonneg", "price >= 0"},
			{"services", "chk_services_price_nonneg", "price >= 0"},
			{"invoices", "chk_invoices_totals_nonneg", "subtotal >= 0 AND total >= 0"},
			{"invoices", "chk_invoices_discount_range", "discount_percent BETWEEN 0 AND 100"},
			{"invoice_items", "chk_invoice_items_quantity_pos", "quantity >= 1"},
			{"invoice_items", "chk_invoice_items_amounts_nonneg", "unit_price >= 0 AND net_price >= 0"},
			{"invoice_items", "chk_invoice_items_discount_range", "discount_percent BETWEEN 0 AND 100"},
		}
		for _, c := range checks {
			stmt := fmt.Sprintf(`DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint
		WHERE conrelid = '%[1]s'::regclass
		  AND conname  = '%[2]s'
	) THEN
		ALTER TABLE %[1]s ADD CONSTRAINT %[2]s CHECK (%[3]s);
	END IF;
END $$;`, c.table, c.name, c.expr)
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed on %s: %w", c.name, err)
			}
		}
		return nil
	})
}
