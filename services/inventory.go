package services

import (
	"context"
	"errors"

	"vetclinic-backend/clock"
	"vetclinic-backend/metrics"
	"vetclinic-backend/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Inventory decrements product stock for sold invoice items. Stock only ever
// moves down; removing an item or un-paying an invoice does not restore it.
type Inventory struct {
	db      *gorm.DB
	clock   clock.Clock
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewInventory(db *gorm.DB, clk clock.Clock, log *zap.Logger, m *metrics.Metrics) *Inventory {
	return &Inventory{db: db, clock: clk, log: log.Named("inventory"), metrics: m}
}

// CheckStock rejects a sale of qty units when the product holds fewer.
func (inv *Inventory) CheckStock(ctx context.Context, productID string, qty int) error {
	var product models.Product
	if err := inv.db.WithContext(ctx).Select("id", "stock_quantity").Where("id = ?", productID).Take(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("Product not found")
		}
		return err
	}
	if product.StockQuantity < qty {
		return Invalid("Insufficient stock. Available: %d, Requested: %d", product.StockQuantity, qty)
	}
	return nil
}

// ApplyItem atomically decrements the stock of the item's product and records
// the movement. Service items are ignored.
func (inv *Inventory) ApplyItem(ctx context.Context, item *models.InvoiceItem, reason models.StockMovementReason) error {
	if item.ItemType != models.ItemProduct || item.ProductID == nil {
		return nil
	}
	db := inv.db.WithContext(ctx)
	now := inv.clock.Now()

	res := db.Model(&models.Product{}).
		Where("id = ?", *item.ProductID).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity - ?", item.Quantity),
			"updated_at":     now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		inv.log.Warn("stock decrement skipped, product not found",
			zap.String("product_id", *item.ProductID),
			zap.String("invoice_item_id", item.ID),
		)
		return nil
	}

	movement := models.StockMovement{
		ProductID:     *item.ProductID,
		InvoiceID:     item.InvoiceID,
		InvoiceItemID: item.ID,
		Quantity:      -item.Quantity,
		Reason:        reason,
		CreatedAt:     now,
	}
	if err := db.Create(&movement).Error; err != nil {
		return err
	}
	inv.metrics.StockDecremented(string(reason), item.Quantity)

	var after models.Product
	if err := db.Select("id", "stock_quantity").Where("id = ?", *item.ProductID).Take(&after).Error; err == nil && after.StockQuantity < 0 {
		inv.log.Warn("product stock is negative",
			zap.String("product_id", *item.ProductID),
			zap.Int("stock_quantity", after.StockQuantity),
			zap.String("invoice_id", item.InvoiceID),
		)
	}
	return nil
}

// ApplyPayment decrements stock for every active product item of the invoice.
// No sufficiency check is made here.
func (inv *Inventory) ApplyPayment(ctx context.Context, invoiceID string) error {
	var items []models.InvoiceItem
	if err := inv.db.WithContext(ctx).
		Scopes(models.ActiveOnly).
		Where("invoice_id = ? AND item_type = ?", invoiceID, models.ItemProduct).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return err
	}

	var errs []error
	for i := range items {
		if err := inv.ApplyItem(ctx, &items[i], models.StockInvoicePaid); err != nil {
			inv.log.Error("stock decrement failed",
				zap.String("invoice_id", invoiceID),
				zap.String("invoice_item_id", items[i].ID),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
