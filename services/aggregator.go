package services

import (
	"context"
	"errors"

	"vetclinic-backend/clock"
	"vetclinic-backend/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Aggregator is the only writer of invoice subtotal and total.
type Aggregator struct {
	db    *gorm.DB
	clock clock.Clock
	log   *zap.Logger
}

func NewAggregator(db *gorm.DB, clk clock.Clock, log *zap.Logger) *Aggregator {
	return &Aggregator{db: db, clock: clk, log: log.Named("aggregator")}
}

// Recompute sums the net price of the invoice's active items and persists
// subtotal and total. A missing invoice is logged and yields (nil, nil).
func (a *Aggregator) Recompute(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	db := a.db.WithContext(ctx)

	var invoice models.Invoice
	if err := db.Where("id = ?", invoiceID).Take(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			a.log.Warn("recompute skipped, invoice not found", zap.String("invoice_id", invoiceID))
			return nil, nil
		}
		return nil, err
	}

	var prices []decimal.Decimal
	if err := db.Model(&models.InvoiceItem{}).
		Scopes(models.ActiveOnly).
		Where("invoice_id = ?", invoiceID).
		Pluck("net_price", &prices).Error; err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, p := range prices {
		subtotal = subtotal.Add(p)
	}
	subtotal = subtotal.Round(2)
	total := InvoiceTotal(subtotal, invoice.DiscountPercent)
	now := a.clock.Now()

	if err := db.Model(&models.Invoice{}).
		Where("id = ?", invoiceID).
		Updates(map[string]any{
			"subtotal":   subtotal,
			"total":      total,
			"updated_at": now,
		}).Error; err != nil {
		return nil, err
	}

	invoice.Subtotal = subtotal
	invoice.Total = total
	invoice.UpdatedAt = now
	a.log.Debug("invoice totals recomputed",
		zap.String("invoice_id", invoiceID),
		zap.String("subtotal", subtotal.StringFixed(2)),
		zap.String("total", total.StringFixed(2)),
	)
	return &invoice, nil
}
