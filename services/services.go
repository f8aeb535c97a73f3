package services

import (
	"vetclinic-backend/clock"
	"vetclinic-backend/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services bundles the billing and audit core around one database handle.
type Services struct {
	Sequence   *Sequence
	Aggregator *Aggregator
	Inventory  *Inventory
	Invoices   *InvoiceService
	Items      *ItemService
	Audit      *AuditService
	Restore    *RestoreService
}

func New(db *gorm.DB, clk clock.Clock, log *zap.Logger, m *metrics.Metrics) *Services {
	seq := NewSequence(db, log)
	agg := NewAggregator(db, clk, log)
	inv := NewInventory(db, clk, log, m)
	audit := NewAuditService(db, clk, log, m, agg)
	return &Services{
		Sequence:   seq,
		Aggregator: agg,
		Inventory:  inv,
		Invoices:   NewInvoiceService(db, clk, log, m, seq, agg, inv),
		Items:      NewItemService(db, clk, log, m, agg, inv),
		Audit:      audit,
		Restore:    NewRestoreService(db, clk, log, m, audit, agg),
	}
}
