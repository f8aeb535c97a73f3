package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockMovementReason string

const (
	StockItemAddedToPaidInvoice StockMovementReason = "item_added_to_paid_invoice"
	StockInvoicePaid            StockMovementReason = "invoice_paid"
)

// StockMovement is an append-only trace of every stock change made by the
// inventory adjuster. Quantity is negative for decrements.
type StockMovement struct {
	ID            string              `json:"id" gorm:"primaryKey;size:36"`
	ProductID     string              `json:"product_id" gorm:"size:36;not null;index"`
	InvoiceID     string              `json:"invoice_id" gorm:"size:36;not null;index"`
	InvoiceItemID string              `json:"invoice_item_id" gorm:"size:36;not null"`
	Quantity      int                 `json:"quantity" gorm:"not null"`
	Reason        StockMovementReason `json:"reason" gorm:"size:32;not null"`
	CreatedAt     time.Time           `json:"created_at"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
