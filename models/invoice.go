package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentOverdue   PaymentStatus = "overdue"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Invoice is the head of the invoice aggregate. Subtotal and Total are owned
// by the aggregator and recomputed from the active items.
type Invoice struct {
	Base
	InvoiceNumber   string          `json:"invoice_number" gorm:"size:50;uniqueIndex;not null"`
	ClientID        string          `json:"client_id" gorm:"size:36;not null;index"`
	PetID           *string         `json:"pet_id" gorm:"size:36;index"`
	InvoiceDate     time.Time       `json:"invoice_date"`
	DueDate         *time.Time      `json:"due_date"`
	Subtotal        decimal.Decimal `json:"subtotal" gorm:"type:numeric(12,2);not null"`
	DiscountPercent decimal.Decimal `json:"discount_percent" gorm:"type:numeric(5,2);not null"`
	Total           decimal.Decimal `json:"total" gorm:"type:numeric(12,2);not null"`
	PaymentStatus   PaymentStatus   `json:"payment_status" gorm:"size:16;not null;index"`
	Notes           string          `json:"notes"`

	Items []InvoiceItem `json:"items,omitempty" gorm:"foreignKey:InvoiceID"`
}

type ItemType string

const (
	ItemService ItemType = "service"
	ItemProduct ItemType = "product"
)

// InvoiceItem is one line of an invoice. NetPrice is always the pricing
// calculator's output.
type InvoiceItem struct {
	Base
	InvoiceID       string          `json:"invoice_id" gorm:"size:36;not null;index"`
	ItemType        ItemType        `json:"item_type" gorm:"size:16;not null"`
	ServiceID       *string         `json:"service_id" gorm:"size:36;index"`
	ProductID       *string         `json:"product_id" gorm:"size:36;index"`
	ItemName        string          `json:"item_name" gorm:"size:255;not null"`
	ItemDescription string          `json:"item_description"`
	UnitPrice       decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"`
	Quantity        int             `json:"quantity" gorm:"not null"`
	DiscountPercent decimal.Decimal `json:"discount_percent" gorm:"type:numeric(5,2);not null"`
	NetPrice        decimal.Decimal `json:"net_price" gorm:"type:numeric(12,2);not null"`
}
