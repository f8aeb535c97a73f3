package models

import (
	"github.com/shopspring/decimal"
)

// Product is a stocked item sold on invoices. StockQuantity is only ever
// decremented by the inventory adjuster and may go negative.
type Product struct {
	Base
	Name          string          `json:"name" gorm:"size:255;not null"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	StockQuantity int             `json:"stock_quantity" gorm:"not null"`
	SKU           *string         `json:"sku" gorm:"size:100;index"`
}
