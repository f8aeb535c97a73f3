package models

import "github.com/shopspring/decimal"

// Service is a billable clinic service (consultation, vaccination, surgery...).
type Service struct {
	Base
	Name            string          `json:"name" gorm:"size:255;not null"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	DurationMinutes int             `json:"duration_minutes" gorm:"not null"`
}
