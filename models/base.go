package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Money goes over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// RecordStatus is the soft-delete state of a document.
type RecordStatus string

const (
	StatusActive   RecordStatus = "active"
	StatusInactive RecordStatus = "inactive"
)

// Base carries the identifier, soft-delete status and lifecycle timestamps
// shared by every document that can be hard-deleted and restored.
type Base struct {
	ID         string       `json:"id" gorm:"primaryKey;size:36"`
	Status     RecordStatus `json:"status" gorm:"size:16;not null;index"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	RestoredAt *time.Time   `json:"restored_at,omitempty"`
	RestoredBy *string      `json:"restored_by,omitempty" gorm:"size:36"`
}

// BeforeCreate assigns a UUID v4 unless the document already has one, which is
// the case when a snapshot is restored under its original id.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = StatusActive
	}
	return nil
}

func (b *Base) MarkRestored(at time.Time, by string) {
	b.UpdatedAt = at
	b.RestoredAt = &at
	b.RestoredBy = &by
}

func (b *Base) GetID() string { return b.ID }

func (b *Base) GetStatus() RecordStatus { return b.Status }

// ActiveOnly restricts a query to documents that are not soft-deleted.
func ActiveOnly(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", StatusActive)
}
