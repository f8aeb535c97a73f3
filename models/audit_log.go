package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditAction string

const (
	ActionHardDelete          AuditAction = "hard_delete"
	ActionDataExport          AuditAction = "data_export"
	ActionPermissionChange    AuditAction = "permission_change"
	ActionBulkUpdate          AuditAction = "bulk_update"
	ActionSystemConfigChange  AuditAction = "system_config_change"
	ActionDocumentRestoration AuditAction = "document_restoration"
)

var ErrAuditLogImmutable = errors.New("audit log entries are immutable")

// AuditLog is an append-only record of a privileged action. DocumentSnapshot
// holds the full column map of a hard-deleted document.
type AuditLog struct {
	ID               string            `json:"id" gorm:"primaryKey;size:36"`
	Action           AuditAction       `json:"action" gorm:"size:32;not null;index"`
	CollectionName   string            `json:"collection_name" gorm:"size:64;not null;index"`
	DocumentID       string            `json:"document_id" gorm:"size:36;not null;index"`
	DocumentSnapshot datatypes.JSONMap `json:"document_snapshot"`
	UserID           string            `json:"user_id" gorm:"size:36;not null;index"`
	UserEmail        string            `json:"user_email" gorm:"size:255"`
	UserRole         Role              `json:"user_role" gorm:"size:16"`
	IPAddress        string            `json:"ip_address" gorm:"size:64"`
	UserAgent        string            `json:"user_agent" gorm:"size:512"`
	Reason           string            `json:"reason"`
	Metadata         datatypes.JSONMap `json:"metadata"`
	CreatedAt        time.Time         `json:"created_at" gorm:"index"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func (a *AuditLog) BeforeUpdate(tx *gorm.DB) error {
	return ErrAuditLogImmutable
}

func (a *AuditLog) BeforeDelete(tx *gorm.DB) error {
	return ErrAuditLogImmutable
}
