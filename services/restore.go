package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vetclinic-backend/clock"
	"vetclinic-backend/metrics"
	"vetclinic-backend/models"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RestoreService re-inserts hard-deleted documents from their audit snapshot.
type RestoreService struct {
	db      *gorm.DB
	clock   clock.Clock
	log     *zap.Logger
	metrics *metrics.Metrics
	audit   *AuditService
	agg     *Aggregator
}

func NewRestoreService(db *gorm.DB, clk clock.Clock, log *zap.Logger, m *metrics.Metrics, audit *AuditService, agg *Aggregator) *RestoreService {
	return &RestoreService{db: db, clock: clk, log: log.Named("restore"), metrics: m, audit: audit, agg: agg}
}

// CanRestore reports whether the entry's snapshot can be re-inserted, and if
// not, the first reason why. The error is reserved for store failures.
func (s *RestoreService) CanRestore(ctx context.Context, entryID string) (bool, string, error) {
	entry, err := s.audit.GetEntry(ctx, entryID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, "Audit log entry not found", nil
		}
		return false, "", err
	}
	return s.check(ctx, entry)
}

func (s *RestoreService) check(ctx context.Context, entry *models.AuditLog) (bool, string, error) {
	if entry.Action != models.ActionHardDelete {
		return false, "Audit log entry not found", nil
	}
	coll, ok := models.LookupCollection(entry.CollectionName)
	if !ok {
		return false, fmt.Sprintf("Collection %s cannot be restored", entry.CollectionName), nil
	}
	db := s.db.WithContext(ctx)

	var n int64
	if err := db.Model(coll.New()).Where("id = ?", entry.DocumentID).Count(&n).Error; err != nil {
		return false, "", err
	}
	if n > 0 {
		return false, "A document with this ID already exists", nil
	}

	if coll.UniqueField != "" {
		if value, ok := entry.DocumentSnapshot[coll.UniqueField]; ok && value != nil && value != "" {
			if err := db.Model(coll.New()).
				Where(coll.UniqueField+" = ?", value).
				Where("id <> ?", entry.DocumentID).
				Count(&n).Error; err != nil {
				return false, "", err
			}
			if n > 0 {
				return false, fmt.Sprintf("%s %v is already in use", coll.UniqueLabel, value), nil
			}
		}
	}
	return true, "", nil
}

type RestoreResult struct {
	AuditLogID       string `json:"audit_log_id"`
	RestorationLogID string `json:"restoration_log_id"`
	Collection       string `json:"collection"`
	DocumentID       string `json:"document_id"`
}

// Restore re-inserts the snapshot under its original id and appends a
// document_restoration entry that points back at the hard_delete entry. When
// the entry cannot be restored nothing is written and the reason is returned
// as a conflict.
func (s *RestoreService) Restore(ctx context.Context, entryID string, actor models.Actor, meta RequestMeta) (*RestoreResult, error) {
	if !actor.IsAdmin() {
		return nil, Forbidden("Admin privileges required")
	}

	entry, err := s.audit.GetEntry(ctx, entryID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, Conflict("Audit log entry not found")
		}
		return nil, err
	}
	ok, reason, err := s.check(ctx, entry)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.metrics.Restore(entry.CollectionName, "rejected")
		s.log.Info("restore rejected",
			zap.String("audit_log_id", entryID),
			zap.String("collection", entry.CollectionName),
			zap.String("reason", reason),
		)
		return nil, Conflict("%s", reason)
	}

	coll, _ := models.LookupCollection(entry.CollectionName)
	doc := coll.New()
	if err := decodeSnapshot(ctx, s.db, entry.DocumentSnapshot, doc); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	doc.MarkRestored(now, actor.ID)

	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		if isDuplicateKey(err) {
			// Another write got in between the check and the insert; report
			// whichever constraint it took.
			s.metrics.Restore(entry.CollectionName, "rejected")
			if ok, reason, cerr := s.check(ctx, entry); cerr == nil && !ok {
				return nil, Conflict("%s", reason)
			}
			return nil, Conflict("A document with this ID already exists")
		}
		return nil, err
	}

	restoration := models.AuditLog{
		Action:         models.ActionDocumentRestoration,
		CollectionName: entry.CollectionName,
		DocumentID:     entry.DocumentID,
		UserID:         actor.ID,
		UserEmail:      actor.Email,
		UserRole:       actor.Role,
		IPAddress:      meta.IP,
		UserAgent:      meta.UserAgent,
		Metadata: datatypes.JSONMap{
			"original_deletion_date": entry.CreatedAt.UTC().Format(time.RFC3339Nano),
			"original_deleted_by":    entry.UserEmail,
			"audit_log_id":           entry.ID,
		},
		CreatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&restoration).Error; err != nil {
		s.log.Error("restoration audit entry write failed",
			zap.String("audit_log_id", entryID),
			zap.String("collection", entry.CollectionName),
			zap.String("document_id", entry.DocumentID),
			zap.Error(err),
		)
		s.metrics.AuditWriteFailed()
		return nil, &auditWriteError{cause: err}
	}

	if item, ok := doc.(*models.InvoiceItem); ok {
		if _, err := s.agg.Recompute(ctx, item.InvoiceID); err != nil {
			return nil, err
		}
	}

	s.metrics.Restore(entry.CollectionName, "restored")
	s.log.Info("document restored",
		zap.String("audit_log_id", entryID),
		zap.String("collection", entry.CollectionName),
		zap.String("document_id", entry.DocumentID),
		zap.String("restored_by", actor.Email),
	)
	return &RestoreResult{
		AuditLogID:       entry.ID,
		RestorationLogID: restoration.ID,
		Collection:       entry.CollectionName,
		DocumentID:       entry.DocumentID,
	}, nil
}
