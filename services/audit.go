package services

import (
	"context"
	"errors"
	"time"

	"vetclinic-backend/clock"
	"vetclinic-backend/metrics"
	"vetclinic-backend/models"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 1000
)

// AuditService owns the audit trail and the audited hard-delete path.
type AuditService struct {
	db      *gorm.DB
	clock   clock.Clock
	log     *zap.Logger
	metrics *metrics.Metrics
	agg     *Aggregator
}

func NewAuditService(db *gorm.DB, clk clock.Clock, log *zap.Logger, m *metrics.Metrics, agg *Aggregator) *AuditService {
	return &AuditService{db: db, clock: clk, log: log.Named("audit"), metrics: m, agg: agg}
}

// HardDeletion is the input of LogHardDeletion. Snapshot must be captured
// before the document is removed.
type HardDeletion struct {
	Collection string
	DocumentID string
	Snapshot   map[string]any
	Actor      models.Actor
	Meta       RequestMeta
	Reason     string
	Metadata   map[string]any
}

// LogHardDeletion durably writes one hard_delete entry and returns its id.
// A failed write is reported as ErrAuditWrite; callers must not delete.
func (s *AuditService) LogHardDeletion(ctx context.Context, rec HardDeletion) (string, error) {
	entry := models.AuditLog{
		Action:           models.ActionHardDelete,
		CollectionName:   rec.Collection,
		DocumentID:       rec.DocumentID,
		DocumentSnapshot: datatypes.JSONMap(rec.Snapshot),
		UserID:           rec.Actor.ID,
		UserEmail:        rec.Actor.Email,
		UserRole:         rec.Actor.Role,
		IPAddress:        rec.Meta.IP,
		UserAgent:        rec.Meta.UserAgent,
		Reason:           rec.Reason,
		Metadata:         datatypes.JSONMap(rec.Metadata),
		CreatedAt:        s.clock.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.log.Error("audit log write failed",
			zap.String("collection", rec.Collection),
			zap.String("document_id", rec.DocumentID),
			zap.String("user_id", rec.Actor.ID),
			zap.String("user_email", rec.Actor.Email),
			zap.String("reason", rec.Reason),
			zap.Error(err),
		)
		s.metrics.AuditWriteFailed()
		return "", &auditWriteError{cause: err}
	}
	s.log.Info("hard deletion logged",
		zap.String("audit_log_id", entry.ID),
		zap.String("collection", rec.Collection),
		zap.String("document_id", rec.DocumentID),
		zap.String("user_email", rec.Actor.Email),
	)
	return entry.ID, nil
}

type DeletionFilter struct {
	Collection string
	UserID     string
	Start      *time.Time
	End        *time.Time
	Limit      int
}

// DeletionHistory lists hard_delete entries, newest first.
func (s *AuditService) DeletionHistory(ctx context.Context, f DeletionFilter) ([]models.AuditLog, error) {
	if f.Limit == 0 {
		f.Limit = DefaultHistoryLimit
	}
	if f.Limit < 1 || f.Limit > MaxHistoryLimit {
		return nil, Invalid("limit must be between 1 and %d", MaxHistoryLimit)
	}

	q := s.db.WithContext(ctx).Where("action = ?", models.ActionHardDelete)
	if f.Collection != "" {
		q = q.Where("collection_name = ?", f.Collection)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Start != nil {
		q = q.Where("created_at >= ?", f.Start.UTC())
	}
	if f.End != nil {
		q = q.Where("created_at <= ?", f.End.UTC())
	}

	entries := []models.AuditLog{}
	if err := q.Order("created_at DESC").Limit(f.Limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *AuditService) GetEntry(ctx context.Context, id string) (*models.AuditLog, error) {
	var entry models.AuditLog
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("Audit log entry not found")
		}
		return nil, err
	}
	return &entry, nil
}

type HardDeleteResult struct {
	Collection string `json:"collection"`
	DocumentID string `json:"document_id"`
	AuditLogID string `json:"audit_log_id"`
	DeletedBy  string `json:"deleted_by"`
	Reason     string `json:"reason,omitempty"`
}

// HardDelete permanently removes a document after logging its snapshot. The
// log write and the delete are separate statements; the delete only runs once
// the log entry is committed.
func (s *AuditService) HardDelete(ctx context.Context, actor models.Actor, meta RequestMeta, collection, documentID, reason string) (*HardDeleteResult, error) {
	if !actor.IsAdmin() {
		return nil, Forbidden("Admin privileges required")
	}
	coll, ok := models.LookupCollection(collection)
	if !ok {
		return nil, Invalid("Invalid collection name")
	}
	db := s.db.WithContext(ctx)

	doc := coll.New()
	if err := db.Where("id = ?", documentID).Take(doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("Document not found")
		}
		return nil, err
	}

	snapshot, err := Snapshot(ctx, s.db, doc)
	if err != nil {
		return nil, err
	}

	entryID, err := s.LogHardDeletion(ctx, HardDeletion{
		Collection: collection,
		DocumentID: documentID,
		Snapshot:   snapshot,
		Actor:      actor,
		Meta:       meta,
		Reason:     reason,
		Metadata: map[string]any{
			"original_status":   string(doc.GetStatus()),
			"has_relationships": coll.HasRelationships,
		},
	})
	if err != nil {
		return nil, err
	}

	res := db.Where("id = ?", documentID).Delete(coll.New())
	if res.Error != nil {
		s.log.Error("hard delete failed after audit entry was written",
			zap.String("audit_log_id", entryID),
			zap.String("collection", collection),
			zap.String("document_id", documentID),
			zap.Error(res.Error),
		)
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errors.New("failed to delete document")
	}
	s.metrics.HardDeleted(collection)
	s.log.Warn("document permanently deleted",
		zap.String("collection", collection),
		zap.String("document_id", documentID),
		zap.String("audit_log_id", entryID),
		zap.String("deleted_by", actor.Email),
	)

	if item, ok := doc.(*models.InvoiceItem); ok {
		if _, err := s.agg.Recompute(ctx, item.InvoiceID); err != nil {
			return nil, err
		}
	}

	return &HardDeleteResult{
		Collection: collection,
		DocumentID: documentID,
		AuditLogID: entryID,
		DeletedBy:  actor.Email,
		Reason:     reason,
	}, nil
}
