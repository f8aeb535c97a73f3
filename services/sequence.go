package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vetclinic-backend/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InvoicePrefix returns the per-day invoice number prefix, e.g. INV250314NO.
func InvoicePrefix(now time.Time) string {
	return "INV" + now.UTC().Format("060102") + "NO"
}

// Sequence hands out INV{YYMMDD}NO{seq:03d} invoice numbers.
type Sequence struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewSequence(db *gorm.DB, log *zap.Logger) *Sequence {
	return &Sequence{db: db, log: log.Named("sequence")}
}

// Next derives the next number from the most recently created invoice of the
// day, soft-deleted ones included. It never fails: a lookup error or an
// unparseable legacy number restarts the day at 001.
func (s *Sequence) Next(ctx context.Context, now time.Time) string {
	now = now.UTC()
	prefix := InvoicePrefix(now)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var last models.Invoice
	err := s.db.WithContext(ctx).
		Select("invoice_number").
		Where("created_at >= ? AND created_at < ?", start, start.Add(24*time.Hour)).
		Order("created_at DESC").
		Order("invoice_number DESC").
		Take(&last).Error

	seq := 1
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		s.log.Error("invoice sequence lookup failed, restarting at 1", zap.String("prefix", prefix), zap.Error(err))
	case strings.HasPrefix(last.InvoiceNumber, prefix):
		n, perr := strconv.Atoi(strings.TrimPrefix(last.InvoiceNumber, prefix))
		if perr != nil {
			s.log.Warn("unparseable invoice number, restarting at 1", zap.String("invoice_number", last.InvoiceNumber))
			break
		}
		seq = n + 1
	}
	return fmt.Sprintf("%s%03d", prefix, seq)
}
