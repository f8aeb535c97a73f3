package services

import (
	"context"
	"errors"
	"time"

	"vetclinic-backend/clock"
	"vetclinic-backend/metrics"
	"vetclinic-backend/models"
	"vetclinic-backend/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const invoiceNumberAttempts = 3

type CreateInvoiceInput struct {
	ClientID        string                `json:"client_id" validate:"required,uuid4"`
	PetID           *string               `json:"pet_id" validate:"omitempty,uuid4"`
	InvoiceDate     *utils.Date           `json:"invoice_date"`
	DueDate         *utils.Date           `json:"due_date"`
	DiscountPercent *decimal.Decimal      `json:"discount_percent"`
	PaymentStatus   *models.PaymentStatus `json:"payment_status" validate:"omitempty,oneof=pending paid overdue cancelled"`
	Notes           string                `json:"notes"`
}

// UpdateInvoiceInput is a partial update; nil fields are left alone.
// Subtotal and total are not client-writable.
type UpdateInvoiceInput struct {
	ClientID        *string               `json:"client_id" validate:"omitempty,uuid4"`
	PetID           *string               `json:"pet_id" validate:"omitempty,uuid4"`
	InvoiceDate     *utils.Date           `json:"invoice_date"`
	DueDate         *utils.Date           `json:"due_date"`
	DiscountPercent *decimal.Decimal      `json:"discount_percent"`
	PaymentStatus   *models.PaymentStatus `json:"payment_status" validate:"omitempty,oneof=pending paid overdue cancelled"`
	Notes           *string               `json:"notes"`
}

type InvoiceFilter struct {
	ClientID      string
	PaymentStatus string
	Limit         int
	Offset        int
}

// InvoiceService drives the invoice lifecycle: numbering on create, totals on
// discount changes and stock on the transition to paid.
type InvoiceService struct {
	db        *gorm.DB
	clock     clock.Clock
	log       *zap.Logger
	metrics   *metrics.Metrics
	seq       *Sequence
	agg       *Aggregator
	inventory *Inventory
}

func NewInvoiceService(db *gorm.DB, clk clock.Clock, log *zap.Logger, m *metrics.Metrics, seq *Sequence, agg *Aggregator, inv *Inventory) *InvoiceService {
	return &InvoiceService{db: db, clock: clk, log: log.Named("invoices"), metrics: m, seq: seq, agg: agg, inventory: inv}
}

func validDiscount(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(hundred)
}

func (s *InvoiceService) requireActive(ctx context.Context, model any, id, what string) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(model).Scopes(models.ActiveOnly).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return NotFound("%s not found", what)
	}
	return nil
}

// Create stores a new invoice with a generated number and zero totals. The
// number is regenerated when a concurrent request took it first.
func (s *InvoiceService) Create(ctx context.Context, in CreateInvoiceInput) (*models.Invoice, error) {
	utils.NormalizeDTO(&in)
	discount := decimal.Zero
	if in.DiscountPercent != nil {
		discount = *in.DiscountPercent
	}
	if !validDiscount(discount) {
		return nil, Invalid("discount_percent must be between 0 and 100")
	}
	if err := s.requireActive(ctx, &models.Client{}, in.ClientID, "Client"); err != nil {
		return nil, err
	}
	if in.PetID != nil {
		if err := s.requireActive(ctx, &models.Pet{}, *in.PetID, "Pet"); err != nil {
			return nil, err
		}
	}

	status := models.PaymentPending
	if in.PaymentStatus != nil {
		status = *in.PaymentStatus
	}

	var dueDate *time.Time
	if in.DueDate != nil {
		d := in.DueDate.UTC()
		dueDate = &d
	}

	var lastErr error
	for attempt := 0; attempt < invoiceNumberAttempts; attempt++ {
		now := s.clock.Now()
		invoiceDate := now
		if in.InvoiceDate != nil {
			invoiceDate = in.InvoiceDate.UTC()
		}
		invoice := models.Invoice{
			Base:            models.Base{CreatedAt: now, UpdatedAt: now},
			InvoiceNumber:   s.seq.Next(ctx, now),
			ClientID:        in.ClientID,
			PetID:           in.PetID,
			InvoiceDate:     invoiceDate,
			DueDate:         dueDate,
			Subtotal:        decimal.Zero,
			DiscountPercent: discount,
			Total:           decimal.Zero,
			PaymentStatus:   status,
			Notes:           in.Notes,
		}
		err := s.db.WithContext(ctx).Create(&invoice).Error
		if err == nil {
			s.metrics.InvoiceCreated()
			s.log.Info("invoice created",
				zap.String("invoice_id", invoice.ID),
				zap.String("invoice_number", invoice.InvoiceNumber),
			)
			return &invoice, nil
		}
		if !isDuplicateKey(err) {
			return nil, err
		}
		s.log.Warn("invoice number taken, regenerating",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Int("attempt", attempt+1),
		)
		lastErr = err
	}
	return nil, lastErr
}

// Update applies a partial update. A discount change recomputes the totals; a
// transition from any other status to paid decrements stock for every active
// product item.
func (s *InvoiceService) Update(ctx context.Context, id string, in UpdateInvoiceInput) (*models.Invoice, error) {
	db := s.db.WithContext(ctx)

	var invoice models.Invoice
	if err := db.Scopes(models.ActiveOnly).Where("id = ?", id).Take(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("Invoice not found")
		}
		return nil, err
	}

	utils.NormalizePtrDTO(&in)
	if in.DiscountPercent != nil && !validDiscount(*in.DiscountPercent) {
		return nil, Invalid("discount_percent must be between 0 and 100")
	}
	if in.ClientID != nil {
		if err := s.requireActive(ctx, &models.Client{}, *in.ClientID, "Client"); err != nil {
			return nil, err
		}
	}
	if in.PetID != nil {
		if err := s.requireActive(ctx, &models.Pet{}, *in.PetID, "Pet"); err != nil {
			return nil, err
		}
	}

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if len(updates) == 0 {
		return &invoice, nil
	}
	updates["updated_at"] = s.clock.Now()

	if err := db.Model(&models.Invoice{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}

	if in.DiscountPercent != nil && !in.DiscountPercent.Equal(invoice.DiscountPercent) {
		if _, err := s.agg.Recompute(ctx, id); err != nil {
			return nil, err
		}
	}

	if in.PaymentStatus != nil && *in.PaymentStatus == models.PaymentPaid && invoice.PaymentStatus != models.PaymentPaid {
		s.log.Info("invoice paid, applying stock decrements", zap.String("invoice_id", id))
		if err := s.inventory.ApplyPayment(ctx, id); err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, id)
}

// SoftDelete marks the invoice inactive. Its items and totals are kept.
func (s *InvoiceService) SoftDelete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Scopes(models.ActiveOnly).
		Where("id = ?", id).
		Updates(map[string]any{"status": models.StatusInactive, "updated_at": s.clock.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return NotFound("Invoice not found")
	}
	return nil
}

// Get loads an active invoice with its active items.
func (s *InvoiceService) Get(ctx context.Context, id string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return models.ActiveOnly(db).Order("created_at ASC")
		}).
		Scopes(models.ActiveOnly).
		Where("id = ?", id).
		Take(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("Invoice not found")
		}
		return nil, err
	}
	return &invoice, nil
}

func (s *InvoiceService) List(ctx context.Context, f InvoiceFilter) ([]models.Invoice, error) {
	q := s.db.WithContext(ctx).Scopes(models.ActiveOnly)
	if f.ClientID != "" {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}
	if f.Limit <= 0 || f.Limit > MaxHistoryLimit {
		f.Limit = DefaultHistoryLimit
	}

	invoices := []models.Invoice{}
	if err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}
