package services

import (
	"context"
	"errors"

	"vetclinic-backend/clock"
	"vetclinic-backend/metrics"
	"vetclinic-backend/models"
	"vetclinic-backend/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateItemInput adds a line to an invoice. UnitPrice and ItemName default to
// the referenced service or product. NetPrice is accepted for compatibility
// and always replaced by the computed value.
type CreateItemInput struct {
	InvoiceID       string           `json:"invoice_id" validate:"required,uuid4"`
	ItemType        models.ItemType  `json:"item_type" validate:"required,oneof=service product"`
	ServiceID       *string          `json:"service_id" validate:"omitempty,uuid4"`
	ProductID       *string          `json:"product_id" validate:"omitempty,uuid4"`
	ItemName        string           `json:"item_name" validate:"max=255"`
	ItemDescription string           `json:"item_description"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
	Quantity        *int             `json:"quantity" validate:"omitempty,min=1"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	NetPrice        *decimal.Decimal `json:"net_price"`
}

type UpdateItemInput struct {
	ItemName        *string          `json:"item_name" validate:"omitempty,max=255"`
	ItemDescription *string          `json:"item_description"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
	Quantity        *int             `json:"quantity" validate:"omitempty,min=1"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	NetPrice        *decimal.Decimal `json:"net_price"`
}

// ItemService writes invoice items. Every write is followed by a recompute of
// the parent invoice.
type ItemService struct {
	db        *gorm.DB
	clock     clock.Clock
	log       *zap.Logger
	metrics   *metrics.Metrics
	agg       *Aggregator
	inventory *Inventory
}

func NewItemService(db *gorm.DB, clk clock.Clock, log *zap.Logger, m *metrics.Metrics, agg *Aggregator, inv *Inventory) *ItemService {
	return &ItemService{db: db, clock: clk, log: log.Named("items"), metrics: m, agg: agg, inventory: inv}
}

func validateLine(unitPrice decimal.Decimal, qty int, discount decimal.Decimal) error {
	if unitPrice.IsNegative() {
		return Invalid("unit_price must not be negative")
	}
	if qty < 1 {
		return Invalid("quantity must be at least 1")
	}
	if !validDiscount(discount) {
		return Invalid("discount_percent must be between 0 and 100")
	}
	return nil
}

func (s *ItemService) ignoredNetPrice(supplied *decimal.Decimal, computed decimal.Decimal, itemID string) {
	if supplied != nil && !supplied.Equal(computed) {
		s.log.Debug("client-supplied net_price ignored",
			zap.String("invoice_item_id", itemID),
			zap.String("supplied", supplied.String()),
			zap.String("computed", computed.StringFixed(2)),
		)
	}
}

// resolveReference checks the service/product reference and returns its name
// and list price.
func (s *ItemService) resolveReference(ctx context.Context, in CreateItemInput) (string, decimal.Decimal, error) {
	db := s.db.WithContext(ctx).Scopes(models.ActiveOnly)
	switch in.ItemType {
	case models.ItemService:
		if in.ServiceID == nil || in.ProductID != nil {
			return "", decimal.Zero, Invalid("Service items require service_id and no product_id")
		}
		var svc models.Service
		if err := db.Where("id = ?", *in.ServiceID).Take(&svc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", decimal.Zero, Invalid("Service not found")
			}
			return "", decimal.Zero, err
		}
		return svc.Name, svc.Price, nil
	case models.ItemProduct:
		if in.ProductID == nil || in.ServiceID != nil {
			return "", decimal.Zero, Invalid("Product items require product_id and no service_id")
		}
		var product models.Product
		if err := db.Where("id = ?", *in.ProductID).Take(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", decimal.Zero, Invalid("Product not found")
			}
			return "", decimal.Zero, err
		}
		return product.Name, product.Price, nil
	}
	return "", decimal.Zero, Invalid("item_type must be service or product")
}

// Create prices and stores a new item, then refreshes the invoice totals. A
// product added to an already-paid invoice is checked against stock before the
// insert and decremented after it.
func (s *ItemService) Create(ctx context.Context, in CreateItemInput) (*models.InvoiceItem, error) {
	utils.NormalizeDTO(&in)
	db := s.db.WithContext(ctx)

	var invoice models.Invoice
	if err := db.Scopes(models.ActiveOnly).Where("id = ?", in.InvoiceID).Take(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("Invoice not found")
		}
		return nil, err
	}

	name, listPrice, err := s.resolveReference(ctx, in)
	if err != nil {
		return nil, err
	}
	unitPrice := listPrice
	if in.UnitPrice != nil {
		unitPrice = *in.UnitPrice
	}
	qty, discount, net := LineInput{UnitPrice: unitPrice, Quantity: in.Quantity, DiscountPercent: in.DiscountPercent}.Price()
	if err := validateLine(unitPrice, qty, discount); err != nil {
		return nil, err
	}
	if in.ItemName != "" {
		name = in.ItemName
	}

	soldFromStock := in.ItemType == models.ItemProduct && invoice.PaymentStatus == models.PaymentPaid
	if soldFromStock {
		if err := s.inventory.CheckStock(ctx, *in.ProductID, qty); err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	item := models.InvoiceItem{
		Base:            models.Base{CreatedAt: now, UpdatedAt: now},
		InvoiceID:       invoice.ID,
		ItemType:        in.ItemType,
		ServiceID:       in.ServiceID,
		ProductID:       in.ProductID,
		ItemName:        name,
		ItemDescription: in.ItemDescription,
		UnitPrice:       unitPrice,
		Quantity:        qty,
		DiscountPercent: discount,
		NetPrice:        net,
	}
	if err := db.Create(&item).Error; err != nil {
		return nil, err
	}
	s.ignoredNetPrice(in.NetPrice, net, item.ID)
	s.metrics.ItemWritten("create")

	if _, err := s.agg.Recompute(ctx, invoice.ID); err != nil {
		return nil, err
	}
	if soldFromStock {
		if err := s.inventory.ApplyItem(ctx, &item, models.StockItemAddedToPaidInvoice); err != nil {
			return nil, err
		}
	}
	return &item, nil
}

// Update changes an active item. Net price is recomputed from the merged
// pricing fields and the invoice is refreshed when any of them changed. Stock
// is not touched.
func (s *ItemService) Update(ctx context.Context, id string, in UpdateItemInput) (*models.InvoiceItem, error) {
	utils.NormalizePtrDTO(&in)
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	unitPrice, qty, discount := item.UnitPrice, item.Quantity, item.DiscountPercent
	if in.UnitPrice != nil {
		unitPrice = *in.UnitPrice
	}
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	if in.DiscountPercent != nil {
		discount = *in.DiscountPercent
	}
	if err := validateLine(unitPrice, qty, discount); err != nil {
		return nil, err
	}
	net := NetPrice(unitPrice, qty, discount)
	pricingChanged := !unitPrice.Equal(item.UnitPrice) || qty != item.Quantity || !discount.Equal(item.DiscountPercent)

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	updates["net_price"] = net
	updates["updated_at"] = s.clock.Now()

	if err := s.db.WithContext(ctx).Model(&models.InvoiceItem{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.ignoredNetPrice(in.NetPrice, net, id)
	s.metrics.ItemWritten("update")

	if pricingChanged {
		if _, err := s.agg.Recompute(ctx, item.InvoiceID); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

// Delete soft-deletes the item and refreshes the invoice totals.
func (s *ItemService) Delete(ctx context.Context, id string) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&models.InvoiceItem{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": models.StatusInactive, "updated_at": s.clock.Now()}).Error; err != nil {
		return err
	}
	s.metrics.ItemWritten("delete")

	_, err = s.agg.Recompute(ctx, item.InvoiceID)
	return err
}

func (s *ItemService) Get(ctx context.Context, id string) (*models.InvoiceItem, error) {
	var item models.InvoiceItem
	if err := s.db.WithContext(ctx).Scopes(models.ActiveOnly).Where("id = ?", id).Take(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("Invoice item not found")
		}
		return nil, err
	}
	return &item, nil
}

// List returns the active items of an invoice in insertion order.
func (s *ItemService) List(ctx context.Context, invoiceID string) ([]models.InvoiceItem, error) {
	items := []models.InvoiceItem{}
	if err := s.db.WithContext(ctx).
		Scopes(models.ActiveOnly).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
