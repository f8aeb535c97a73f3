package controllers

import (
	"errors"
	"fmt"

	"vetclinic-backend/database"
	"vetclinic-backend/middlewares"
	"vetclinic-backend/models"
	"vetclinic-backend/services"
	"vetclinic-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductInput struct {
	Name          string          `json:"name" validate:"required,max=255"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
	SKU           *string         `json:"sku" validate:"omitempty,max=100"`
}

// UpdateProductInput has no stock field: stock only moves through invoices.
type UpdateProductInput struct {
	Name        *string          `json:"name" validate:"omitempty,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	SKU         *string          `json:"sku" validate:"omitempty,max=100"`
}

// skuInUse checks every stored product, inactive ones included.
func skuInUse(db *gorm.DB, sku, exceptID string) error {
	var n int64
	q := db.Model(&models.Product{}).Where("sku = ?", sku)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return services.Invalid("SKU already exists")
	}
	return nil
}

// CreateProducts creates a batch of products in one transaction.
func (h *Handler) CreateProducts(c *fiber.Ctx) error {
	var inputs []ProductInput
	if err := c.BodyParser(&inputs); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(inputs) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no products given")
	}

	for i := range inputs {
		utils.NormalizeDTO(&inputs[i])
		if err := ValidateProduct(inputs[i]); err != nil {
			return services.Invalid("product at index %d: %v", i, err)
		}
	}

	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}

	now := h.clock.Now()
	created := make([]models.Product, 0, len(inputs))
	err = db.Transaction(func(tx *gorm.DB) error {
		for i, input := range inputs {
			if input.SKU != nil && *input.SKU == "" {
				input.SKU = nil
			}
			if input.SKU != nil {
				if err := skuInUse(tx, *input.SKU, ""); err != nil {
					return err
				}
			}
			product := models.Product{
				Base:          models.Base{CreatedAt: now, UpdatedAt: now},
				Name:          input.Name,
				Description:   input.Description,
				Price:         input.Price.Round(2),
				StockQuantity: input.StockQuantity,
				SKU:           input.SKU,
			}
			if err := tx.Create(&product).Error; err != nil {
				return fmt.Errorf("could not create product at index %d: %w", i, err)
			}
			created = append(created, product)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// ValidateProduct checks one element of a batch.
func ValidateProduct(p ProductInput) error {
	if err := middlewares.ValidateStruct(p); err != nil {
		return err
	}
	if p.Price.IsNegative() {
		return errors.New("price must not be negative")
	}
	return nil
}

func (h *Handler) GetProducts(c *fiber.Ctx) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}

	products := []models.Product{}
	if err := db.Scopes(models.ActiveOnly).Order("name ASC").Find(&products).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"products": products,
		"message":  "success",
	})
}

func (h *Handler) UpdateProduct(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var data UpdateProductInput
	if err := bindAndValidate(c, &data); err != nil {
		return err
	}
	if data.Price != nil && data.Price.IsNegative() {
		return services.Invalid("price must not be negative")
	}

	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}

	var product models.Product
	if err := db.Scopes(models.ActiveOnly).Where("id = ?", id).Take(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.NotFound("Product not found")
		}
		return err
	}
	if data.SKU != nil && *data.SKU != "" {
		if err := skuInUse(db, *data.SKU, product.ID); err != nil {
			return err
		}
	}

	updates := utils.UpdatesFromPtrDTO(&data, nil)
	if len(updates) > 0 {
		updates["updated_at"] = h.clock.Now()
		if err := db.Model(&product).Updates(updates).Error; err != nil {
			return err
		}
	}
	if err := db.Where("id = ?", id).Take(&product).Error; err != nil {
		return err
	}
	return c.JSON(product)
}
