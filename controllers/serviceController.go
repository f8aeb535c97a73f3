package controllers

import (
	"errors"

	"vetclinic-backend/database"
	"vetclinic-backend/models"
	"vetclinic-backend/services"
	"vetclinic-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateServiceInput struct {
	Name            string          `json:"name" validate:"required,max=255"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"duration_minutes" validate:"gte=0"`
}

type UpdateServiceInput struct {
	Name            *string          `json:"name" validate:"omitempty,max=255"`
	Description     *string          `json:"description"`
	Price           *decimal.Decimal `json:"price"`
	DurationMinutes *int             `json:"duration_minutes" validate:"omitempty,gte=0"`
}

func (h *Handler) CreateService(c *fiber.Ctx) error {
	var data CreateServiceInput
	if err := bindAndValidate(c, &data); err != nil {
		return err
	}
	if data.Price.IsNegative() {
		return services.Invalid("price must not be negative")
	}

	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}

	now := h.clock.Now()
	svc := models.Service{
		Base:            models.Base{CreatedAt: now, UpdatedAt: now},
		Name:            data.Name,
		Description:     data.Description,
		Price:           data.Price.Round(2),
		DurationMinutes: data.DurationMinutes,
	}
	if err := db.Create(&svc).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(svc)
}

func (h *Handler) UpdateService(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var data UpdateServiceInput
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

	var svc models.Service
	if err := db.Scopes(models.ActiveOnly).Where("id = ?", id).Take(&svc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.NotFound("Service not found")
		}
		return err
	}

	updates := utils.UpdatesFromPtrDTO(&data, nil)
	if len(updates) > 0 {
		updates["updated_at"] = h.clock.Now()
		if err := db.Model(&svc).Updates(updates).Error; err != nil {
			return err
		}
	}
	if err := db.Where("id = ?", id).Take(&svc).Error; err != nil {
		return err
	}
	return c.JSON(svc)
}
