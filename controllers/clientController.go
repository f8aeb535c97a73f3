package controllers

import (
	"errors"

	"vetclinic-backend/database"
	"vetclinic-backend/models"
	"vetclinic-backend/services"
	"vetclinic-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateClientInput struct {
	Name             string        `json:"name" validate:"required,max=255"`
	Gender           models.Gender `json:"gender" validate:"required,oneof=male female other"`
	PhoneNumber      string        `json:"phone_number" validate:"required,max=15"`
	OtherContactInfo string        `json:"other_contact_info" validate:"max=255"`
}

type UpdateClientInput struct {
	Name             *string        `json:"name" validate:"omitempty,max=255"`
	Gender           *models.Gender `json:"gender" validate:"omitempty,oneof=male female other"`
	PhoneNumber      *string        `json:"phone_number" validate:"omitempty,max=15"`
	OtherContactInfo *string        `json:"other_contact_info" validate:"omitempty,max=255"`
}

func phoneInUse(db *gorm.DB, phone, exceptID string) error {
	var n int64
	q := db.Model(&models.Client{}).Where("phone_number = ?", phone)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return services.Invalid("Phone number %s is already in use", phone)
	}
	return nil
}

func (h *Handler) CreateClient(c *fiber.Ctx) error {
	var data CreateClientInput
	if err := bindAndValidate(c, &data); err != nil {
		return err
	}

	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	if err := phoneInUse(db, data.PhoneNumber, ""); err != nil {
		return err
	}

	now := h.clock.Now()
	client := models.Client{
		Base:             models.Base{CreatedAt: now, UpdatedAt: now},
		Name:             data.Name,
		Gender:           data.Gender,
		PhoneNumber:      data.PhoneNumber,
		OtherContactInfo: data.OtherContactInfo,
	}
	if err := db.Create(&client).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(client)
}

func (h *Handler) UpdateClient(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var data UpdateClientInput
	if err := bindAndValidate(c, &data); err != nil {
		return err
	}

	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}

	var client models.Client
	if err := db.Scopes(models.ActiveOnly).Where("id = ?", id).Take(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.NotFound("Client not found")
		}
		return err
	}
	if data.PhoneNumber != nil && *data.PhoneNumber != client.PhoneNumber {
		if err := phoneInUse(db, *data.PhoneNumber, id); err != nil {
			return err
		}
	}

	updates := utils.UpdatesFromPtrDTO(&data, nil)
	if len(updates) > 0 {
		updates["updated_at"] = h.clock.Now()
		if err := db.Model(&client).Updates(updates).Error; err != nil {
			return err
		}
	}
	if err := db.Where("id = ?", id).Take(&client).Error; err != nil {
		return err
	}
	return c.JSON(client)
}

func (h *Handler) GetClients(c *fiber.Ctx) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}

	clients := []models.Client{}
	if err := db.Scopes(models.ActiveOnly).
		Order("name ASC").
		Limit(utils.ParseIntDefault(c.Query("limit"), 100)).
		Offset(utils.ParseIntDefault(c.Query("offset"), 0)).
		Find(&clients).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"clients": clients,
		"message": "success",
	})
}

func (h *Handler) GetClient(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}

	var client models.Client
	if err := db.Scopes(models.ActiveOnly).Where("id = ?", id).Take(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.NotFound("Client not found")
		}
		return err
	}
	return c.JSON(client)
}
