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

type CreatePetInput struct {
	Name           string        `json:"name" validate:"required,max=255"`
	Gender         models.Gender `json:"gender" validate:"required,oneof=male female other"`
	DOB            utils.Date    `json:"dob"`
	Species        string        `json:"species" validate:"max=100"`
	Breed          string        `json:"breed" validate:"max=100"`
	WeightKg       float64       `json:"weight" validate:"gte=0,lt=1000"`
	Color          string        `json:"color" validate:"max=50"`
	MedicalHistory string        `json:"medical_history"`
	ClientID       string        `json:"client_id" validate:"required,uuid"`
}

func (h *Handler) CreatePet(c *fiber.Ctx) error {
	var data CreatePetInput
	if err := bindAndValidate(c, &data); err != nil {
		return err
	}
	if data.DOB.IsZero() {
		return services.Invalid("dob is required")
	}

	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	if err := db.Scopes(models.ActiveOnly).Where("id = ?", data.ClientID).Take(&models.Client{}).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.NotFound("Client not found")
		}
		return err
	}

	now := h.clock.Now()
	pet := models.Pet{
		Base:           models.Base{CreatedAt: now, UpdatedAt: now},
		Name:           data.Name,
		Gender:         data.Gender,
		DOB:            data.DOB.UTC(),
		Species:        data.Species,
		Breed:          data.Breed,
		WeightKg:       data.WeightKg,
		Color:          data.Color,
		MedicalHistory: data.MedicalHistory,
		ClientID:       data.ClientID,
	}
	if err := db.Create(&pet).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(pet)
}

// GetClientPets lists the active pets of one client.
func (h *Handler) GetClientPets(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}

	pets := []models.Pet{}
	if err := db.Scopes(models.ActiveOnly).Where("client_id = ?", id).Order("name ASC").Find(&pets).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"pets":    pets,
		"message": "success",
	})
}
