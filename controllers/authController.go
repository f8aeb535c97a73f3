package controllers

import (
	"errors"
	"net/mail"
	"strings"

	"vetclinic-backend/database"
	"vetclinic-backend/models"
	"vetclinic-backend/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateUserInput struct {
	FirstName      string      `json:"first_name" validate:"required,max=255"`
	LastName       string      `json:"last_name" validate:"required,max=255"`
	Email          string      `json:"email" validate:"required,email"`
	Phone          string      `json:"phone" validate:"max=15"`
	Password       string      `json:"password" validate:"required,min=8"`
	Role           models.Role `json:"role" validate:"required,oneof=admin vet"`
	Specialization string      `json:"specialization"`
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var data LoginInput
	if err := c.BodyParser(&data); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	email := strings.ToLower(strings.TrimSpace(data.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid email format")
	}

	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}

	var user models.User
	if err := db.Scopes(models.ActiveOnly).Where("email = ?", email).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
		}
		return err
	}
	if err := user.ComparePassword(data.Password); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
	}

	token, err := h.auth.GenerateJWT(user)
	if err != nil {
		return err
	}

	h.log.Info("user logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    user.ID,
			"name":  user.Name(),
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// CreateUser registers a staff account. Admin only.
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var data CreateUserInput
	if err := bindAndValidate(c, &data); err != nil {
		return err
	}
	data.Email = strings.ToLower(data.Email)

	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}

	var n int64
	if err := db.Model(&models.User{}).Where("email = ?", data.Email).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return services.Invalid("Email %s is already in use", data.Email)
	}

	now := h.clock.Now()
	user := models.User{
		Base:           models.Base{CreatedAt: now, UpdatedAt: now},
		FirstName:      data.FirstName,
		LastName:       data.LastName,
		Email:          data.Email,
		Phone:          data.Phone,
		Role:           data.Role,
		Specialization: data.Specialization,
	}
	if err := user.SetPassword(data.Password); err != nil {
		return err
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}
