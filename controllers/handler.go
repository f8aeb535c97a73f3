package controllers

import (
	"vetclinic-backend/clock"
	"vetclinic-backend/middlewares"
	"vetclinic-backend/models"
	"vetclinic-backend/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	svc   *services.Services
	auth  *middlewares.Auth
	clock clock.Clock
	log   *zap.Logger
}

func NewHandler(svc *services.Services, auth *middlewares.Auth, clk clock.Clock, log *zap.Logger) *Handler {
	return &Handler{svc: svc, auth: auth, clock: clk, log: log.Named("http")}
}

func requestMeta(c *fiber.Ctx) services.RequestMeta {
	return services.RequestMeta{IP: c.IP(), UserAgent: c.Get(fiber.HeaderUserAgent)}
}

func actor(c *fiber.Ctx) (models.Actor, error) {
	a, ok := middlewares.ActorFrom(c)
	if !ok {
		return models.Actor{}, fiber.NewError(fiber.StatusUnauthorized, "auth context missing")
	}
	return a, nil
}

// idParam returns the :id path parameter after checking it is a UUID.
func idParam(c *fiber.Ctx, name string) (string, error) {
	id := c.Params(name)
	if err := middlewares.ValidateVar(id, "required,uuid"); err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

var bindAndValidate = middlewares.BindAndValidate
