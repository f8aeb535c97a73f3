package controllers

import (
	"vetclinic-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// GetRevenueByMonth defaults to the current year.
func (h *Handler) GetRevenueByMonth(c *fiber.Ctx) error {
	year := utils.ParseIntDefault(c.Query("year"), h.clock.Now().Year())

	revenue, err := h.svc.Invoices.RevenueByMonth(c.UserContext(), year)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"year": year,
		"data": revenue,
	})
}
