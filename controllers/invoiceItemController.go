package controllers

import (
	"vetclinic-backend/middlewares"
	"vetclinic-backend/services"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) CreateInvoiceItem(c *fiber.Ctx) error {
	var data services.CreateItemInput
	if err := bindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := h.svc.Items.Create(c.UserContext(), data)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *Handler) UpdateInvoiceItem(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var data services.UpdateItemInput
	if err := bindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := h.svc.Items.Update(c.UserContext(), id, data)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

// GetInvoiceItems lists the active items of one invoice.
func (h *Handler) GetInvoiceItems(c *fiber.Ctx) error {
	invoiceID := c.Query("invoice_id")
	if err := middlewares.ValidateVar(invoiceID, "required,uuid"); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invoice_id query parameter is required")
	}

	items, err := h.svc.Items.List(c.UserContext(), invoiceID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"items":   items,
		"message": "success",
	})
}

func (h *Handler) GetInvoiceItem(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	item, err := h.svc.Items.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func (h *Handler) DeleteInvoiceItem(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Items.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Invoice item deleted"})
}
