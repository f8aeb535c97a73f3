package controllers

import (
	"vetclinic-backend/services"
	"vetclinic-backend/utils"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) CreateInvoice(c *fiber.Ctx) error {
	var data services.CreateInvoiceInput
	if err := bindAndValidate(c, &data); err != nil {
		return err
	}

	invoice, err := h.svc.Invoices.Create(c.UserContext(), data)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

func (h *Handler) UpdateInvoice(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var data services.UpdateInvoiceInput
	if err := bindAndValidate(c, &data); err != nil {
		return err
	}

	invoice, err := h.svc.Invoices.Update(c.UserContext(), id, data)
	if err != nil {
		return err
	}
	return c.JSON(invoice)
}

func (h *Handler) GetInvoices(c *fiber.Ctx) error {
	filter := services.InvoiceFilter{
		ClientID:      c.Query("client_id"),
		PaymentStatus: c.Query("payment_status"),
		Limit:         utils.ParseIntDefault(c.Query("limit"), 100),
		Offset:        utils.ParseIntDefault(c.Query("offset"), 0),
	}

	invoices, err := h.svc.Invoices.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"invoices": invoices,
		"message":  "success",
	})
}

func (h *Handler) GetInvoice(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	invoice, err := h.svc.Invoices.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(invoice)
}

// DeleteInvoice is a soft delete; hard deletes go through the audit routes.
func (h *Handler) DeleteInvoice(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Invoices.SoftDelete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Invoice deleted"})
}
