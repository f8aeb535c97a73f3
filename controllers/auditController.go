package controllers

import (
	"time"

	"vetclinic-backend/services"
	"vetclinic-backend/utils"

	"github.com/gofiber/fiber/v2"
)

func parseDateQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+key)
	}
	return &t, nil
}

// GetDeletions lists hard deletions, newest first.
func (h *Handler) GetDeletions(c *fiber.Ctx) error {
	start, err := parseDateQuery(c, "start_date")
	if err != nil {
		return err
	}
	end, err := parseDateQuery(c, "end_date")
	if err != nil {
		return err
	}

	filter := services.DeletionFilter{
		Collection: c.Query("collection_name"),
		UserID:     c.Query("user_id"),
		Start:      start,
		End:        end,
		Limit:      utils.ParseIntDefault(c.Query("limit"), services.DefaultHistoryLimit),
	}
	entries, err := h.svc.Audit.DeletionHistory(c.UserContext(), filter)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data":  services.MaskedEntries(entries),
		"count": len(entries),
		"filters": fiber.Map{
			"collection_name": filter.Collection,
			"user_id":         filter.UserID,
			"start_date":      start,
			"end_date":        end,
			"limit":           filter.Limit,
		},
	})
}

// GetDeletion returns one entry together with whether it can be restored.
func (h *Handler) GetDeletion(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	entry, err := h.svc.Audit.GetEntry(c.UserContext(), id)
	if err != nil {
		return err
	}
	ok, reason, err := h.svc.Restore.CanRestore(c.UserContext(), id)
	if err != nil {
		return err
	}

	restoration := fiber.Map{"can_restore": ok}
	if !ok {
		restoration["reason"] = reason
	}
	return c.JSON(fiber.Map{
		"data":        services.Masked(*entry),
		"restoration": restoration,
	})
}

func (h *Handler) RestoreDeletion(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	a, err := actor(c)
	if err != nil {
		return err
	}

	res, err := h.svc.Restore.Restore(c.UserContext(), id, a, requestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Document restored successfully",
		"data":    res,
	})
}

func (h *Handler) HardDelete(c *fiber.Ctx) error {
	collection := c.Params("collection")
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	a, err := actor(c)
	if err != nil {
		return err
	}

	res, err := h.svc.Audit.HardDelete(c.UserContext(), a, requestMeta(c), collection, id, c.Query("reason"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Document permanently deleted from " + collection,
		"data":    res,
	})
}
