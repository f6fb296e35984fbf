package handler

import (
	"os"

	"eventra/constants"
	"eventra/model"
	"eventra/utils"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) AvailableTickets(c *fiber.Ctx) error {
	zone := c.Locals("zone").(model.Zone)

	count, err := h.reports.AvailableCount(c.UserContext(), string(zone))
	if err != nil {
		return h.writeServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"availableCount": count})
}

func (h *Handler) TotalTickets(c *fiber.Ctx) error {
	totals, err := h.reports.TotalCounts(c.UserContext())
	if err != nil {
		return h.writeServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(totals)
}

func (h *Handler) ZoneStats(c *fiber.Ctx) error {
	zone := c.Locals("zone").(model.Zone)

	stats, err := h.reports.ZoneStats(c.UserContext(), string(zone))
	if err != nil {
		return h.writeServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(stats)
}

// ExportTickets rebuilds the snapshot workbook and downloads it.
func (h *Handler) ExportTickets(c *fiber.Ctx) error {
	path, err := h.reports.ExportSnapshot(c.UserContext())
	if err != nil {
		h.logger.Error("export snapshot", "error", err)
		return utils.MessageResponse(c, fiber.StatusInternalServerError, constants.EXPORT_FAILED)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		h.logger.Error("read snapshot", "path", path, "error", err)
		return utils.MessageResponse(c, fiber.StatusInternalServerError, constants.EXPORT_FAILED)
	}
	c.Attachment("tickets.xlsx")
	return c.Status(fiber.StatusOK).Send(data)
}
