package handler

import (
	"bytes"
	"errors"

	"eventra/constants"
	"eventra/model"
	"eventra/service"
	"eventra/utils"

	"github.com/gofiber/fiber/v2"
)

// SellTicket claims a ticket and answers with the PDF receipt.
func (h *Handler) SellTicket(c *fiber.Ctx) error {
	input := c.Locals("input").(model.SellTicketInput)

	receipt, err := h.tickets.Sell(c.UserContext(), input.Zone, input.CustomerName)
	if err != nil {
		return h.writeServiceError(c, err)
	}

	c.Attachment("Ticket-" + receipt.Ticket.TicketId + ".pdf")
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Status(fiber.StatusOK).Send(receipt.PDF)
}

func (h *Handler) ValidateTicket(c *fiber.Ctx) error {
	input := c.Locals("input").(model.ValidateTicketInput)

	details, err := h.tickets.Validate(c.UserContext(), service.ResolveTicketId(input.TicketId))
	if err != nil {
		return h.writeServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"valid":         true,
		"message":       constants.TICKET_VALIDATED,
		"ticketDetails": details,
	})
}

// BulkGenerate mints guest tickets and streams them back as one PDF.
func (h *Handler) BulkGenerate(c *fiber.Ctx) error {
	input := c.Locals("input").(model.BulkGenerateInput)

	quantities, err := service.NormalizeQuantities(input, h.opts.BulkTicketsPerZone)
	if err != nil {
		return h.writeServiceError(c, err)
	}

	result, err := h.tickets.BulkGenerate(c.UserContext(), quantities)
	var partial *service.PartialBulkError
	if errors.As(err, &partial) {
		h.logger.Error("bulk generation failed", "created", partial.Created, "error", partial.Err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": constants.BULK_FAILED,
			"created": partial.Created,
		})
	}
	if err != nil {
		return h.writeServiceError(c, err)
	}

	var buf bytes.Buffer
	if err := utils.RenderBulkPDF(&buf, result.Tickets, utils.BulkBackgrounds(h.opts.AssetsDir)); err != nil {
		return h.writeServiceError(c, err)
	}

	c.Attachment("AllTickets.pdf")
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}

func (h *Handler) ProvisionTickets(c *fiber.Ctx) error {
	input := c.Locals("input").(model.ProvisionTicketInput)

	created, err := h.tickets.Provision(c.UserContext(), input.Zone, input.Count)
	if err != nil {
		return h.writeServiceError(c, err)
	}

	ids := make([]string, len(created))
	for i, t := range created {
		ids[i] = t.TicketId
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"message":   constants.PROVISION_SUCCESS,
		"created":   len(created),
		"ticketIds": ids,
	})
}
