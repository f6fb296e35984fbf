package validate

import (
	"eventra/constants"
	"eventra/model"
	"eventra/utils"

	"github.com/gofiber/fiber/v2"
)

// Zone rejects a route whose :key parameter is not a known zone.
func Zone(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		zone, ok := model.ParseZone(c.Params(key))
		if !ok {
			return utils.MessageResponse(c, fiber.StatusBadRequest, constants.INVALID_ZONE)
		}
		c.Locals("zone", zone)
		return c.Next()
	}
}

func SellTicket() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.SellTicketInput
		messages := map[string]string{
			"Zone":         constants.INVALID_ZONE,
			"CustomerName": constants.CUSTOMER_NAME_MISSING,
		}
		if ok, err := bind(c, &input, messages, constants.ERROR_INPUT); !ok {
			return err
		}
		c.Locals("input", input)
		return c.Next()
	}
}

func ValidateTicket() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.ValidateTicketInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
		}
		if len(input.TicketId) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"valid":   false,
				"message": constants.TICKET_ID_MISSING,
			})
		}
		c.Locals("input", input)
		return c.Next()
	}
}

// BulkGenerate accepts an optional {"B":n,"C":n,"D":n} body.
func BulkGenerate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		input := model.BulkGenerateInput{}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&input); err != nil {
				return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
			}
		}
		for raw, n := range input {
			if _, ok := model.ParseZone(raw); !ok {
				return utils.MessageResponse(c, fiber.StatusBadRequest, constants.INVALID_ZONE)
			}
			if n < 0 || n > model.MaxBulkPerZone {
				return utils.MessageResponse(c, fiber.StatusBadRequest, constants.INVALID_QUANTITY)
			}
		}
		c.Locals("input", input)
		return c.Next()
	}
}

func ProvisionTicket() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.ProvisionTicketInput
		messages := map[string]string{
			"Zone":  constants.INVALID_ZONE,
			"Count": constants.INVALID_QUANTITY,
		}
		if ok, err := bind(c, &input, messages, constants.ERROR_INPUT); !ok {
			return err
		}
		c.Locals("input", input)
		return c.Next()
	}
}
