package handler

import (
	"errors"
	"log/slog"

	"eventra/broker"
	"eventra/constants"
	"eventra/service"
	"eventra/utils"

	"github.com/gofiber/fiber/v2"
)

type Options struct {
	SecureCookies      bool
	AssetsDir          string
	BulkTicketsPerZone int
}

// Handler serves the HTTP API on top of the services.
type Handler struct {
	tickets *service.TicketService
	reports *service.ReportService
	auth    *service.AuthService
	broker  broker.Broker
	opts    Options
	logger  *slog.Logger
}

func New(tickets *service.TicketService, reports *service.ReportService, auth *service.AuthService, b broker.Broker, opts Options, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		tickets: tickets,
		reports: reports,
		auth:    auth,
		broker:  b,
		opts:    opts,
		logger:  logger,
	}
}

func validationFailure(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"valid":   false,
		"message": message,
	})
}

// writeServiceError maps service errors to responses. Unknown errors are
// logged and answered with a generic 500.
func (h *Handler) writeServiceError(c *fiber.Ctx, err error) error {
	var used *service.AlreadyScannedError
	var noInventory *service.NoInventoryError

	switch {
	case errors.As(err, &used):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"valid":     false,
			"message":   constants.TICKET_ALREADY_USED,
			"scannedAt": used.ScannedAt,
		})
	case errors.Is(err, service.ErrTicketNotFound):
		return validationFailure(c, fiber.StatusNotFound, constants.TICKET_ID_INVALID)
	case errors.Is(err, service.ErrNeverSold):
		return validationFailure(c, fiber.StatusBadRequest, constants.TICKET_NEVER_SOLD)
	case errors.Is(err, service.ErrTicketIdRequired):
		return validationFailure(c, fiber.StatusBadRequest, constants.TICKET_ID_MISSING)
	case errors.As(err, &noInventory):
		return utils.MessageResponse(c, fiber.StatusNotFound, noInventory.Error())

	case errors.Is(err, service.ErrInvalidZone):
		return utils.MessageResponse(c, fiber.StatusBadRequest, constants.INVALID_ZONE)
	case errors.Is(err, service.ErrCustomerNameRequired):
		return utils.MessageResponse(c, fiber.StatusBadRequest, constants.CUSTOMER_NAME_MISSING)
	case errors.Is(err, service.ErrInvalidQuantity):
		return utils.MessageResponse(c, fiber.StatusBadRequest, constants.INVALID_QUANTITY)
	case errors.Is(err, service.ErrMissingCredentials):
		return utils.MessageResponse(c, fiber.StatusBadRequest, constants.MISSING_LOGIN_INPUT)
	case errors.Is(err, service.ErrInvalidOrExpiredToken):
		return utils.MessageResponse(c, fiber.StatusBadRequest, constants.INVALID_RESET_TOKEN)

	case errors.Is(err, service.ErrInvalidCredentials):
		return utils.MessageResponse(c, fiber.StatusUnauthorized, constants.INVALID_CREDENTIALS)
	case errors.Is(err, service.ErrUnauthenticated):
		return utils.MessageResponse(c, fiber.StatusUnauthorized, constants.TOKEN_INVALID)

	case errors.Is(err, service.ErrEmailInUse):
		return utils.MessageResponse(c, fiber.StatusConflict, constants.EMAIL_IN_USE)
	case errors.Is(err, service.ErrBulkInProgress):
		return utils.MessageResponse(c, fiber.StatusConflict, constants.BULK_IN_PROGRESS)
	case errors.Is(err, service.ErrInventoryContended):
		return utils.MessageResponse(c, fiber.StatusConflict, constants.INVENTORY_BUSY)
	}

	h.logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return utils.MessageResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR)
}
