package validate

import (
	"errors"

	"eventra/constants"
	"eventra/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// bind parses the JSON body into input and runs struct validation. On
// failure it writes the 400 response itself and returns false.
func bind(c *fiber.Ctx, input any, messages map[string]string, fallback string) (bool, error) {
	if err := c.BodyParser(input); err != nil {
		return false, utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
	}
	if err := validate.Struct(input); err != nil {
		return false, utils.MessageResponse(c, fiber.StatusBadRequest, messageFor(err, messages, fallback))
	}
	return true, nil
}

// messageFor picks the message registered for the first failing field.
func messageFor(err error, messages map[string]string, fallback string) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if msg, ok := messages[fe.Field()]; ok {
				return msg
			}
		}
	}
	return fallback
}
