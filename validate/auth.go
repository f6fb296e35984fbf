package validate

import (
	"eventra/constants"
	"eventra/model"

	"github.com/gofiber/fiber/v2"
)

func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.LoginInput
		if ok, err := bind(c, &input, nil, constants.MISSING_LOGIN_INPUT); !ok {
			return err
		}
		c.Locals("input", input)
		return c.Next()
	}
}

func Register() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.RegisterInput
		if ok, err := bind(c, &input, nil, constants.MISSING_REGISTER); !ok {
			return err
		}
		c.Locals("input", input)
		return c.Next()
	}
}

func ForgotPassword() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.ForgotPasswordInput
		if ok, err := bind(c, &input, nil, constants.MISSING_EMAIL); !ok {
			return err
		}
		c.Locals("input", input)
		return c.Next()
	}
}

func ResetPassword() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.ResetPasswordInput
		if ok, err := bind(c, &input, nil, constants.MISSING_RESET_INPUT); !ok {
			return err
		}
		c.Locals("input", input)
		return c.Next()
	}
}
