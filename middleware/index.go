package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"eventra/constants"
	"eventra/model"
	"eventra/service"
	"eventra/utils"

	"github.com/gofiber/fiber/v2"
)

type Authorizer interface {
	Authorize(ctx context.Context, token string) (*model.User, error)
}

// TokenFromRequest reads the session cookie, falling back to a bearer token.
func TokenFromRequest(c *fiber.Ctx) string {
	token := c.Cookies(constants.TOKEN_COOKIE)
	if token == "" {
		auth := c.Get(fiber.HeaderAuthorization)
		if strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		}
	}
	return token
}

// Protected rejects requests without a valid session and stores the
// authenticated *model.User in c.Locals("user").
func Protected(auth Authorizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := TokenFromRequest(c)
		if token == "" {
			return utils.MessageResponse(c, fiber.StatusUnauthorized, constants.NOT_AUTHORIZED)
		}

		user, err := auth.Authorize(c.UserContext(), token)
		if errors.Is(err, service.ErrUnauthenticated) {
			return utils.MessageResponse(c, fiber.StatusUnauthorized, constants.TOKEN_INVALID)
		}
		if err != nil {
			slog.Error("authorize request", "path", c.Path(), "error", err)
			return utils.MessageResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR)
		}

		c.Locals("user", user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by Protected.
func CurrentUser(c *fiber.Ctx) (*model.User, bool) {
	user, ok := c.Locals("user").(*model.User)
	return user, ok && user != nil
}
