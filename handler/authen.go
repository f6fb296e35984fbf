package handler

import (
	"time"

	"eventra/constants"
	"eventra/helper"
	"eventra/middleware"
	"eventra/model"
	"eventra/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/copier"
)

func (h *Handler) setSessionCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     constants.TOKEN_COOKIE,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.opts.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	input := c.Locals("input").(model.LoginInput)

	token, _, err := h.auth.Authenticate(c.UserContext(), input.Email, input.Password)
	if err != nil {
		return h.writeServiceError(c, err)
	}

	h.setSessionCookie(c, token, time.Now().Add(helper.AccessTokenTTL))
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"token":   token,
	})
}

func (h *Handler) Register(c *fiber.Ctx) error {
	input := c.Locals("input").(model.RegisterInput)

	token, _, err := h.auth.Register(c.UserContext(), input.Email, input.Password)
	if err != nil {
		return h.writeServiceError(c, err)
	}

	h.setSessionCookie(c, token, time.Now().Add(helper.AccessTokenTTL))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": constants.REGISTER_SUCCESS,
		"token":   token,
	})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	h.setSessionCookie(c, "", time.Unix(0, 0))
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": constants.LOGOUT_SUCCESS,
	})
}

func (h *Handler) Me(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.MessageResponse(c, fiber.StatusUnauthorized, constants.NOT_AUTHORIZED)
	}

	var resp model.UserResponse
	if err := copier.Copy(&resp, user); err != nil {
		return h.writeServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    resp,
	})
}

func (h *Handler) ForgotPassword(c *fiber.Ctx) error {
	input := c.Locals("input").(model.ForgotPasswordInput)

	if err := h.auth.RequestPasswordReset(c.UserContext(), input.Email); err != nil {
		return h.writeServiceError(c, err)
	}
	return utils.MessageResponse(c, fiber.StatusOK, constants.RESET_LINK_SENT)
}

func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	input := c.Locals("input").(model.ResetPasswordInput)

	if err := h.auth.ResetPassword(c.UserContext(), input.Token, input.Password); err != nil {
		return h.writeServiceError(c, err)
	}
	return utils.MessageResponse(c, fiber.StatusOK, constants.PASSWORD_RESET_DONE)
}
