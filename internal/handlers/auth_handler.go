package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agrilink/agrichat-backend/internal/httpx"
	"github.com/agrilink/agrichat-backend/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input service.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if input.Phone == "" || input.Password == "" || input.FirstName == "" {
		return httpx.BadRequest(c, "missing_fields", "Phone, password, and first name are required")
	}

	result, err := h.authService.Register(input)
	if err != nil {
		if service.IsValidation(err) {
			return httpx.BadRequest(c, "invalid_input", err.Error())
		}
		return httpx.BadRequest(c, "registration_failed", err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input service.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if input.Phone == "" || input.Password == "" {
		return httpx.BadRequest(c, "missing_fields", "Phone and password are required")
	}

	result, err := h.authService.Login(input)
	if err != nil {
		return httpx.Unauthorized(c, "invalid_credentials", "Invalid phone or password")
	}

	return c.JSON(result)
}
