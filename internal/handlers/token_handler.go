package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/agrilink/agrichat-backend/internal/httpx"
	"github.com/agrilink/agrichat-backend/internal/models"
	"github.com/agrilink/agrichat-backend/internal/repository"
)

// TokenHandler manages FCM device-token registrations. Tokens rotate and
// devices come and go, so registration is an upsert and removal is by token
// value.
type TokenHandler struct {
	tokenRepo repository.DeviceTokenRepositoryInterface
}

func NewTokenHandler(tokenRepo repository.DeviceTokenRepositoryInterface) *TokenHandler {
	return &TokenHandler{tokenRepo: tokenRepo}
}

type registerTokenInput struct {
	Token      string `json:"token"`
	DeviceType string `json:"deviceType"`
}

func (h *TokenHandler) RegisterToken(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input registerTokenInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	input.Token = strings.TrimSpace(input.Token)
	if input.Token == "" {
		return httpx.BadRequest(c, "missing_token", "Token is required")
	}

	deviceType := models.DeviceType(strings.ToLower(strings.TrimSpace(input.DeviceType)))
	switch deviceType {
	case models.DeviceAndroid, models.DeviceIOS, models.DeviceWeb:
	case "":
		deviceType = models.DeviceAndroid
	default:
		return httpx.BadRequest(c, "invalid_device_type", "Device type must be android, ios, or web")
	}

	token := &models.DeviceToken{
		UserID:     userID,
		Token:      input.Token,
		DeviceType: deviceType,
	}
	if err := h.tokenRepo.Upsert(token); err != nil {
		return httpx.Internal(c, "token_register_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"registered": true})
}

type deleteTokenInput struct {
	Token string `json:"token"`
}

func (h *TokenHandler) DeleteToken(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input deleteTokenInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if strings.TrimSpace(input.Token) == "" {
		return httpx.BadRequest(c, "missing_token", "Token is required")
	}

	if err := h.tokenRepo.DeleteByToken(userID, strings.TrimSpace(input.Token)); err != nil {
		return httpx.Internal(c, "token_delete_failed")
	}

	return c.JSON(fiber.Map{"deleted": true})
}
