package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/agrilink/agrichat-backend/internal/httpx"
	"github.com/agrilink/agrichat-backend/internal/service"
)

// AlertHandler triggers proactive weather pushes. The endpoint is called by
// the forecast poller, so the target user comes from the body, not the JWT.
type AlertHandler struct {
	alertService *service.AlertService
}

func NewAlertHandler(alertService *service.AlertService) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

type weatherAlertInput struct {
	UserID   uint                   `json:"userId"`
	Category string                 `json:"category"`
	Payload  map[string]interface{} `json:"payload"`
}

func (h *AlertHandler) SendWeatherAlert(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input weatherAlertInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if input.UserID == 0 {
		return httpx.BadRequest(c, "missing_user_id", "userId is required")
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = "weather"
	}

	result, err := h.alertService.SendWeatherAlert(input.UserID, category, input.Payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlertLimitReached):
			return httpx.TooManyRequests(c, "alert_limit_reached", "Daily alert limit reached for this user")
		case service.IsValidation(err):
			return httpx.BadRequest(c, "invalid_input", err.Error())
		default:
			return httpx.Internal(c, "alert_send_failed")
		}
	}

	return c.JSON(fiber.Map{
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	})
}
