package middleware

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/agrilink/agrichat-backend/internal/httpx"
)

// OriginAllowed blocks browser requests whose Origin header is not in the
// ALLOWED_ORIGINS allowlist (comma-separated, exact match). An empty
// allowlist disables the check, which is the single-box deployment default;
// requests without an Origin header (curl, server-to-server) always pass.
func OriginAllowed() fiber.Handler {
	allowed := parseOriginList(os.Getenv("ALLOWED_ORIGINS"))
	return func(c *fiber.Ctx) error {
		origin := strings.TrimSpace(c.Get("Origin"))
		if origin == "" || len(allowed) == 0 {
			return c.Next()
		}
		if _, ok := allowed[origin]; !ok {
			return httpx.Forbidden(c, "forbidden_origin", "Origin not allowed")
		}
		return c.Next()
	}
}

func parseOriginList(raw string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out[part] = struct{}{}
		}
	}
	return out
}
