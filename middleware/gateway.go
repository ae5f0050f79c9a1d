package middleware

import (
	"crypto/subtle"
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// GatewayAuthMiddleware guards the whole service behind the API gateway.
// The service is never exposed directly: every request must carry the shared
// secret from SOCIAL_SERVICE_TOKEN, which only the gateway knows. User
// identity headers (X-User-ID, X-User-Roles) are trusted downstream of this
// check, so a request that fails here is rejected before any of them are read.
func GatewayAuthMiddleware() fiber.Handler {
	secret := os.Getenv("SOCIAL_SERVICE_TOKEN")
	if secret == "" {
		log.Fatal("❌ SOCIAL_SERVICE_TOKEN is not set — refusing to start without a gateway secret")
	}

	return func(c *fiber.Ctx) error {
		presented := bearerToken(c.Get("Authorization"))
		if presented == "" {
			log.Printf("🚫 [GATEWAY_AUTH] No credentials on %s %s", c.Method(), c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "gateway authentication token missing",
			})
		}

		if subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
			log.Printf("❌ [GATEWAY_AUTH] Rejected token on %s %s", c.Method(), c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid gateway authentication token",
			})
		}

		return c.Next()
	}
}

// bearerToken extracts the credential from an Authorization header. A bare
// token without the "Bearer " prefix is accepted too, matching how the
// gateway sent it before the scheme was standardized.
func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return header
}
