package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// APIVersion is the version served under /api/v1.0.
const APIVersion = "1.0"

// VersionMiddleware stamps every API response with X-Api-Version and stores
// the version in context
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("apiVersion", APIVersion)
		c.Set("X-Api-Version", APIVersion)
		return c.Next()
	}
}
