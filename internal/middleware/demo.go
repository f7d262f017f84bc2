package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// DemoConfig configures DemoGuard.
type DemoConfig struct {
	// Platform blocks writes on every store.
	Platform bool
	// ExemptPrefixes are path prefixes never blocked.
	ExemptPrefixes []string
	// StoreIsDemo reports whether the store a request targets is a demo store.
	StoreIsDemo func(c *fiber.Ctx) bool
}

// DemoGuard rejects PUT, PATCH and DELETE requests with 403 while demo mode
// is on for the platform or the targeted store. POST is never blocked.
func DemoGuard(cfg DemoConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
		default:
			return c.Next()
		}
		path := c.Path()
		for _, prefix := range cfg.ExemptPrefixes {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}
		if cfg.Platform || (cfg.StoreIsDemo != nil && cfg.StoreIsDemo(c)) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"demo_mode": true,
				"message":   "This action is disabled in demo mode",
			})
		}
		return c.Next()
	}
}
