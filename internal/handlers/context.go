package handlers

import (
	"strconv"

	"multistore/internal/middleware"
	"multistore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// cartOwner is the cart of the signed-in customer, or of the guest session.
func cartOwner(c *fiber.Ctx) string {
	if id, ok := middleware.CustomerOf(c); ok {
		return services.CustomerOwner(id.UserID)
	}
	if sess := middleware.Session(c); sess != nil {
		return services.GuestOwner(sess.ID())
	}
	return ""
}

func queryInt(c *fiber.Ctx, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
