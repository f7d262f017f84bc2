package middleware

import (
	"log"
	"strings"

	"multistore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthCookie is the cookie storefront pages read the customer token from.
const AuthCookie = "auth_token"

const identityKey = "identity"

// BearerToken returns the token from "Authorization: Bearer <token>", or "".
func BearerToken(c *fiber.Ctx) string {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// AuthRequired is a Fiber middleware to check for a valid JWT token. When
// roles are given the token must carry one of them.
func AuthRequired(authService *services.AuthService, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		tokenString := BearerToken(c)
		if tokenString == "" {
			tokenString = c.Cookies(AuthCookie)
		}
		if tokenString == "" {
			if authHeader != "" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Authorization header format must be 'Bearer <token>'",
				})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		id := services.IdentityFromClaims(claims)
		if len(roles) > 0 && !contains(roles, id.Role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Insufficient permissions",
			})
		}

		// Store the identity in Fiber context for subsequent handlers
		c.Locals(identityKey, id)
		c.Locals("user_id", id.UserID)

		return c.Next()
	}
}

// OptionalAuth records the identity of a valid token and never rejects the request.
func OptionalAuth(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := BearerToken(c)
		if tokenString == "" {
			tokenString = c.Cookies(AuthCookie)
		}
		if tokenString != "" {
			if claims, err := authService.ValidateToken(tokenString); err == nil {
				id := services.IdentityFromClaims(claims)
				c.Locals(identityKey, id)
				c.Locals("user_id", id.UserID)
			}
		}
		return c.Next()
	}
}

// CurrentIdentity returns the authenticated identity of the request.
func CurrentIdentity(c *fiber.Ctx) (services.Identity, bool) {
	id, ok := c.Locals(identityKey).(services.Identity)
	return id, ok && id.UserID != ""
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
