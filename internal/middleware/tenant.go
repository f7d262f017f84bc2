package middleware

import (
	"errors"
	"log"

	"multistore/internal/models"
	"multistore/internal/repositories"
	"multistore/internal/services"

	"github.com/gofiber/fiber/v2"
)

const storeKey = "store"

// ResolveStore loads the store named by the :slug route parameter.
func ResolveStore(stores *services.StoreService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := c.Params("slug")
		store, err := stores.Resolve(slug)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) || errors.Is(err, services.ErrStoreUnavailable) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"message": "Store not found",
				})
			}
			log.Printf("Error resolving store %s: %v", slug, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not load store",
				"error":   err.Error(),
			})
		}
		c.Locals(storeKey, store)
		return c.Next()
	}
}

// AdminStore loads the store an authenticated admin manages. Platform
// operators pick the store with the X-Store-ID header.
func AdminStore(stores *services.StoreService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := CurrentIdentity(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authentication required"})
		}
		storeID := id.StoreID
		if id.Role == models.RoleSuperAdmin {
			if h := c.Get("X-Store-ID"); h != "" {
				storeID = h
			}
		}
		if storeID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "X-Store-ID header is required"})
		}
		store, err := stores.GetStore(storeID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Store not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not load store",
				"error":   err.Error(),
			})
		}
		c.Locals(storeKey, store)
		return c.Next()
	}
}

// CurrentStore returns the store resolved for the request.
func CurrentStore(c *fiber.Ctx) *models.Store {
	store, _ := c.Locals(storeKey).(*models.Store)
	return store
}

// CustomerOf returns the identity when it is a customer of the resolved store.
func CustomerOf(c *fiber.Ctx) (services.Identity, bool) {
	id, ok := CurrentIdentity(c)
	store := CurrentStore(c)
	if !ok || store == nil || id.Role != models.RoleCustomer || id.StoreID != store.ID {
		return services.Identity{}, false
	}
	return id, true
}

// CustomerRequired rejects requests without a customer of the resolved store.
func CustomerRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CustomerOf(c); !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Sign in to continue",
			})
		}
		return c.Next()
	}
}
