package handlers

import (
	"multistore/internal/middleware"
	"multistore/internal/models"
	"multistore/internal/services"
	"multistore/internal/theme"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the back office settings, navigation, customers and
// shipping methods of the admin's store.
type AdminHandler struct {
	stores   *services.StoreService
	auth     *services.AuthService
	shipping *services.ShippingService
	themes   *theme.Registry
	validate *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(stores *services.StoreService, auth *services.AuthService, shipping *services.ShippingService, themes *theme.Registry) *AdminHandler {
	return &AdminHandler{
		stores:   stores,
		auth:     auth,
		shipping: shipping,
		themes:   themes,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the back office routes.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/nav", h.HandleGetNav)
	router.Get("/customers", h.HandleGetCustomers)

	settings := router.Group("/settings")
	settings.Get("/", h.HandleGetSettings)
	settings.Put("/general", h.HandleUpdateGeneral)
	settings.Put("/currency", h.HandleUpdateCurrency)
	settings.Put("/theme", h.HandleUpdateTheme)
	settings.Get("/themes", h.HandleGetThemes)

	shipping := router.Group("/shipping-methods")
	shipping.Get("/", h.HandleGetShippingMethods)
	shipping.Get("/:id", h.HandleGetShippingMethod)
	shipping.Post("/", h.HandleCreateShippingMethod)
	shipping.Put("/:id", h.HandleUpdateShippingMethod)
	shipping.Delete("/:id", h.HandleDeleteShippingMethod)
}

// HandleGetNav returns the sidebar for the caller's role.
func (h *AdminHandler) HandleGetNav(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	return c.JSON(fiber.Map{"items": services.Sidebar(id.Role)})
}

// HandleGetCustomers lists the store's customers.
func (h *AdminHandler) HandleGetCustomers(c *fiber.Ctx) error {
	customers, err := h.auth.ListCustomers(middleware.CurrentStore(c).ID)
	if err != nil {
		return respondError(c, "Could not retrieve customers", err)
	}
	return c.JSON(customers)
}

// HandleGetSettings returns the store settings.
func (h *AdminHandler) HandleGetSettings(c *fiber.Ctx) error {
	store := middleware.CurrentStore(c)
	return c.JSON(fiber.Map{
		"store":  store,
		"themes": h.themes.Catalog(),
		"sample": services.Money(store).Format(1234.5),
	})
}

// HandleUpdateGeneral updates the brand settings.
func (h *AdminHandler) HandleUpdateGeneral(c *fiber.Ctx) error {
	var in services.GeneralSettings
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}
	store, err := h.stores.UpdateGeneral(middleware.CurrentStore(c).ID, in)
	if err != nil {
		return respondError(c, "Could not update settings", err)
	}
	return c.JSON(store)
}

// HandleUpdateCurrency updates the currency display settings.
func (h *AdminHandler) HandleUpdateCurrency(c *fiber.Ctx) error {
	var in services.CurrencySettings
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}
	store, err := h.stores.UpdateCurrency(middleware.CurrentStore(c).ID, in)
	if err != nil {
		return respondError(c, "Could not update currency", err)
	}
	return c.JSON(fiber.Map{
		"store":  store,
		"sample": services.Money(store).Format(1234.5),
	})
}

// ThemeRequest selects a storefront theme.
type ThemeRequest struct {
	Theme string `json:"theme" validate:"required"`
}

// HandleUpdateTheme switches the storefront theme.
func (h *AdminHandler) HandleUpdateTheme(c *fiber.Ctx) error {
	var req ThemeRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	store, err := h.stores.UpdateTheme(middleware.CurrentStore(c).ID, req.Theme)
	if err != nil {
		return respondError(c, "Could not update theme", err)
	}
	return c.JSON(store)
}

// HandleGetThemes lists the available themes.
func (h *AdminHandler) HandleGetThemes(c *fiber.Ctx) error {
	return c.JSON(h.themes.Catalog())
}

// HandleGetShippingMethods lists every shipping method.
func (h *AdminHandler) HandleGetShippingMethods(c *fiber.Ctx) error {
	methods, err := h.shipping.List(middleware.CurrentStore(c).ID, false)
	if err != nil {
		return respondError(c, "Could not retrieve shipping methods", err)
	}
	return c.JSON(methods)
}

// HandleGetShippingMethod retrieves one shipping method.
func (h *AdminHandler) HandleGetShippingMethod(c *fiber.Ctx) error {
	method, err := h.shipping.Get(middleware.CurrentStore(c).ID, c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve shipping method", err)
	}
	return c.JSON(method)
}

// HandleCreateShippingMethod creates a shipping method.
func (h *AdminHandler) HandleCreateShippingMethod(c *fiber.Ctx) error {
	var method models.ShippingMethod
	if ok, err := bind(c, h.validate, &method); !ok {
		return err
	}
	method.ID = ""
	if err := h.shipping.Create(middleware.CurrentStore(c).ID, &method); err != nil {
		return respondError(c, "Could not create shipping method", err)
	}
	return c.Status(fiber.StatusCreated).JSON(method)
}

// HandleUpdateShippingMethod replaces a shipping method.
func (h *AdminHandler) HandleUpdateShippingMethod(c *fiber.Ctx) error {
	var method models.ShippingMethod
	if ok, err := bind(c, h.validate, &method); !ok {
		return err
	}
	method.ID = c.Params("id")
	if err := h.shipping.Update(middleware.CurrentStore(c).ID, &method); err != nil {
		return respondError(c, "Could not update shipping method", err)
	}
	return c.JSON(method)
}

// HandleDeleteShippingMethod deletes a shipping method.
func (h *AdminHandler) HandleDeleteShippingMethod(c *fiber.Ctx) error {
	if err := h.shipping.Delete(middleware.CurrentStore(c).ID, c.Params("id")); err != nil {
		return respondError(c, "Could not delete shipping method", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
