package handlers

import (
	"log"

	"multistore/internal/models"
	"multistore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PlatformHandler serves platform operator routes: plans and stores.
type PlatformHandler struct {
	plans    *services.PlanService
	stores   *services.StoreService
	auth     *services.AuthService
	validate *validator.Validate
}

// NewPlatformHandler creates a new PlatformHandler.
func NewPlatformHandler(plans *services.PlanService, stores *services.StoreService, auth *services.AuthService) *PlatformHandler {
	return &PlatformHandler{
		plans:    plans,
		stores:   stores,
		auth:     auth,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the platform routes.
func (h *PlatformHandler) RegisterRoutes(router fiber.Router) {
	plans := router.Group("/plans")
	plans.Get("/", h.HandleGetPlans)
	plans.Get("/:id", h.HandleGetPlan)
	plans.Post("/", h.HandleCreatePlan)
	plans.Put("/:id", h.HandleUpdatePlan)
	plans.Delete("/:id", h.HandleDeletePlan)

	stores := router.Group("/stores")
	stores.Get("/", h.HandleGetStores)
	stores.Post("/", h.HandleCreateStore)
	stores.Put("/:id/plan", h.HandleAssignPlan)
	stores.Put("/:id/status", h.HandleSetStoreStatus)
}

// HandleGetPlans lists the plans.
func (h *PlatformHandler) HandleGetPlans(c *fiber.Ctx) error {
	plans, err := h.plans.GetAllPlans()
	if err != nil {
		return respondError(c, "Could not retrieve plans", err)
	}
	return c.JSON(plans)
}

// HandleGetPlan retrieves one plan.
func (h *PlatformHandler) HandleGetPlan(c *fiber.Ctx) error {
	plan, err := h.plans.GetPlan(c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve plan", err)
	}
	return c.JSON(plan)
}

// HandleCreatePlan creates a plan.
func (h *PlatformHandler) HandleCreatePlan(c *fiber.Ctx) error {
	var plan models.Plan
	if ok, err := bind(c, h.validate, &plan); !ok {
		return err
	}
	plan.ID = ""
	if err := h.plans.CreatePlan(&plan); err != nil {
		return respondError(c, "Could not create plan", err)
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

// HandleUpdatePlan replaces a plan.
func (h *PlatformHandler) HandleUpdatePlan(c *fiber.Ctx) error {
	var plan models.Plan
	if ok, err := bind(c, h.validate, &plan); !ok {
		return err
	}
	plan.ID = c.Params("id")
	if err := h.plans.UpdatePlan(&plan); err != nil {
		return respondError(c, "Could not update plan", err)
	}
	return c.JSON(plan)
}

// HandleDeletePlan deletes a plan.
func (h *PlatformHandler) HandleDeletePlan(c *fiber.Ctx) error {
	if err := h.plans.DeletePlan(c.Params("id")); err != nil {
		return respondError(c, "Could not delete plan", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetStores lists every store.
func (h *PlatformHandler) HandleGetStores(c *fiber.Ctx) error {
	stores, err := h.stores.ListStores()
	if err != nil {
		return respondError(c, "Could not retrieve stores", err)
	}
	return c.JSON(stores)
}

// CreateStoreRequest opens a store together with its first administrator.
type CreateStoreRequest struct {
	Slug          string `json:"slug" validate:"required,min=2,max=100"`
	Name          string `json:"name" validate:"required,min=2,max=150"`
	PlanID        string `json:"plan_id"`
	Theme         string `json:"theme"`
	AdminName     string `json:"admin_name" validate:"required,min=2,max=100"`
	AdminEmail    string `json:"admin_email" validate:"required,email"`
	AdminPassword string `json:"admin_password" validate:"required,min=6"`
}

// HandleCreateStore opens a store and its administrator account.
func (h *PlatformHandler) HandleCreateStore(c *fiber.Ctx) error {
	var req CreateStoreRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	store := models.Store{Slug: req.Slug, Name: req.Name, PlanID: req.PlanID, Theme: req.Theme, Enabled: true}
	if err := h.stores.CreateStore(&store); err != nil {
		return respondError(c, "Could not create store", err)
	}
	admin := models.User{
		StoreID:  store.ID,
		Name:     req.AdminName,
		Email:    req.AdminEmail,
		Password: req.AdminPassword,
		Role:     models.RoleAdmin,
	}
	if err := h.auth.CreateUser(&admin); err != nil {
		log.Printf("Error creating admin for store %s: %v", store.Slug, err)
		return respondError(c, "Could not create store administrator", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"store": store,
		"admin": admin,
	})
}

// AssignPlanRequest names the plan to put a store on.
type AssignPlanRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
}

// HandleAssignPlan places a store on a plan.
func (h *PlatformHandler) HandleAssignPlan(c *fiber.Ctx) error {
	var req AssignPlanRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	store, err := h.stores.AssignPlan(c.Params("id"), req.PlanID)
	if err != nil {
		return respondError(c, "Could not assign plan", err)
	}
	return c.JSON(store)
}

// StoreStatusRequest opens or closes a storefront.
type StoreStatusRequest struct {
	Enabled bool `json:"enabled"`
}

// HandleSetStoreStatus opens or closes a storefront.
func (h *PlatformHandler) HandleSetStoreStatus(c *fiber.Ctx) error {
	var req StoreStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	store, err := h.stores.SetEnabled(c.Params("id"), req.Enabled)
	if err != nil {
		return respondError(c, "Could not update store", err)
	}
	return c.JSON(store)
}
