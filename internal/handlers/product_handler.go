package handlers

import (
	"log"

	"multistore/internal/middleware"
	"multistore/internal/models"
	"multistore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles back office requests for the catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product and category routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)

	categoryRoutes := router.Group("/categories")
	categoryRoutes.Get("/", h.HandleGetCategories)
	categoryRoutes.Get("/:id", h.HandleGetCategory)
	categoryRoutes.Post("/", h.HandleCreateCategory)
	categoryRoutes.Put("/:id", h.HandleUpdateCategory)
	categoryRoutes.Delete("/:id", h.HandleDeleteCategory)
}

// HandleGetProducts lists every product of the store, active or not.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	store := middleware.CurrentStore(c)
	products, err := h.service.GetAllProducts(store.ID)
	if err != nil {
		return respondError(c, "Could not retrieve products", err)
	}
	return c.JSON(h.service.Views(store, products))
}

// HandleGetProductByID retrieves a single product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	store := middleware.CurrentStore(c)
	product, err := h.service.GetProductByID(store.ID, c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve product", err)
	}
	return c.JSON(h.service.View(store, *product))
}

// HandleCreateProduct creates a product within the limits of the store's plan.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	store := middleware.CurrentStore(c)
	product := models.Product{Active: true} // stays true unless the body says otherwise
	if ok, err := bind(c, h.validate, &product); !ok {
		return err
	}
	product.ID = ""
	if err := h.service.CreateProduct(store.ID, &product); err != nil {
		log.Printf("Error creating product in store %s: %v", store.Slug, err)
		return respondError(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.service.View(store, product))
}

// HandleUpdateProduct replaces a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	store := middleware.CurrentStore(c)
	var product models.Product
	if ok, err := bind(c, h.validate, &product); !ok {
		return err
	}
	product.ID = c.Params("id")
	if err := h.service.UpdateProduct(store.ID, &product); err != nil {
		return respondError(c, "Could not update product", err)
	}
	return c.JSON(h.service.View(store, product))
}

// HandleDeleteProduct deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(middleware.CurrentStore(c).ID, c.Params("id")); err != nil {
		return respondError(c, "Could not delete product", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetCategories lists the store's categories.
func (h *ProductHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.service.GetCategories(middleware.CurrentStore(c).ID)
	if err != nil {
		return respondError(c, "Could not retrieve categories", err)
	}
	return c.JSON(categories)
}

// HandleGetCategory retrieves a single category.
func (h *ProductHandler) HandleGetCategory(c *fiber.Ctx) error {
	category, err := h.service.GetCategory(middleware.CurrentStore(c).ID, c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve category", err)
	}
	return c.JSON(category)
}

// HandleCreateCategory creates a category.
func (h *ProductHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var category models.Category
	if ok, err := bind(c, h.validate, &category); !ok {
		return err
	}
	category.ID = ""
	if err := h.service.CreateCategory(middleware.CurrentStore(c).ID, &category); err != nil {
		return respondError(c, "Could not create category", err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// HandleUpdateCategory renames a category.
func (h *ProductHandler) HandleUpdateCategory(c *fiber.Ctx) error {
	var category models.Category
	if ok, err := bind(c, h.validate, &category); !ok {
		return err
	}
	category.ID = c.Params("id")
	if err := h.service.UpdateCategory(middleware.CurrentStore(c).ID, &category); err != nil {
		return respondError(c, "Could not update category", err)
	}
	return c.JSON(category)
}

// HandleDeleteCategory deletes a category.
func (h *ProductHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	if err := h.service.DeleteCategory(middleware.CurrentStore(c).ID, c.Params("id")); err != nil {
		return respondError(c, "Could not delete category", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
