package handlers

import (
	"multistore/internal/middleware"
	"multistore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// StorefrontHandler serves the JSON endpoints of a store's storefront.
type StorefrontHandler struct {
	products   *services.ProductService
	carts      *services.CartService
	wishlists  *services.WishlistService
	shipping   *services.ShippingService
	blog       *services.BlogService
	newsletter *services.NewsletterService
	validate   *validator.Validate
}

// NewStorefrontHandler creates a new StorefrontHandler.
func NewStorefrontHandler(
	products *services.ProductService,
	carts *services.CartService,
	wishlists *services.WishlistService,
	shipping *services.ShippingService,
	blog *services.BlogService,
	newsletter *services.NewsletterService,
) *StorefrontHandler {
	return &StorefrontHandler{
		products:   products,
		carts:      carts,
		wishlists:  wishlists,
		shipping:   shipping,
		blog:       blog,
		newsletter: newsletter,
		validate:   validator.New(),
	}
}

// RegisterRoutes registers the storefront routes on a store router.
func (h *StorefrontHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products", h.HandleGetProducts)
	router.Get("/products/:id", h.HandleGetProduct)
	router.Get("/categories", h.HandleGetCategories)
	router.Get("/shipping-methods", h.HandleGetShippingMethods)
	router.Get("/blog", h.HandleGetPosts)
	router.Get("/blog/:post", h.HandleGetPost)
	router.Post("/newsletter", h.HandleSubscribe)

	cart := router.Group("/cart")
	cart.Get("/", h.HandleGetCart)
	cart.Post("/items", h.HandleAddToCart)
	cart.Put("/items/:id", h.HandleUpdateCartItem)
	cart.Delete("/items/:id", h.HandleRemoveCartItem)

	wishlist := router.Group("/wishlist", middleware.CustomerRequired())
	wishlist.Get("/", h.HandleGetWishlist)
	wishlist.Post("/toggle", h.HandleToggleWishlist)
	wishlist.Delete("/:productId", h.HandleRemoveWishlist)
}

// HandleGetProducts lists the active products of the store.
func (h *StorefrontHandler) HandleGetProducts(c *fiber.Ctx) error {
	store := middleware.CurrentStore(c)
	limit := queryInt(c, "limit", services.DefaultPageSize)
	offset := queryInt(c, "offset", 0)
	products, err := h.products.Storefront(store.ID, c.Query("category"), limit, offset)
	if err != nil {
		return respondError(c, "Could not retrieve products", err)
	}
	return c.JSON(fiber.Map{
		"products": h.products.Views(store, products),
		"limit":    limit,
		"offset":   offset,
	})
}

// HandleGetProduct retrieves a single active product with its discount.
func (h *StorefrontHandler) HandleGetProduct(c *fiber.Ctx) error {
	store := middleware.CurrentStore(c)
	product, err := h.products.GetActiveProduct(store.ID, c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve product", err)
	}
	return c.JSON(h.products.View(store, *product))
}

// HandleGetCategories lists the store's categories.
func (h *StorefrontHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.products.GetCategories(middleware.CurrentStore(c).ID)
	if err != nil {
		return respondError(c, "Could not retrieve categories", err)
	}
	return c.JSON(categories)
}

// HandleGetShippingMethods lists the active shipping methods.
func (h *StorefrontHandler) HandleGetShippingMethods(c *fiber.Ctx) error {
	methods, err := h.shipping.List(middleware.CurrentStore(c).ID, true)
	if err != nil {
		return respondError(c, "Could not retrieve shipping methods", err)
	}
	return c.JSON(methods)
}

// HandleGetPosts lists published blog posts.
func (h *StorefrontHandler) HandleGetPosts(c *fiber.Ctx) error {
	posts, err := h.blog.List(middleware.CurrentStore(c).ID, true)
	if err != nil {
		return respondError(c, "Could not retrieve posts", err)
	}
	return c.JSON(posts)
}

// HandleGetPost retrieves a published post by slug.
func (h *StorefrontHandler) HandleGetPost(c *fiber.Ctx) error {
	post, err := h.blog.GetPublished(middleware.CurrentStore(c).ID, c.Params("post"))
	if err != nil {
		return respondError(c, "Could not retrieve post", err)
	}
	return c.JSON(post)
}

// SubscribeRequest is a newsletter signup.
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// HandleSubscribe adds an email to the newsletter. Subscribing twice is not an error.
func (h *StorefrontHandler) HandleSubscribe(c *fiber.Ctx) error {
	var req SubscribeRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	created, err := h.newsletter.Subscribe(c.UserContext(), middleware.CurrentStore(c).ID, req.Email)
	if err != nil {
		return respondError(c, "Could not subscribe", err)
	}
	if !created {
		return c.JSON(fiber.Map{"message": "Already subscribed"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Subscribed"})
}

// AddToCartRequest adds a product to the cart.
type AddToCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// UpdateCartItemRequest sets a line quantity. Out of range values are clamped.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

func (h *StorefrontHandler) respondCart(c *fiber.Ctx, status int) error {
	cart, err := h.carts.Get(middleware.CurrentStore(c).ID, cartOwner(c))
	if err != nil {
		return respondError(c, "Could not load cart", err)
	}
	return c.Status(status).JSON(cart)
}

func noCart(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "No cart for this request",
	})
}

// HandleGetCart returns the visitor's cart.
func (h *StorefrontHandler) HandleGetCart(c *fiber.Ctx) error {
	if cartOwner(c) == "" {
		return noCart(c)
	}
	return h.respondCart(c, fiber.StatusOK)
}

// HandleAddToCart adds a product, clamping the line to the available stock.
func (h *StorefrontHandler) HandleAddToCart(c *fiber.Ctx) error {
	owner := cartOwner(c)
	if owner == "" {
		return noCart(c)
	}
	var req AddToCartRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	if _, err := h.carts.Add(middleware.CurrentStore(c).ID, owner, req.ProductID, req.Quantity); err != nil {
		return respondError(c, "Could not add to cart", err)
	}
	return h.respondCart(c, fiber.StatusCreated)
}

// HandleUpdateCartItem changes a line quantity.
func (h *StorefrontHandler) HandleUpdateCartItem(c *fiber.Ctx) error {
	owner := cartOwner(c)
	if owner == "" {
		return noCart(c)
	}
	var req UpdateCartItemRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	if _, err := h.carts.UpdateQuantity(middleware.CurrentStore(c).ID, owner, c.Params("id"), req.Quantity); err != nil {
		return respondError(c, "Could not update cart", err)
	}
	return h.respondCart(c, fiber.StatusOK)
}

// HandleRemoveCartItem removes a line.
func (h *StorefrontHandler) HandleRemoveCartItem(c *fiber.Ctx) error {
	owner := cartOwner(c)
	if owner == "" {
		return noCart(c)
	}
	if err := h.carts.Remove(middleware.CurrentStore(c).ID, owner, c.Params("id")); err != nil {
		return respondError(c, "Could not remove cart item", err)
	}
	return h.respondCart(c, fiber.StatusOK)
}

// ToggleWishlistRequest names the product to toggle.
type ToggleWishlistRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// HandleToggleWishlist adds or removes a product from the customer's wishlist.
func (h *StorefrontHandler) HandleToggleWishlist(c *fiber.Ctx) error {
	id, _ := middleware.CustomerOf(c)
	var req ToggleWishlistRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	storeID := middleware.CurrentStore(c).ID
	added, err := h.wishlists.Toggle(storeID, id.UserID, req.ProductID)
	if err != nil {
		return respondError(c, "Could not update wishlist", err)
	}
	count, err := h.wishlists.Count(storeID, id.UserID)
	if err != nil {
		return respondError(c, "Could not update wishlist", err)
	}
	return c.JSON(fiber.Map{
		"in_wishlist":    added,
		"wishlist_count": count,
	})
}

// HandleGetWishlist lists the customer's wishlist.
func (h *StorefrontHandler) HandleGetWishlist(c *fiber.Ctx) error {
	id, _ := middleware.CustomerOf(c)
	store := middleware.CurrentStore(c)
	items, err := h.wishlists.List(store.ID, id.UserID)
	if err != nil {
		return respondError(c, "Could not retrieve wishlist", err)
	}
	views := make([]services.ProductView, 0, len(items))
	for _, item := range items {
		if item.Product != nil {
			views = append(views, h.products.View(store, *item.Product))
		}
	}
	return c.JSON(views)
}

// HandleRemoveWishlist removes a product from the wishlist.
func (h *StorefrontHandler) HandleRemoveWishlist(c *fiber.Ctx) error {
	id, _ := middleware.CustomerOf(c)
	if err := h.wishlists.Remove(middleware.CurrentStore(c).ID, id.UserID, c.Params("productId")); err != nil {
		return respondError(c, "Could not remove from wishlist", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
