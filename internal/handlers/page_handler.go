package handlers

import (
	"errors"
	"log"

	"multistore/internal/flash"
	"multistore/internal/middleware"
	"multistore/internal/pages"
	"multistore/internal/repositories"
	"multistore/internal/services"
	"multistore/internal/theme"

	"github.com/gofiber/fiber/v2"
)

// PageServices are the services storefront pages read from.
type PageServices struct {
	Auth      *services.AuthService
	Products  *services.ProductService
	Carts     *services.CartService
	Wishlists *services.WishlistService
	Shipping  *services.ShippingService
	Orders    *services.OrderService
	Blog      *services.BlogService
}

// PageHandler renders storefront pages in the store's theme.
type PageHandler struct {
	bridge   *pages.Bridge
	composer *pages.Composer
	svc      PageServices
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(bridge *pages.Bridge, composer *pages.Composer, svc PageServices) *PageHandler {
	return &PageHandler{bridge: bridge, composer: composer, svc: svc}
}

// RegisterRoutes registers the page routes on a store router.
func (h *PageHandler) RegisterRoutes(router fiber.Router) {
	router.Use(h.bridge.VersionGuard())
	router.Get("/", h.HandleHome)
	router.Get("/products/:id", h.HandleProduct)
	router.Get("/cart", h.HandleCart)
	router.Get("/checkout", h.HandleCheckout)
	router.Get("/login", h.HandleLogin)
	router.Get("/register", h.HandleRegister)
	router.Get("/blog", h.HandleBlog)
	router.Get("/blog/:post", h.HandleBlogPost)
	router.Get("/wishlist", h.HandleWishlist)
	router.Get("/orders/:id", h.HandleOrderDetail)
}

// session composes the shared props of the request.
func (h *PageHandler) session(c *fiber.Ctx) pages.Session {
	store := middleware.CurrentStore(c)
	v := pages.Visitor{
		CartOwner:      cartOwner(c),
		LangParam:      c.Query("lang"),
		AcceptLanguage: c.Get(fiber.HeaderAcceptLanguage),
	}
	if id, ok := middleware.CustomerOf(c); ok {
		if user, err := h.svc.Auth.GetUser(id.UserID); err == nil {
			v.Customer = user
		} else {
			log.Printf("Warning: could not load customer %s: %v", id.UserID, err)
		}
	}
	if sess := middleware.Session(c); sess != nil {
		v.Flash = flash.Pull(sess)
	}
	if token, ok := c.Locals("csrf").(string); ok {
		v.CSRFToken = token
	}
	return h.composer.Compose(store, v)
}

func (h *PageHandler) render(c *fiber.Ctx, page theme.Page, props theme.Props) error {
	return h.bridge.Render(c, h.session(c), page, props)
}

// requireCustomer redirects guests to the login page. ok is false when a
// response was already written.
func (h *PageHandler) requireCustomer(c *fiber.Ctx) (string, bool, error) {
	if id, ok := middleware.CustomerOf(c); ok {
		return id.UserID, true, nil
	}
	flash.Push(middleware.Session(c), flash.Info("Please sign in to continue."))
	login := "/store/" + middleware.CurrentStore(c).Slug + "/login"
	if c.Get(pages.HeaderPartial) == "true" {
		c.Set(pages.HeaderLocation, login)
		return "", false, c.SendStatus(fiber.StatusConflict)
	}
	return "", false, c.Redirect(login, fiber.StatusFound)
}

func (h *PageHandler) notFound(c *fiber.Ctx, what string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		c.Status(fiber.StatusNotFound)
		return h.render(c, theme.PageHome, theme.Props{"not_found": what})
	}
	return respondError(c, "Could not load "+what, err)
}

// HandleHome renders the catalog landing page.
func (h *PageHandler) HandleHome(c *fiber.Ctx) error {
	store := middleware.CurrentStore(c)
	limit := queryInt(c, "limit", services.DefaultPageSize)
	offset := queryInt(c, "offset", 0)
	products, err := h.svc.Products.Storefront(store.ID, c.Query("category"), limit, offset)
	if err != nil {
		return respondError(c, "Could not load products", err)
	}
	categories, err := h.svc.Products.GetCategories(store.ID)
	if err != nil {
		return respondError(c, "Could not load categories", err)
	}
	return h.render(c, theme.PageHome, theme.Props{
		"products":   h.svc.Products.Views(store, products),
		"categories": categories,
		"category":   c.Query("category"),
		"offset":     offset,
		"limit":      limit,
	})
}

// HandleProduct renders a product page.
func (h *PageHandler) HandleProduct(c *fiber.Ctx) error {
	store := middleware.CurrentStore(c)
	product, err := h.svc.Products.GetActiveProduct(store.ID, c.Params("id"))
	if err != nil {
		return h.notFound(c, "product", err)
	}
	props := theme.Props{"product": h.svc.Products.View(store, *product)}
	if id, ok := middleware.CustomerOf(c); ok {
		items, err := h.svc.Wishlists.List(store.ID, id.UserID)
		if err == nil {
			in := false
			for _, item := range items {
				if item.ProductID == product.ID {
					in = true
					break
				}
			}
			props["in_wishlist"] = in
		}
	}
	return h.render(c, theme.PageProduct, props)
}

// HandleCart renders the cart.
func (h *PageHandler) HandleCart(c *fiber.Ctx) error {
	cart, err := h.svc.Carts.Get(middleware.CurrentStore(c).ID, cartOwner(c))
	if err != nil {
		return respondError(c, "Could not load cart", err)
	}
	return h.render(c, theme.PageCart, theme.Props{"cart": cart})
}

// HandleCheckout renders checkout for a signed-in customer with a non-empty cart.
func (h *PageHandler) HandleCheckout(c *fiber.Ctx) error {
	customerID, ok, err := h.requireCustomer(c)
	if !ok {
		return err
	}
	store := middleware.CurrentStore(c)
	cart, err := h.svc.Carts.Get(store.ID, services.CustomerOwner(customerID))
	if err != nil {
		return respondError(c, "Could not load cart", err)
	}
	if len(cart.Lines) == 0 {
		flash.Push(middleware.Session(c), flash.Info("Your cart is empty."))
		return c.Redirect("/store/"+store.Slug+"/cart", fiber.StatusFound)
	}
	methods, err := h.svc.Shipping.List(store.ID, true)
	if err != nil {
		return respondError(c, "Could not load shipping methods", err)
	}
	return h.render(c, theme.PageCheckout, theme.Props{
		"cart":             cart,
		"shipping_methods": methods,
	})
}

// HandleLogin renders the sign in page.
func (h *PageHandler) HandleLogin(c *fiber.Ctx) error {
	return h.render(c, theme.PageLogin, theme.Props{"redirect": c.Query("redirect")})
}

// HandleRegister renders the sign up page.
func (h *PageHandler) HandleRegister(c *fiber.Ctx) error {
	return h.render(c, theme.PageRegister, theme.Props{})
}

// HandleBlog renders the published posts.
func (h *PageHandler) HandleBlog(c *fiber.Ctx) error {
	posts, err := h.svc.Blog.List(middleware.CurrentStore(c).ID, true)
	if err != nil {
		return respondError(c, "Could not load posts", err)
	}
	return h.render(c, theme.PageBlog, theme.Props{"posts": posts})
}

// HandleBlogPost renders one published post.
func (h *PageHandler) HandleBlogPost(c *fiber.Ctx) error {
	post, err := h.svc.Blog.GetPublished(middleware.CurrentStore(c).ID, c.Params("post"))
	if err != nil {
		return h.notFound(c, "post", err)
	}
	return h.render(c, theme.PageBlogPost, theme.Props{"post": post})
}

// HandleWishlist renders the customer's wishlist.
func (h *PageHandler) HandleWishlist(c *fiber.Ctx) error {
	customerID, ok, err := h.requireCustomer(c)
	if !ok {
		return err
	}
	store := middleware.CurrentStore(c)
	items, err := h.svc.Wishlists.List(store.ID, customerID)
	if err != nil {
		return respondError(c, "Could not load wishlist", err)
	}
	views := make([]services.ProductView, 0, len(items))
	for _, item := range items {
		if item.Product != nil {
			views = append(views, h.svc.Products.View(store, *item.Product))
		}
	}
	return h.render(c, theme.PageWishlist, theme.Props{"products": views})
}

// HandleOrderDetail renders one of the customer's own orders.
func (h *PageHandler) HandleOrderDetail(c *fiber.Ctx) error {
	customerID, ok, err := h.requireCustomer(c)
	if !ok {
		return err
	}
	store := middleware.CurrentStore(c)
	order, err := h.svc.Orders.GetOrder(store.ID, c.Params("id"), customerID)
	if err != nil {
		return h.notFound(c, "order", err)
	}
	money := services.Money(store)
	return h.render(c, theme.PageOrderDetail, theme.Props{
		"order": order,
		"totals": fiber.Map{
			"subtotal": money.Format(order.Subtotal),
			"shipping": money.Format(order.ShippingCost),
			"total":    money.Format(order.Total),
		},
	})
}
