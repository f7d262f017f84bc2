// Package app wires repositories, services, event handlers and HTTP routes
// into a ready to serve fiber application.
package app

import (
	"errors"
	"log"
	"strings"
	"time"

	"multistore/internal/cache"
	"multistore/internal/config"
	"multistore/internal/events"
	"multistore/internal/flash"
	"multistore/internal/handlers"
	"multistore/internal/middleware"
	"multistore/internal/models"
	"multistore/internal/pages"
	"multistore/internal/payment"
	"multistore/internal/payment/cashfree"
	"multistore/internal/pricing"
	"multistore/internal/repositories"
	"multistore/internal/services"
	"multistore/internal/theme"
	"multistore/internal/webhooks"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/fiber/v2/utils"
	"gorm.io/gorm"
)

// Options replace default collaborators.
type Options struct {
	// Publisher delivers events. Nil delivers them in-process to Events.
	Publisher events.Publisher
	// Gateways overrides the payment gateways by method.
	Gateways map[string]payment.Gateway
	// Mailer sends notification emails. Nil logs them.
	Mailer webhooks.Mailer
	// DisableLogger turns off request logging.
	DisableLogger bool
}

// Server is the assembled platform.
type Server struct {
	App      *fiber.App
	Events   *events.Router
	Stores   *services.StoreService
	Auth     *services.AuthService
	Plans    *services.PlanService
	Products *services.ProductService
	Shipping *services.ShippingService
	Blog     *services.BlogService

	inline *events.Inline
}

// Close waits for in-process event handlers to finish. Events published
// through a broker are not affected.
func (s *Server) Close() {
	if s.inline != nil {
		s.inline.Close()
	}
}

// New builds the platform over db.
func New(cfg config.Config, db *gorm.DB, opts Options) *Server {
	// --- Repositories ---
	storeRepo := repositories.NewGORMStoreRepository(db)
	planRepo := repositories.NewGORMPlanRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	wishlistRepo := repositories.NewGORMWishlistRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	shippingRepo := repositories.NewGORMShippingRepository(db)
	webhookRepo := repositories.NewGORMWebhookRepository(db)
	templateRepo := repositories.NewGORMTemplateRepository(db)
	blogRepo := repositories.NewGORMBlogRepository(db)
	newsletterRepo := repositories.NewGORMNewsletterRepository(db)

	// --- Events ---
	router := events.NewRouter()
	publisher := opts.Publisher
	var inline *events.Inline
	if publisher == nil {
		inline = events.NewInline(router)
		publisher = inline
	}

	// --- Services ---
	images := pricing.Images{BaseURL: cfg.ImageBaseURL, Placeholder: cfg.PlaceholderImage}
	gateways := map[string]payment.Gateway{}
	if cfg.Cashfree.Enabled() {
		gateways[models.PaymentCashfree] = cashfree.NewClient(cfg.Cashfree.Endpoint(), cfg.Cashfree.AppID, cfg.Cashfree.Secret)
	}
	for method, gw := range opts.Gateways {
		gateways[method] = gw
	}

	storeService := services.NewStoreService(storeRepo, planRepo)
	authService := services.NewAuthService(userRepo, publisher, cfg.JWTSecret)
	productService := services.NewProductService(productRepo, categoryRepo, storeRepo, planRepo,
		cache.NewTenantCache[[]models.Product](cfg.CatalogCacheTTL), images)
	cartService := services.NewCartService(cartRepo, productRepo, images)
	wishlistService := services.NewWishlistService(wishlistRepo, productRepo)
	orderService := services.NewOrderService(orderRepo, cartRepo, shippingRepo, cartService, productService, gateways, publisher)
	shippingService := services.NewShippingService(shippingRepo)
	planService := services.NewPlanService(planRepo)
	webhookService := services.NewWebhookService(webhookRepo)
	templateService := services.NewTemplateService(templateRepo)
	blogService := services.NewBlogService(blogRepo)
	newsletterService := services.NewNewsletterService(newsletterRepo, publisher)
	analyticsService := services.NewAnalyticsService(orderRepo)

	// --- Event handlers ---
	webhooks.NewDispatcher(webhookRepo, cfg.WebhookTimeout).Register(router)
	mailer := opts.Mailer
	if mailer == nil {
		mailer = webhooks.LogMailer{}
	}
	webhooks.NewNotifier(templateService, storeRepo, userRepo, mailer).Register(router)

	// --- Pages ---
	themes := theme.NewRegistry()
	bridge := pages.NewBridge(theme.NewResolver(themes), cfg.AssetVersion)
	composer := pages.NewComposer(cartService, wishlistService, flash.NewDeduper(cfg.FlashDedupWindow), cfg.IsDemo)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService, storeService, cartService)
	storefrontHandler := handlers.NewStorefrontHandler(productService, cartService, wishlistService, shippingService, blogService, newsletterService)
	orderHandler := handlers.NewOrderHandler(orderService, authService)
	productHandler := handlers.NewProductHandler(productService)
	adminHandler := handlers.NewAdminHandler(storeService, authService, shippingService, themes)
	contentHandler := handlers.NewContentHandler(blogService, webhookService, templateService, newsletterService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	platformHandler := handlers.NewPlatformHandler(planService, storeService, authService)
	pageHandler := handlers.NewPageHandler(bridge, composer, handlers.PageServices{
		Auth:      authService,
		Products:  productService,
		Carts:     cartService,
		Wishlists: wishlistService,
		Shipping:  shippingService,
		Orders:    orderService,
		Blog:      blogService,
	})

	// --- Initialize Fiber App ---
	app := fiber.New(fiber.Config{
		AppName:      "multistore",
		ErrorHandler: errorHandler,
	})

	// --- Middleware ---
	app.Use(recover.New())
	if !opts.DisableLogger {
		app.Use(logger.New()) // Request logger
	}
	app.Use(middleware.DemoGuard(middleware.DemoConfig{
		Platform:       cfg.IsDemo,
		ExemptPrefixes: cfg.DemoExemptPaths,
		StoreIsDemo:    demoStoreLookup(storeService, authService),
	}))
	app.Use(middleware.Sessions(session.New(session.Config{
		Expiration:     24 * time.Hour,
		KeyLookup:      "cookie:multistore_session",
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})))
	if cfg.CSRFEnabled {
		app.Use(csrf.New(csrf.Config{
			KeyLookup:      "header:X-CSRF-Token",
			CookieName:     "multistore_csrf",
			CookieSameSite: fiber.CookieSameSiteLaxMode,
			Expiration:     time.Hour,
			ContextKey:     "csrf",
			Next: func(c *fiber.Ctx) bool {
				// token-authenticated API clients cannot be forged into a request
				return middleware.BearerToken(c) != ""
			},
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"message": "Invalid CSRF token",
					"error":   err.Error(),
				})
			},
		}))
	}

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")

	storeAPI := apiV1.Group("/stores/:slug", middleware.ResolveStore(storeService), middleware.OptionalAuth(authService))
	authHandler.RegisterRoutes(storeAPI)
	storefrontHandler.RegisterRoutes(storeAPI)
	orderHandler.RegisterRoutes(storeAPI)

	// login routes are registered before the authenticated groups that share their prefix
	authHandler.RegisterAdminRoutes(apiV1.Group("/admin"))
	authHandler.RegisterPlatformRoutes(apiV1.Group("/platform"))

	admin := apiV1.Group("/admin",
		middleware.AuthRequired(authService, models.RoleAdmin, models.RoleSuperAdmin),
		middleware.AdminStore(storeService))
	productHandler.RegisterRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)
	adminHandler.RegisterRoutes(admin)
	contentHandler.RegisterRoutes(admin)
	analyticsHandler.RegisterRoutes(admin)

	platform := apiV1.Group("/platform", middleware.AuthRequired(authService, models.RoleSuperAdmin))
	platformHandler.RegisterRoutes(platform)

	// --- Storefront pages ---
	storePages := app.Group("/store/:slug", middleware.ResolveStore(storeService), middleware.OptionalAuth(authService))
	pageHandler.RegisterRoutes(storePages)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return &Server{
		App:      app,
		Events:   router,
		Stores:   storeService,
		Auth:     authService,
		Plans:    planService,
		Products: productService,
		Shipping: shippingService,
		Blog:     blogService,
		inline:   inline,
	}
}

// errorHandler renders errors no handler answered in the standard error body.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{
		"message": utils.StatusMessage(code),
		"error":   err.Error(),
	})
}

// demoStoreLookup reports whether a request targets a demo store: by slug on
// storefront paths, by the admin's token on back office paths.
func demoStoreLookup(stores *services.StoreService, auth *services.AuthService) func(*fiber.Ctx) bool {
	return func(c *fiber.Ctx) bool {
		path := c.Path()
		if slug := slugFromPath(path); slug != "" {
			store, err := stores.Resolve(slug)
			return err == nil && store.IsDemo
		}
		if !strings.HasPrefix(path, "/api/v1/admin/") {
			return false
		}
		token := middleware.BearerToken(c)
		if token == "" {
			token = c.Cookies(middleware.AuthCookie)
		}
		if token == "" {
			return false
		}
		claims, err := auth.ValidateToken(token)
		if err != nil {
			return false
		}
		id := services.IdentityFromClaims(claims)
		storeID := id.StoreID
		if id.Role == models.RoleSuperAdmin && c.Get("X-Store-ID") != "" {
			storeID = c.Get("X-Store-ID")
		}
		store, err := stores.GetStore(storeID)
		return err == nil && store.IsDemo
	}
}

func slugFromPath(path string) string {
	for _, prefix := range []string{"/api/v1/stores/", "/store/"} {
		if rest, ok := strings.CutPrefix(path, prefix); ok {
			slug, _, _ := strings.Cut(rest, "/")
			return slug
		}
	}
	return ""
}
