package handlers

import (
	"log"
	"time"

	"multistore/internal/flash"
	"multistore/internal/middleware"
	"multistore/internal/models"
	"multistore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	stores      *services.StoreService
	carts       *services.CartService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, stores *services.StoreService, carts *services.CartService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		stores:      stores,
		carts:       carts,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the customer authentication routes on a store router.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
	authRoutes.Post("/forgot-password", h.HandleForgotPassword)
	authRoutes.Post("/reset-password", h.HandleResetPassword)
}

// RegisterAdminRoutes registers store admin login.
func (h *AuthHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Post("/auth/login", h.HandleAdminLogin)
}

// RegisterPlatformRoutes registers platform operator login.
func (h *AuthHandler) RegisterPlatformRoutes(router fiber.Router) {
	router.Post("/auth/login", h.HandlePlatformLogin)
}

// RegisterRequest represents the request body for customer registration.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminLoginRequest is a login into a store's back office.
type AdminLoginRequest struct {
	StoreSlug string `json:"store" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
}

// ForgotPasswordRequest asks for a reset token.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest consumes a reset token.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required,uuid"`
	Password string `json:"password" validate:"required,min=6"`
}

// HandleRegister handles new customer registration. The guest cart follows
// the customer into their account.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	store := middleware.CurrentStore(c)
	var req RegisterRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	user := models.User{Name: req.Name, Email: req.Email, Password: req.Password}
	if err := h.authService.RegisterCustomer(c.UserContext(), store.ID, &user); err != nil {
		log.Printf("Error registering customer in store %s: %v", store.Slug, err)
		return respondError(c, "Registration failed", err)
	}

	token, err := h.authService.IssueToken(&user)
	if err != nil {
		return respondError(c, "Could not sign in", err)
	}
	h.signIn(c, store, &user, token)
	flash.Push(middleware.Session(c), flash.Success("Welcome, "+user.Name+"!"))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
		"token":   token,
	})
}

// HandleLogin handles customer login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	store := middleware.CurrentStore(c)
	var req LoginRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	token, user, err := h.authService.Login(store.ID, req.Email, req.Password, models.RoleCustomer)
	if err != nil {
		log.Printf("Error during login for %s in store %s: %v", req.Email, store.Slug, err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication failed",
			"error":   err.Error(),
		})
	}
	h.signIn(c, store, user, token)

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// HandleLogout clears the auth cookie.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	c.ClearCookie(middleware.AuthCookie)
	flash.Push(middleware.Session(c), flash.Info("You have been signed out."))
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// signIn sets the auth cookie and moves the guest cart to the customer.
func (h *AuthHandler) signIn(c *fiber.Ctx, store *models.Store, user *models.User, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AuthCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(24 * time.Hour),
	})
	if sess := middleware.Session(c); sess != nil && h.carts != nil {
		guest := services.GuestOwner(sess.ID())
		if err := h.carts.Merge(store.ID, guest, services.CustomerOwner(user.ID)); err != nil {
			log.Printf("Warning: could not merge guest cart in store %s: %v", store.Slug, err)
		}
	}
}

// HandleForgotPassword issues a password reset token. The response never
// reveals whether the email is registered.
func (h *AuthHandler) HandleForgotPassword(c *fiber.Ctx) error {
	store := middleware.CurrentStore(c)
	var req ForgotPasswordRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	if _, err := h.authService.ForgotPassword(c.UserContext(), store.ID, req.Email); err != nil {
		return respondError(c, "Could not start password reset", err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "If the email is registered, a reset link has been sent",
	})
}

// HandleResetPassword sets a new password from a reset token.
func (h *AuthHandler) HandleResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	if err := h.authService.ResetPassword(req.Token, req.Password); err != nil {
		return respondError(c, "Password reset failed", err)
	}
	return c.JSON(fiber.Map{"message": "Password updated"})
}

// HandleAdminLogin signs a store administrator in.
func (h *AuthHandler) HandleAdminLogin(c *fiber.Ctx) error {
	var req AdminLoginRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	store, err := h.stores.Resolve(req.StoreSlug)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication failed",
			"error":   services.ErrInvalidCredentials.Error(),
		})
	}
	token, user, err := h.authService.Login(store.ID, req.Email, req.Password, models.RoleAdmin)
	if err != nil {
		log.Printf("Error during admin login for %s: %v", req.Email, err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication failed",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// HandlePlatformLogin signs a platform operator in. Operators belong to no store.
func (h *AuthHandler) HandlePlatformLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	token, user, err := h.authService.Login("", req.Email, req.Password, models.RoleSuperAdmin)
	if err != nil {
		log.Printf("Error during platform login for %s: %v", req.Email, err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication failed",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}
