package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"multistore/internal/flash"
	"multistore/internal/middleware"
	"multistore/internal/repositories"
	"multistore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service     *services.OrderService
	authService *services.AuthService
	validate    *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, authService *services.AuthService) *OrderHandler {
	return &OrderHandler{
		service:     service,
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the customer order routes on a store router.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders", middleware.CustomerRequired())
	orderRoutes.Get("/", h.HandleGetCustomerOrders)
	orderRoutes.Get("/:id", h.HandleGetCustomerOrder)
	orderRoutes.Post("/", h.HandleCreateOrder)
	router.Post("/payments/cashfree/verify", middleware.CustomerRequired(), h.HandleVerifyPayment)
}

// RegisterAdminRoutes registers the back office order routes.
func (h *OrderHandler) RegisterAdminRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Put("/:id/status", h.HandleUpdateOrderStatus)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
}

// HandleGetOrders lists the store's orders, optionally filtered by status
// and a from/to date range (YYYY-MM-DD).
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	filter := repositories.OrderFilter{Status: c.Query("status")}
	var err error
	if filter.From, filter.To, err = dateRange(c); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid date range",
			"error":   err.Error(),
		})
	}
	orders, err := h.service.ListOrders(middleware.CurrentStore(c).ID, filter)
	if err != nil {
		return respondError(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order of the store.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.GetOrder(middleware.CurrentStore(c).ID, orderID, "")
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Order with ID %s not found", orderID),
			})
		}
		return respondError(c, "Could not retrieve order", err)
	}
	return c.JSON(order)
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var updateData struct {
		Status string `json:"status" validate:"required"`
	}
	if ok, err := bind(c, h.validate, &updateData); !ok {
		return err
	}

	order, err := h.service.UpdateOrderStatus(c.UserContext(), middleware.CurrentStore(c).ID, orderID, updateData.Status)
	if err != nil {
		log.Printf("Error updating order status for order %s: %v", orderID, err)
		return respondError(c, "Could not update order status", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %s status updated successfully to %s", order.Number, order.Status),
		"order":   order,
	})
}

// HandleGetCustomerOrders lists the signed-in customer's orders.
func (h *OrderHandler) HandleGetCustomerOrders(c *fiber.Ctx) error {
	id, _ := middleware.CustomerOf(c)
	orders, err := h.service.CustomerOrders(middleware.CurrentStore(c).ID, id.UserID)
	if err != nil {
		return respondError(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetCustomerOrder retrieves one of the customer's own orders.
func (h *OrderHandler) HandleGetCustomerOrder(c *fiber.Ctx) error {
	id, _ := middleware.CustomerOf(c)
	order, err := h.service.GetOrder(middleware.CurrentStore(c).ID, c.Params("id"), id.UserID)
	if err != nil {
		return respondError(c, "Could not retrieve order", err)
	}
	return c.JSON(order)
}

// HandleCreateOrder places an order from the customer's cart.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	id, _ := middleware.CustomerOf(c)
	store := middleware.CurrentStore(c)
	var in services.PlaceOrderInput
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}
	customer, err := h.authService.GetUser(id.UserID)
	if err != nil {
		return respondError(c, "Could not load customer", err)
	}

	placed, err := h.service.PlaceOrder(c.UserContext(), store, customer, services.CustomerOwner(customer.ID), in)
	if err != nil {
		log.Printf("Error creating order in store %s: %v", store.Slug, err)
		if placed != nil {
			// the order exists but the payment session could not be opened
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
				"message": "Order placed but payment could not be started",
				"error":   err.Error(),
				"order":   placed.Order,
			})
		}
		return respondError(c, "Could not create order", err)
	}

	flash.Push(middleware.Session(c), flash.Success(fmt.Sprintf("Order %s placed", placed.Order.Number)))
	return c.Status(fiber.StatusCreated).JSON(placed)
}

// VerifyPaymentRequest names the order to verify.
type VerifyPaymentRequest struct {
	OrderID string `json:"order_id" validate:"required"`
}

// HandleVerifyPayment asks the gateway for the payment outcome of an order.
func (h *OrderHandler) HandleVerifyPayment(c *fiber.Ctx) error {
	id, _ := middleware.CustomerOf(c)
	var req VerifyPaymentRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	customer, err := h.authService.GetUser(id.UserID)
	if err != nil {
		return respondError(c, "Could not load customer", err)
	}
	order, err := h.service.VerifyPayment(c.UserContext(), middleware.CurrentStore(c).ID, req.OrderID, customer)
	if err != nil {
		return respondError(c, "Could not verify payment", err)
	}
	return c.JSON(fiber.Map{
		"order":          order,
		"payment_status": order.PaymentStatus,
	})
}

// dateRange parses the from/to query parameters into [from, to). to includes its whole day.
func dateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if raw := c.Query("from"); raw != "" {
		if from, err = time.Parse(time.DateOnly, raw); err != nil {
			return from, to, fmt.Errorf("from: %w", err)
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err = time.Parse(time.DateOnly, raw); err != nil {
			return from, to, fmt.Errorf("to: %w", err)
		}
		to = to.AddDate(0, 0, 1)
	}
	return from, to, nil
}
