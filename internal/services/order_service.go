package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"multistore/internal/events"
	"multistore/internal/models"
	"multistore/internal/payment"
	"multistore/internal/pricing"
	"multistore/internal/repositories"

	"github.com/google/uuid"
)

// PlaceOrderInput is what a customer submits at checkout.
type PlaceOrderInput struct {
	ShippingMethodID string `json:"shipping_method_id" validate:"required"`
	ShippingAddress  string `json:"shipping_address" validate:"required,min=5,max=500"`
	PaymentMethod    string `json:"payment_method" validate:"required,oneof=cod cashfree"`
	Phone            string `json:"phone" validate:"omitempty,min=6,max=20"`
	ReturnURL        string `json:"return_url" validate:"omitempty,url"`
}

// PlacedOrder is the result of a checkout.
type PlacedOrder struct {
	Order            *models.Order `json:"order"`
	PaymentSessionID string        `json:"payment_session_id,omitempty"`
}

// CatalogInvalidator drops cached catalog listings of a store.
type CatalogInvalidator interface {
	InvalidateCatalog(storeID string)
}

// OrderService handles checkout and the order lifecycle.
type OrderService struct {
	orderRepo repositories.OrderRepository
	cartRepo  repositories.CartRepository
	shipping  repositories.ShippingRepository
	carts     *CartService
	catalog   CatalogInvalidator
	gateways  map[string]payment.Gateway
	publisher events.Publisher
	now       func() time.Time
}

// NewOrderService creates a new OrderService. carts is used to serialize
// checkout with other changes to the same cart. catalog, when set, is told
// whenever checkout changes stock.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	cartRepo repositories.CartRepository,
	shipping repositories.ShippingRepository,
	carts *CartService,
	catalog CatalogInvalidator,
	gateways map[string]payment.Gateway,
	publisher events.Publisher,
) *OrderService {
	if gateways == nil {
		gateways = map[string]payment.Gateway{}
	}
	if _, ok := gateways[models.PaymentCOD]; !ok {
		gateways[models.PaymentCOD] = payment.Manual{}
	}
	return &OrderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		shipping:  shipping,
		carts:     carts,
		catalog:   catalog,
		gateways:  gateways,
		publisher: publisher,
		now:       time.Now,
	}
}

// NewOrderNumber returns a human readable order number, ORD-<yyyymmdd>-<6 hex>.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix)
}

// PlaceOrder turns the cart of owner into an order. Stock is taken and the
// cart emptied in the same transaction that stores the order. Online payment
// needs a phone number for the gateway.
func (s *OrderService) PlaceOrder(ctx context.Context, store *models.Store, customer *models.User, owner string, in PlaceOrderInput) (*PlacedOrder, error) {
	gateway, ok := s.gateways[in.PaymentMethod]
	if !ok {
		return nil, fmt.Errorf("%w: payment method %s is not available", ErrPaymentFailed, in.PaymentMethod)
	}
	if in.PaymentMethod != models.PaymentCOD && strings.TrimSpace(in.Phone) == "" {
		return nil, fmt.Errorf("%w for %s payments", ErrPhoneRequired, in.PaymentMethod)
	}

	newOrder, err := s.placeLocked(store, customer, owner, in)
	if err != nil {
		return nil, err
	}
	log.Printf("Order %s placed in store %s", newOrder.Number, store.Slug)
	if s.catalog != nil {
		s.catalog.InvalidateCatalog(store.ID)
	}

	// 4. Announce
	events.Emit(ctx, s.publisher, events.OrderPlaced, store.ID, orderPayload(newOrder, customer, ""))

	placed := &PlacedOrder{Order: newOrder}
	if in.PaymentMethod == models.PaymentCOD {
		return placed, nil
	}

	// 5. Online payment session
	session, err := gateway.CreateSession(ctx, payment.Session{
		OrderRef: newOrder.Number,
		Amount:   newOrder.Total,
		Currency: store.Currency,
		Customer: payment.Customer{
			ID:    customer.ID,
			Name:  customer.Name,
			Email: customer.Email,
			Phone: strings.TrimSpace(in.Phone),
		},
		ReturnURL: in.ReturnURL,
	})
	if err != nil {
		if uerr := s.orderRepo.UpdatePayment(store.ID, newOrder.ID, models.PaymentFailed, newOrder.Status, ""); uerr != nil {
			log.Printf("Warning: failed to mark order %s payment failed: %v", newOrder.Number, uerr)
		}
		newOrder.PaymentStatus = models.PaymentFailed
		return placed, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}
	if err := s.orderRepo.UpdatePayment(store.ID, newOrder.ID, models.PaymentUnpaid, newOrder.Status, session.Ref); err != nil {
		return nil, err
	}
	newOrder.PaymentRef = session.Ref
	placed.PaymentSessionID = session.SessionID
	return placed, nil
}

// placeLocked prices the cart and stores the order while holding the cart
// lock of owner. Nothing slow happens under the lock.
func (s *OrderService) placeLocked(store *models.Store, customer *models.User, owner string, in PlaceOrderInput) (*models.Order, error) {
	if s.carts != nil {
		defer s.carts.locks.Lock(lockKey(store.ID, owner))()
	}

	// 1. Load the cart and price every line at its effective price
	items, err := s.cartRepo.Items(store.ID, owner)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	var subtotal float64
	var processedItems []models.OrderItem
	for _, item := range items {
		product := item.Product
		if product == nil || !product.Active {
			return nil, fmt.Errorf("product %s: %w", item.ProductID, repositories.ErrNotFound)
		}
		if product.Stock < item.Quantity {
			return nil, fmt.Errorf("%w for product %s (requested: %d, available: %d)", ErrInsufficientStock, product.Name, item.Quantity, product.Stock)
		}
		unit := pricing.EffectivePrice(product.Price, product.SalePrice)
		processedItems = append(processedItems, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			Price:     unit,
		})
		subtotal += unit * float64(item.Quantity)
	}

	// 2. Shipping
	method, err := s.shipping.GetByID(store.ID, in.ShippingMethodID)
	if err != nil {
		return nil, fmt.Errorf("shipping method: %w", err)
	}
	if !method.Active {
		return nil, fmt.Errorf("shipping method %s: %w", method.ID, repositories.ErrNotFound)
	}
	shippingCost := method.CostFor(subtotal)

	newOrder := &models.Order{
		StoreID:          store.ID,
		CustomerID:       customer.ID,
		Number:           NewOrderNumber(s.now()),
		Items:            processedItems,
		Subtotal:         subtotal,
		ShippingCost:     shippingCost,
		Total:            subtotal + shippingCost,
		Status:           models.OrderPending,
		PaymentMethod:    in.PaymentMethod,
		PaymentStatus:    models.PaymentUnpaid,
		ShippingMethodID: method.ID,
		ShippingAddress:  strings.TrimSpace(in.ShippingAddress),
	}

	// 3. Persist
	if err := s.orderRepo.Place(newOrder, owner); err != nil {
		if errors.Is(err, repositories.ErrStockConflict) {
			return nil, fmt.Errorf("%w: %v", ErrInsufficientStock, err)
		}
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}
	return newOrder, nil
}

// VerifyPayment asks the gateway whether an online order was paid and records
// the outcome. customerID restricts the lookup to that customer's orders.
func (s *OrderService) VerifyPayment(ctx context.Context, storeID, orderID string, customer *models.User) (*models.Order, error) {
	order, err := s.GetOrder(storeID, orderID, customer.ID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == models.PaymentPaid {
		return order, nil
	}
	gateway, ok := s.gateways[order.PaymentMethod]
	if !ok || order.PaymentMethod == models.PaymentCOD {
		return nil, fmt.Errorf("%w: order %s is not paid online", ErrPaymentFailed, order.Number)
	}

	ref := order.PaymentRef
	if ref == "" {
		ref = order.Number
	}
	status, err := gateway.Verify(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	if status == payment.StatusPaid {
		if err := s.orderRepo.UpdatePayment(storeID, order.ID, models.PaymentPaid, models.OrderProcessing, ref); err != nil {
			return nil, err
		}
		order.PaymentStatus = models.PaymentPaid
		order.Status = models.OrderProcessing
		events.Emit(ctx, s.publisher, events.OrderPaid, storeID, orderPayload(order, customer, ""))
		return order, nil
	}
	if status == payment.StatusPending {
		// checkout still open at the gateway, ask again later
		return order, nil
	}

	if err := s.orderRepo.UpdatePayment(storeID, order.ID, models.PaymentFailed, order.Status, ref); err != nil {
		return nil, err
	}
	order.PaymentStatus = models.PaymentFailed
	return order, nil
}

// UpdateOrderStatus moves an order to a new fulfilment status.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, storeID, id, status string) (*models.Order, error) {
	if !models.ValidOrderStatuses[status] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	order, err := s.orderRepo.GetByID(storeID, id)
	if err != nil {
		return nil, err
	}
	previous := order.Status
	if err := s.orderRepo.UpdateStatus(storeID, id, status); err != nil {
		return nil, fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	order.Status = status
	if previous != status {
		events.Emit(ctx, s.publisher, events.OrderStatusChanged, storeID, orderPayload(order, nil, previous))
	}
	return order, nil
}

// GetOrder retrieves an order. A non-empty customerID hides other customers' orders.
func (s *OrderService) GetOrder(storeID, id, customerID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(storeID, id)
	if err != nil {
		return nil, err
	}
	if customerID != "" && order.CustomerID != customerID {
		return nil, fmt.Errorf("order with ID %s: %w", id, repositories.ErrNotFound)
	}
	return order, nil
}

// ListOrders lists orders of a store, newest first.
func (s *OrderService) ListOrders(storeID string, filter repositories.OrderFilter) ([]models.Order, error) {
	if filter.Status != "" && !models.ValidOrderStatuses[filter.Status] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, filter.Status)
	}
	return s.orderRepo.List(storeID, filter)
}

// CustomerOrders lists the orders of one customer.
func (s *OrderService) CustomerOrders(storeID, customerID string) ([]models.Order, error) {
	return s.orderRepo.List(storeID, repositories.OrderFilter{CustomerID: customerID})
}

func orderPayload(o *models.Order, customer *models.User, previous string) events.OrderPayload {
	p := events.OrderPayload{
		OrderID:        o.ID,
		Number:         o.Number,
		Status:         o.Status,
		PreviousStatus: previous,
		PaymentStatus:  o.PaymentStatus,
		Total:          o.Total,
		CustomerID:     o.CustomerID,
	}
	if customer != nil {
		p.CustomerEmail = customer.Email
		p.CustomerName = customer.Name
	}
	return p
}
