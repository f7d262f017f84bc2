package services_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"multistore/internal/events"
	"multistore/internal/models"
	"multistore/internal/payment"
	"multistore/internal/pricing"
	"multistore/internal/repositories"
	"multistore/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	orders   *MockOrderRepository
	cart     *MockCartRepository
	shipping *MockShippingRepository
	gateway  *MockGateway
	pub      *MockPublisher
	catalog  *catalogSpy
	carts    *services.CartService
	service  *services.OrderService
}

type catalogSpy struct {
	invalidated []string
}

func (c *catalogSpy) InvalidateCatalog(storeID string) {
	c.invalidated = append(c.invalidated, storeID)
}

func newOrderFixture() orderFixture {
	f := orderFixture{
		orders:   new(MockOrderRepository),
		cart:     new(MockCartRepository),
		shipping: new(MockShippingRepository),
		gateway:  new(MockGateway),
		pub:      new(MockPublisher),
		catalog:  new(catalogSpy),
	}
	f.carts = services.NewCartService(f.cart, new(MockProductRepository), pricing.Images{})
	f.service = services.NewOrderService(f.orders, f.cart, f.shipping, f.carts, f.catalog,
		map[string]payment.Gateway{models.PaymentCashfree: f.gateway}, f.pub)
	return f
}

var (
	checkoutStore    = &models.Store{Base: models.Base{ID: "s"}, Slug: "shop", Currency: "INR"}
	checkoutCustomer = &models.User{Base: models.Base{ID: "c"}, Name: "Jo", Email: "jo@example.com"}
)

func cartLines() []models.CartItem {
	return []models.CartItem{
		{ProductID: "p1", Quantity: 2, Product: &models.Product{Base: models.Base{ID: "p1"}, Name: "Tee", Price: 100, SalePrice: 75, Stock: 5, Active: true}},
		{ProductID: "p2", Quantity: 1, Product: &models.Product{Base: models.Base{ID: "p2"}, Name: "Cap", Price: 20, Stock: 1, Active: true}},
	}
}

func TestNewOrderNumber(t *testing.T) {
	n := services.NewOrderNumber(time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^ORD-20260309-[0-9a-f]{6}$`), n)
}

func TestOrderService_PlaceOrderCOD(t *testing.T) {
	f := newOrderFixture()
	owner := services.CustomerOwner("c")

	f.cart.On("Items", "s", owner).Return(cartLines(), nil).Once()
	f.shipping.On("GetByID", "s", "ship").Return(&models.ShippingMethod{Base: models.Base{ID: "ship"}, Cost: 9, FreeOver: 150, Active: true}, nil).Once()
	f.orders.On("Place", mock.MatchedBy(func(o *models.Order) bool {
		return o.Subtotal == 170 && o.ShippingCost == 0 && o.Total == 170 &&
			len(o.Items) == 2 && o.Items[0].Price == 75 &&
			o.Status == models.OrderPending && o.PaymentStatus == models.PaymentUnpaid
	}), owner).Return(nil).Once()
	f.pub.On("Publish", mock.Anything, eventOfType(events.OrderPlaced)).Return(nil).Once()

	placed, err := f.service.PlaceOrder(context.Background(), checkoutStore, checkoutCustomer, owner, services.PlaceOrderInput{
		ShippingMethodID: "ship",
		ShippingAddress:  "1 Main Street",
		PaymentMethod:    models.PaymentCOD,
	})
	require.NoError(t, err)
	assert.Empty(t, placed.PaymentSessionID)
	assert.Equal(t, "c", placed.Order.CustomerID)
	assert.Equal(t, []string{"s"}, f.catalog.invalidated)
	f.orders.AssertExpectations(t)
	f.pub.AssertExpectations(t)
	f.gateway.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
}

func TestOrderService_PlaceOrderCashfree(t *testing.T) {
	f := newOrderFixture()
	owner := services.CustomerOwner("c")

	f.cart.On("Items", "s", owner).Return(cartLines(), nil).Once()
	f.shipping.On("GetByID", "s", "ship").Return(&models.ShippingMethod{Base: models.Base{ID: "ship"}, Cost: 9, Active: true}, nil).Once()
	f.orders.On("Place", mock.AnythingOfType("*models.Order"), owner).Return(nil).Once()
	f.pub.On("Publish", mock.Anything, eventOfType(events.OrderPlaced)).Return(nil).Once()
	f.gateway.On("CreateSession", mock.Anything, mock.MatchedBy(func(s payment.Session) bool {
		return s.Amount == 179 && s.Currency == "INR" && s.Customer.Email == "jo@example.com" &&
			s.Customer.Phone == "9876543210"
	})).Return(payment.SessionResult{Ref: "ORD-ref", SessionID: "sess-1"}, nil).Once()
	f.orders.On("UpdatePayment", "s", mock.Anything, models.PaymentUnpaid, models.OrderPending, "ORD-ref").Return(nil).Once()

	placed, err := f.service.PlaceOrder(context.Background(), checkoutStore, checkoutCustomer, owner, services.PlaceOrderInput{
		ShippingMethodID: "ship",
		ShippingAddress:  "1 Main Street",
		PaymentMethod:    models.PaymentCashfree,
		Phone:            " 9876543210 ",
	})
	require.NoError(t, err)
	assert.Equal(t, "sess-1", placed.PaymentSessionID)
	assert.Equal(t, "ORD-ref", placed.Order.PaymentRef)
	f.gateway.AssertExpectations(t)
	f.orders.AssertExpectations(t)
}

func TestOrderService_PlaceOrderReleasesCartBeforeAnnouncing(t *testing.T) {
	f := newOrderFixture()
	owner := services.CustomerOwner("c")

	f.cart.On("Items", "s", owner).Return(cartLines(), nil).Once()
	f.shipping.On("GetByID", "s", "ship").Return(&models.ShippingMethod{Base: models.Base{ID: "ship"}, Active: true}, nil).Once()
	f.orders.On("Place", mock.Anything, owner).Return(nil).Once()
	f.cart.On("Delete", "s", owner, "line").Return(nil).Once()

	cartFree := make(chan bool, 1)
	f.pub.On("Publish", mock.Anything, eventOfType(events.OrderPlaced)).Run(func(mock.Arguments) {
		done := make(chan struct{})
		go func() {
			_ = f.carts.Remove("s", owner, "line")
			close(done)
		}()
		select {
		case <-done:
			cartFree <- true
		case <-time.After(time.Second):
			cartFree <- false
		}
	}).Return(nil).Once()

	_, err := f.service.PlaceOrder(context.Background(), checkoutStore, checkoutCustomer, owner, services.PlaceOrderInput{
		ShippingMethodID: "ship",
		ShippingAddress:  "1 Main Street",
		PaymentMethod:    models.PaymentCOD,
	})
	require.NoError(t, err)
	assert.True(t, <-cartFree, "cart stayed locked while the order was announced")
}

func TestOrderService_PlaceOrderFailures(t *testing.T) {
	in := services.PlaceOrderInput{ShippingMethodID: "ship", ShippingAddress: "1 Main Street", PaymentMethod: models.PaymentCOD}

	t.Run("empty cart", func(t *testing.T) {
		f := newOrderFixture()
		f.cart.On("Items", "s", "guest:x").Return([]models.CartItem{}, nil).Once()
		_, err := f.service.PlaceOrder(context.Background(), checkoutStore, checkoutCustomer, "guest:x", in)
		assert.ErrorIs(t, err, services.ErrEmptyCart)
	})

	t.Run("not enough stock", func(t *testing.T) {
		f := newOrderFixture()
		lines := cartLines()
		lines[1].Quantity = 3
		f.cart.On("Items", "s", "guest:x").Return(lines, nil).Once()
		_, err := f.service.PlaceOrder(context.Background(), checkoutStore, checkoutCustomer, "guest:x", in)
		assert.ErrorIs(t, err, services.ErrInsufficientStock)
		f.orders.AssertNotCalled(t, "Place", mock.Anything, mock.Anything)
	})

	t.Run("stock taken concurrently", func(t *testing.T) {
		f := newOrderFixture()
		f.cart.On("Items", "s", "guest:x").Return(cartLines(), nil).Once()
		f.shipping.On("GetByID", "s", "ship").Return(&models.ShippingMethod{Base: models.Base{ID: "ship"}, Active: true}, nil).Once()
		f.orders.On("Place", mock.Anything, "guest:x").Return(repositories.ErrStockConflict).Once()
		_, err := f.service.PlaceOrder(context.Background(), checkoutStore, checkoutCustomer, "guest:x", in)
		assert.ErrorIs(t, err, services.ErrInsufficientStock)
		f.pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("unknown payment method", func(t *testing.T) {
		f := newOrderFixture()
		bad := in
		bad.PaymentMethod = "barter"
		_, err := f.service.PlaceOrder(context.Background(), checkoutStore, checkoutCustomer, "guest:x", bad)
		assert.ErrorIs(t, err, services.ErrPaymentFailed)
	})

	t.Run("online payment without a phone", func(t *testing.T) {
		f := newOrderFixture()
		online := in
		online.PaymentMethod = models.PaymentCashfree
		online.Phone = "  "
		_, err := f.service.PlaceOrder(context.Background(), checkoutStore, checkoutCustomer, "guest:x", online)
		assert.ErrorIs(t, err, services.ErrPhoneRequired)
		f.cart.AssertNotCalled(t, "Items", mock.Anything, mock.Anything)
		f.gateway.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
	})

	t.Run("gateway down", func(t *testing.T) {
		f := newOrderFixture()
		online := in
		online.PaymentMethod = models.PaymentCashfree
		online.Phone = "9876543210"
		f.cart.On("Items", "s", "guest:x").Return(cartLines(), nil).Once()
		f.shipping.On("GetByID", "s", "ship").Return(&models.ShippingMethod{Base: models.Base{ID: "ship"}, Active: true}, nil).Once()
		f.orders.On("Place", mock.Anything, "guest:x").Return(nil).Once()
		f.pub.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()
		f.gateway.On("CreateSession", mock.Anything, mock.Anything).Return(payment.SessionResult{}, errors.New("timeout")).Once()
		f.orders.On("UpdatePayment", "s", mock.Anything, models.PaymentFailed, models.OrderPending, "").Return(nil).Once()

		placed, err := f.service.PlaceOrder(context.Background(), checkoutStore, checkoutCustomer, "guest:x", online)
		assert.ErrorIs(t, err, services.ErrPaymentFailed)
		require.NotNil(t, placed)
		assert.Equal(t, models.PaymentFailed, placed.Order.PaymentStatus)
	})
}

func TestOrderService_VerifyPayment(t *testing.T) {
	pending := func() *models.Order {
		return &models.Order{
			Base: models.Base{ID: "o1"}, StoreID: "s", CustomerID: "c", Number: "ORD-1",
			PaymentMethod: models.PaymentCashfree, PaymentStatus: models.PaymentUnpaid,
			Status: models.OrderPending, PaymentRef: "ORD-1",
		}
	}

	t.Run("paid", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetByID", "s", "o1").Return(pending(), nil).Once()
		f.gateway.On("Verify", mock.Anything, "ORD-1").Return(payment.StatusPaid, nil).Once()
		f.orders.On("UpdatePayment", "s", "o1", models.PaymentPaid, models.OrderProcessing, "ORD-1").Return(nil).Once()
		f.pub.On("Publish", mock.Anything, eventOfType(events.OrderPaid)).Return(nil).Once()

		order, err := f.service.VerifyPayment(context.Background(), "s", "o1", checkoutCustomer)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentPaid, order.PaymentStatus)
		assert.Equal(t, models.OrderProcessing, order.Status)
		f.pub.AssertExpectations(t)
	})

	t.Run("not paid", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetByID", "s", "o1").Return(pending(), nil).Once()
		f.gateway.On("Verify", mock.Anything, "ORD-1").Return(payment.StatusFailed, nil).Once()
		f.orders.On("UpdatePayment", "s", "o1", models.PaymentFailed, models.OrderPending, "ORD-1").Return(nil).Once()

		order, err := f.service.VerifyPayment(context.Background(), "s", "o1", checkoutCustomer)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentFailed, order.PaymentStatus)
		f.pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("still pending at the gateway", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetByID", "s", "o1").Return(pending(), nil).Once()
		f.gateway.On("Verify", mock.Anything, "ORD-1").Return(payment.StatusPending, nil).Once()

		order, err := f.service.VerifyPayment(context.Background(), "s", "o1", checkoutCustomer)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentUnpaid, order.PaymentStatus)
		assert.Equal(t, models.OrderPending, order.Status)
		f.orders.AssertNotCalled(t, "UpdatePayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("someone else's order", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetByID", "s", "o1").Return(pending(), nil).Once()
		stranger := &models.User{Base: models.Base{ID: "other"}}
		_, err := f.service.VerifyPayment(context.Background(), "s", "o1", stranger)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	f := newOrderFixture()

	_, err := f.service.UpdateOrderStatus(context.Background(), "s", "o1", "teleported")
	assert.ErrorIs(t, err, services.ErrInvalidStatus)

	f.orders.On("GetByID", "s", "o1").Return(&models.Order{Base: models.Base{ID: "o1"}, Status: models.OrderProcessing}, nil).Once()
	f.orders.On("UpdateStatus", "s", "o1", models.OrderShipped).Return(nil).Once()
	f.pub.On("Publish", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
		var p events.OrderPayload
		return e.Type == events.OrderStatusChanged && e.Decode(&p) == nil &&
			p.Status == models.OrderShipped && p.PreviousStatus == models.OrderProcessing
	})).Return(nil).Once()

	order, err := f.service.UpdateOrderStatus(context.Background(), "s", "o1", models.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, order.Status)
	f.orders.AssertExpectations(t)
	f.pub.AssertExpectations(t)
}
