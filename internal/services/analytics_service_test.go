package services_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"multistore/internal/models"
	"multistore/internal/repositories"
	"multistore/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyticsOrders() []models.Order {
	created := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	return []models.Order{
		{Base: models.Base{ID: "1", CreatedAt: created}, Number: "ORD-1", Status: models.OrderDelivered, Subtotal: 100, Total: 100,
			Items: []models.OrderItem{{ProductID: "a", Name: "Alpha", Quantity: 2, Price: 50}}},
		{Base: models.Base{ID: "2", CreatedAt: created}, Number: "ORD-2", Status: models.OrderPending, Subtotal: 40, ShippingCost: 10, Total: 50,
			Items: []models.OrderItem{{ProductID: "b", Name: "Beta", Quantity: 1, Price: 40}, {ProductID: "a", Name: "Alpha", Quantity: 1, Price: 50}}},
		{Base: models.Base{ID: "3", CreatedAt: created}, Number: "ORD-3", Status: models.OrderCancelled, Total: 999,
			Items: []models.OrderItem{{ProductID: "c", Name: "Gamma", Quantity: 9, Price: 111}}},
	}
}

func TestAnalyticsService_Summary(t *testing.T) {
	orders := new(MockOrderRepository)
	svc := services.NewAnalyticsService(orders)
	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	orders.On("List", "s", repositories.OrderFilter{From: from, To: to}).Return(analyticsOrders(), nil).Once()

	sum, err := svc.Summary("s", from, to, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Orders)
	assert.Equal(t, 150.0, sum.Revenue)
	assert.Equal(t, 75.0, sum.AverageOrderValue)
	assert.Equal(t, map[string]int{models.OrderDelivered: 1, models.OrderPending: 1, models.OrderCancelled: 1}, sum.ByStatus)
	require.Len(t, sum.TopProducts, 2)
	assert.Equal(t, services.ProductSales{ProductID: "a", Name: "Alpha", Quantity: 3, Revenue: 150}, sum.TopProducts[0])
}

func TestAnalyticsService_SummarySkipsFailedPayments(t *testing.T) {
	orders := new(MockOrderRepository)
	svc := services.NewAnalyticsService(orders)
	created := time.Date(2026, 5, 3, 9, 0, 0, 0, time.UTC)
	list := append(analyticsOrders(), models.Order{
		Base: models.Base{ID: "4", CreatedAt: created}, Number: "ORD-4", Status: models.OrderPending,
		PaymentMethod: models.PaymentCashfree, PaymentStatus: models.PaymentFailed, Total: 500,
		Items: []models.OrderItem{{ProductID: "d", Name: "Delta", Quantity: 1, Price: 500}},
	})
	orders.On("List", "s", repositories.OrderFilter{}).Return(list, nil).Once()

	sum, err := svc.Summary("s", time.Time{}, time.Time{}, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Orders)
	assert.Equal(t, 150.0, sum.Revenue)
	assert.Equal(t, 75.0, sum.AverageOrderValue)
	assert.Equal(t, 2, sum.ByStatus[models.OrderPending])
	for _, ps := range sum.TopProducts {
		assert.NotEqual(t, "d", ps.ProductID)
	}
}

func TestAnalyticsService_ExportCSV(t *testing.T) {
	orders := new(MockOrderRepository)
	svc := services.NewAnalyticsService(orders)
	orders.On("List", "s", repositories.OrderFilter{}).Return(analyticsOrders()[:2], nil).Once()

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(&buf, "s", time.Time{}, time.Time{}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "number", rows[0][0])
	assert.Equal(t, []string{"ORD-2", "2026-05-02T10:00:00Z", "pending", "", "", "2", "40.00", "10.00", "50.00"}, rows[2])
}

func TestSidebar(t *testing.T) {
	admin := services.Sidebar(models.RoleAdmin)
	super := services.Sidebar(models.RoleSuperAdmin)
	assert.NotEmpty(t, admin)
	assert.Len(t, super, len(admin)+2)
	assert.Equal(t, "Plans", super[len(super)-1].Label)
	assert.Empty(t, services.Sidebar(models.RoleCustomer))
}
