package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"time"

	"multistore/internal/models"
	"multistore/internal/repositories"
)

// ProductSales is the sales of one product over a period.
type ProductSales struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

// Summary aggregates the orders of a period. Cancelled orders and orders whose
// payment failed count in the status breakdown only.
type Summary struct {
	From              time.Time      `json:"from"`
	To                time.Time      `json:"to"`
	Orders            int            `json:"orders"`
	Revenue           float64        `json:"revenue"`
	AverageOrderValue float64        `json:"average_order_value"`
	ByStatus          map[string]int `json:"by_status"`
	TopProducts       []ProductSales `json:"top_products"`
}

// AnalyticsService reports on store sales.
type AnalyticsService struct {
	orders repositories.OrderRepository
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(orders repositories.OrderRepository) *AnalyticsService {
	return &AnalyticsService{orders: orders}
}

// Summary computes the sales summary of [from, to).
func (s *AnalyticsService) Summary(storeID string, from, to time.Time, top int) (*Summary, error) {
	orders, err := s.orders.List(storeID, repositories.OrderFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}
	if top <= 0 {
		top = 5
	}

	sum := &Summary{From: from, To: to, ByStatus: map[string]int{}, TopProducts: []ProductSales{}}
	sales := map[string]*ProductSales{}
	for _, o := range orders {
		sum.ByStatus[o.Status]++
		if o.Status == models.OrderCancelled || o.PaymentStatus == models.PaymentFailed {
			continue
		}
		sum.Orders++
		sum.Revenue += o.Total
		for _, it := range o.Items {
			ps, ok := sales[it.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: it.ProductID, Name: it.Name}
				sales[it.ProductID] = ps
			}
			ps.Quantity += it.Quantity
			ps.Revenue += it.Price * float64(it.Quantity)
		}
	}
	if sum.Orders > 0 {
		sum.AverageOrderValue = math.Round(sum.Revenue/float64(sum.Orders)*100) / 100
	}
	for _, ps := range sales {
		sum.TopProducts = append(sum.TopProducts, *ps)
	}
	sort.Slice(sum.TopProducts, func(i, j int) bool {
		a, b := sum.TopProducts[i], sum.TopProducts[j]
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		return a.Name < b.Name
	})
	if len(sum.TopProducts) > top {
		sum.TopProducts = sum.TopProducts[:top]
	}
	return sum, nil
}

// ExportCSV writes the orders of [from, to) as CSV, one row per order.
func (s *AnalyticsService) ExportCSV(w io.Writer, storeID string, from, to time.Time) error {
	orders, err := s.orders.List(storeID, repositories.OrderFilter{From: from, To: to})
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"number", "created_at", "status", "payment_method", "payment_status", "items", "subtotal", "shipping", "total"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, o := range orders {
		units := 0
		for _, it := range o.Items {
			units += it.Quantity
		}
		row := []string{
			o.Number,
			o.CreatedAt.UTC().Format(time.RFC3339),
			o.Status,
			o.PaymentMethod,
			o.PaymentStatus,
			strconv.Itoa(units),
			money(o.Subtotal),
			money(o.ShippingCost),
			money(o.Total),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
