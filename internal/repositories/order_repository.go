package repositories

import (
	"fmt"
	"time"

	"multistore/internal/models"

	"gorm.io/gorm"
)

// OrderFilter narrows an order listing.
type OrderFilter struct {
	CustomerID string
	Status     string
	From       time.Time
	To         time.Time
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Place(order *models.Order, cartOwnerKey string) error
	GetByID(storeID, id string) (*models.Order, error)
	List(storeID string, filter OrderFilter) ([]models.Order, error)
	UpdateStatus(storeID, id, status string) error
	UpdatePayment(storeID, id, paymentStatus, status, ref string) error
}

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// Place stores an order with its items, takes the ordered quantities out of
// stock and empties the cart it came from, all in one transaction.
func (r *GORMOrderRepository) Place(order *models.Order, cartOwnerKey string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			res := tx.Model(&models.Product{}).
				Where("store_id = ? AND id = ? AND stock >= ?", order.StoreID, item.ProductID, item.Quantity).
				Update("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to reserve stock for %s: %w", item.ProductID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("product %s: %w", item.ProductID, ErrStockConflict)
			}
		}
		if err := tx.Create(order).Error; err != nil {
			return wrap(err, "failed to create order")
		}
		if cartOwnerKey != "" {
			if err := tx.Where("store_id = ? AND owner_key = ?", order.StoreID, cartOwnerKey).Delete(&models.CartItem{}).Error; err != nil {
				return fmt.Errorf("failed to clear cart: %w", err)
			}
		}
		return nil
	})
}

// GetByID retrieves an order of a store with its items.
func (r *GORMOrderRepository) GetByID(storeID, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "store_id = ? AND id = ?", storeID, id).Error; err != nil {
		return nil, wrap(err, "order with ID %s", id)
	}
	return &order, nil
}

// List retrieves the orders of a store, newest first.
func (r *GORMOrderRepository) List(storeID string, filter OrderFilter) ([]models.Order, error) {
	q := r.db.Preload("Items").Where("store_id = ?", storeID)
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if !filter.From.IsZero() {
		q = q.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("created_at < ?", filter.To)
	}
	var orders []models.Order
	if err := q.Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus updates the fulfilment status of an order.
func (r *GORMOrderRepository) UpdateStatus(storeID, id, status string) error {
	res := r.db.Model(&models.Order{}).Where("store_id = ? AND id = ?", storeID, id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s not found for status update: %w", id, ErrNotFound)
	}
	return nil
}

// UpdatePayment records the outcome of a payment attempt.
func (r *GORMOrderRepository) UpdatePayment(storeID, id, paymentStatus, status, ref string) error {
	updates := map[string]any{"payment_status": paymentStatus, "status": status}
	if ref != "" {
		updates["payment_ref"] = ref
	}
	res := r.db.Model(&models.Order{}).Where("store_id = ? AND id = ?", storeID, id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update order payment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s not found for payment update: %w", id, ErrNotFound)
	}
	return nil
}
