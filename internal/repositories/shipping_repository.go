package repositories

import (
	"fmt"

	"multistore/internal/models"

	"gorm.io/gorm"
)

// ShippingRepository defines the interface for shipping method access.
type ShippingRepository interface {
	List(storeID string, activeOnly bool) ([]models.ShippingMethod, error)
	GetByID(storeID, id string) (*models.ShippingMethod, error)
	Create(method *models.ShippingMethod) error
	Update(method *models.ShippingMethod) error
	Delete(storeID, id string) error
}

// GORMShippingRepository is a GORM implementation of ShippingRepository.
type GORMShippingRepository struct {
	db *gorm.DB
}

// NewGORMShippingRepository creates a new instance of GORMShippingRepository.
func NewGORMShippingRepository(db *gorm.DB) *GORMShippingRepository {
	return &GORMShippingRepository{db: db}
}

// List retrieves the shipping methods of a store, cheapest first.
func (r *GORMShippingRepository) List(storeID string, activeOnly bool) ([]models.ShippingMethod, error) {
	q := r.db.Where("store_id = ?", storeID)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var methods []models.ShippingMethod
	if err := q.Order("cost, name").Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("failed to list shipping methods: %w", err)
	}
	return methods, nil
}

// GetByID retrieves a shipping method of a store.
func (r *GORMShippingRepository) GetByID(storeID, id string) (*models.ShippingMethod, error) {
	var method models.ShippingMethod
	if err := r.db.First(&method, "store_id = ? AND id = ?", storeID, id).Error; err != nil {
		return nil, wrap(err, "shipping method with ID %s", id)
	}
	return &method, nil
}

// Create inserts a shipping method.
func (r *GORMShippingRepository) Create(method *models.ShippingMethod) error {
	return wrap(r.db.Create(method).Error, "failed to create shipping method")
}

// Update saves a shipping method.
func (r *GORMShippingRepository) Update(method *models.ShippingMethod) error {
	return updateScoped(r.db, method, method.StoreID, method.ID, "shipping method")
}

// Delete removes a shipping method.
func (r *GORMShippingRepository) Delete(storeID, id string) error {
	return deleteScoped(r.db, &models.ShippingMethod{}, storeID, id, "shipping method")
}
