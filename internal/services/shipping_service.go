package services

import (
	"multistore/internal/models"
	"multistore/internal/repositories"
)

// ShippingService manages the delivery options of a store.
type ShippingService struct {
	repo repositories.ShippingRepository
}

// NewShippingService creates a new ShippingService.
func NewShippingService(repo repositories.ShippingRepository) *ShippingService {
	return &ShippingService{repo: repo}
}

// List lists shipping methods. Storefronts only see active ones.
func (s *ShippingService) List(storeID string, activeOnly bool) ([]models.ShippingMethod, error) {
	return s.repo.List(storeID, activeOnly)
}

// Get retrieves a shipping method.
func (s *ShippingService) Get(storeID, id string) (*models.ShippingMethod, error) {
	return s.repo.GetByID(storeID, id)
}

// Create adds a shipping method.
func (s *ShippingService) Create(storeID string, method *models.ShippingMethod) error {
	method.StoreID = storeID
	return s.repo.Create(method)
}

// Update changes a shipping method.
func (s *ShippingService) Update(storeID string, method *models.ShippingMethod) error {
	method.StoreID = storeID
	return s.repo.Update(method)
}

// Delete removes a shipping method.
func (s *ShippingService) Delete(storeID, id string) error {
	return s.repo.Delete(storeID, id)
}
