package repositories

import (
	"fmt"

	"multistore/internal/models"

	"gorm.io/gorm"
)

// StoreRepository defines the interface for tenant data access.
type StoreRepository interface {
	GetAll() ([]models.Store, error)
	GetByID(id string) (*models.Store, error)
	GetBySlug(slug string) (*models.Store, error)
	Create(store *models.Store) error
	Update(store *models.Store) error
}

// GORMStoreRepository is a GORM implementation of StoreRepository.
type GORMStoreRepository struct {
	db *gorm.DB
}

// NewGORMStoreRepository creates a new instance of GORMStoreRepository.
func NewGORMStoreRepository(db *gorm.DB) *GORMStoreRepository {
	return &GORMStoreRepository{db: db}
}

// GetAll retrieves all stores ordered by name.
func (r *GORMStoreRepository) GetAll() ([]models.Store, error) {
	var stores []models.Store
	if err := r.db.Order("name").Find(&stores).Error; err != nil {
		return nil, fmt.Errorf("failed to get all stores: %w", err)
	}
	return stores, nil
}

// GetByID retrieves a store by its ID.
func (r *GORMStoreRepository) GetByID(id string) (*models.Store, error) {
	var store models.Store
	if err := r.db.First(&store, "id = ?", id).Error; err != nil {
		return nil, wrap(err, "store with ID %s", id)
	}
	return &store, nil
}

// GetBySlug retrieves a store by its public slug.
func (r *GORMStoreRepository) GetBySlug(slug string) (*models.Store, error) {
	var store models.Store
	if err := r.db.First(&store, "slug = ?", slug).Error; err != nil {
		return nil, wrap(err, "store %s", slug)
	}
	return &store, nil
}

// Create inserts a new store.
func (r *GORMStoreRepository) Create(store *models.Store) error {
	return wrap(r.db.Create(store).Error, "failed to create store")
}

// Update saves an existing store.
func (r *GORMStoreRepository) Update(store *models.Store) error {
	var count int64
	if err := r.db.Model(&models.Store{}).Where("id = ?", store.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to update store: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("store with ID %s not found for update: %w", store.ID, ErrNotFound)
	}
	return wrap(r.db.Omit("created_at").Save(store).Error, "failed to update store")
}
