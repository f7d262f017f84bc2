package repositories

import (
	"fmt"

	"multistore/internal/models"

	"gorm.io/gorm"
)

// ProductFilter narrows a product listing.
type ProductFilter struct {
	CategoryID string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(storeID string, filter ProductFilter) ([]models.Product, error)
	GetByID(storeID, id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(storeID, id string) error
	Count(storeID string) (int64, error)
}

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	List(storeID string) ([]models.Category, error)
	GetByID(storeID, id string) (*models.Category, error)
	Create(category *models.Category) error
	Update(category *models.Category) error
	Delete(storeID, id string) error
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{db: db}
}

// List retrieves the products of a store, newest first.
func (r *GORMProductRepository) List(storeID string, filter ProductFilter) ([]models.Product, error) {
	q := r.db.Where("store_id = ?", storeID)
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	var products []models.Product
	if err := q.Order("created_at DESC, id DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product of a store.
func (r *GORMProductRepository) GetByID(storeID, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "store_id = ? AND id = ?", storeID, id).Error; err != nil {
		return nil, wrap(err, "product with ID %s", id)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	return wrap(r.db.Create(product).Error, "failed to create product")
}

// Update updates an existing product in the database.
func (r *GORMProductRepository) Update(product *models.Product) error {
	return updateScoped(r.db, product, product.StoreID, product.ID, "product")
}

// Delete deletes a product of a store.
func (r *GORMProductRepository) Delete(storeID, id string) error {
	return deleteScoped(r.db, &models.Product{}, storeID, id, "product")
}

// Count returns the number of products a store owns.
func (r *GORMProductRepository) Count(storeID string) (int64, error) {
	var n int64
	if err := r.db.Model(&models.Product{}).Where("store_id = ?", storeID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

// List retrieves the categories of a store by name.
func (r *GORMCategoryRepository) List(storeID string) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.Where("store_id = ?", storeID).Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetByID retrieves a single category of a store.
func (r *GORMCategoryRepository) GetByID(storeID, id string) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, "store_id = ? AND id = ?", storeID, id).Error; err != nil {
		return nil, wrap(err, "category with ID %s", id)
	}
	return &category, nil
}

// Create inserts a category.
func (r *GORMCategoryRepository) Create(category *models.Category) error {
	return wrap(r.db.Create(category).Error, "failed to create category")
}

// Update saves an existing category.
func (r *GORMCategoryRepository) Update(category *models.Category) error {
	return updateScoped(r.db, category, category.StoreID, category.ID, "category")
}

// Delete removes a category of a store.
func (r *GORMCategoryRepository) Delete(storeID, id string) error {
	return deleteScoped(r.db, &models.Category{}, storeID, id, "category")
}
