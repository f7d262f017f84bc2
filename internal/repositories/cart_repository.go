package repositories

import (
	"fmt"

	"multistore/internal/models"

	"gorm.io/gorm"
)

// CartRepository defines the interface for cart line access.
type CartRepository interface {
	Items(storeID, ownerKey string) ([]models.CartItem, error)
	GetItem(storeID, ownerKey, id string) (*models.CartItem, error)
	FindByProduct(storeID, ownerKey, productID string) (*models.CartItem, error)
	Save(item *models.CartItem) error
	Delete(storeID, ownerKey, id string) error
	Clear(storeID, ownerKey string) error
	Count(storeID, ownerKey string) (int, error)
}

// WishlistRepository defines the interface for wishlist access.
type WishlistRepository interface {
	Find(storeID, customerID, productID string) (*models.WishlistItem, error)
	Create(item *models.WishlistItem) error
	Delete(storeID, customerID, productID string) error
	List(storeID, customerID string) ([]models.WishlistItem, error)
	Count(storeID, customerID string) (int, error)
}

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// Items lists the lines of a cart with their products.
func (r *GORMCartRepository) Items(storeID, ownerKey string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.Preload("Product").
		Where("store_id = ? AND owner_key = ?", storeID, ownerKey).
		Order("created_at, id").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return items, nil
}

// GetItem retrieves one line of a cart with its product.
func (r *GORMCartRepository) GetItem(storeID, ownerKey, id string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Preload("Product").
		First(&item, "store_id = ? AND owner_key = ? AND id = ?", storeID, ownerKey, id).Error
	if err != nil {
		return nil, wrap(err, "cart item %s", id)
	}
	return &item, nil
}

// FindByProduct retrieves the cart line holding a product.
func (r *GORMCartRepository) FindByProduct(storeID, ownerKey, productID string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.First(&item, "store_id = ? AND owner_key = ? AND product_id = ?", storeID, ownerKey, productID).Error
	if err != nil {
		return nil, wrap(err, "cart item for product %s", productID)
	}
	return &item, nil
}

// Save creates or updates a cart line.
func (r *GORMCartRepository) Save(item *models.CartItem) error {
	product := item.Product
	item.Product = nil
	defer func() { item.Product = product }()
	if item.ID == "" {
		return wrap(r.db.Create(item).Error, "failed to add cart item")
	}
	return wrap(r.db.Omit("created_at").Save(item).Error, "failed to update cart item")
}

// Delete removes one line of a cart.
func (r *GORMCartRepository) Delete(storeID, ownerKey, id string) error {
	res := r.db.Where("store_id = ? AND owner_key = ? AND id = ?", storeID, ownerKey, id).Delete(&models.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %s not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}

// Clear empties a cart.
func (r *GORMCartRepository) Clear(storeID, ownerKey string) error {
	if err := r.db.Where("store_id = ? AND owner_key = ?", storeID, ownerKey).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Count returns the total quantity held in a cart.
func (r *GORMCartRepository) Count(storeID, ownerKey string) (int, error) {
	var total int
	err := r.db.Model(&models.CartItem{}).
		Where("store_id = ? AND owner_key = ?", storeID, ownerKey).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count cart: %w", err)
	}
	return total, nil
}

// GORMWishlistRepository is a GORM implementation of WishlistRepository.
type GORMWishlistRepository struct {
	db *gorm.DB
}

// NewGORMWishlistRepository creates a new instance of GORMWishlistRepository.
func NewGORMWishlistRepository(db *gorm.DB) *GORMWishlistRepository {
	return &GORMWishlistRepository{db: db}
}

// Find retrieves the wishlist entry of a product.
func (r *GORMWishlistRepository) Find(storeID, customerID, productID string) (*models.WishlistItem, error) {
	var item models.WishlistItem
	err := r.db.First(&item, "store_id = ? AND customer_id = ? AND product_id = ?", storeID, customerID, productID).Error
	if err != nil {
		return nil, wrap(err, "wishlist item for product %s", productID)
	}
	return &item, nil
}

// Create adds a product to a wishlist.
func (r *GORMWishlistRepository) Create(item *models.WishlistItem) error {
	return wrap(r.db.Create(item).Error, "failed to add wishlist item")
}

// Delete removes a product from a wishlist.
func (r *GORMWishlistRepository) Delete(storeID, customerID, productID string) error {
	res := r.db.Where("store_id = ? AND customer_id = ? AND product_id = ?", storeID, customerID, productID).
		Delete(&models.WishlistItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("wishlist item for product %s not found: %w", productID, ErrNotFound)
	}
	return nil
}

// List retrieves a wishlist with its products, newest first.
func (r *GORMWishlistRepository) List(storeID, customerID string) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := r.db.Preload("Product").
		Where("store_id = ? AND customer_id = ?", storeID, customerID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist: %w", err)
	}
	return items, nil
}

// Count returns the number of wished products.
func (r *GORMWishlistRepository) Count(storeID, customerID string) (int, error) {
	var n int64
	if err := r.db.Model(&models.WishlistItem{}).Where("store_id = ? AND customer_id = ?", storeID, customerID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count wishlist: %w", err)
	}
	return int(n), nil
}
