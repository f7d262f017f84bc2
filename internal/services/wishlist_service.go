package services

import (
	"errors"

	"multistore/internal/models"
	"multistore/internal/repositories"
)

// WishlistService manages customer wishlists.
type WishlistService struct {
	items    repositories.WishlistRepository
	products repositories.ProductRepository
	locks    keyedMutex
}

// NewWishlistService creates a new WishlistService.
func NewWishlistService(items repositories.WishlistRepository, products repositories.ProductRepository) *WishlistService {
	return &WishlistService{items: items, products: products}
}

// Toggle adds the product when it is not wished for and removes it when it
// is. It returns whether the product is on the wishlist afterwards.
func (s *WishlistService) Toggle(storeID, customerID, productID string) (bool, error) {
	defer s.locks.Lock(storeID + "|" + customerID)()

	_, err := s.items.Find(storeID, customerID, productID)
	switch {
	case err == nil:
		if err := s.items.Delete(storeID, customerID, productID); err != nil {
			return true, err
		}
		return false, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return false, err
	}

	if _, err := s.products.GetByID(storeID, productID); err != nil {
		return false, err
	}
	if err := s.items.Create(&models.WishlistItem{StoreID: storeID, CustomerID: customerID, ProductID: productID}); err != nil {
		return false, err
	}
	return true, nil
}

// List returns the wishlist with products.
func (s *WishlistService) List(storeID, customerID string) ([]models.WishlistItem, error) {
	return s.items.List(storeID, customerID)
}

// Count returns the number of wished-for products.
func (s *WishlistService) Count(storeID, customerID string) (int, error) {
	return s.items.Count(storeID, customerID)
}

// Remove takes a product off the wishlist.
func (s *WishlistService) Remove(storeID, customerID, productID string) error {
	defer s.locks.Lock(storeID + "|" + customerID)()
	return s.items.Delete(storeID, customerID, productID)
}
