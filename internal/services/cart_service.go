package services

import (
	"errors"
	"fmt"

	"multistore/internal/models"
	"multistore/internal/pricing"
	"multistore/internal/repositories"
)

// CustomerOwner is the cart owner key of a signed-in customer.
func CustomerOwner(customerID string) string { return "customer:" + customerID }

// GuestOwner is the cart owner key of a guest session.
func GuestOwner(sessionID string) string { return "guest:" + sessionID }

// ClampQuantity bounds a requested quantity to [1, stock].
func ClampQuantity(qty, stock int) int {
	if qty > stock {
		qty = stock
	}
	if qty < 1 {
		qty = 1
	}
	return qty
}

// CartLine is one priced cart line.
type CartLine struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	ImageSrc  string  `json:"image_src"`
	Quantity  int     `json:"quantity"`
	Stock     int     `json:"stock"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

// Cart is the priced content of a cart.
type Cart struct {
	Lines    []CartLine `json:"lines"`
	Count    int        `json:"count"`
	Subtotal float64    `json:"subtotal"`
}

// CartService manages carts. Mutations of one cart are serialized.
type CartService struct {
	items    repositories.CartRepository
	products repositories.ProductRepository
	images   pricing.Images
	locks    keyedMutex
}

// NewCartService creates a new CartService.
func NewCartService(items repositories.CartRepository, products repositories.ProductRepository, images pricing.Images) *CartService {
	return &CartService{items: items, products: products, images: images}
}

func lockKey(storeID, owner string) string { return storeID + "|" + owner }

// Add puts qty units of a product in the cart. The resulting line quantity is
// clamped to the available stock.
func (s *CartService) Add(storeID, owner, productID string, qty int) (*models.CartItem, error) {
	defer s.locks.Lock(lockKey(storeID, owner))()
	return s.add(storeID, owner, productID, qty)
}

func (s *CartService) add(storeID, owner, productID string, qty int) (*models.CartItem, error) {
	product, err := s.products.GetByID(storeID, productID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, fmt.Errorf("product with ID %s: %w", productID, repositories.ErrNotFound)
	}
	if product.Stock <= 0 {
		return nil, fmt.Errorf("%w: %s is out of stock", ErrInsufficientStock, product.Name)
	}
	if qty < 1 {
		qty = 1
	}

	item, err := s.items.FindByProduct(storeID, owner, productID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		item = &models.CartItem{StoreID: storeID, OwnerKey: owner, ProductID: productID}
	case err != nil:
		return nil, err
	}
	item.Quantity = ClampQuantity(item.Quantity+qty, product.Stock)
	if err := s.items.Save(item); err != nil {
		return nil, err
	}
	item.Product = product
	return item, nil
}

// UpdateQuantity sets the quantity of a cart line, clamped to [1, stock].
func (s *CartService) UpdateQuantity(storeID, owner, itemID string, qty int) (*models.CartItem, error) {
	defer s.locks.Lock(lockKey(storeID, owner))()

	item, err := s.items.GetItem(storeID, owner, itemID)
	if err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(storeID, item.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Stock <= 0 {
		return nil, fmt.Errorf("%w: %s is out of stock", ErrInsufficientStock, product.Name)
	}
	item.Quantity = ClampQuantity(qty, product.Stock)
	if err := s.items.Save(item); err != nil {
		return nil, err
	}
	item.Product = product
	return item, nil
}

// Remove deletes a cart line.
func (s *CartService) Remove(storeID, owner, itemID string) error {
	defer s.locks.Lock(lockKey(storeID, owner))()
	return s.items.Delete(storeID, owner, itemID)
}

// Get returns the priced cart. Lines whose product is gone or inactive are skipped.
func (s *CartService) Get(storeID, owner string) (*Cart, error) {
	items, err := s.items.Items(storeID, owner)
	if err != nil {
		return nil, err
	}
	cart := &Cart{Lines: []CartLine{}}
	for _, item := range items {
		p := item.Product
		if p == nil || !p.Active {
			continue
		}
		unit := pricing.EffectivePrice(p.Price, p.SalePrice)
		line := CartLine{
			ID:        item.ID,
			ProductID: p.ID,
			Name:      p.Name,
			ImageSrc:  s.images.URL(p.ImageURL),
			Quantity:  item.Quantity,
			Stock:     p.Stock,
			UnitPrice: unit,
			LineTotal: unit * float64(item.Quantity),
		}
		cart.Lines = append(cart.Lines, line)
		cart.Count += line.Quantity
		cart.Subtotal += line.LineTotal
	}
	return cart, nil
}

// Count returns the number of units in a cart.
func (s *CartService) Count(storeID, owner string) (int, error) {
	return s.items.Count(storeID, owner)
}

// Merge moves a guest cart into a customer's cart at sign-in.
func (s *CartService) Merge(storeID, guest, customer string) error {
	if guest == "" || guest == customer {
		return nil
	}
	defer s.locks.Lock(lockKey(storeID, guest), lockKey(storeID, customer))()

	items, err := s.items.Items(storeID, guest)
	if err != nil {
		return err
	}
	for _, item := range items {
		if _, err := s.add(storeID, customer, item.ProductID, item.Quantity); err != nil &&
			!errors.Is(err, ErrInsufficientStock) && !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("failed to merge cart line %s: %w", item.ID, err)
		}
	}
	return s.items.Clear(storeID, guest)
}
