package models

// CartItem is one line of a cart. OwnerKey identifies the cart inside a store:
// "customer:<id>" for signed-in customers and "guest:<session>" otherwise.
type CartItem struct {
	Base
	StoreID   string   `json:"store_id" gorm:"type:varchar(36);uniqueIndex:idx_cart_line"`
	OwnerKey  string   `json:"-" gorm:"type:varchar(100);uniqueIndex:idx_cart_line"`
	ProductID string   `json:"product_id" gorm:"type:varchar(36);uniqueIndex:idx_cart_line"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// WishlistItem marks a product as wished for by a customer.
type WishlistItem struct {
	Base
	StoreID    string   `json:"store_id" gorm:"type:varchar(36);uniqueIndex:idx_wishlist_line"`
	CustomerID string   `json:"customer_id" gorm:"type:varchar(36);uniqueIndex:idx_wishlist_line"`
	ProductID  string   `json:"product_id" gorm:"type:varchar(36);uniqueIndex:idx_wishlist_line"`
	Product    *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
