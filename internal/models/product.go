package models

// Category groups products of a store.
type Category struct {
	Base
	StoreID string `json:"store_id" gorm:"type:varchar(36);index"`
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Slug    string `json:"slug" gorm:"type:varchar(120);index" validate:"omitempty,max=120"`
}

// Product represents a product in a store's catalog.
type Product struct {
	Base
	StoreID     string  `json:"store_id" gorm:"type:varchar(36);index"`
	CategoryID  string  `json:"category_id" gorm:"type:varchar(36);index" validate:"omitempty,uuid"`
	Name        string  `json:"name" validate:"required,min=3,max=100"`
	Description string  `json:"description" validate:"omitempty,max=2000"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	SalePrice   float64 `json:"sale_price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	ImageURL    string  `json:"image_url"`
	Active      bool    `json:"active"`
}
