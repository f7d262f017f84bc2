package models

// Symbol placement relative to the amount.
const (
	SymbolBefore = "before"
	SymbolAfter  = "after"
)

// Store is one tenant of the platform.
type Store struct {
	Base
	Slug           string `json:"slug" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=2,max=100"`
	Name           string `json:"name" validate:"required,min=2,max=150"`
	Theme          string `json:"theme" gorm:"type:varchar(50);default:default"`
	Currency       string `json:"currency" gorm:"type:varchar(3)" validate:"omitempty,len=3"`
	CurrencySymbol string `json:"currency_symbol" gorm:"type:varchar(8)"`
	SymbolPosition string `json:"symbol_position" gorm:"type:varchar(6)" validate:"omitempty,oneof=before after"`
	Decimals       int    `json:"decimals" validate:"gte=0,lte=4"`
	Locale         string `json:"locale" gorm:"type:varchar(16)"`
	LogoURL        string `json:"logo_url"`
	FaviconURL     string `json:"favicon_url"`
	PrimaryColor   string `json:"primary_color" gorm:"type:varchar(16)"`
	IsDemo         bool   `json:"is_demo"`
	PlanID         string `json:"plan_id" gorm:"type:varchar(36);index"`
	Enabled        bool   `json:"enabled" gorm:"default:true"`
}
