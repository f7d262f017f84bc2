package pages

import (
	"log"

	"multistore/internal/flash"
	"multistore/internal/models"
	"multistore/internal/theme"
)

// BrandProps identify the store in the layout.
type BrandProps struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	LogoURL      string `json:"logo_url"`
	FaviconURL   string `json:"favicon_url"`
	PrimaryColor string `json:"primary_color"`
}

// CurrencyProps tell the client how to display prices.
type CurrencyProps struct {
	Code     string `json:"code"`
	Symbol   string `json:"symbol"`
	Position string `json:"position"`
	Decimals int    `json:"decimals"`
}

// LayoutProps carry locale and text direction.
type LayoutProps struct {
	Locale    string `json:"locale"`
	Direction string `json:"direction"`
}

// CustomerProps is the public part of the signed-in customer.
type CustomerProps struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthProps describe who is browsing.
type AuthProps struct {
	Customer   *CustomerProps `json:"customer"`
	IsLoggedIn bool           `json:"is_logged_in"`
}

// Shared are the props every storefront page receives.
type Shared struct {
	Store         BrandProps      `json:"store"`
	Currency      CurrencyProps   `json:"currency"`
	Layout        LayoutProps     `json:"layout"`
	Auth          AuthProps       `json:"auth"`
	CartCount     int             `json:"cart_count"`
	WishlistCount int             `json:"wishlist_count"`
	Flash         []flash.Message `json:"flash"`
	CSRFToken     string          `json:"csrf_token"`
	IsDemo        bool            `json:"is_demo"`
}

// Props flattens the shared props into a page props map.
func (s Shared) Props() theme.Props {
	return theme.Props{
		"store":          s.Store,
		"currency":       s.Currency,
		"layout":         s.Layout,
		"auth":           s.Auth,
		"cart_count":     s.CartCount,
		"wishlist_count": s.WishlistCount,
		"flash":          s.Flash,
		"csrf_token":     s.CSRFToken,
		"is_demo":        s.IsDemo,
	}
}

// Session is everything known about one storefront request.
type Session struct {
	Store  *models.Store
	Shared Shared
}

// Visitor is the request-specific input to the shared props.
type Visitor struct {
	Customer       *models.User
	CartOwner      string
	Flash          []flash.Message
	CSRFToken      string
	LangParam      string
	AcceptLanguage string
}

// Counter reports a count for a store and a key (cart owner or customer ID).
type Counter interface {
	Count(storeID, key string) (int, error)
}

// Composer builds the per-request Session.
type Composer struct {
	carts        Counter
	wishlists    Counter
	dedup        *flash.Deduper
	platformDemo bool
}

// NewComposer creates a Composer. dedup may be nil to show every flash.
func NewComposer(carts, wishlists Counter, dedup *flash.Deduper, platformDemo bool) *Composer {
	return &Composer{carts: carts, wishlists: wishlists, dedup: dedup, platformDemo: platformDemo}
}

// Compose builds the session of a storefront request. Count failures are
// logged and shown as zero so a page always renders.
func (c *Composer) Compose(store *models.Store, v Visitor) Session {
	tag := Negotiate(store.Locale, v.LangParam, v.AcceptLanguage)
	shared := Shared{
		Store: BrandProps{
			Name:         store.Name,
			Slug:         store.Slug,
			LogoURL:      store.LogoURL,
			FaviconURL:   store.FaviconURL,
			PrimaryColor: store.PrimaryColor,
		},
		Currency: CurrencyProps{
			Code:     store.Currency,
			Symbol:   store.CurrencySymbol,
			Position: store.SymbolPosition,
			Decimals: store.Decimals,
		},
		Layout:    LayoutProps{Locale: tag.String(), Direction: Direction(tag)},
		Flash:     []flash.Message{},
		CSRFToken: v.CSRFToken,
		IsDemo:    c.platformDemo || store.IsDemo,
	}

	if v.CartOwner != "" && c.carts != nil {
		n, err := c.carts.Count(store.ID, v.CartOwner)
		if err != nil {
			log.Printf("Warning: cart count for store %s: %v", store.ID, err)
		}
		shared.CartCount = n
	}
	if v.Customer != nil {
		shared.Auth = AuthProps{
			Customer:   &CustomerProps{ID: v.Customer.ID, Name: v.Customer.Name, Email: v.Customer.Email},
			IsLoggedIn: true,
		}
		if c.wishlists != nil {
			n, err := c.wishlists.Count(store.ID, v.Customer.ID)
			if err != nil {
				log.Printf("Warning: wishlist count for store %s: %v", store.ID, err)
			}
			shared.WishlistCount = n
		}
	}

	msgs := v.Flash
	if c.dedup != nil {
		msgs = c.dedup.Filter(store.ID+"|"+v.CartOwner, msgs)
	}
	if len(msgs) > 0 {
		shared.Flash = msgs
	}
	return Session{Store: store, Shared: shared}
}
