// Package pricing holds the storefront's price presentation rules: sale
// discounts, effective prices, money formatting and product image URLs.
package pricing

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DiscountPercent returns the whole percentage a sale price takes off a price.
// It is zero unless 0 < sale < price.
func DiscountPercent(price, sale float64) int {
	if price <= 0 || sale <= 0 || sale >= price {
		return 0
	}
	return int(math.Round((price - sale) / price * 100))
}

// DiscountLabel renders the discount badge, e.g. "25% off".
func DiscountLabel(price, sale float64) string {
	pct := DiscountPercent(price, sale)
	if pct == 0 {
		return ""
	}
	return fmt.Sprintf("%d%% off", pct)
}

// EffectivePrice is what a customer pays for one unit.
func EffectivePrice(price, sale float64) float64 {
	if sale > 0 && sale < price {
		return sale
	}
	return price
}

// Money formats amounts the way a store has configured its currency.
type Money struct {
	Code     string
	Symbol   string
	Position string // "before" or "after"
	Decimals int
	Locale   string
}

// Format renders an amount with the store's symbol and locale digit grouping.
func (m Money) Format(amount float64) string {
	tag, err := language.Parse(m.Locale)
	if err != nil {
		tag = language.English
	}
	decimals := m.Decimals
	if decimals < 0 {
		decimals = 0
	}
	number := message.NewPrinter(tag).Sprintf(fmt.Sprintf("%%.%df", decimals), amount)

	symbol := m.Symbol
	if symbol == "" {
		symbol = m.Code
	}
	if symbol == "" {
		return number
	}
	if m.Position == "after" {
		return number + " " + symbol
	}
	// alphabetic codes read better spaced, e.g. "INR 10.00"
	if len(symbol) > 1 && isLetters(symbol) {
		return symbol + " " + number
	}
	return symbol + number
}

func isLetters(s string) bool {
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

// Images resolves stored image paths to public URLs.
type Images struct {
	BaseURL     string
	Placeholder string
}

// URL returns the public URL of an image, or the placeholder when there is none.
func (i Images) URL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return i.Placeholder
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "//") {
		return path
	}
	base := strings.TrimRight(i.BaseURL, "/")
	return base + "/" + strings.TrimLeft(path, "/")
}
