// Package theme resolves which storefront component renders a page for a
// tenant's configured theme.
//
// Every theme is a variant registered in a Registry when the process starts.
// Resolution is a map lookup: a theme that does not implement a page, an
// unknown theme key and a renderer failure all end in the default rendering.
package theme

import (
	"sort"
	"strings"
)

// Key identifies a storefront theme.
type Key string

// Built-in themes.
const (
	Default           Key = "default"
	BeautyCosmetics   Key = "beauty-cosmetics"
	Fashion           Key = "fashion"
	Electronics       Key = "electronics"
	Jewelry           Key = "jewelry"
	Watches           Key = "watches"
	FurnitureInterior Key = "furniture-interior"
	CarsAutomotive    Key = "cars-automotive"
	BabyKids          Key = "baby-kids"
	PerfumeFragrances Key = "perfume-fragrances"
)

var allKeys = []Key{
	Default, BeautyCosmetics, Fashion, Electronics, Jewelry, Watches,
	FurnitureInterior, CarsAutomotive, BabyKids, PerfumeFragrances,
}

// Keys returns every built-in theme key, default first.
func Keys() []Key {
	out := make([]Key, len(allKeys))
	copy(out, allKeys)
	return out
}

// Parse normalises a configured theme string. Unknown values yield Default and false.
func Parse(raw string) (Key, bool) {
	k := Key(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range allKeys {
		if k == known {
			return k, true
		}
	}
	return Default, false
}

// Page names a storefront page.
type Page string

// Storefront pages.
const (
	PageHome        Page = "Home"
	PageProduct     Page = "Product"
	PageCart        Page = "Cart"
	PageCheckout    Page = "Checkout"
	PageLogin       Page = "Login"
	PageRegister    Page = "Register"
	PageBlog        Page = "Blog"
	PageBlogPost    Page = "BlogPost"
	PageWishlist    Page = "Wishlist"
	PageOrderDetail Page = "OrderDetail"
)

// Props are the page properties handed to the client component.
type Props map[string]any

func (p Props) clone() Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Palette is the visual identity a theme applies to its layout shell.
type Palette struct {
	Primary    string `json:"primary"`
	Accent     string `json:"accent"`
	Background string `json:"background"`
	Text       string `json:"text"`
	Font       string `json:"font"`
}

// Layout is the shell a page component is mounted in.
type Layout struct {
	Shell   string  `json:"shell"`
	Palette Palette `json:"palette"`
}

// View is a resolved page: the component to mount, in which shell, with which props.
type View struct {
	Component string `json:"component"`
	Theme     Key    `json:"theme"`
	Layout    Layout `json:"layout"`
	Props     Props  `json:"props"`
}

// Descriptor describes a theme for the admin theme picker.
type Descriptor struct {
	Key         Key     `json:"key"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Palette     Palette `json:"palette"`
	Pages       []Page  `json:"pages"`
}

func sortedPages(pages map[Page]Renderer) []Page {
	out := make([]Page, 0, len(pages))
	for p := range pages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
