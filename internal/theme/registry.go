package theme

import "log"

// themedPages are implemented by every built-in theme.
var themedPages = []Page{PageHome, PageLogin, PageBlog, PageWishlist, PageOrderDetail, PageCheckout}

type builtin struct {
	Descriptor
	extra []Page
}

var builtins = []builtin{
	{Descriptor{Key: BeautyCosmetics, Name: "Beauty & Cosmetics", Description: "Soft pastel storefront for skincare and makeup.",
		Palette: Palette{Primary: "#be185d", Accent: "#f9a8d4", Background: "#fff1f2", Text: "#4a044e", Font: "Playfair Display"}}, nil},
	{Descriptor{Key: Fashion, Name: "Fashion", Description: "Editorial layout with large lookbook imagery.",
		Palette: Palette{Primary: "#0f0f0f", Accent: "#d4af37", Background: "#fafafa", Text: "#0f0f0f", Font: "Montserrat"}}, []Page{PageProduct, PageBlogPost}},
	{Descriptor{Key: Electronics, Name: "Electronics", Description: "Datasheet-style grid for gadgets and devices.",
		Palette: Palette{Primary: "#1d4ed8", Accent: "#22d3ee", Background: "#f8fafc", Text: "#0f172a", Font: "Roboto"}}, []Page{PageProduct, PageCart}},
	{Descriptor{Key: Jewelry, Name: "Jewelry", Description: "Dark luxury showcase with gold accents.",
		Palette: Palette{Primary: "#1c1917", Accent: "#ca8a04", Background: "#0c0a09", Text: "#fafaf9", Font: "Cormorant Garamond"}}, []Page{PageProduct}},
	{Descriptor{Key: Watches, Name: "Watches", Description: "Precision-themed catalog with detail zoom.",
		Palette: Palette{Primary: "#334155", Accent: "#b45309", Background: "#f1f5f9", Text: "#0f172a", Font: "Oswald"}}, nil},
	{Descriptor{Key: FurnitureInterior, Name: "Furniture & Interior", Description: "Warm room-set imagery and material swatches.",
		Palette: Palette{Primary: "#78350f", Accent: "#a3a380", Background: "#fefae0", Text: "#283618", Font: "Lora"}}, nil},
	{Descriptor{Key: CarsAutomotive, Name: "Cars & Automotive", Description: "High-contrast parts and accessories store.",
		Palette: Palette{Primary: "#b91c1c", Accent: "#facc15", Background: "#111111", Text: "#f5f5f5", Font: "Rajdhani"}}, []Page{PageCart}},
	{Descriptor{Key: BabyKids, Name: "Baby & Kids", Description: "Playful rounded layout in bright colours.",
		Palette: Palette{Primary: "#0ea5e9", Accent: "#fde047", Background: "#f0f9ff", Text: "#1e3a8a", Font: "Nunito"}}, nil},
	{Descriptor{Key: PerfumeFragrances, Name: "Perfume & Fragrances", Description: "Minimal scent notes and collection stories.",
		Palette: Palette{Primary: "#581c87", Accent: "#e9d5ff", Background: "#faf5ff", Text: "#3b0764", Font: "Cinzel"}}, []Page{PageBlogPost}},
}

// Registry maps (theme, page) pairs to renderers.
type Registry struct {
	fallback    Renderer
	descriptors map[Key]Descriptor
	renderers   map[Key]map[Page]Renderer
}

// NewRegistry builds a registry holding the default theme and every built-in theme.
func NewRegistry() *Registry {
	r := &Registry{
		fallback:    defaultRenderer{},
		descriptors: map[Key]Descriptor{},
		renderers:   map[Key]map[Page]Renderer{},
	}
	r.descriptors[Default] = Descriptor{
		Key: Default, Name: "Default", Description: "The generic storefront.", Palette: defaultPalette,
	}
	for _, b := range builtins {
		r.descriptors[b.Key] = b.Descriptor
		renderer := themedRenderer{key: b.Key, palette: b.Palette}
		for _, page := range themedPages {
			r.Register(b.Key, page, renderer)
		}
		for _, page := range b.extra {
			r.Register(b.Key, page, renderer)
		}
	}
	return r
}

// Register installs the renderer a theme uses for a page, replacing any previous one.
func (r *Registry) Register(key Key, page Page, renderer Renderer) {
	pages, ok := r.renderers[key]
	if !ok {
		pages = map[Page]Renderer{}
		r.renderers[key] = pages
	}
	pages[page] = renderer
}

// Lookup returns the renderer a theme registered for a page.
func (r *Registry) Lookup(key Key, page Page) (Renderer, bool) {
	renderer, ok := r.renderers[key][page]
	return renderer, ok
}

// Fallback returns the default renderer.
func (r *Registry) Fallback() Renderer {
	return r.fallback
}

// Catalog describes every registered theme in key order, default first.
func (r *Registry) Catalog() []Descriptor {
	out := make([]Descriptor, 0, len(r.descriptors))
	for _, key := range allKeys {
		d, ok := r.descriptors[key]
		if !ok {
			continue
		}
		d.Pages = sortedPages(r.renderers[key])
		out = append(out, d)
	}
	return out
}

// Resolver picks and runs the renderer for a store's theme.
type Resolver struct {
	registry *Registry
	logf     func(format string, args ...any)
}

// NewResolver creates a Resolver over a registry.
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry, logf: log.Printf}
}

// SetLogger replaces the function resolution failures are logged with.
func (r *Resolver) SetLogger(logf func(format string, args ...any)) {
	r.logf = logf
}

// Resolve renders a page with the theme named by themeKey, falling back to the
// default rendering when the theme is unknown, does not implement the page, or fails.
func (r *Resolver) Resolve(themeKey string, page Page, props Props) View {
	if props == nil {
		props = Props{}
	}
	key, _ := Parse(themeKey)
	if key != Default {
		if renderer, ok := r.registry.Lookup(key, page); ok {
			view, err := renderer.Render(page, props)
			if err == nil {
				return view
			}
			r.logf("theme %s failed to render %s, using default: %v", key, page, err)
		}
	}
	view, err := r.registry.Fallback().Render(page, props)
	if err != nil {
		r.logf("default theme failed to render %s: %v", page, err)
		return View{Component: "store/" + string(page), Theme: Default, Props: props}
	}
	return view
}
