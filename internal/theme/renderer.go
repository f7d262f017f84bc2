package theme

import (
	"errors"
	"fmt"
)

// ErrMissingProp is returned by a renderer when the page lacks a prop it needs.
var ErrMissingProp = errors.New("missing page prop")

// Renderer turns page props into a View.
type Renderer interface {
	Render(page Page, props Props) (View, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(page Page, props Props) (View, error)

// Render calls f.
func (f RendererFunc) Render(page Page, props Props) (View, error) {
	return f(page, props)
}

var defaultPalette = Palette{
	Primary:    "#111827",
	Accent:     "#2563eb",
	Background: "#ffffff",
	Text:       "#111827",
	Font:       "Inter",
}

// defaultRenderer renders the generic storefront pages. It never fails.
type defaultRenderer struct{}

func (defaultRenderer) Render(page Page, props Props) (View, error) {
	return View{
		Component: "store/" + string(page),
		Theme:     Default,
		Layout:    Layout{Shell: "store/Layout", Palette: defaultPalette},
		Props:     props.clone(),
	}, nil
}

// requiredProps lists the props a themed page cannot render without.
var requiredProps = map[Page][]string{
	PageOrderDetail: {"order"},
	PageBlogPost:    {"post"},
	PageProduct:     {"product"},
}

// themedRenderer renders one theme's implementation of a page.
type themedRenderer struct {
	key     Key
	palette Palette
}

func (r themedRenderer) Render(page Page, props Props) (View, error) {
	for _, name := range requiredProps[page] {
		if v, ok := props[name]; !ok || v == nil {
			return View{}, fmt.Errorf("%s %s: %w %q", r.key, page, ErrMissingProp, name)
		}
	}
	out := props.clone()
	out["appearance"] = r.palette
	return View{
		Component: fmt.Sprintf("themes/%s/%s", r.key, page),
		Theme:     r.key,
		Layout:    Layout{Shell: fmt.Sprintf("themes/%s/Layout", r.key), Palette: r.palette},
		Props:     out,
	}, nil
}
