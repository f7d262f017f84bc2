package theme_test

import (
	"errors"
	"fmt"
	"testing"

	"multistore/internal/theme"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	key, ok := theme.Parse("  Fashion ")
	assert.True(t, ok)
	assert.Equal(t, theme.Fashion, key)

	key, ok = theme.Parse("vaporwave")
	assert.False(t, ok)
	assert.Equal(t, theme.Default, key)

	assert.Len(t, theme.Keys(), 10)
}

func TestResolve_ThemedPagesForEveryTheme(t *testing.T) {
	resolver := theme.NewResolver(theme.NewRegistry())
	pages := []theme.Page{theme.PageLogin, theme.PageBlog, theme.PageWishlist, theme.PageOrderDetail}
	props := theme.Props{"order": map[string]any{"id": "o1"}}

	for _, key := range theme.Keys() {
		if key == theme.Default {
			continue
		}
		for _, page := range pages {
			t.Run(fmt.Sprintf("%s/%s", key, page), func(t *testing.T) {
				view := resolver.Resolve(string(key), page, props)
				assert.Equal(t, fmt.Sprintf("themes/%s/%s", key, page), view.Component)
				assert.Equal(t, key, view.Theme)
				assert.Equal(t, fmt.Sprintf("themes/%s/Layout", key), view.Layout.Shell)
				assert.Contains(t, view.Props, "appearance")
			})
		}
	}
}

func TestResolve_DefaultAndUnknownFallBack(t *testing.T) {
	resolver := theme.NewResolver(theme.NewRegistry())

	for _, key := range []string{"default", "", "unknown-theme"} {
		view := resolver.Resolve(key, theme.PageLogin, theme.Props{"store": "acme"})
		assert.Equal(t, "store/Login", view.Component)
		assert.Equal(t, theme.Default, view.Theme)
		assert.Equal(t, "acme", view.Props["store"])
		assert.NotContains(t, view.Props, "appearance")
	}
}

func TestResolve_PageNotImplementedByThemeFallsBack(t *testing.T) {
	resolver := theme.NewResolver(theme.NewRegistry())

	view := resolver.Resolve("watches", theme.PageRegister, nil)
	assert.Equal(t, "store/Register", view.Component)

	view = resolver.Resolve("fashion", theme.PageProduct, theme.Props{"product": 1})
	assert.Equal(t, "themes/fashion/Product", view.Component)

	view = resolver.Resolve("watches", theme.PageProduct, theme.Props{"product": 1})
	assert.Equal(t, "store/Product", view.Component)
}

func TestResolve_RendererFailureLogsAndFallsBack(t *testing.T) {
	registry := theme.NewRegistry()
	registry.Register(theme.Jewelry, theme.PageBlog, theme.RendererFunc(func(theme.Page, theme.Props) (theme.View, error) {
		return theme.View{}, errors.New("boom")
	}))
	resolver := theme.NewResolver(registry)
	var logged []string
	resolver.SetLogger(func(format string, args ...any) {
		logged = append(logged, fmt.Sprintf(format, args...))
	})

	view := resolver.Resolve("jewelry", theme.PageBlog, nil)
	assert.Equal(t, "store/Blog", view.Component)
	require.Len(t, logged, 1)
	assert.Contains(t, logged[0], "boom")

	// a themed order page without its order cannot render
	view = resolver.Resolve("jewelry", theme.PageOrderDetail, theme.Props{})
	assert.Equal(t, "store/OrderDetail", view.Component)
	require.Len(t, logged, 2)
	assert.Contains(t, logged[1], "order")
}

func TestResolve_DoesNotMutateCallerProps(t *testing.T) {
	resolver := theme.NewResolver(theme.NewRegistry())
	props := theme.Props{"cart_count": 2}

	resolver.Resolve("fashion", theme.PageHome, props)
	assert.Equal(t, theme.Props{"cart_count": 2}, props)
}

func TestCatalog(t *testing.T) {
	catalog := theme.NewRegistry().Catalog()
	require.Len(t, catalog, 10)
	assert.Equal(t, theme.Default, catalog[0].Key)
	assert.Empty(t, catalog[0].Pages)

	for _, d := range catalog[1:] {
		assert.NotEmpty(t, d.Name)
		assert.Contains(t, d.Pages, theme.PageLogin)
		assert.NotContains(t, d.Pages, theme.PageRegister)
	}
}
