package pages_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"multistore/internal/flash"
	"multistore/internal/models"
	"multistore/internal/pages"
	"multistore/internal/theme"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestNegotiate(t *testing.T) {
	tests := []struct {
		name                       string
		store, param, accept, want string
	}{
		{"store locale without preference", "fr", "", "", "fr"},
		{"accept picks english", "fr", "", "en-US,en;q=0.9", "en"},
		{"accept picks store locale", "ar", "", "ar-EG,en;q=0.5", "ar"},
		{"param wins over header", "ar", "en", "ar", "en"},
		{"no match falls back to store", "de", "", "ja", "de"},
		{"broken store locale", "??", "", "", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pages.Negotiate(tt.store, tt.param, tt.accept)
			base, _ := got.Base()
			assert.Equal(t, tt.want, base.String())
		})
	}
}

func TestDirection(t *testing.T) {
	for _, tag := range []string{"ar", "he", "fa-IR", "ur"} {
		assert.Equal(t, pages.RTL, pages.Direction(language.MustParse(tag)), tag)
	}
	assert.Equal(t, pages.LTR, pages.Direction(language.English))
	assert.Equal(t, pages.LTR, pages.Direction(language.MustParse("fr")))
}

type countFunc func(storeID, key string) (int, error)

func (f countFunc) Count(storeID, key string) (int, error) { return f(storeID, key) }

func TestComposer_Compose(t *testing.T) {
	store := &models.Store{Base: models.Base{ID: "s"}, Slug: "shop", Name: "Shop", Locale: "ar", Currency: "AED", IsDemo: true}
	carts := countFunc(func(storeID, key string) (int, error) {
		assert.Equal(t, "customer:c", key)
		return 3, nil
	})
	wishlists := countFunc(func(string, string) (int, error) { return 0, errors.New("db down") })

	now := time.Unix(0, 0)
	dedup := flash.NewDeduper(2 * time.Second)
	dedup.SetClock(func() time.Time { return now })
	composer := pages.NewComposer(carts, wishlists, dedup, false)

	visitor := pages.Visitor{
		Customer:  &models.User{Base: models.Base{ID: "c"}, Name: "Jo"},
		CartOwner: "customer:c",
		Flash:     []flash.Message{flash.Success("Added to cart")},
		CSRFToken: "tok",
	}
	sess := composer.Compose(store, visitor)
	assert.Equal(t, 3, sess.Shared.CartCount)
	assert.Equal(t, 0, sess.Shared.WishlistCount)
	assert.True(t, sess.Shared.Auth.IsLoggedIn)
	assert.Equal(t, "c", sess.Shared.Auth.Customer.ID)
	assert.Equal(t, pages.RTL, sess.Shared.Layout.Direction)
	assert.True(t, sess.Shared.IsDemo)
	assert.Equal(t, "tok", sess.Shared.CSRFToken)
	require.Len(t, sess.Shared.Flash, 1)

	// the same notice within the window is suppressed
	now = now.Add(1999 * time.Millisecond)
	assert.Empty(t, composer.Compose(store, visitor).Shared.Flash)

	// and shown again once the window has passed
	now = now.Add(2 * time.Second)
	assert.Len(t, composer.Compose(store, visitor).Shared.Flash, 1)

	guest := composer.Compose(store, pages.Visitor{})
	assert.False(t, guest.Shared.Auth.IsLoggedIn)
	assert.Nil(t, guest.Shared.Auth.Customer)
	assert.NotNil(t, guest.Shared.Flash)
}

func newBridgeApp(store *models.Store) *fiber.App {
	bridge := pages.NewBridge(theme.NewResolver(theme.NewRegistry()), "v2")
	composer := pages.NewComposer(nil, nil, nil, false)
	app := fiber.New()
	app.Use(bridge.VersionGuard())
	app.Get("/store/shop", func(c *fiber.Ctx) error {
		sess := composer.Compose(store, pages.Visitor{AcceptLanguage: c.Get(fiber.HeaderAcceptLanguage)})
		return bridge.Render(c, sess, theme.PageHome, theme.Props{"products": []string{"a"}})
	})
	return app
}

func TestBridge_PartialVisitReturnsJSON(t *testing.T) {
	store := &models.Store{Base: models.Base{ID: "s"}, Slug: "shop", Name: "Shop", Theme: "fashion", Locale: "en"}
	app := newBridgeApp(store)

	req := httptest.NewRequest(http.MethodGet, "/store/shop?page=1", nil)
	req.Header.Set(pages.HeaderPartial, "true")
	req.Header.Set(pages.HeaderVersion, "v2")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get(pages.HeaderPartial))

	var page pages.Page
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Equal(t, "themes/fashion/Home", page.Component)
	assert.Equal(t, "/store/shop?page=1", page.URL)
	assert.Equal(t, "v2", page.Version)
	assert.Contains(t, page.Props, "products")
	assert.Contains(t, page.Props, "cart_count")
	assert.Contains(t, page.Props, "csrf_token")
}

func TestBridge_FirstLoadReturnsShell(t *testing.T) {
	store := &models.Store{Base: models.Base{ID: "s"}, Slug: "shop", Name: "Shop <Best>", Locale: "he"}
	app := newBridgeApp(store)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/store/shop", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/html")

	body, _ := io.ReadAll(resp.Body)
	html := string(body)
	assert.Contains(t, html, `dir="rtl"`)
	assert.Contains(t, html, "Shop &lt;Best&gt;")
	assert.Contains(t, html, `data-page="`)
	assert.Contains(t, html, "store/Home")
	assert.False(t, strings.Contains(html, `"component"`), "page json must be attribute-escaped")
}

func TestBridge_StaleVersionConflicts(t *testing.T) {
	app := newBridgeApp(&models.Store{Slug: "shop"})

	req := httptest.NewRequest(http.MethodGet, "/store/shop", nil)
	req.Header.Set(pages.HeaderPartial, "true")
	req.Header.Set(pages.HeaderVersion, "v1")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "/store/shop", resp.Header.Get(pages.HeaderLocation))
}
