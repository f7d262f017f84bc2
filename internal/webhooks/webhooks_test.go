package webhooks_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"multistore/internal/database"
	"multistore/internal/events"
	"multistore/internal/models"
	"multistore/internal/repositories"
	"multistore/internal/services"
	"multistore/internal/webhooks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestSignAndVerify(t *testing.T) {
	sig := webhooks.Sign("secret", []byte(`{"a":1}`))
	assert.True(t, strings.HasPrefix(sig, "sha256="))
	assert.Len(t, sig, len("sha256=")+64)
	assert.True(t, webhooks.Verify("secret", []byte(`{"a":1}`), sig))
	assert.False(t, webhooks.Verify("other", []byte(`{"a":1}`), sig))
}

type received struct {
	path, signature, event string
	body                   []byte
}

func TestDispatcher_DeliversSignedEvents(t *testing.T) {
	var mu sync.Mutex
	var got []received
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, received{r.URL.Path, r.Header.Get(webhooks.SignatureHeader), r.Header.Get(webhooks.EventHeader), body})
		mu.Unlock()
		if r.URL.Path == "/broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	db := openDB(t)
	hooks := repositories.NewGORMWebhookRepository(db)
	require.NoError(t, hooks.Create(&models.Webhook{StoreID: "s1", URL: srv.URL + "/orders", Secret: "k1", Events: events.OrderPlaced, Active: true}))
	require.NoError(t, hooks.Create(&models.Webhook{StoreID: "s1", URL: srv.URL + "/all", Secret: "k2", Events: "*", Active: true}))
	require.NoError(t, hooks.Create(&models.Webhook{StoreID: "s1", URL: srv.URL + "/paid", Secret: "k3", Events: events.OrderPaid, Active: true}))
	require.NoError(t, hooks.Create(&models.Webhook{StoreID: "s2", URL: srv.URL + "/other-store", Secret: "k4", Events: "*", Active: true}))

	dispatcher := webhooks.NewDispatcher(hooks, 2*time.Second)
	evt, err := events.New(events.OrderPlaced, "s1", events.OrderPayload{Number: "ORD-1"})
	require.NoError(t, err)
	require.NoError(t, dispatcher.Handle(context.Background(), evt))

	require.Len(t, got, 2)
	secrets := map[string]string{"/orders": "k1", "/all": "k2"}
	for _, r := range got {
		secret, ok := secrets[r.path]
		require.True(t, ok, "unexpected delivery to %s", r.path)
		assert.Equal(t, events.OrderPlaced, r.event)
		assert.True(t, webhooks.Verify(secret, r.body, r.signature), "bad signature for %s", r.path)
		assert.Contains(t, string(r.body), "ORD-1")
	}

	// failing endpoints are reported
	require.NoError(t, hooks.Create(&models.Webhook{StoreID: "s3", URL: srv.URL + "/broken", Secret: "k", Events: "*", Active: true}))
	evt, _ = events.New(events.OrderPaid, "s3", nil)
	assert.Error(t, dispatcher.Handle(context.Background(), evt))
}

type recordingMailer struct {
	to, subject, body []string
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	m.to = append(m.to, to)
	m.subject = append(m.subject, subject)
	m.body = append(m.body, body)
	return nil
}

func TestNotifier_RendersStoreTemplates(t *testing.T) {
	db := openDB(t)
	stores := repositories.NewGORMStoreRepository(db)
	users := repositories.NewGORMUserRepository(db)
	tmplRepo := repositories.NewGORMTemplateRepository(db)

	store := &models.Store{Slug: "shop", Name: "Shop", Currency: "USD", CurrencySymbol: "$", SymbolPosition: models.SymbolBefore, Decimals: 2, Locale: "en"}
	require.NoError(t, stores.Create(store))
	customer := &models.User{StoreID: store.ID, Name: "Jo", Email: "jo@example.com", Password: "x", Role: models.RoleCustomer}
	require.NoError(t, users.Create(customer))
	require.NoError(t, tmplRepo.Upsert(&models.NotificationTemplate{
		StoreID: store.ID, Key: models.TemplateOrderStatusChanged,
		Subject: "{store_name}: {order_number}", Body: "Hello {customer_name}, now {order_status}",
	}))

	mailer := &recordingMailer{}
	router := events.NewRouter()
	webhooks.NewNotifier(services.NewTemplateService(tmplRepo), stores, users, mailer).Register(router)
	bus := events.NewInline(router)

	events.Emit(context.Background(), bus, events.OrderStatusChanged, store.ID, events.OrderPayload{
		Number: "ORD-9", Status: models.OrderShipped, CustomerID: customer.ID,
	})
	events.Emit(context.Background(), bus, events.OrderPlaced, store.ID, events.OrderPayload{
		Number: "ORD-10", Total: 1234.5, CustomerEmail: "jo@example.com", CustomerName: "Jo",
	})
	events.Emit(context.Background(), bus, events.CustomerRegistered, store.ID, events.CustomerPayload{Email: "jo@example.com"})
	bus.Close()

	require.Len(t, mailer.to, 2)
	assert.Equal(t, "Shop: ORD-9", mailer.subject[0])
	assert.Equal(t, "Hello Jo, now shipped", mailer.body[0])
	assert.Equal(t, "Order ORD-10 confirmed", mailer.subject[1])
	assert.Contains(t, mailer.body[1], "$1,234.50")
}

func TestPasswordResetTokenOnlyReachesTheCustomer(t *testing.T) {
	var mu sync.Mutex
	var delivered []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		delivered = append(delivered, string(body))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	db := openDB(t)
	stores := repositories.NewGORMStoreRepository(db)
	users := repositories.NewGORMUserRepository(db)
	hooks := repositories.NewGORMWebhookRepository(db)

	store := &models.Store{Slug: "shop", Name: "Shop"}
	require.NoError(t, stores.Create(store))
	require.NoError(t, hooks.Create(&models.Webhook{StoreID: store.ID, URL: srv.URL + "/all", Secret: "k", Events: "*", Active: true}))

	mailer := &recordingMailer{}
	router := events.NewRouter()
	webhooks.NewDispatcher(hooks, 2*time.Second).Register(router)
	webhooks.NewNotifier(services.NewTemplateService(repositories.NewGORMTemplateRepository(db)), stores, users, mailer).Register(router)
	bus := events.NewInline(router)

	auth := services.NewAuthService(users, bus, "secret")
	require.NoError(t, auth.CreateUser(&models.User{StoreID: store.ID, Name: "Jo", Email: "jo@example.com", Password: "password123", Role: models.RoleCustomer}))

	token, err := auth.ForgotPassword(context.Background(), store.ID, "jo@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	bus.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, delivered, 1)
	assert.Contains(t, delivered[0], events.PasswordResetRequested)
	assert.NotContains(t, delivered[0], token)

	require.Len(t, mailer.body, 1)
	assert.Equal(t, "jo@example.com", mailer.to[0])
	assert.Contains(t, mailer.body[0], token)
}
