package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"multistore/internal/app"
	"multistore/internal/config"
	"multistore/internal/database"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	v   *viper.Viper
	srv *app.Server
	ln  net.Listener
)

func TestMain(m *testing.M) {
	// Initialize Viper for tests
	v = viper.New()
	config.SetDefaults(v)
	v.Set("JWT_SECRET", "test_jwt_secret")
	v.Set("IS_DEMO", true)
	v.Set("CSRF_ENABLED", false)

	cfg, err := config.FromViper(v)
	if err != nil {
		log.Fatalf("Invalid test configuration: %v", err)
	}

	db, err := database.OpenMemory("main_test")
	if err != nil {
		log.Fatalf("Failed to open test database: %v", err)
	}

	srv = app.New(cfg, db, app.Options{DisableLogger: true})
	if err := app.SeedDemo(srv, app.DefaultDemo); err != nil {
		log.Fatalf("Failed to seed demo data: %v", err)
	}

	ln, err = net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}
	go func() {
		if err := srv.App.Listener(ln); err != nil {
			log.Printf("Test server stopped: %v", err)
		}
	}()

	code := m.Run()

	// Graceful Shutdown
	if err := srv.App.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	os.Exit(code)
}

func get(t *testing.T, path string) (int, string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := fmt.Sprintf("http://%s%s", ln.Addr().String(), path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.DefaultClient.Do(req)
		return err == nil
	}, 3*time.Second, 50*time.Millisecond, "server did not come up")
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServerStartupAndHealthCheck(t *testing.T) {
	t.Run("HealthCheck", func(t *testing.T) {
		status, body := get(t, "/health")
		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "\"status\":\"healthy\"", "Health check response body does not contain expected status")
	})

	t.Run("UnauthenticatedAccess", func(t *testing.T) {
		status, _ := get(t, "/api/v1/admin/products")
		assert.Equal(t, http.StatusUnauthorized, status, "Expected Unauthorized for admin products without token")
	})

	t.Run("DemoCatalog", func(t *testing.T) {
		status, body := get(t, "/api/v1/stores/demo/products")
		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "Linen Shirt")
		assert.Contains(t, body, "25% off")
	})

	t.Run("UnknownStore", func(t *testing.T) {
		status, _ := get(t, "/api/v1/stores/nope/products")
		assert.Equal(t, http.StatusNotFound, status)
	})
}
