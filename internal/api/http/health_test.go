package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func serveHealth(t *testing.T, h *HealthHandler, path string) HealthResponse {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	h.RegisterRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	return response
}

func TestHealthCheck(t *testing.T) {
	h := NewHealthHandler("test-service", "1.0.0", "yaml", pingFunc(func(context.Context) error { return nil }))

	for _, path := range []string{"/health", "/healthz"} {
		response := serveHealth(t, h, path)
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "test-service", response.Service)
		assert.Equal(t, "1.0.0", response.Version)
		assert.Equal(t, "up", response.Store)
		assert.Equal(t, "yaml", response.StoreKind)
	}
}

func TestHealthCheck_StoreDown(t *testing.T) {
	h := NewHealthHandler("test-service", "1.0.0", "redis", pingFunc(func(context.Context) error {
		return errors.New("dial tcp: connection refused")
	}))

	response := serveHealth(t, h, "/health")
	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, "down", response.Store)
}

func TestHealthCheck_NoStore(t *testing.T) {
	response := serveHealth(t, NewHealthHandler("test-service", "1.0.0", "", nil), "/health")
	assert.Equal(t, "disabled", response.Store)
}

func TestHealthCheckMethodNotAllowed(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	NewHealthHandler("test-service", "1.0.0", "", nil).RegisterRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
