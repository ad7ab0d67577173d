package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gtemgoua/property-manager-app/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		App:       config.AppConfig{Name: "property-manager", Environment: "test", Version: "1.0.0"},
		Server:    config.ServerConfig{Port: 8080},
		Database:  config.DatabaseConfig{InMemory: true},
		Alerts:    config.AlertsConfig{ScanInterval: time.Hour, OverdueDays: 3},
		OTel:      config.OTelConfig{ServiceName: "property-manager"},
		Email:     config.EmailConfig{SenderName: "Property Manager"},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 10, BurstSize: 10},
	}
}

func TestNewContainer_InMemory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	c, err := NewContainer(ctx, memoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close(ctx) })

	assert.Nil(t, c.DB)
	assert.Nil(t, c.Redis)
	require.NotNil(t, c.Handlers)
	require.NotNil(t, c.AlertScanner)

	raised, err := c.AlertService.GenerateAlerts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, raised)

	router := c.Router()
	assert.Nil(t, c.AuditLogger)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"memory"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tenants", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
