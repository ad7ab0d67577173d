package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gtemgoua/property-manager-app/internal/dto"
	"github.com/gtemgoua/property-manager-app/pkg/response"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers the liveness probe
type HealthHandler struct {
	db      Pinger
	version string
}

// NewHealthHandler creates a new HealthHandler. A nil db means the in-memory store is in use.
func NewHealthHandler(db Pinger, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusOK, response.Success(&dto.HealthResponse{
			Status:   "healthy",
			Database: "memory",
			Version:  h.version,
		}))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, response.Success(&dto.HealthResponse{
			Status:   "unhealthy",
			Database: "unreachable",
			Version:  h.version,
		}))
		return
	}

	c.JSON(http.StatusOK, response.Success(&dto.HealthResponse{
		Status:   "healthy",
		Database: "connected",
		Version:  h.version,
	}))
}
