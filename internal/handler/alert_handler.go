package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gtemgoua/property-manager-app/internal/dto"
	"github.com/gtemgoua/property-manager-app/internal/service"
	"github.com/gtemgoua/property-manager-app/pkg/response"
)

// AlertHandler handles overdue payment alert HTTP requests
type AlertHandler struct {
	alertService service.AlertService
	now          func() time.Time
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(alertService service.AlertService) *AlertHandler {
	return &AlertHandler{alertService: alertService, now: time.Now}
}

// Active handles GET /api/alerts
func (h *AlertHandler) Active(c *gin.Context) {
	result, err := h.alertService.GetActive(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list alerts")
		return
	}

	c.JSON(http.StatusOK, response.List(result, len(result)))
}

// Acknowledge closes an alert. Unknown ids still answer 204.
// POST /api/alerts/:id/acknowledge
func (h *AlertHandler) Acknowledge(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNoContent)
		return
	}

	if err := h.alertService.Acknowledge(c.Request.Context(), id.String()); err != nil {
		respondError(c, err, "Failed to acknowledge alert")
		return
	}

	c.Status(http.StatusNoContent)
}

// Scan runs an overdue payment scan now
// POST /api/alerts/scan
func (h *AlertHandler) Scan(c *gin.Context) {
	raised, err := h.alertService.GenerateAlerts(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to scan for overdue payments")
		return
	}

	c.JSON(http.StatusOK, response.Success(&dto.AlertScanResponse{
		AlertsRaised: raised,
		ScannedAt:    h.now().UTC(),
	}))
}
