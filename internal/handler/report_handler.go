package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gtemgoua/property-manager-app/internal/service"
	"github.com/gtemgoua/property-manager-app/pkg/response"
)

// ReportHandler handles dashboard and export HTTP requests
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Dashboard handles GET /api/reports/dashboard?from&to
func (h *ReportHandler) Dashboard(c *gin.Context) {
	from, to, ok := queryRange(c)
	if !ok {
		return
	}

	result, err := h.reportService.GetDashboard(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err, "Failed to build dashboard")
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// ExportExcel handles GET /api/reports/payments/excel?from&to&currency
func (h *ReportHandler) ExportExcel(c *gin.Context) {
	from, to, ok := queryRange(c)
	if !ok {
		return
	}
	currency, ok := queryCurrency(c)
	if !ok {
		return
	}

	content, name, err := h.reportService.ExportPaymentsExcel(c.Request.Context(), from, to, currency)
	if err != nil {
		respondError(c, err, "Failed to export payments")
		return
	}

	attachment(c, name, contentTypeXLSX, content)
}

// ExportPDF handles GET /api/reports/payments/pdf?from&to&currency
func (h *ReportHandler) ExportPDF(c *gin.Context) {
	from, to, ok := queryRange(c)
	if !ok {
		return
	}
	currency, ok := queryCurrency(c)
	if !ok {
		return
	}

	content, name, err := h.reportService.ExportPaymentsPDF(c.Request.Context(), from, to, currency)
	if err != nil {
		respondError(c, err, "Failed to export payments")
		return
	}

	attachment(c, name, contentTypePDF, content)
}
