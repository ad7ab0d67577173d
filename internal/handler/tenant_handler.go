package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gtemgoua/property-manager-app/internal/dto"
	"github.com/gtemgoua/property-manager-app/internal/service"
	"github.com/gtemgoua/property-manager-app/pkg/response"
)

// TenantHandler handles tenant management HTTP requests
type TenantHandler struct {
	tenantService service.TenantService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenantService service.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// Create handles tenant creation
// POST /api/tenants
func (h *TenantHandler) Create(c *gin.Context) {
	var req dto.TenantRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.tenantService.CreateTenant(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create tenant")
		return
	}

	c.JSON(http.StatusCreated, response.Success(result))
}

// GetByID handles retrieving a tenant by ID
// GET /api/tenants/:id
func (h *TenantHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id", service.ErrTenantNotFound)
	if !ok {
		return
	}

	result, err := h.tenantService.GetTenant(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get tenant")
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// List handles retrieving all tenants
// GET /api/tenants
func (h *TenantHandler) List(c *gin.Context) {
	result, err := h.tenantService.ListTenants(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list tenants")
		return
	}

	c.JSON(http.StatusOK, response.List(result, len(result)))
}

// Update handles tenant update
// PUT /api/tenants/:id
func (h *TenantHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", service.ErrTenantNotFound)
	if !ok {
		return
	}

	var req dto.TenantRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.tenantService.UpdateTenant(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update tenant")
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// Delete handles tenant deletion
// DELETE /api/tenants/:id
func (h *TenantHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", service.ErrTenantNotFound)
	if !ok {
		return
	}

	if err := h.tenantService.DeleteTenant(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete tenant")
		return
	}

	c.Status(http.StatusNoContent)
}
