package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gtemgoua/property-manager-app/internal/dto"
	"github.com/gtemgoua/property-manager-app/internal/service"
	"github.com/gtemgoua/property-manager-app/pkg/response"
)

// RentalUnitHandler handles rental unit HTTP requests
type RentalUnitHandler struct {
	unitService service.RentalUnitService
}

// NewRentalUnitHandler creates a new RentalUnitHandler
func NewRentalUnitHandler(unitService service.RentalUnitService) *RentalUnitHandler {
	return &RentalUnitHandler{unitService: unitService}
}

// Create handles POST /api/units
func (h *RentalUnitHandler) Create(c *gin.Context) {
	var req dto.RentalUnitRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.unitService.CreateUnit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create rental unit")
		return
	}

	c.JSON(http.StatusCreated, response.Success(result))
}

// GetByID handles GET /api/units/:id
func (h *RentalUnitHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id", service.ErrUnitNotFound)
	if !ok {
		return
	}

	result, err := h.unitService.GetUnit(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get rental unit")
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// List handles GET /api/units
func (h *RentalUnitHandler) List(c *gin.Context) {
	result, err := h.unitService.ListUnits(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list rental units")
		return
	}

	c.JSON(http.StatusOK, response.List(result, len(result)))
}

// Update handles PUT /api/units/:id
func (h *RentalUnitHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", service.ErrUnitNotFound)
	if !ok {
		return
	}

	var req dto.RentalUnitRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.unitService.UpdateUnit(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update rental unit")
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// Delete handles DELETE /api/units/:id
func (h *RentalUnitHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", service.ErrUnitNotFound)
	if !ok {
		return
	}

	if err := h.unitService.DeleteUnit(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete rental unit")
		return
	}

	c.Status(http.StatusNoContent)
}
