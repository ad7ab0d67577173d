package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gtemgoua/property-manager-app/internal/dto"
	"github.com/gtemgoua/property-manager-app/internal/service"
	"github.com/gtemgoua/property-manager-app/pkg/middleware"
	"github.com/gtemgoua/property-manager-app/pkg/response"
)

// ContractHandler handles rental contract HTTP requests
type ContractHandler struct {
	contractService service.ContractService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contractService service.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// Create handles contract creation. The first monthly payment is scheduled with it.
// POST /api/contracts
func (h *ContractHandler) Create(c *gin.Context) {
	var req dto.CreateRentalContractRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.contractService.CreateContract(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create contract")
		return
	}

	middleware.SetAuditResourceID(c, result.ID)
	c.JSON(http.StatusCreated, response.Success(result))
}

// GetByID handles GET /api/contracts/:id
func (h *ContractHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id", service.ErrContractNotFound)
	if !ok {
		return
	}

	result, err := h.contractService.GetContract(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get contract")
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// List handles GET /api/contracts
func (h *ContractHandler) List(c *gin.Context) {
	result, err := h.contractService.ListContracts(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list contracts")
		return
	}

	c.JSON(http.StatusOK, response.List(result, len(result)))
}

// Update handles PUT /api/contracts/:id
func (h *ContractHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", service.ErrContractNotFound)
	if !ok {
		return
	}

	var req dto.UpdateRentalContractRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.contractService.UpdateContract(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update contract")
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// Delete handles DELETE /api/contracts/:id
func (h *ContractHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", service.ErrContractNotFound)
	if !ok {
		return
	}

	if err := h.contractService.DeleteContract(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete contract")
		return
	}

	c.Status(http.StatusNoContent)
}
