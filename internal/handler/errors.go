package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/gtemgoua/property-manager-app/internal/dto"
	"github.com/gtemgoua/property-manager-app/internal/service"
	"github.com/gtemgoua/property-manager-app/pkg/logger"
	"github.com/gtemgoua/property-manager-app/pkg/response"
	"go.uber.org/zap"
)

// respondError maps a service error onto a status and envelope. Unclassified errors are
// logged and answered with fallback so internal details never reach the client.
func respondError(c *gin.Context, err error, fallback string) {
	msg, ok := service.ClientMessage(err)
	switch {
	case ok && errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, response.NotFound(msg))
	case ok && errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, response.Conflict(msg))
	case ok && errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, response.Error(response.ErrCodeValidationFailed, msg))
	case ok && errors.Is(err, service.ErrInvalidOperation):
		c.JSON(http.StatusBadRequest, response.InvalidOperation(msg))
	case ok && errors.Is(err, service.ErrCancelled):
		c.JSON(http.StatusServiceUnavailable, response.Cancelled(msg))
	default:
		logger.ErrorCtx(c.Request.Context(), fallback,
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, response.InternalError(fallback))
	}
}

// pathID reads a UUID path parameter. A malformed id cannot name a stored row,
// so it is answered with notFound like an unknown one.
func pathID(c *gin.Context, name string, notFound error) (string, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, notFound, "")
		return "", false
	}
	return id.String(), true
}

// bindJSON decodes the body and answers 400 itself when that fails
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var dateErr *dto.DateError
		if errors.As(err, &dateErr) {
			c.JSON(http.StatusBadRequest, response.Error(response.ErrCodeValidationFailed, dateErr.Error()))
			return false
		}
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return false
	}
	return true
}

// queryRange reads the optional from/to query parameters
func queryRange(c *gin.Context) (from, to *time.Time, ok bool) {
	from, err := dto.ParseDateQuery("from", c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ValidationFailed(map[string]string{"from": err.Error()}))
		return nil, nil, false
	}
	to, err = dto.ParseDateQuery("to", c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ValidationFailed(map[string]string{"to": err.Error()}))
		return nil, nil, false
	}
	return from, to, true
}

// queryCurrency reads the optional currency filter
func queryCurrency(c *gin.Context) (*domain.Currency, bool) {
	raw := c.Query("currency")
	if raw == "" {
		return nil, true
	}
	currency, err := domain.ParseCurrency(raw, "")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ValidationFailed(map[string]string{"currency": err.Error()}))
		return nil, false
	}
	return &currency, true
}
