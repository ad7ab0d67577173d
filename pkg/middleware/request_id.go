package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gtemgoua/property-manager-app/pkg/logger"
)

// HeaderRequestID carries the request correlation id in both directions
const HeaderRequestID = "X-Request-ID"

const contextKeyRequestID = "request_id"

// RequestID reuses an inbound X-Request-ID or generates one, echoes it on the
// response and stores it for handlers and the request logger
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.New().String()
		}

		c.Set(contextKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))

		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID, or the raw header when the middleware is not installed
func GetRequestID(c *gin.Context) string {
	if id, ok := getString(c, contextKeyRequestID); ok {
		return id
	}
	return c.GetHeader(HeaderRequestID)
}
