package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gtemgoua/property-manager-app/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// HTTPMetrics counts requests and records latency per route
func HTTPMetrics(m *telemetry.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		m.HTTPInFlight.Inc(ctx)
		defer m.HTTPInFlight.Dec(ctx)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		attrs := []attribute.KeyValue{
			telemetry.MethodAttr(c.Request.Method),
			telemetry.RouteAttr(route),
			telemetry.StatusCodeAttr(c.Writer.Status()),
		}
		m.HTTPRequests.Inc(ctx, attrs...)
		m.HTTPDuration.Record(ctx, time.Since(start).Seconds(), attrs...)
	}
}
