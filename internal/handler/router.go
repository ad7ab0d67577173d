package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/gtemgoua/property-manager-app/pkg/logger"
	"github.com/gtemgoua/property-manager-app/pkg/middleware"
	"github.com/gtemgoua/property-manager-app/pkg/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Handlers groups the HTTP handlers mounted by the router
type Handlers struct {
	Health    *HealthHandler
	Tenants   *TenantHandler
	Units     *RentalUnitHandler
	Contracts *ContractHandler
	Payments  *PaymentHandler
	Alerts    *AlertHandler
	Reports   *ReportHandler
}

// RouterConfig controls the middleware chain
type RouterConfig struct {
	ServiceName string
	CORSOrigins []string
	// JWT enables bearer authentication when set; mutations then need admin or manager
	JWT *middleware.JWTConfig
	// Audit records mutating requests when set
	Audit *middleware.AuditLogger
	// ReportLimiter throttles report endpoints when set
	ReportLimiter *middleware.RateLimiter
	Metrics       *telemetry.AppMetrics
	Logger        *logger.Logger
}

// NewRouter builds the gin engine with every route of the API
func NewRouter(cfg *RouterConfig, h *Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = logger.Get()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.NoopMetrics()
	}

	r := gin.New()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(middleware.HTTPMetrics(metrics))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORSWithOrigins(cfg.CORSOrigins))

	r.GET("/health", h.Health.Health)

	api := r.Group("/api")
	if cfg.JWT != nil {
		api.Use(middleware.JWTMiddleware(cfg.JWT))
		api.Use(middleware.RequireRoleForWrites(middleware.RoleAdmin, middleware.RoleManager))
	}
	if cfg.Audit != nil {
		api.Use(middleware.AuditMiddleware(cfg.Audit))
	}

	tenants := api.Group("/tenants")
	{
		tenants.GET("", h.Tenants.List)
		tenants.POST("", h.Tenants.Create)
		tenants.GET("/:id", h.Tenants.GetByID)
		tenants.PUT("/:id", h.Tenants.Update)
		tenants.DELETE("/:id", h.Tenants.Delete)
	}

	units := api.Group("/units")
	{
		units.GET("", h.Units.List)
		units.POST("", h.Units.Create)
		units.GET("/:id", h.Units.GetByID)
		units.PUT("/:id", h.Units.Update)
		units.DELETE("/:id", h.Units.Delete)
	}

	contracts := api.Group("/contracts")
	{
		contracts.GET("", h.Contracts.List)
		contracts.POST("", h.Contracts.Create)
		contracts.GET("/:id", h.Contracts.GetByID)
		contracts.PUT("/:id", h.Contracts.Update)
		contracts.DELETE("/:id", h.Contracts.Delete)
	}

	payments := api.Group("/rentpayments")
	{
		payments.GET("", h.Payments.Upcoming)
		payments.POST("", h.Payments.Create)
		payments.GET("/contract/:contractId", h.Payments.ByContract)
		payments.GET("/:id", h.Payments.GetByID)
		payments.POST("/:id/record", h.Payments.Record)
		payments.GET("/:id/receipt", h.Payments.Receipt)
		payments.POST("/:id/send-receipt", h.Payments.SendReceipt)
		payments.POST("/:id/payment-intent", h.Payments.CreateIntent)
		payments.POST("/:id/payment-intent/:intentId/confirm", h.Payments.ConfirmIntent)
	}

	alerts := api.Group("/alerts")
	{
		alerts.GET("", h.Alerts.Active)
		alerts.POST("/:id/acknowledge", h.Alerts.Acknowledge)
		if cfg.JWT != nil {
			alerts.POST("/scan", middleware.RequireRole(middleware.RoleAdmin), h.Alerts.Scan)
		} else {
			alerts.POST("/scan", h.Alerts.Scan)
		}
	}

	reports := api.Group("/reports")
	if cfg.ReportLimiter != nil {
		reports.Use(cfg.ReportLimiter.Middleware())
	}
	{
		reports.GET("/dashboard", h.Reports.Dashboard)
		reports.GET("/payments/excel", h.Reports.ExportExcel)
		reports.GET("/payments/pdf", h.Reports.ExportPDF)
	}

	return r
}
