package di

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gtemgoua/property-manager-app/internal/cache"
	"github.com/gtemgoua/property-manager-app/internal/document"
	"github.com/gtemgoua/property-manager-app/internal/events"
	"github.com/gtemgoua/property-manager-app/internal/gateway"
	"github.com/gtemgoua/property-manager-app/internal/handler"
	"github.com/gtemgoua/property-manager-app/internal/notifier"
	"github.com/gtemgoua/property-manager-app/internal/repository"
	"github.com/gtemgoua/property-manager-app/internal/service"
	"github.com/gtemgoua/property-manager-app/internal/worker"
	"github.com/gtemgoua/property-manager-app/pkg/config"
	"github.com/gtemgoua/property-manager-app/pkg/database"
	"github.com/gtemgoua/property-manager-app/pkg/logger"
	"github.com/gtemgoua/property-manager-app/pkg/middleware"
	pkgredis "github.com/gtemgoua/property-manager-app/pkg/redis"
	"github.com/gtemgoua/property-manager-app/pkg/telemetry"
	"go.uber.org/zap"
)

// Container holds all dependencies of the property manager
type Container struct {
	Config *config.Config

	// Infrastructure
	DB        *database.PostgresDB
	Redis     *pkgredis.Client
	Publisher events.Publisher
	Metrics   *telemetry.AppMetrics

	// Repositories
	TenantRepo   repository.TenantRepository
	UnitRepo     repository.RentalUnitRepository
	ContractRepo repository.ContractRepository
	PaymentRepo  repository.PaymentRepository
	AlertRepo    repository.AlertRepository
	DocumentRepo repository.DocumentRepository

	// Services
	TenantService   service.TenantService
	UnitService     service.RentalUnitService
	ContractService service.ContractService
	PaymentService  service.PaymentService
	AlertService    service.AlertService
	ReportService   service.ReportService

	// Background work
	AlertScanner *worker.AlertScanner
	AuditLogger  *middleware.AuditLogger
	RateLimiter  *middleware.RateLimiter

	// Handlers
	Handlers *handler.Handlers
}

// NewContainer connects the configured infrastructure and builds every service and handler.
// Redis, Kafka, SMTP and Stripe fall back to local stand-ins when not configured.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	log := logger.Get().Component("di")
	c := &Container{Config: cfg}

	metrics, err := telemetry.NewAppMetrics()
	if err != nil {
		log.Warn("metrics unavailable, using no-op instruments", zap.Error(err))
		metrics = telemetry.NoopMetrics()
	}
	c.Metrics = metrics

	if err := c.initRepositories(ctx); err != nil {
		return nil, err
	}

	dashboard, err := c.initCache(ctx)
	if err != nil {
		c.Close(ctx)
		return nil, err
	}

	c.Publisher, err = events.New(&cfg.Kafka, "property-manager.payments")
	if err != nil {
		c.Close(ctx)
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	renderer := document.NewGenerator(cfg.Email.SenderName)

	// Initialize services
	c.TenantService = service.NewTenantService(c.TenantRepo)
	c.UnitService = service.NewRentalUnitService(c.UnitRepo)
	c.ContractService = service.NewContractService(c.ContractRepo, c.TenantRepo, c.UnitRepo, c.Publisher, dashboard)
	c.PaymentService = service.NewPaymentService(&service.PaymentServiceConfig{
		PaymentRepo:  c.PaymentRepo,
		ContractRepo: c.ContractRepo,
		DocumentRepo: c.DocumentRepo,
		Renderer:     renderer,
		Notifier:     notifier.New(&cfg.Email),
		Gateway:      gateway.New(&cfg.Stripe),
		Publisher:    c.Publisher,
		Dashboard:    dashboard,
		Metrics:      c.Metrics,
	})
	c.AlertService = service.NewAlertService(c.AlertRepo, c.Publisher, dashboard, c.Metrics, cfg.Alerts.OverdueDays)
	c.ReportService = service.NewReportService(&service.ReportServiceConfig{
		TenantRepo:   c.TenantRepo,
		UnitRepo:     c.UnitRepo,
		ContractRepo: c.ContractRepo,
		PaymentRepo:  c.PaymentRepo,
		DocumentRepo: c.DocumentRepo,
		Renderer:     renderer,
		Dashboard:    dashboard,
	})

	c.AlertScanner = worker.NewAlertScanner(c.AlertService, &worker.AlertScannerConfig{
		ScanInterval: cfg.Alerts.ScanInterval,
		RunOnStart:   cfg.Alerts.RunOnStart,
		ScanTimeout:  worker.DefaultAlertScannerConfig().ScanTimeout,
	})

	// Initialize handlers
	var pinger handler.Pinger
	if c.DB != nil {
		pinger = c.DB
	}
	c.Handlers = &handler.Handlers{
		Health:    handler.NewHealthHandler(pinger, cfg.App.Version),
		Tenants:   handler.NewTenantHandler(c.TenantService),
		Units:     handler.NewRentalUnitHandler(c.UnitService),
		Contracts: handler.NewContractHandler(c.ContractService),
		Payments:  handler.NewPaymentHandler(c.PaymentService),
		Alerts:    handler.NewAlertHandler(c.AlertService),
		Reports:   handler.NewReportHandler(c.ReportService),
	}

	return c, nil
}

func (c *Container) initRepositories(ctx context.Context) error {
	cfg := c.Config.Database
	if cfg.InMemory {
		logger.Get().Component("di").Warn("using the in-memory store, data is lost on restart")
		store := repository.NewMemoryStore()
		c.TenantRepo = store.Tenants()
		c.UnitRepo = store.Units()
		c.ContractRepo = store.Contracts()
		c.PaymentRepo = store.Payments()
		c.AlertRepo = store.Alerts()
		c.DocumentRepo = store.Documents()
		return nil
	}

	db, err := Connect(ctx, &cfg)
	if err != nil {
		return err
	}
	c.DB = db

	if cfg.AutoMigrate {
		applied, err := database.Migrate(ctx, db.Pool())
		if err != nil {
			db.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info("migrations applied", zap.Int("count", applied))
	}

	pool := db.Pool()
	c.TenantRepo = repository.NewPostgresTenantRepository(pool)
	c.UnitRepo = repository.NewPostgresRentalUnitRepository(pool)
	c.ContractRepo = repository.NewPostgresContractRepository(pool)
	c.PaymentRepo = repository.NewPostgresPaymentRepository(pool)
	c.AlertRepo = repository.NewPostgresAlertRepository(pool)
	c.DocumentRepo = repository.NewPostgresDocumentRepository(pool)
	return nil
}

func (c *Container) initCache(ctx context.Context) (cache.DashboardCache, error) {
	if !c.Config.Redis.Enabled {
		return cache.NoopDashboardCache{}, nil
	}
	client, err := pkgredis.NewClient(ctx, &c.Config.Redis)
	if err != nil {
		return nil, err
	}
	c.Redis = client
	return cache.NewRedisDashboardCache(client.Client, c.Config.Redis.DashboardTTL), nil
}

// Connect opens the PostgreSQL pool described by the database config
func Connect(ctx context.Context, cfg *config.DatabaseConfig) (*database.PostgresDB, error) {
	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.Host
	pgCfg.Port = cfg.Port
	pgCfg.User = cfg.User
	pgCfg.Password = cfg.Password
	pgCfg.Database = cfg.DBName
	pgCfg.SSLMode = cfg.SSLMode
	pgCfg.MaxConns = cfg.MaxConns
	pgCfg.MinConns = cfg.MinConns
	pgCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	pgCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	pgCfg.MaxRetries = cfg.MaxRetries
	pgCfg.RetryInterval = cfg.RetryInterval
	return database.NewPostgres(ctx, pgCfg)
}

// Router builds the HTTP engine. The audit log needs PostgreSQL and is skipped otherwise.
func (c *Container) Router() *gin.Engine {
	cfg := c.Config

	rlCfg := middleware.DefaultRateLimitConfig()
	rlCfg.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
	rlCfg.BurstSize = cfg.RateLimit.BurstSize
	if c.Redis != nil {
		rlCfg.RedisClient = c.Redis.Client
	}
	c.RateLimiter = middleware.NewRateLimiter(rlCfg)

	routerCfg := &handler.RouterConfig{
		ServiceName:   cfg.OTel.ServiceName,
		CORSOrigins:   cfg.CORS.AllowOrigins,
		ReportLimiter: c.RateLimiter,
		Metrics:       c.Metrics,
		Logger:        logger.Get().Component("http"),
	}
	if cfg.JWT.Enabled {
		routerCfg.JWT = &middleware.JWTConfig{
			Secret:    cfg.JWT.Secret,
			Issuer:    cfg.JWT.Issuer,
			SkipPaths: []string{"/health"},
		}
	}
	if c.DB != nil {
		c.AuditLogger = middleware.NewAuditLogger(middleware.DefaultAuditConfig(c.DB.Pool()))
		routerCfg.Audit = c.AuditLogger
	}

	return handler.NewRouter(routerCfg, c.Handlers)
}

// Close stops background work and releases connections
func (c *Container) Close(ctx context.Context) {
	log := logger.Get().Component("di")

	if c.AlertScanner != nil {
		c.AlertScanner.Stop()
	}
	if c.RateLimiter != nil {
		c.RateLimiter.Stop()
	}
	if c.AuditLogger != nil {
		if err := c.AuditLogger.Close(); err != nil {
			log.Warn("failed to flush audit log", zap.Error(err))
		}
	}
	if c.Publisher != nil {
		if err := c.Publisher.Close(ctx); err != nil {
			log.Warn("failed to close event publisher", zap.Error(err))
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn("failed to close redis client", zap.Error(err))
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
