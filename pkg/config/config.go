package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "change-me-in-production"

// Config holds all application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	OTel      OTelConfig      `mapstructure:"otel"`
	Log       LogConfig       `mapstructure:"log"`
	Email     EmailConfig     `mapstructure:"email"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
	Stripe    StripeConfig    `mapstructure:"stripe"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"` // development, staging, production
	Debug       bool   `mapstructure:"debug"`
	Version     string `mapstructure:"version"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port for the HTTP listener
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryInterval   time.Duration `mapstructure:"retry_interval"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	// InMemory keeps all data in process memory instead of PostgreSQL
	InMemory bool `mapstructure:"in_memory"`
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisConfig holds Redis connection settings. Redis only backs the dashboard cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DashboardTTL time.Duration `mapstructure:"dashboard_ttl"`
}

// Addr returns the Redis address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// KafkaConfig holds Kafka/Redpanda settings for domain events
type KafkaConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Brokers  []string `mapstructure:"brokers"`
	ClientID string   `mapstructure:"client_id"`
	Topic    string   `mapstructure:"topic"`
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Secret  string `mapstructure:"secret"`
	Issuer  string `mapstructure:"issuer"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	ServiceName   string  `mapstructure:"service_name"`
	CollectorAddr string  `mapstructure:"collector_addr"`
	SampleRatio   float64 `mapstructure:"sample_ratio"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level        string `mapstructure:"level"`
	OutputPath   string `mapstructure:"output_path"`
	OTLPEnabled  bool   `mapstructure:"otlp_enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// EmailConfig holds SMTP settings. An empty Host disables delivery.
type EmailConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	UseSSL      bool          `mapstructure:"use_ssl"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	SenderEmail string        `mapstructure:"sender_email"`
	SenderName  string        `mapstructure:"sender_name"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// AlertsConfig controls the late payment alert scanner
type AlertsConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	ScanInterval time.Duration `mapstructure:"scan_interval"`
	OverdueDays  int           `mapstructure:"overdue_days"`
	RunOnStart   bool          `mapstructure:"run_on_start"`
}

// StripeConfig holds card payment settings. An empty SecretKey disables the gateway.
type StripeConfig struct {
	SecretKey string `mapstructure:"secret_key"`
}

// CORSConfig holds browser client settings
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// RateLimitConfig throttles report exports per client IP
type RateLimitConfig struct {
	RequestsPerSecond int `mapstructure:"requests_per_second"`
	BurstSize         int `mapstructure:"burst_size"`
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	// a missing .env is fine, the environment may carry everything
	_ = v.ReadInConfig()
	return load(v)
}

// LoadWithPath loads configuration from a specific env file
func LoadWithPath(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := &Config{}
	bindConfig(v, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "property-manager")
	v.SetDefault("APP_ENVIRONMENT", "development")
	v.SetDefault("APP_DEBUG", true)
	v.SetDefault("APP_VERSION", "1.0.0")

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "30s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "60s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "120s")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "15s")

	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "postgres")
	v.SetDefault("DATABASE_DBNAME", "property_manager")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_CONNS", 25)
	v.SetDefault("DATABASE_MIN_CONNS", 5)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("DATABASE_CONN_MAX_IDLE_TIME", "30m")
	v.SetDefault("DATABASE_MAX_RETRIES", 3)
	v.SetDefault("DATABASE_RETRY_INTERVAL", "2s")
	v.SetDefault("DATABASE_AUTO_MIGRATE", true)
	v.SetDefault("DATABASE_IN_MEMORY", false)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("REDIS_READ_TIMEOUT", "3s")
	v.SetDefault("REDIS_WRITE_TIMEOUT", "3s")
	v.SetDefault("REDIS_DASHBOARD_TTL", "5m")

	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_CLIENT_ID", "property-manager")
	v.SetDefault("KAFKA_TOPIC", "property-manager.payments")

	v.SetDefault("JWT_ENABLED", false)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ISSUER", "property-manager")

	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "property-manager")
	v.SetDefault("OTEL_COLLECTOR_ADDR", "localhost:4317")
	v.SetDefault("OTEL_SAMPLE_RATIO", 1.0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_OUTPUT_PATH", "stdout")
	v.SetDefault("LOG_OTLP_ENABLED", false)
	v.SetDefault("LOG_OTLP_ENDPOINT", "localhost:4318")

	v.SetDefault("EMAIL_HOST", "")
	v.SetDefault("EMAIL_PORT", 587)
	v.SetDefault("EMAIL_USE_SSL", true)
	v.SetDefault("EMAIL_USERNAME", "")
	v.SetDefault("EMAIL_PASSWORD", "")
	v.SetDefault("EMAIL_SENDER_EMAIL", "no-reply@property-manager.local")
	v.SetDefault("EMAIL_SENDER_NAME", "Property Manager")
	v.SetDefault("EMAIL_TIMEOUT", "30s")

	v.SetDefault("ALERTS_ENABLED", true)
	v.SetDefault("ALERTS_SCAN_INTERVAL", "6h")
	v.SetDefault("ALERTS_OVERDUE_DAYS", 3)
	v.SetDefault("ALERTS_RUN_ON_START", true)

	v.SetDefault("STRIPE_SECRET_KEY", "")

	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:5173,http://localhost:3000")

	v.SetDefault("RATE_LIMIT_REQUESTS_PER_SECOND", 2)
	v.SetDefault("RATE_LIMIT_BURST_SIZE", 5)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func bindConfig(v *viper.Viper, cfg *Config) {
	cfg.App.Name = v.GetString("APP_NAME")
	cfg.App.Environment = v.GetString("APP_ENVIRONMENT")
	cfg.App.Debug = v.GetBool("APP_DEBUG")
	cfg.App.Version = v.GetString("APP_VERSION")

	cfg.Server.Host = v.GetString("SERVER_HOST")
	cfg.Server.Port = v.GetInt("SERVER_PORT")
	cfg.Server.ReadTimeout = v.GetDuration("SERVER_READ_TIMEOUT")
	cfg.Server.WriteTimeout = v.GetDuration("SERVER_WRITE_TIMEOUT")
	cfg.Server.IdleTimeout = v.GetDuration("SERVER_IDLE_TIMEOUT")
	cfg.Server.ShutdownTimeout = v.GetDuration("SERVER_SHUTDOWN_TIMEOUT")

	cfg.Database.Host = v.GetString("DATABASE_HOST")
	cfg.Database.Port = v.GetInt("DATABASE_PORT")
	cfg.Database.User = v.GetString("DATABASE_USER")
	cfg.Database.Password = v.GetString("DATABASE_PASSWORD")
	cfg.Database.DBName = v.GetString("DATABASE_DBNAME")
	cfg.Database.SSLMode = v.GetString("DATABASE_SSLMODE")
	cfg.Database.MaxConns = v.GetInt32("DATABASE_MAX_CONNS")
	cfg.Database.MinConns = v.GetInt32("DATABASE_MIN_CONNS")
	cfg.Database.ConnMaxLifetime = v.GetDuration("DATABASE_CONN_MAX_LIFETIME")
	cfg.Database.ConnMaxIdleTime = v.GetDuration("DATABASE_CONN_MAX_IDLE_TIME")
	cfg.Database.MaxRetries = v.GetInt("DATABASE_MAX_RETRIES")
	cfg.Database.RetryInterval = v.GetDuration("DATABASE_RETRY_INTERVAL")
	cfg.Database.AutoMigrate = v.GetBool("DATABASE_AUTO_MIGRATE")
	cfg.Database.InMemory = v.GetBool("DATABASE_IN_MEMORY")

	cfg.Redis.Enabled = v.GetBool("REDIS_ENABLED")
	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetInt("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	cfg.Redis.DialTimeout = v.GetDuration("REDIS_DIAL_TIMEOUT")
	cfg.Redis.ReadTimeout = v.GetDuration("REDIS_READ_TIMEOUT")
	cfg.Redis.WriteTimeout = v.GetDuration("REDIS_WRITE_TIMEOUT")
	cfg.Redis.DashboardTTL = v.GetDuration("REDIS_DASHBOARD_TTL")

	cfg.Kafka.Enabled = v.GetBool("KAFKA_ENABLED")
	cfg.Kafka.Brokers = splitList(v.GetString("KAFKA_BROKERS"))
	cfg.Kafka.ClientID = v.GetString("KAFKA_CLIENT_ID")
	cfg.Kafka.Topic = v.GetString("KAFKA_TOPIC")

	cfg.JWT.Enabled = v.GetBool("JWT_ENABLED")
	cfg.JWT.Secret = v.GetString("JWT_SECRET")
	cfg.JWT.Issuer = v.GetString("JWT_ISSUER")

	cfg.OTel.Enabled = v.GetBool("OTEL_ENABLED")
	cfg.OTel.ServiceName = v.GetString("OTEL_SERVICE_NAME")
	cfg.OTel.CollectorAddr = v.GetString("OTEL_COLLECTOR_ADDR")
	cfg.OTel.SampleRatio = v.GetFloat64("OTEL_SAMPLE_RATIO")

	cfg.Log.Level = v.GetString("LOG_LEVEL")
	cfg.Log.OutputPath = v.GetString("LOG_OUTPUT_PATH")
	cfg.Log.OTLPEnabled = v.GetBool("LOG_OTLP_ENABLED")
	cfg.Log.OTLPEndpoint = v.GetString("LOG_OTLP_ENDPOINT")

	cfg.Email.Host = v.GetString("EMAIL_HOST")
	cfg.Email.Port = v.GetInt("EMAIL_PORT")
	cfg.Email.UseSSL = v.GetBool("EMAIL_USE_SSL")
	cfg.Email.Username = v.GetString("EMAIL_USERNAME")
	cfg.Email.Password = v.GetString("EMAIL_PASSWORD")
	cfg.Email.SenderEmail = v.GetString("EMAIL_SENDER_EMAIL")
	cfg.Email.SenderName = v.GetString("EMAIL_SENDER_NAME")
	cfg.Email.Timeout = v.GetDuration("EMAIL_TIMEOUT")

	cfg.Alerts.Enabled = v.GetBool("ALERTS_ENABLED")
	cfg.Alerts.ScanInterval = v.GetDuration("ALERTS_SCAN_INTERVAL")
	cfg.Alerts.OverdueDays = v.GetInt("ALERTS_OVERDUE_DAYS")
	cfg.Alerts.RunOnStart = v.GetBool("ALERTS_RUN_ON_START")

	cfg.Stripe.SecretKey = v.GetString("STRIPE_SECRET_KEY")

	cfg.CORS.AllowOrigins = splitList(v.GetString("CORS_ALLOW_ORIGINS"))

	cfg.RateLimit.RequestsPerSecond = v.GetInt("RATE_LIMIT_REQUESTS_PER_SECOND")
	cfg.RateLimit.BurstSize = v.GetInt("RATE_LIMIT_BURST_SIZE")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return errors.New("app name is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if !c.Database.InMemory {
		if c.Database.Host == "" {
			return errors.New("database host is required")
		}
		if c.Database.DBName == "" {
			return errors.New("database name is required")
		}
	}
	if c.Alerts.ScanInterval <= 0 {
		return fmt.Errorf("invalid alert scan interval: %s", c.Alerts.ScanInterval)
	}
	if c.Alerts.OverdueDays < 0 {
		return fmt.Errorf("invalid alert overdue days: %d", c.Alerts.OverdueDays)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka brokers are required when kafka is enabled")
	}
	if c.JWT.Enabled {
		if c.JWT.Secret == "" {
			return errors.New("JWT secret is required")
		}
		if c.IsProduction() && c.JWT.Secret == defaultJWTSecret {
			return errors.New("JWT secret must be changed in production")
		}
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
