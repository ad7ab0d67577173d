package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_NAME", "APP_ENVIRONMENT", "SERVER_PORT",
		"DATABASE_HOST", "DATABASE_DBNAME",
		"ALERTS_SCAN_INTERVAL", "ALERTS_OVERDUE_DAYS",
		"KAFKA_ENABLED", "KAFKA_BROKERS",
		"JWT_ENABLED", "JWT_SECRET",
		"CORS_ALLOW_ORIGINS", "EMAIL_HOST",
	} {
		// viper ignores empty environment values, so this restores defaults
		t.Setenv(key, "")
	}
}

func TestLoad_WithDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "property-manager", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
	assert.Equal(t, 6*time.Hour, cfg.Alerts.ScanInterval)
	assert.Equal(t, 3, cfg.Alerts.OverdueDays)
	assert.Equal(t, 587, cfg.Email.Port)
	assert.True(t, cfg.Email.UseSSL)
	assert.Equal(t, "Property Manager", cfg.Email.SenderName)
	assert.Empty(t, cfg.Email.Host)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORS.AllowOrigins)
	assert.Equal(t, "property-manager.payments", cfg.Kafka.Topic)
}

func TestLoad_WithEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_NAME", "pm-test")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ALERTS_SCAN_INTERVAL", "30m")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "pm-test", cfg.App.Name)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Alerts.ScanInterval)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadWithPath(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("EMAIL_HOST=smtp.example.com\nALERTS_OVERDUE_DAYS=5\n"), 0o600))

	cfg, err := LoadWithPath(path)
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com", cfg.Email.Host)
	assert.Equal(t, 5, cfg.Alerts.OverdueDays)
}

func TestLoadWithPath_MissingFile(t *testing.T) {
	_, err := LoadWithPath(filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:      AppConfig{Name: "pm", Environment: "development"},
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Host: "localhost", DBName: "pm"},
			Alerts:   AlertsConfig{ScanInterval: time.Hour, OverdueDays: 3},
			JWT:      JWTConfig{Secret: defaultJWTSecret},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing app name", func(c *Config) { c.App.Name = "" }, true},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"missing db host", func(c *Config) { c.Database.Host = "" }, true},
		{"in-memory store needs no db host", func(c *Config) {
			c.Database.Host = ""
			c.Database.InMemory = true
		}, false},
		{"zero scan interval", func(c *Config) { c.Alerts.ScanInterval = 0 }, true},
		{"negative overdue days", func(c *Config) { c.Alerts.OverdueDays = -1 }, true},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true }, true},
		{"jwt default secret in production", func(c *Config) {
			c.JWT.Enabled = true
			c.App.Environment = "production"
		}, true},
		{"jwt default secret in development", func(c *Config) { c.JWT.Enabled = true }, false},
		{"jwt disabled in production", func(c *Config) { c.App.Environment = "production" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := &DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "pm", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=pm sslmode=disable", d.DSN())
}

func TestServerAndRedisAddr(t *testing.T) {
	s := &ServerConfig{Host: "0.0.0.0", Port: 8080}
	r := &RedisConfig{Host: "cache", Port: 6379}
	assert.Equal(t, "0.0.0.0:8080", s.Addr())
	assert.Equal(t, "cache:6379", r.Addr())
}
