package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeEnvFile writes an in-memory configuration with every external service off
func writeEnvFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	content := "APP_ENVIRONMENT=test\n" +
		"SERVER_PORT=18089\n" +
		"DATABASE_IN_MEMORY=true\n" +
		"REDIS_ENABLED=false\n" +
		"KAFKA_ENABLED=false\n" +
		"JWT_ENABLED=false\n" +
		"OTEL_ENABLED=false\n" +
		"LOG_LEVEL=error\n" +
		"LOG_OTLP_ENABLED=false\n" +
		"EMAIL_HOST=\n" +
		"STRIPE_SECRET_KEY=\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, ctx context.Context, args ...string) error {
	t.Helper()
	t.Cleanup(func() { envFile = "" })
	root := newRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func TestScanAlertsCommand_InMemory(t *testing.T) {
	err := execute(t, context.Background(), "--env-file", writeEnvFile(t), "scan-alerts")
	assert.NoError(t, err)
}

func TestMigrateCommand_RejectsInMemory(t *testing.T) {
	err := execute(t, context.Background(), "--env-file", writeEnvFile(t), "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_IN_MEMORY")
}

func TestCommand_MissingEnvFile(t *testing.T) {
	err := execute(t, context.Background(), "--env-file", filepath.Join(t.TempDir(), "absent.env"), "scan-alerts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestServeCommand_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := execute(t, ctx, "--env-file", writeEnvFile(t), "serve")
	assert.NoError(t, err)
}
