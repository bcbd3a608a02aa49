package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("test", "")
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Env)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 20, cfg.Database.ConnMaxIdleTime)
	assert.Equal(t, 10, cfg.Database.ConnectTimeout)
	assert.Equal(t, ExecutorModeQueue, cfg.Executor.Mode)
	assert.False(t, cfg.Webhook.Dedup.Enabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/hunt")
	t.Setenv("ADMIN_EMAIL", "boss@example.com")
	t.Setenv("APP_SERVER_PORT", "9090")
	t.Setenv("APP_EXECUTOR_MODE", "webhook")

	cfg, err := Load("test", "")
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@db:5432/hunt", cfg.Database.URL)
	assert.Equal(t, "boss@example.com", cfg.Auth.AdminEmail)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ExecutorModeWebhook, cfg.Executor.Mode)
	assert.False(t, cfg.NeedsRedis())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 7000\nwebhook:\n  dedup:\n    enabled: true\n    ttl: 60\n"), 0o644))

	cfg, err := Load("production", path)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.True(t, cfg.Webhook.Dedup.Enabled)
	assert.Equal(t, 60, cfg.Webhook.Dedup.TTL)
	assert.True(t, cfg.IsProduction())
}

func TestValidate_RejectsUnknownExecutorMode(t *testing.T) {
	cfg := &Config{Executor: ExecutorConfig{Mode: "carrier-pigeon"}}
	assert.Error(t, cfg.Validate())

	cfg = &Config{Executor: ExecutorConfig{Mode: ExecutorModeWebhook, LocalWorkers: 2}}
	assert.Error(t, cfg.Validate())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
