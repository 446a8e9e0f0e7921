package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/apperrors"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfigFromPath("")
	require.NoError(t, err)

	assert.True(t, cfg.Sync.Enabled)
	assert.Equal(t, "http://localhost:8000", cfg.Sync.ServiceURL)
	assert.Equal(t, 3, cfg.Sync.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.Sync.RetryDelayDuration())
	assert.Equal(t, 30*time.Second, cfg.Sync.TimeoutDuration())
	assert.Equal(t, 1, cfg.Sync.BulkConcurrency)
	assert.Equal(t, 30*time.Minute, cfg.Sync.BulkLockTTL)
	assert.Equal(t, 15*time.Minute, cfg.Sync.Alert.Cooldown)
	assert.Equal(t, []string{"admin@cyberxltr.com"}, cfg.Admin.Emails)
	assert.Equal(t, 24*time.Hour, cfg.HTTPServer.JWT.AccessTokenTTL)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("SYNC_ENABLED", "false")
	t.Setenv("SYNC_MAX_RETRIES", "5")
	t.Setenv("SYNC_RETRY_DELAY", "0")
	t.Setenv("ADMIN_EMAILS", "ops@cyberxltr.com,root@cyberxltr.com")

	cfg, err := LoadConfigFromPath("")
	require.NoError(t, err)

	assert.False(t, cfg.Sync.Enabled)
	assert.Equal(t, 5, cfg.Sync.MaxRetries)
	assert.Zero(t, cfg.Sync.RetryDelayDuration())
	assert.Equal(t, []string{"ops@cyberxltr.com", "root@cyberxltr.com"}, cfg.Admin.Emails)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sync:
  service_url: "http://sync.internal:9000"
  max_retries: 2
  auto_retry:
    enabled: true
    interval: 1m
  alert:
    recipients: ["oncall@cyberxltr.com"]
`), 0o600))

	cfg, err := LoadConfigFromPath(path)
	require.NoError(t, err)

	assert.True(t, cfg.Sync.Enabled)
	assert.Equal(t, "http://sync.internal:9000", cfg.Sync.ServiceURL)
	assert.Equal(t, 2, cfg.Sync.MaxRetries)
	assert.True(t, cfg.Sync.AutoRetry.Enabled)
	assert.Equal(t, time.Minute, cfg.Sync.AutoRetry.Interval)
	assert.Equal(t, []string{"oncall@cyberxltr.com"}, cfg.Sync.Alert.Recipients)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfigFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Sync: Sync{MaxRetries: 3, RetryDelay: 5, Timeout: 30, BulkConcurrency: 1}}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero retries", func(c *Config) { c.Sync.MaxRetries = 0 }},
		{"negative delay", func(c *Config) { c.Sync.RetryDelay = -1 }},
		{"negative timeout", func(c *Config) { c.Sync.Timeout = -1 }},
		{"no bulk workers", func(c *Config) { c.Sync.BulkConcurrency = 0 }},
		{"auto retry without interval", func(c *Config) { c.Sync.AutoRetry.Enabled = true }},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			assert.ErrorIs(t, cfg.Validate(), apperrors.ErrInvalidConfig)
		})
	}
}

func TestMaskSecrets(t *testing.T) {
	assert.Empty(t, mask(""))
	assert.Equal(t, secretMask, mask("hunter2"))
}
