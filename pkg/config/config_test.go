package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"pulsehub/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoad_UsesDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := config.Load("non-existent-config.yaml")
	require.NoError(t, err)
	assert.Equal(t, ":3001", cfg.Server.Address)
	assert.Equal(t, 30*time.Second, cfg.Signal.PingInterval)
	assert.Equal(t, 60*time.Second, cfg.Signal.PongTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_LoadsFromYAMLAndAppliesEnvOverrides(t *testing.T) {
	path := writeTempConfig(t, `
server:
  address: ":9000"
  read_timeout: 10s
  write_timeout: 15s
  shutdown_timeout: 20s

signal:
  ping_interval: 5s
  pong_timeout: 10s
  write_timeout: 3s

auth:
  jwt_secret: "file-secret"

logging:
  level: "debug"
  format: "console"
`)

	t.Setenv("PULSEHUB_SERVER_ADDRESS", ":9999")
	t.Setenv("PULSEHUB_JWT_SECRET", "env-secret")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	// Env wins over the file.
	assert.Equal(t, ":9999", cfg.Server.Address)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)

	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 5*time.Second, cfg.Signal.PingInterval)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)

	// Untouched sections keep their defaults.
	assert.True(t, cfg.Monitoring.PrometheusEnabled)
	assert.False(t, cfg.RateLimiting.Enabled)
}

func TestLoad_RedisAddressEnvEnablesRedis(t *testing.T) {
	t.Setenv("PULSEHUB_REDIS_ADDRESS", "redis-host:6380")

	cfg, err := config.Load("non-existent-config.yaml")
	require.NoError(t, err)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis-host:6380", cfg.Redis.Address)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *config.Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *config.Config) {},
		},
		{
			name:    "empty server address",
			mutate:  func(cfg *config.Config) { cfg.Server.Address = "" },
			wantErr: "server.address",
		},
		{
			name:    "non-positive ping interval",
			mutate:  func(cfg *config.Config) { cfg.Signal.PingInterval = 0 },
			wantErr: "signal.ping_interval",
		},
		{
			name: "pong timeout not greater than ping interval",
			mutate: func(cfg *config.Config) {
				cfg.Signal.PingInterval = 30 * time.Second
				cfg.Signal.PongTimeout = 30 * time.Second
			},
			wantErr: "signal.pong_timeout",
		},
		{
			name:    "empty jwt secret",
			mutate:  func(cfg *config.Config) { cfg.Auth.JWTSecret = "" },
			wantErr: "auth.jwt_secret",
		},
		{
			name: "redis enabled without address",
			mutate: func(cfg *config.Config) {
				cfg.Redis.Enabled = true
				cfg.Redis.Address = ""
			},
			wantErr: "redis.address",
		},
		{
			name: "tracing sample rate out of range",
			mutate: func(cfg *config.Config) {
				cfg.Tracing.Enabled = true
				cfg.Tracing.SampleRate = 1.5
			},
			wantErr: "tracing.sample_rate",
		},
		{
			name: "rate limiting enabled with zero rps",
			mutate: func(cfg *config.Config) {
				cfg.RateLimiting.Enabled = true
				cfg.RateLimiting.HTTP.RequestsPerSecond = 0
			},
			wantErr: "rate_limiting.http.requests_per_second",
		},
		{
			name: "rate limiting enabled with zero websocket rate",
			mutate: func(cfg *config.Config) {
				cfg.RateLimiting.Enabled = true
				cfg.RateLimiting.WebSocket.MessagesPerSecond = 0
			},
			wantErr: "rate_limiting.websocket.messages_per_second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
