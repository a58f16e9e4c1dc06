package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadServerConfigMissingFile(t *testing.T) {
	cfg, err := LoadServerConfig(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:3002", cfg.GetServerAddress())
	assert.Equal(t, 6, cfg.Rooms.CodeLength)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadServerConfigFile(t *testing.T) {
	path := writeConfig(t, `
server {
  address         = "127.0.0.1"
  port            = 4000
  log_level       = "debug"
  allowed_origins = ["https://schwimmen.example"]
  default_locale  = "de"
}

rooms {
  code_length = 8
}
`)

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "127.0.0.1:4000", cfg.GetServerAddress())
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, []string{"https://schwimmen.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "de", cfg.Server.DefaultLocale)
	assert.Equal(t, 8, cfg.Rooms.CodeLength)
	require.NotNil(t, cfg.Telemetry, "missing blocks get defaults")
	assert.Equal(t, "thirtyone-server", cfg.Telemetry.ServiceName)
}

func TestLoadServerConfigDefaultsInsideBlocks(t *testing.T) {
	path := writeConfig(t, `
server {}
telemetry {
  enabled  = true
  endpoint = "http://collector:4318"
}
`)

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)

	tc := cfg.TelemetryConfig()
	assert.True(t, tc.Enabled)
	assert.Equal(t, "http://collector:4318", tc.Endpoint)
	assert.Equal(t, "thirtyone-server", tc.ServiceName)
}

func TestLoadServerConfigInvalidHCL(t *testing.T) {
	_, err := LoadServerConfig(writeConfig(t, `server { port = `))
	assert.ErrorContains(t, err, "failed to parse HCL file")

	_, err = LoadServerConfig(writeConfig(t, `server { colour = "blue" }`))
	assert.ErrorContains(t, err, "failed to decode HCL")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("THIRTYONE_LOG_LEVEL", "warn")
	t.Setenv("THIRTYONE_DEFAULT_LOCALE", "de")
	t.Setenv("THIRTYONE_OTEL_ENDPOINT", "http://collector:4318")

	cfg := DefaultServerConfig()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Server.LogLevel)
	assert.Equal(t, "de", cfg.Server.DefaultLocale)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "http://collector:4318", cfg.Telemetry.Endpoint)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnvInvalidPort(t *testing.T) {
	t.Setenv("PORT", "abc")
	err := DefaultServerConfig().ApplyEnv()
	assert.ErrorContains(t, err, "parse env")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr string
	}{
		{"port too high", func(c *ServerConfig) { c.Server.Port = 70000 }, "invalid port"},
		{"bad log level", func(c *ServerConfig) { c.Server.LogLevel = "loud" }, "invalid log level"},
		{"bad locale", func(c *ServerConfig) { c.Server.DefaultLocale = "fr" }, "unsupported default locale"},
		{"short codes", func(c *ServerConfig) { c.Rooms.CodeLength = 2 }, "code length"},
		{"telemetry without endpoint", func(c *ServerConfig) { c.Telemetry.Enabled = true }, "endpoint is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultServerConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}
