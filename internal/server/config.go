package server

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/gnpanschur/Schwimmen/internal/i18n"
	"github.com/gnpanschur/Schwimmen/internal/roomcode"
	"github.com/gnpanschur/Schwimmen/internal/telemetry"
)

// DefaultPort is the port the server listens on when nothing else is set.
const DefaultPort = 3002

var validLogLevels = []string{"debug", "info", "warn", "error"}

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server    ServerSettings     `hcl:"server,block"`
	Rooms     *RoomSettings      `hcl:"rooms,block"`
	Telemetry *TelemetrySettings `hcl:"telemetry,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address        string   `hcl:"address,optional"`
	Port           int      `hcl:"port,optional"`
	LogLevel       string   `hcl:"log_level,optional"`
	AllowedOrigins []string `hcl:"allowed_origins,optional"`
	DefaultLocale  string   `hcl:"default_locale,optional"`
}

// RoomSettings controls room creation.
type RoomSettings struct {
	CodeLength int `hcl:"code_length,optional"`
}

// TelemetrySettings controls span export.
type TelemetrySettings struct {
	Enabled     bool   `hcl:"enabled,optional"`
	Endpoint    string `hcl:"endpoint,optional"`
	ServiceName string `hcl:"service_name,optional"`
}

// envOverrides are read from the process environment and win over the file.
type envOverrides struct {
	Port          int    `env:"PORT"`
	Address       string `env:"THIRTYONE_ADDRESS"`
	LogLevel      string `env:"THIRTYONE_LOG_LEVEL"`
	DefaultLocale string `env:"THIRTYONE_DEFAULT_LOCALE"`
	OtelEndpoint  string `env:"THIRTYONE_OTEL_ENDPOINT"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:        "0.0.0.0",
			Port:           DefaultPort,
			LogLevel:       "info",
			AllowedOrigins: []string{"*"},
			DefaultLocale:  "en",
		},
		Rooms: &RoomSettings{
			CodeLength: roomcode.DefaultLength,
		},
		Telemetry: &TelemetrySettings{
			ServiceName: "thirtyone-server",
		},
	}
}

// LoadServerConfig loads server configuration from HCL file
func LoadServerConfig(filename string) (*ServerConfig, error) {
	// Check if file exists
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

// applyDefaults fills in values missing from a decoded file.
func (c *ServerConfig) applyDefaults() {
	defaults := DefaultServerConfig()

	if c.Server.Address == "" {
		c.Server.Address = defaults.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaults.Server.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaults.Server.LogLevel
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = defaults.Server.AllowedOrigins
	}
	if c.Server.DefaultLocale == "" {
		c.Server.DefaultLocale = defaults.Server.DefaultLocale
	}

	if c.Rooms == nil {
		c.Rooms = defaults.Rooms
	}
	if c.Rooms.CodeLength == 0 {
		c.Rooms.CodeLength = defaults.Rooms.CodeLength
	}

	if c.Telemetry == nil {
		c.Telemetry = defaults.Telemetry
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = defaults.Telemetry.ServiceName
	}
}

// ApplyEnv overlays settings from the environment. Setting
// THIRTYONE_OTEL_ENDPOINT also turns telemetry on.
func (c *ServerConfig) ApplyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if o.Port != 0 {
		c.Server.Port = o.Port
	}
	if o.Address != "" {
		c.Server.Address = o.Address
	}
	if o.LogLevel != "" {
		c.Server.LogLevel = o.LogLevel
	}
	if o.DefaultLocale != "" {
		c.Server.DefaultLocale = o.DefaultLocale
	}
	if o.OtelEndpoint != "" {
		if c.Telemetry == nil {
			c.Telemetry = DefaultServerConfig().Telemetry
		}
		c.Telemetry.Endpoint = o.OtelEndpoint
		c.Telemetry.Enabled = true
	}
	return nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if !slices.Contains(validLogLevels, strings.ToLower(c.Server.LogLevel)) {
		return fmt.Errorf("invalid log level %q: must be one of %s", c.Server.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if _, ok := i18n.ParseTag(c.Server.DefaultLocale); !ok {
		return fmt.Errorf("unsupported default locale %q", c.Server.DefaultLocale)
	}

	if c.Rooms != nil && (c.Rooms.CodeLength < 4 || c.Rooms.CodeLength > 16) {
		return fmt.Errorf("rooms: code length must be between 4 and 16, got %d", c.Rooms.CodeLength)
	}

	if c.Telemetry != nil && c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry: endpoint is required when enabled")
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// TelemetryConfig converts the telemetry block for telemetry.Setup.
func (c *ServerConfig) TelemetryConfig() telemetry.Config {
	if c.Telemetry == nil {
		return telemetry.Config{}
	}
	return telemetry.Config{
		Enabled:     c.Telemetry.Enabled,
		Endpoint:    c.Telemetry.Endpoint,
		ServiceName: c.Telemetry.ServiceName,
	}
}
