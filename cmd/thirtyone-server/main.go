package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/gnpanschur/Schwimmen/internal/i18n"
	"github.com/gnpanschur/Schwimmen/internal/lobby"
	"github.com/gnpanschur/Schwimmen/internal/roomcode"
	"github.com/gnpanschur/Schwimmen/internal/server"
	"github.com/gnpanschur/Schwimmen/internal/telemetry"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"thirtyone-server.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Address to bind to (overrides config)"`
	Port     int    `short:"p" long:"port" help:"Port to listen on (overrides config and PORT)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	Locale   string `long:"locale" help:"Default language for clients that ask for none (en, de)"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("thirtyone-server"),
		kong.Description("Real-time server for the card game 31 (Schwimmen)."),
	)

	// Load configuration
	cfg, err := server.LoadServerConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		kctx.Exit(1)
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Printf("Error reading environment: %v\n", err)
		kctx.Exit(1)
	}

	// Apply command line overrides
	if CLI.Addr != "" {
		cfg.Server.Address = CLI.Addr
	}
	if CLI.Port != 0 {
		cfg.Server.Port = CLI.Port
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.Locale != "" {
		cfg.Server.DefaultLocale = CLI.Locale
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		kctx.Exit(1)
	}

	// Setup logging
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
	level, err := log.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.TelemetryConfig())
	if err != nil {
		logger.Fatal("Failed to set up telemetry", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Warn("Failed to flush telemetry", "error", err)
		}
	}()

	locale, _ := i18n.ParseTag(cfg.Server.DefaultLocale)

	directory := lobby.NewDirectory(logger,
		lobby.WithCodeGenerator(roomcode.NewGenerator(nil, cfg.Rooms.CodeLength)),
	)
	wsServer := server.NewServer(cfg.GetServerAddress(), directory, logger,
		server.WithDefaultLocale(locale),
		server.WithAllowedOrigins(cfg.Server.AllowedOrigins),
		server.WithTracer(telemetry.Tracer()),
	)

	logger.Info("Starting thirtyone server",
		"addr", cfg.GetServerAddress(),
		"locale", locale,
		"telemetry", cfg.Telemetry.Enabled)

	if err := wsServer.Run(ctx); err != nil {
		logger.Error("Server error", "error", err)
		kctx.Exit(1)
	}
	logger.Info("Server stopped")
}
