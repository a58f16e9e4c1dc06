package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/gnpanschur/Schwimmen/internal/client"
	"github.com/gnpanschur/Schwimmen/internal/tui"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"thirtyone-client.hcl" help:"Path to HCL configuration file"`
	Server   string `short:"s" long:"server" help:"Server URL to connect to (overrides config)"`
	Name     string `short:"n" long:"name" help:"Player name (overrides config)"`
	PlayerID string `long:"player-id" help:"Player id from an earlier session, to reclaim a seat"`
	Locale   string `long:"locale" help:"Language for server messages (en, de)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	LogFile  string `long:"log-file" help:"Log file path (overrides config)"`
	Room     string `arg:"" optional:"" help:"Room code to join right away"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("thirtyone-client"),
		kong.Description("Terminal client for the card game 31 (Schwimmen)."),
	)
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		kctx.Exit(1)
	}
}

func run() error {
	cfg, err := client.LoadClientConfig(CLI.Config)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	// Apply command line overrides
	if CLI.Server != "" {
		cfg.Server.URL = CLI.Server
	}
	if CLI.Name != "" {
		cfg.Player.Name = CLI.Name
	}
	if CLI.PlayerID != "" {
		cfg.Player.ID = CLI.PlayerID
	}
	if CLI.Locale != "" {
		cfg.UI.Locale = CLI.Locale
	}
	if CLI.LogLevel != "" {
		cfg.UI.LogLevel = CLI.LogLevel
	}
	if CLI.LogFile != "" {
		cfg.UI.LogFile = CLI.LogFile
	}

	// Get player name if not set
	if cfg.Player.Name == "" {
		fmt.Print("Enter your player name: ")
		var input string
		_, _ = fmt.Scanln(&input)
		cfg.Player.Name = strings.TrimSpace(input)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// The terminal belongs to the UI, so the log goes to a file
	logFile, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	logger := log.NewWithOptions(logFile, log.Options{ReportTimestamp: true})
	level, err := log.ParseLevel(cfg.UI.LogLevel)
	if err != nil {
		level = log.WarnLevel
	}
	logger.SetLevel(level)

	logger.Info("Starting thirtyone client",
		"server", cfg.Server.URL,
		"player", cfg.Player.Name,
		"config", CLI.Config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wsClient := client.NewClient(cfg.Server.URL, cfg.Player.Name, logger,
		client.WithLocale(cfg.UI.Locale),
		client.WithPlayerID(cfg.Player.ID),
	)
	connectCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ConnectTimeout)*time.Second)
	err = wsClient.Connect(connectCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer func() { _ = wsClient.Disconnect() }()

	renderer := client.NewRenderer(os.Stdout, cfg.UI.Theme)
	model := tui.NewModel(ctx, wsClient, renderer, logger, time.Duration(cfg.Server.RequestTimeout)*time.Second)

	model.AddLogEntry("=== 31 (Schwimmen) ===")
	model.AddLogEntry("Connected to server: " + cfg.Server.URL)
	model.AddLogEntry("Player: " + cfg.Player.Name)
	model.AddLogEntry("")
	for _, line := range strings.Split(client.Help(), "\n") {
		model.AddLogEntry(line)
	}
	if CLI.Room != "" {
		model.Queue(client.Command{Name: "join", Args: strings.Fields(CLI.Room)})
	}

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	tui.Bind(wsClient, program.Send)

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	if model.Lost() {
		return errors.New("connection to server lost")
	}
	if id := wsClient.PlayerID(); id != "" {
		fmt.Printf("Your player id was %s, pass --player-id to take your seat back.\n", id)
	}
	return nil
}
