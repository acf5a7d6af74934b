package main

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/forgeworks/botsmith/internal/config"
	"github.com/forgeworks/botsmith/internal/logger"
	"github.com/forgeworks/botsmith/internal/tui/theme"
	"github.com/spf13/cobra"
)

const (
	logoText1 = "█▄▄ █▀█ ▀█▀ █▀ █▀▄▀█ █ ▀█▀ █░█"
	logoText2 = "█▄█ █▄█ ░█░ ▄█ █░▀░█ █ ░█░ █▀█"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "botsmith",
	Short: "Set up and preview an AI chat agent from the terminal",
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

// loadConfig loads the layered configuration and applies its logging
// settings to the default logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if level, err := logger.ParseLevel(cfg.LogLevel); err == nil {
		logger.Default.SetLevel(level)
	}
	if cfg.LogFile != "" {
		if f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			logger.Default.SetOutput(f)
		}
	}
	return cfg, nil
}

func init() {
	// Set Long description with logo
	rootCmd.Long = renderLogo() + `

botsmith walks you through configuring an AI chat agent: branding,
persona, and knowledge base, saved step by step to the record service.
Once setup completes you can talk to the agent locally with
'botsmith preview'; the conversation persists in embedded NATS JetStream.`

	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(configCmd)
}
