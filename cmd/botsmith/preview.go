package main

import (
	"errors"

	"github.com/forgeworks/botsmith/internal/tui/preview"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Chat with the configured agent locally",
	Long: `Chat with the configured agent locally.

The preview fetches the agent saved by 'botsmith setup', shows its
greeting and conversation starters, and relays your messages through the
chat webhook. The transcript is stored in embedded NATS JetStream under
the data directory and survives restarts; ctrl+r starts over.`,
	RunE: runPreview,
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.APIBaseURL == "" {
		return errors.New("api_base_url is not configured\n\nRun 'botsmith config' to create a config file, or set BOTSMITH_API_BASE_URL")
	}

	return preview.Run(cfg)
}
