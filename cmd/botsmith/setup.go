package main

import (
	"errors"

	"github.com/forgeworks/botsmith/internal/tui/setupwizard"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Run the interactive agent setup wizard",
	Long: `Run the interactive agent setup wizard.

The wizard walks through four steps: branding, persona, knowledge base,
and a final review. Every step validates and saves to the record service
before the next one unlocks, so an interrupted session resumes from the
server's copy.`,
	RunE: runSetupWizard,
}

func runSetupWizard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.APIBaseURL == "" {
		return errors.New("api_base_url is not configured\n\nRun 'botsmith config' to create a config file, or set BOTSMITH_API_BASE_URL")
	}

	return setupwizard.Run(cfg)
}
