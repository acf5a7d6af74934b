package main

import (
	"fmt"
	"os"

	"github.com/forgeworks/botsmith/internal/config"
	"github.com/spf13/cobra"
)

var configFlags struct {
	project bool
	force   bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create a botsmith configuration file",
	Long: `Create a botsmith configuration file with sensible defaults.

By default, creates a global config at ~/.config/botsmith/botsmith.yml.
Use --project to create a project-local config in the current directory.`,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVarP(&configFlags.project, "project", "p", false, "Create config in current directory instead of global location")
	configCmd.Flags().BoolVarP(&configFlags.force, "force", "f", false, "Overwrite existing config file")
}

func runConfig(cmd *cobra.Command, args []string) error {
	targetPath := config.GlobalPath()
	if configFlags.project {
		targetPath = config.ProjectPath()
	}

	if !configFlags.force && fileExists(targetPath) {
		return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", targetPath)
	}

	cfg := &config.Config{
		APIBaseURL:     "",
		APIToken:       "",
		ChatWebhookURL: "",
		DataDir:        ".botsmith",
		LogLevel:       "info",
		LogFile:        "",
		MaxAssetBytes:  config.DefaultMaxAssetBytes,
	}

	var err error
	if configFlags.project {
		err = config.WriteProject(cfg)
	} else {
		err = config.WriteGlobal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Config written to: %s\n\n", targetPath)
	fmt.Println("Fill in api_base_url, then run 'botsmith setup' to get started.")

	return nil
}

// fileExists checks if a file exists (helper for the config command).
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
